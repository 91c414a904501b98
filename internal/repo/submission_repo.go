package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Orderline/internal/domain"
)

// SubmissionRepo — репозиторий сабмитов заказов.
//
// Схема:
//
//	CREATE TABLE submissions (
//	    id          uuid PRIMARY KEY,
//	    order_id    text NOT NULL,
//	    input       jsonb NOT NULL,
//	    status      text NOT NULL,
//	    error       text,
//	    record_key  text,
//	    started_at  timestamptz,
//	    finished_at timestamptz,
//	    created_at  timestamptz NOT NULL
//	);
type SubmissionRepo struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepo создаёт новый SubmissionRepo.
func NewSubmissionRepo(pool *pgxpool.Pool) *SubmissionRepo {
	return &SubmissionRepo{pool: pool}
}

// Create создаёт новый сабмит.
func (r *SubmissionRepo) Create(ctx context.Context, sub *domain.Submission) error {
	inputJSON, err := json.Marshal(sub.Input)
	if err != nil {
		return fmt.Errorf("marshal input: %w", err)
	}

	query := `
		INSERT INTO submissions (id, order_id, input, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = r.pool.Exec(ctx, query,
		sub.ID,
		sub.OrderID,
		inputJSON,
		sub.Status,
		sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// GetByID возвращает сабмит по ID.
func (r *SubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	query := `
		SELECT id, order_id, input, status, error, record_key,
		       started_at, finished_at, created_at
		FROM submissions
		WHERE id = $1
	`
	return scanSubmission(r.pool.QueryRow(ctx, query, id))
}

// Update обновляет статус/результат сабмита.
func (r *SubmissionRepo) Update(ctx context.Context, sub *domain.Submission) error {
	query := `
		UPDATE submissions
		SET status = $2, error = $3, record_key = $4,
		    started_at = $5, finished_at = $6
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		sub.ID,
		sub.Status,
		nullString(sub.Error),
		nullString(sub.RecordKey),
		sub.StartedAt,
		sub.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RequeueStale возвращает в PENDING сабмиты, зависшие в RUNNING:
// реплика orchestrator'а упала или была остановлена до финализации.
// Возвращает количество возвращённых сабмитов.
func (r *SubmissionRepo) RequeueStale(ctx context.Context, staleBefore time.Time) (int64, error) {
	query := `
		UPDATE submissions
		SET status = 'PENDING', started_at = NULL
		WHERE status = 'RUNNING' AND started_at < $1
	`
	result, err := r.pool.Exec(ctx, query, staleBefore)
	if err != nil {
		return 0, fmt.Errorf("requeue stale submissions: %w", err)
	}
	return result.RowsAffected(), nil
}

// ListPending возвращает сабмиты в статусе PENDING, старые первыми.
// Используется polling fallback'ом orchestrator'а.
func (r *SubmissionRepo) ListPending(ctx context.Context, limit int) ([]domain.Submission, error) {
	query := `
		SELECT id, order_id, input, status, error, record_key,
		       started_at, finished_at, created_at
		FROM submissions
		WHERE status = 'PENDING'
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending submissions: %w", err)
	}
	defer rows.Close()

	var subs []domain.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// scanSubmission сканирует одну строку в Submission.
func scanSubmission(row pgx.Row) (*domain.Submission, error) {
	var sub domain.Submission
	var inputJSON []byte
	var subError *string
	var recordKey *string

	err := row.Scan(
		&sub.ID,
		&sub.OrderID,
		&inputJSON,
		&sub.Status,
		&subError,
		&recordKey,
		&sub.StartedAt,
		&sub.FinishedAt,
		&sub.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan submission: %w", err)
	}

	if inputJSON != nil {
		if err := json.Unmarshal(inputJSON, &sub.Input); err != nil {
			return nil, fmt.Errorf("unmarshal input: %w", err)
		}
	}

	if subError != nil {
		sub.Error = *subError
	}
	if recordKey != nil {
		sub.RecordKey = *recordKey
	}

	return &sub, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
