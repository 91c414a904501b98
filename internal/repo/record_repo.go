package repo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Orderline/internal/domain"
)

// DefaultBucket — логическое имя хранилища записей по умолчанию.
const DefaultBucket = "orderline-orders"

// RecordRepo — хранилище финальных записей заказов.
//
// Одна строка на ключ "orders/<orderId>.json", семантика
// last-write-wins: повторный Put по тому же ключу перезаписывает
// тело и updated_at, версионирования нет. Листинг упорядочен по
// updated_at DESC — порядок определяется метаданными хранилища,
// а не содержимым записи.
//
// Тело хранится сериализованным текстом: нечитаемое тело всплывает
// как ErrCorruptRecord на Get конкретной записи, не ломая листинг.
//
// Схема:
//
//	CREATE TABLE order_records (
//	    key        text PRIMARY KEY,
//	    order_id   text NOT NULL,
//	    body       text NOT NULL,
//	    etag       text NOT NULL,
//	    size       bigint NOT NULL,
//	    updated_at timestamptz NOT NULL
//	);
type RecordRepo struct {
	pool   *pgxpool.Pool
	bucket string
}

// NewRecordRepo создаёт новый RecordRepo.
// Если bucket пустой, используется DefaultBucket.
func NewRecordRepo(pool *pgxpool.Pool, bucket string) *RecordRepo {
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &RecordRepo{pool: pool, bucket: bucket}
}

// Bucket возвращает логическое имя хранилища.
func (r *RecordRepo) Bucket() string {
	return r.bucket
}

// Put сохраняет запись под ключом (last-write-wins) и возвращает
// дескриптор с дайджестом тела.
func (r *RecordRepo) Put(ctx context.Context, key string, rec *domain.OrderRecord) (*domain.StoredObject, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	sum := sha256.Sum256(body)
	etag := hex.EncodeToString(sum[:])
	now := time.Now().UTC()

	query := `
		INSERT INTO order_records (key, order_id, body, etag, size, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key) DO UPDATE
		SET order_id = EXCLUDED.order_id,
		    body = EXCLUDED.body,
		    etag = EXCLUDED.etag,
		    size = EXCLUDED.size,
		    updated_at = EXCLUDED.updated_at
	`
	_, err = r.pool.Exec(ctx, query, key, rec.OrderID, string(body), etag, int64(len(body)), now)
	if err != nil {
		return nil, fmt.Errorf("put record: %w", err)
	}

	return &domain.StoredObject{
		Bucket:       r.bucket,
		Key:          key,
		ETag:         etag,
		Size:         int64(len(body)),
		LastModified: now,
	}, nil
}

// Get возвращает запись по ключу.
//
// Возвращает ErrNotFound, если ключа нет, и ErrCorruptRecord, если
// тело не разбирается — вызывающий при листинге пропускает такую
// запись и продолжает.
func (r *RecordRepo) Get(ctx context.Context, key string) (*domain.OrderRecord, error) {
	var body string
	err := r.pool.QueryRow(ctx, `SELECT body FROM order_records WHERE key = $1`, key).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}

	var rec domain.OrderRecord
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, key, err)
	}
	return &rec, nil
}

// List возвращает до limit дескрипторов с данным префиксом,
// упорядоченных по времени последней модификации (новые первыми),
// и флаг наличия записей за пределами страницы.
func (r *RecordRepo) List(ctx context.Context, prefix string, limit int) ([]domain.StoredObject, bool, error) {
	if limit <= 0 {
		limit = 10
	}

	// limit+1 — чтобы узнать, есть ли ещё записи за страницей.
	query := `
		SELECT key, etag, size, updated_at
		FROM order_records
		WHERE key LIKE $1 || '%'
		ORDER BY updated_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, prefix, limit+1)
	if err != nil {
		return nil, false, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var objects []domain.StoredObject
	for rows.Next() {
		var obj domain.StoredObject
		if err := rows.Scan(&obj.Key, &obj.ETag, &obj.Size, &obj.LastModified); err != nil {
			return nil, false, fmt.Errorf("scan record: %w", err)
		}
		obj.Bucket = r.bucket
		objects = append(objects, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	hasMore := len(objects) > limit
	if hasMore {
		objects = objects[:limit]
	}
	return objects, hasMore, nil
}

// Count возвращает количество записей с данным префиксом.
func (r *RecordRepo) Count(ctx context.Context, prefix string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM order_records WHERE key LIKE $1 || '%'`, prefix,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

// DeleteOlderThan удаляет записи, не обновлявшиеся после cutoff.
// Возвращает количество удалённых записей. Используется retention.
func (r *RecordRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM order_records WHERE updated_at < $1`, cutoff.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("delete old records: %w", err)
	}
	return result.RowsAffected(), nil
}
