package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Orderline/internal/domain"
)

// SubmissionStore — операции над сабмитами, нужные gateway'ю.
// Реализуется repo.SubmissionRepo.
type SubmissionStore interface {
	Create(ctx context.Context, sub *domain.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
}

// RecordBrowser — операции чтения хранилища записей.
// Реализуется repo.RecordRepo.
type RecordBrowser interface {
	List(ctx context.Context, prefix string, limit int) ([]domain.StoredObject, bool, error)
	Get(ctx context.Context, key string) (*domain.OrderRecord, error)
	Count(ctx context.Context, prefix string) (int, error)
}

// Publisher — публикация события о новом сабмите.
// Реализуется mq.Publisher.
type Publisher interface {
	PublishOrderPending(ctx context.Context, submissionID uuid.UUID) error
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	submissions SubmissionStore
	records     RecordBrowser

	// publisher может быть nil: тогда сабмиты подхватывает
	// только polling fallback orchestrator'а.
	publisher Publisher

	logger *slog.Logger
	now    func() time.Time
}

// Config — конфигурация для создания Handler.
type Config struct {
	Submissions SubmissionStore
	Records     RecordBrowser
	Publisher   Publisher
	Logger      *slog.Logger

	// Now — источник времени (для тестов). Default: time.Now.
	Now func() time.Time
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Handler{
		submissions: cfg.Submissions,
		records:     cfg.Records,
		publisher:   cfg.Publisher,
		logger:      logger,
		now:         now,
	}
}
