package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shaiso/Orderline/internal/telemetry"
)

// Значения по умолчанию.
const (
	// DefaultRetention — срок хранения записей.
	DefaultRetention = 7 * 24 * time.Hour

	// DefaultCronExpr — ежедневно в 03:00.
	DefaultCronExpr = "0 3 * * *"
)

// cronParser — парсер cron-выражений (стандартные 5 полей).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// RecordPurgeStore — операция удаления старых записей.
// Реализуется repo.RecordRepo.
type RecordPurgeStore interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Purger удаляет записи заказов старше срока хранения.
type Purger struct {
	records   RecordPurgeStore
	retention time.Duration
	schedule  cron.Schedule
	logger    *slog.Logger
	now       func() time.Time
}

// Config — конфигурация Purger.
type Config struct {
	Records RecordPurgeStore

	// Retention — срок хранения (default: 7 суток).
	Retention time.Duration

	// CronExpr — расписание запуска (default: "0 3 * * *").
	CronExpr string

	// Logger.
	Logger *slog.Logger

	// Now — источник времени (для тестов). Default: time.Now.
	Now func() time.Time
}

// New создаёт новый Purger.
// Возвращает ошибку, если cron-выражение невалидно.
func New(cfg Config) (*Purger, error) {
	retention := cfg.Retention
	if retention <= 0 {
		retention = DefaultRetention
	}

	expr := cfg.CronExpr
	if expr == "" {
		expr = DefaultCronExpr
	}

	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", expr, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Purger{
		records:   cfg.Records,
		retention: retention,
		schedule:  schedule,
		logger:    logger,
		now:       now,
	}, nil
}

// NextRun возвращает время следующего запуска.
func (p *Purger) NextRun() time.Time {
	return p.schedule.Next(p.now())
}

// Run выполняет purge по расписанию до отмены контекста.
func (p *Purger) Run(ctx context.Context) error {
	p.logger.Info("retention purger started",
		"retention", p.retention,
		"next_run", p.NextRun(),
	)

	for {
		next := p.schedule.Next(p.now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			p.logger.Info("retention purger stopped")
			return ctx.Err()

		case <-timer.C:
			if err := p.Purge(ctx); err != nil {
				// Следующий тик попробует снова
				p.logger.Error("purge failed", "error", err)
			}
		}
	}
}

// Purge удаляет записи старше срока хранения. Один проход.
func (p *Purger) Purge(ctx context.Context) error {
	cutoff := p.now().Add(-p.retention)

	deleted, err := p.records.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete records older than %s: %w", cutoff.Format(time.RFC3339), err)
	}

	if deleted > 0 {
		telemetry.RecordsPurged.Add(float64(deleted))
	}

	p.logger.Info("purge completed",
		"cutoff", cutoff,
		"deleted", deleted,
	)

	return nil
}
