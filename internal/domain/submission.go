package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus — статус обработки сабмита.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → COMPLETED
//	                  ↘ FAILED
type SubmissionStatus string

const (
	// SubmissionPending — сабмит принят, run ещё не начался.
	SubmissionPending SubmissionStatus = "PENDING"

	// SubmissionRunning — orchestrator выполняет run.
	SubmissionRunning SubmissionStatus = "RUNNING"

	// SubmissionCompleted — run завершился, запись сохранена.
	SubmissionCompleted SubmissionStatus = "COMPLETED"

	// SubmissionFailed — run завершился ошибкой уровня run
	// (process-order или персистенция).
	SubmissionFailed SubmissionStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный.
func (s SubmissionStatus) IsTerminal() bool {
	switch s {
	case SubmissionCompleted, SubmissionFailed:
		return true
	default:
		return false
	}
}

// Submission — принятый сабмит заказа: одно выполнение workflow.
//
// Создаётся gateway'ем при POST /orders. ID сабмита — это executionId,
// который возвращается клиенту: по нему можно найти запись заказа
// после завершения run. Orchestrator подхватывает PENDING сабмиты
// из очереди (event-driven) или из БД (polling fallback).
type Submission struct {
	// ID — executionId сабмита.
	ID uuid.UUID `json:"id"`

	// OrderID — идентификатор заказа (уже сгенерированный, если
	// клиент его не передал).
	OrderID string `json:"order_id"`

	// Input — исходный заказ, как его принял gateway.
	Input Order `json:"input"`

	// Status — текущий статус обработки.
	Status SubmissionStatus `json:"status"`

	// Error — текст run-level ошибки при статусе FAILED.
	Error string `json:"error,omitempty"`

	// RecordKey — путь сохранённой записи при статусе COMPLETED.
	RecordKey string `json:"record_key,omitempty"`

	// StartedAt — время начала run (статус стал RUNNING).
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения run.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// CreatedAt — время приёма сабмита.
	CreatedAt time.Time `json:"created_at"`
}

// Duration возвращает продолжительность run.
// Возвращает 0, если run не завершён.
func (s *Submission) Duration() time.Duration {
	if s.StartedAt == nil || s.FinishedAt == nil {
		return 0
	}
	return s.FinishedAt.Sub(*s.StartedAt)
}

// IsFinished возвращает true, если сабмит обработан.
func (s *Submission) IsFinished() bool {
	return s.Status.IsTerminal()
}

// MarkRunning переводит сабмит в статус RUNNING.
func (s *Submission) MarkRunning() {
	now := time.Now()
	s.Status = SubmissionRunning
	s.StartedAt = &now
}

// MarkCompleted переводит сабмит в статус COMPLETED.
func (s *Submission) MarkCompleted(recordKey string) {
	now := time.Now()
	s.Status = SubmissionCompleted
	s.RecordKey = recordKey
	s.FinishedAt = &now
}

// MarkFailed переводит сабмит в статус FAILED с ошибкой.
func (s *Submission) MarkFailed(err string) {
	now := time.Now()
	s.Status = SubmissionFailed
	s.Error = err
	s.FinishedAt = &now
}
