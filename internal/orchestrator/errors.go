package orchestrator

import "errors"

// Ошибки оркестратора.
var (
	// ErrSubmissionNotFound — сабмит не найден в БД.
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrSubmissionNotPending — сабмит не в статусе PENDING.
	ErrSubmissionNotPending = errors.New("submission is not in PENDING status")

	// ErrSubmissionAlreadyActive — сабмит уже обрабатывается.
	ErrSubmissionAlreadyActive = errors.New("submission already being processed")

	// ErrProcessingFailed — шаг process-order завершился с ошибкой.
	ErrProcessingFailed = errors.New("order processing failed")

	// ErrPersistenceFailed — не удалось сохранить итоговую запись.
	ErrPersistenceFailed = errors.New("order record persistence failed")

	// ErrOrchestratorStopped — оркестратор остановлен.
	ErrOrchestratorStopped = errors.New("orchestrator stopped")
)
