package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shaiso/Orderline/internal/domain"
	"github.com/shaiso/Orderline/internal/repo"
	"github.com/shaiso/Orderline/internal/telemetry"
)

// handleOrderPending обрабатывает событие о новом pending сабмите.
func (o *Orchestrator) handleOrderPending(ctx context.Context, submissionID uuid.UUID) error {
	// Проверяем, не обрабатывается ли уже
	if o.isActive(submissionID) {
		o.logger.Debug("submission already active, skipping", "submission_id", submissionID)
		return nil
	}

	if err := o.processSubmission(ctx, submissionID); err != nil {
		// Дубликаты и гонки с polling — не повод для requeue
		if errors.Is(err, ErrSubmissionNotPending) || errors.Is(err, ErrSubmissionAlreadyActive) {
			o.logger.Debug("submission not processed", "submission_id", submissionID, "reason", err)
			return nil
		}
		o.logger.Error("failed to process submission", "submission_id", submissionID, "error", err)
		return err
	}

	return nil
}

// processSubmission проводит один сабмит через workflow.
func (o *Orchestrator) processSubmission(ctx context.Context, id uuid.UUID) error {
	// 1. Загружаем сабмит из БД
	sub, err := o.submissionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrSubmissionNotFound, id)
		}
		return fmt.Errorf("get submission: %w", err)
	}

	// 2. Проверяем статус
	if sub.Status != domain.SubmissionPending {
		return ErrSubmissionNotPending
	}

	// 3. Создаём RunState и добавляем в активные
	state := NewRunState(sub)
	if err := o.addActive(state); err != nil {
		return err
	}
	defer o.removeActive(id)

	// 4. Переводим сабмит в RUNNING
	sub.MarkRunning()
	if err := o.submissionRepo.Update(ctx, sub); err != nil {
		return fmt.Errorf("update submission to running: %w", err)
	}

	logger := telemetry.WithExecutionID(o.logger, id.String())
	logger.Info("submission started", "order_id", sub.OrderID)
	telemetry.RunsStarted.Inc()

	// 5. Выполняем workflow
	record, err := o.executor.Execute(ctx, &sub.Input, state)
	if err != nil {
		return o.failSubmission(ctx, state, err)
	}

	return o.completeSubmission(ctx, state, record)
}

// completeSubmission финализирует успешно обработанный сабмит.
//
// Запись с finalStatus="failed" (отклонённый платёж) — тоже успешное
// завершение workflow: сабмит получает статус COMPLETED.
func (o *Orchestrator) completeSubmission(ctx context.Context, state *RunState, record *domain.OrderRecord) error {
	sub := state.Submission
	state.SetPhase(PhaseCompleted)

	sub.MarkCompleted(domain.RecordKey(record.OrderID))
	// Терминальный статус пишем даже если остановка сервиса отменила ctx,
	// иначе сабмит зависнет в RUNNING до requeue.
	if err := o.submissionRepo.Update(context.WithoutCancel(ctx), sub); err != nil {
		return fmt.Errorf("update submission status: %w", err)
	}

	telemetry.RunsFinished.WithLabelValues(string(record.FinalStatus)).Inc()

	o.logger.Info("submission completed",
		"submission_id", sub.ID,
		"order_id", record.OrderID,
		"final_status", record.FinalStatus,
		"duration", sub.Duration(),
	)

	return nil
}

// failSubmission переводит сабмит в статус FAILED.
func (o *Orchestrator) failSubmission(ctx context.Context, state *RunState, execErr error) error {
	sub := state.Submission
	state.SetPhase(PhaseFailed)

	sub.MarkFailed(execErr.Error())
	// См. completeSubmission: финализация не зависит от отмены ctx.
	if err := o.submissionRepo.Update(context.WithoutCancel(ctx), sub); err != nil {
		return fmt.Errorf("update submission to failed: %w", err)
	}

	telemetry.RunsFailed.Inc()

	o.logger.Warn("submission failed",
		"submission_id", sub.ID,
		"order_id", sub.OrderID,
		"error", execErr,
		"duration", sub.Duration(),
	)

	return fmt.Errorf("submission failed: %w", execErr)
}
