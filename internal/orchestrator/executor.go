package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/Orderline/internal/domain"
	"github.com/shaiso/Orderline/internal/engine"
	"github.com/shaiso/Orderline/internal/steps"
	"github.com/shaiso/Orderline/internal/telemetry"
)

// Executor выполняет workflow обработки одного заказа:
//
//	process-order → (inventory-check ∥ payment-processing) → merge → store-order
//
// Семантика веток — лучшее из возможного: упавшая или не уложившаяся
// в таймаут ветка заменяется пустым результатом, workflow продолжается.
// Ошибки process-order и store-order фатальны для всего workflow.
type Executor struct {
	registry    *steps.Registry
	stepTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// ExecutorConfig — конфигурация Executor.
type ExecutorConfig struct {
	// Registry — реестр шагов workflow.
	Registry *steps.Registry

	// StepTimeout — таймаут одного шага (default: steps.DefaultTimeout).
	StepTimeout time.Duration

	// Logger.
	Logger *slog.Logger

	// Now — источник времени (для тестов). Default: time.Now.
	Now func() time.Time
}

// NewExecutor создаёт новый Executor.
func NewExecutor(cfg ExecutorConfig) *Executor {
	timeout := cfg.StepTimeout
	if timeout <= 0 {
		timeout = steps.DefaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Executor{
		registry:    cfg.Registry,
		stepTimeout: timeout,
		logger:      logger,
		now:         now,
	}
}

// Execute проводит заказ через весь workflow и возвращает итоговую запись.
//
// state может быть nil: тогда фазы не отслеживаются.
//
// Запись с finalStatus="failed" (отклонённый платёж) — УСПЕШНЫЙ исход
// workflow: Execute возвращает её без ошибки. Ошибка возвращается только
// когда запись не удалось получить или сохранить.
func (e *Executor) Execute(ctx context.Context, order *domain.Order, state *RunState) (*domain.OrderRecord, error) {
	// 1. process-order — фатален при ошибке.
	state.SetPhase(PhaseProcessing)

	procRes, err := e.runStep(ctx, domain.StepProcessOrder, &steps.Payload{Submission: order})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessingFailed, err)
	}
	processed := procRes.Order

	logger := e.logger.With("order_id", processed.OrderID)

	// 2. Параллельные ветки. Обе получают один и тот же выход process-order.
	state.SetPhase(PhaseBranches)

	branches := e.runBranches(ctx, logger, processed)

	// Отмена во время веток: результат недостоверен, запись не пишем.
	if ctx.Err() != nil {
		return nil, fmt.Errorf("workflow cancelled: %w", ctx.Err())
	}

	// 3. Детерминированный merge.
	state.SetPhase(PhaseMerging)

	record, err := engine.Merge(*processed, branches, e.now())
	if err != nil {
		return nil, fmt.Errorf("merge results: %w", err)
	}

	// 4. store-order — фатален при ошибке.
	state.SetPhase(PhasePersisting)

	if _, err := e.runStep(ctx, domain.StepStoreOrder, &steps.Payload{Record: record}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	return record, nil
}

// runBranches запускает inventory-check и payment-processing параллельно
// и собирает результаты. Ветка с ошибкой или таймаутом даёт пустой результат.
func (e *Executor) runBranches(ctx context.Context, logger *slog.Logger, processed *domain.ProcessResult) domain.BranchResults {
	var branches domain.BranchResults
	var wg sync.WaitGroup

	wg.Add(2)

	go func() {
		defer wg.Done()
		res, err := e.runStep(ctx, domain.StepInventoryCheck, &steps.Payload{Order: processed})
		if err != nil {
			e.degradeBranch(logger, domain.StepInventoryCheck, err)
			return
		}
		branches.Inventory = *res.Inventory
	}()

	go func() {
		defer wg.Done()
		res, err := e.runStep(ctx, domain.StepPaymentProcessing, &steps.Payload{Order: processed})
		if err != nil {
			e.degradeBranch(logger, domain.StepPaymentProcessing, err)
			return
		}
		branches.Payment = *res.Payment
	}()

	wg.Wait()

	return branches
}

// degradeBranch логирует деградацию ветки до пустого результата.
func (e *Executor) degradeBranch(logger *slog.Logger, stepName string, err error) {
	logger.Warn("branch degraded to empty result",
		"step", stepName,
		"error", err,
	)
	telemetry.BranchDegraded.WithLabelValues(stepName).Inc()
}

// runStep выполняет один шаг из реестра с таймаутом и метрикой длительности.
func (e *Executor) runStep(ctx context.Context, name string, p *steps.Payload) (*steps.Result, error) {
	step, err := e.registry.Get(name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := steps.Run(ctx, step, p, e.stepTimeout)
	telemetry.StepDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	return res, err
}
