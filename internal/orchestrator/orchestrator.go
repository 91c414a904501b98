package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Orderline/internal/domain"
	"github.com/shaiso/Orderline/internal/mq"
	"github.com/shaiso/Orderline/internal/repo"
	"github.com/shaiso/Orderline/internal/steps"
)

// Default configuration values.
const (
	defaultPollInterval = 10 * time.Second
	defaultBatchSize    = 100

	// defaultRequeueAfter — порог, после которого RUNNING сабмит считается
	// брошенным упавшей репликой. Должен с запасом превышать худшую
	// длительность run (три шаговых таймаута), иначе живой run будет
	// перезапущен второй репликой.
	defaultRequeueAfter = 5 * time.Minute
)

// submissionStore — операции над сабмитами, нужные orchestrator'у.
// Реализуется repo.SubmissionRepo.
type submissionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	Update(ctx context.Context, sub *domain.Submission) error
	ListPending(ctx context.Context, limit int) ([]domain.Submission, error)
	RequeueStale(ctx context.Context, staleBefore time.Time) (int64, error)
}

// Orchestrator управляет обработкой сабмитов заказов.
//
// Orchestrator — центральный компонент системы, который:
//   - Получает новые сабмиты из очереди RabbitMQ (event-driven)
//   - Периодически проверяет pending сабмиты в БД (polling fallback)
//   - Проводит каждый заказ через workflow (Executor)
//   - Финализирует сабмиты (COMPLETED/FAILED)
type Orchestrator struct {
	// Repositories
	submissionRepo submissionStore

	// Workflow
	executor *Executor

	// MQ
	conn *mq.Connection

	// Active submissions — сабмиты в процессе обработки (submissionID → state)
	activeRuns map[uuid.UUID]*RunState
	mu         sync.RWMutex

	// Consumers
	orderConsumer *mq.Consumer

	// Configuration
	pollInterval time.Duration
	batchSize    int
	requeueAfter time.Duration

	// Lifecycle
	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// Config — конфигурация Orchestrator.
type Config struct {
	// Repositories
	SubmissionRepo *repo.SubmissionRepo

	// Workflow
	Registry    *steps.Registry
	StepTimeout time.Duration // таймаут одного шага (default: steps.DefaultTimeout)

	// MQ. Conn == nil — polling-only режим.
	Conn *mq.Connection

	// Polling configuration
	PollInterval time.Duration // интервал polling (default: 10s)
	BatchSize    int           // количество сабмитов за один poll (default: 100)
	RequeueAfter time.Duration // порог requeue зависших RUNNING (default: 5m)

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Orchestrator.
func New(cfg Config) *Orchestrator {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	requeueAfter := cfg.RequeueAfter
	if requeueAfter <= 0 {
		requeueAfter = defaultRequeueAfter
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	executor := NewExecutor(ExecutorConfig{
		Registry:    cfg.Registry,
		StepTimeout: cfg.StepTimeout,
		Logger:      logger,
	})

	return &Orchestrator{
		submissionRepo: cfg.SubmissionRepo,
		executor:       executor,
		conn:           cfg.Conn,
		activeRuns:     make(map[uuid.UUID]*RunState),
		pollInterval:   pollInterval,
		batchSize:      batchSize,
		requeueAfter:   requeueAfter,
		logger:         logger,
	}
}

// Start запускает Orchestrator.
//
// Запускает:
//   - Consumer для orders.pending (если есть соединение с RabbitMQ)
//   - Polling горутину для fallback
func (o *Orchestrator) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	o.cancelFunc = cancel

	o.logger.Info("starting orchestrator",
		"poll_interval", o.pollInterval,
		"batch_size", o.batchSize,
	)

	if o.conn != nil {
		o.orderConsumer = mq.NewConsumer(o.conn, o.logger, mq.ConsumerConfig{
			Handler:  o.handleOrderPending,
			Prefetch: 10,
		})

		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			if err := o.orderConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				o.logger.Error("order consumer error", "error", err)
			}
		}()
	} else {
		o.logger.Warn("no RabbitMQ connection, running in polling-only mode")
	}

	// Запускаем polling
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.pollLoop(ctx)
	}()

	o.logger.Info("orchestrator started")
	return nil
}

// Stop останавливает Orchestrator.
func (o *Orchestrator) Stop() {
	o.stoppedMu.Lock()
	o.stopped = true
	o.stoppedMu.Unlock()

	o.logger.Info("stopping orchestrator...")

	if o.cancelFunc != nil {
		o.cancelFunc()
	}

	if o.orderConsumer != nil {
		o.orderConsumer.Stop()
	}

	// Ждём завершения горутин
	o.wg.Wait()

	o.logger.Info("orchestrator stopped",
		"active_submissions", len(o.activeRuns),
	)
}

// IsStopped проверяет, остановлен ли Orchestrator.
func (o *Orchestrator) IsStopped() bool {
	o.stoppedMu.RLock()
	defer o.stoppedMu.RUnlock()
	return o.stopped
}

// pollLoop — цикл polling для fallback.
func (o *Orchestrator) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	// Первый poll сразу при старте (подхватываем сабмиты созданные пока были выключены)
	o.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.poll(ctx)
		}
	}
}

// poll выполняет один цикл polling.
//
// Перед выборкой PENDING возвращает в очередь сабмиты, зависшие в RUNNING
// дольше requeueAfter: без этого сабмит упавшей реплики остался бы
// RUNNING навсегда.
func (o *Orchestrator) poll(ctx context.Context) {
	requeued, err := o.submissionRepo.RequeueStale(ctx, time.Now().Add(-o.requeueAfter))
	if err != nil {
		o.logger.Error("failed to requeue stale submissions", "error", err)
	} else if requeued > 0 {
		o.logger.Warn("requeued stale running submissions", "count", requeued)
	}

	subs, err := o.submissionRepo.ListPending(ctx, o.batchSize)
	if err != nil {
		o.logger.Error("failed to list pending submissions", "error", err)
		return
	}

	if len(subs) == 0 {
		return
	}

	o.logger.Debug("poll found pending submissions", "count", len(subs))

	for i := range subs {
		sub := &subs[i]

		// Проверяем, не обрабатывается ли уже
		if o.isActive(sub.ID) {
			continue
		}

		if err := o.processSubmission(ctx, sub.ID); err != nil {
			o.logger.Error("failed to process submission from poll",
				"submission_id", sub.ID,
				"error", err,
			)
		}
	}
}

// isActive проверяет, находится ли сабмит в обработке.
func (o *Orchestrator) isActive(id uuid.UUID) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, exists := o.activeRuns[id]
	return exists
}

// addActive добавляет сабмит в активные.
func (o *Orchestrator) addActive(state *RunState) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.activeRuns[state.SubmissionID()]; exists {
		return ErrSubmissionAlreadyActive
	}

	o.activeRuns[state.SubmissionID()] = state
	return nil
}

// removeActive удаляет сабмит из активных.
func (o *Orchestrator) removeActive(id uuid.UUID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.activeRuns, id)
}

// ActiveCount возвращает количество активных сабмитов.
func (o *Orchestrator) ActiveCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.activeRuns)
}

// GetActiveStats возвращает статистику по активному сабмиту.
func (o *Orchestrator) GetActiveStats(id uuid.UUID) (RunStats, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	state, exists := o.activeRuns[id]
	if !exists {
		return RunStats{}, false
	}

	return state.Stats(), true
}
