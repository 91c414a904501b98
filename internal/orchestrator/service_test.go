package orchestrator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Orderline/internal/domain"
	"github.com/shaiso/Orderline/internal/repo"
	"github.com/shaiso/Orderline/internal/steps"
)

// fakeSubmissionStore — in-memory submissionStore для тестов сервисного цикла.
// Update возвращает ошибку отменённого контекста, как это сделал бы драйвер БД.
type fakeSubmissionStore struct {
	mu             sync.Mutex
	subs           map[uuid.UUID]*domain.Submission
	requeueCutoffs []time.Time
}

func newFakeSubmissionStore(subs ...*domain.Submission) *fakeSubmissionStore {
	store := &fakeSubmissionStore{subs: make(map[uuid.UUID]*domain.Submission)}
	for _, sub := range subs {
		copied := *sub
		store.subs[sub.ID] = &copied
	}
	return store
}

func (s *fakeSubmissionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *sub
	return &copied, nil
}

func (s *fakeSubmissionStore) Update(ctx context.Context, sub *domain.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[sub.ID]; !ok {
		return repo.ErrNotFound
	}
	copied := *sub
	s.subs[sub.ID] = &copied
	return nil
}

func (s *fakeSubmissionStore) ListPending(ctx context.Context, limit int) ([]domain.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Submission
	for _, sub := range s.subs {
		if sub.Status == domain.SubmissionPending && len(out) < limit {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (s *fakeSubmissionStore) RequeueStale(ctx context.Context, staleBefore time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requeueCutoffs = append(s.requeueCutoffs, staleBefore)

	var count int64
	for _, sub := range s.subs {
		if sub.Status == domain.SubmissionRunning && sub.StartedAt != nil && sub.StartedAt.Before(staleBefore) {
			sub.Status = domain.SubmissionPending
			sub.StartedAt = nil
			count++
		}
	}
	return count, nil
}

func (s *fakeSubmissionStore) status(id uuid.UUID) domain.SubmissionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs[id].Status
}

func newTestOrchestrator(t *testing.T, store *fakeSubmissionStore, stepList ...steps.Step) *Orchestrator {
	t.Helper()

	registry := steps.NewRegistry()
	for _, st := range stepList {
		registry.Register(st)
	}

	o := New(Config{
		Registry:     registry,
		StepTimeout:  time.Second,
		RequeueAfter: 5 * time.Minute,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	o.submissionRepo = store
	return o
}

func runningSubmission(startedAgo time.Duration) *domain.Submission {
	startedAt := time.Now().Add(-startedAgo)
	return &domain.Submission{
		ID:        uuid.New(),
		OrderID:   "order-1",
		Input:     *testOrder(),
		Status:    domain.SubmissionRunning,
		StartedAt: &startedAt,
		CreatedAt: startedAt.Add(-time.Second),
	}
}

// Сабмит, брошенный в RUNNING упавшей репликой, возвращается
// в очередь и доводится до терминального статуса.
func TestPoll_RequeuesStaleRunning(t *testing.T) {
	sub := runningSubmission(10 * time.Minute)
	store := newFakeSubmissionStore(sub)

	o := newTestOrchestrator(t, store,
		okProcess(), okInventory(), paymentWithStatus(domain.PaymentApproved), okStore())

	o.poll(context.Background())

	if len(store.requeueCutoffs) != 1 {
		t.Fatalf("expected one requeue call, got %d", len(store.requeueCutoffs))
	}
	wantCutoff := time.Now().Add(-5 * time.Minute)
	if diff := store.requeueCutoffs[0].Sub(wantCutoff); diff < -time.Second || diff > time.Second {
		t.Errorf("requeue cutoff %v too far from now-RequeueAfter", store.requeueCutoffs[0])
	}

	if got := store.status(sub.ID); got != domain.SubmissionCompleted {
		t.Errorf("expected requeued submission to finish COMPLETED, got %s", got)
	}
}

// Свежий RUNNING сабмит (живой run другой реплики) не трогаем.
func TestPoll_LeavesFreshRunningAlone(t *testing.T) {
	sub := runningSubmission(time.Minute)
	store := newFakeSubmissionStore(sub)

	process := okProcess()
	o := newTestOrchestrator(t, store,
		process, okInventory(), paymentWithStatus(domain.PaymentApproved), okStore())

	o.poll(context.Background())

	if got := store.status(sub.ID); got != domain.SubmissionRunning {
		t.Errorf("fresh RUNNING submission must stay RUNNING, got %s", got)
	}
	if process.calls.Load() != 0 {
		t.Errorf("fresh RUNNING submission must not be re-executed, process called %d times", process.calls.Load())
	}
}

// Финализация пишет терминальный статус даже после отмены контекста
// (остановка сервиса посреди run).
func TestFailSubmission_FinalizesAfterCancel(t *testing.T) {
	sub := runningSubmission(time.Second)
	store := newFakeSubmissionStore(sub)
	o := newTestOrchestrator(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state := NewRunState(sub)
	err := o.failSubmission(ctx, state, errors.New("workflow cancelled"))
	if err == nil {
		t.Fatal("expected wrapped execution error")
	}

	if got := store.status(sub.ID); got != domain.SubmissionFailed {
		t.Errorf("expected FAILED to be persisted despite cancelled ctx, got %s", got)
	}
}

func TestCompleteSubmission_FinalizesAfterCancel(t *testing.T) {
	sub := runningSubmission(time.Second)
	store := newFakeSubmissionStore(sub)
	o := newTestOrchestrator(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state := NewRunState(sub)
	record := &domain.OrderRecord{OrderID: "order-1", FinalStatus: domain.FinalStatusCompleted}
	if err := o.completeSubmission(ctx, state, record); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := store.status(sub.ID); got != domain.SubmissionCompleted {
		t.Errorf("expected COMPLETED to be persisted despite cancelled ctx, got %s", got)
	}
}
