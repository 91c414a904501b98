package orchestrator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shaiso/Orderline/internal/domain"
	"github.com/shaiso/Orderline/internal/steps"
)

// fakeStep — шаг с настраиваемым поведением для тестов Executor.
type fakeStep struct {
	name   string
	delay  time.Duration
	err    error
	result *steps.Result
	calls  atomic.Int32
}

func (f *fakeStep) Name() string { return f.name }

func (f *fakeStep) Execute(ctx context.Context, _ *steps.Payload) (*steps.Result, error) {
	f.calls.Add(1)

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func okProcess() *fakeStep {
	return &fakeStep{
		name: domain.StepProcessOrder,
		result: &steps.Result{Order: &domain.ProcessResult{
			OrderID:      "order-1",
			CustomerName: "Alice",
			Items:        []domain.Item{{ID: "item-1", Qty: 2}},
			TotalAmount:  50,
			Status:       domain.OrderStatusProcessed,
			ProcessedBy:  domain.StepProcessOrder,
		}},
	}
}

func okInventory() *fakeStep {
	return &fakeStep{
		name: domain.StepInventoryCheck,
		result: &steps.Result{Inventory: &domain.InventoryResult{
			OrderID: "order-1",
			Status:  domain.InventoryStatusChecked,
			Stock:   []domain.StockItem{{ID: "item-1", Qty: 2, InStock: true, StockLevel: 42}},
		}},
	}
}

func paymentWithStatus(status string) *fakeStep {
	return &fakeStep{
		name: domain.StepPaymentProcessing,
		result: &steps.Result{Payment: &domain.PaymentResult{
			OrderID:       "order-1",
			TotalAmount:   50,
			PaymentStatus: status,
			TransactionID: "txn-1",
			PaymentMethod: "credit_card",
		}},
	}
}

func okStore() *fakeStep {
	return &fakeStep{
		name:   domain.StepStoreOrder,
		result: &steps.Result{},
	}
}

func newTestExecutor(t *testing.T, timeout time.Duration, stepList ...steps.Step) *Executor {
	t.Helper()

	registry := steps.NewRegistry()
	for _, s := range stepList {
		registry.Register(s)
	}

	return NewExecutor(ExecutorConfig{
		Registry:    registry,
		StepTimeout: timeout,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func testOrder() *domain.Order {
	return &domain.Order{
		OrderID:      "order-1",
		CustomerName: "Alice",
		Items:        []domain.Item{{ID: "item-1", Qty: 2}},
		TotalAmount:  50,
	}
}

func TestExecutor_Execute_Completed(t *testing.T) {
	store := okStore()
	exec := newTestExecutor(t, time.Second,
		okProcess(), okInventory(), paymentWithStatus(domain.PaymentApproved), store)

	record, err := exec.Execute(context.Background(), testOrder(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.FinalStatus != domain.FinalStatusCompleted {
		t.Errorf("final status = %q, want %q", record.FinalStatus, domain.FinalStatusCompleted)
	}
	if record.OrderID != "order-1" {
		t.Errorf("order id = %q, want order-1", record.OrderID)
	}
	if record.InventoryCheck.IsZero() {
		t.Error("inventory result should be populated")
	}
	if store.calls.Load() != 1 {
		t.Errorf("store called %d times, want 1", store.calls.Load())
	}
}

func TestExecutor_Execute_DeclinedPayment(t *testing.T) {
	store := okStore()
	exec := newTestExecutor(t, time.Second,
		okProcess(), okInventory(), paymentWithStatus(domain.PaymentDeclined), store)

	record, err := exec.Execute(context.Background(), testOrder(), nil)
	if err != nil {
		t.Fatalf("declined payment is not a run-level error, got: %v", err)
	}

	if record.FinalStatus != domain.FinalStatusFailed {
		t.Errorf("final status = %q, want %q", record.FinalStatus, domain.FinalStatusFailed)
	}
	// Запись сохраняется и для отклонённого платежа.
	if store.calls.Load() != 1 {
		t.Errorf("store called %d times, want 1", store.calls.Load())
	}
}

func TestExecutor_Execute_ProcessError(t *testing.T) {
	inventory := okInventory()
	payment := paymentWithStatus(domain.PaymentApproved)
	store := okStore()

	process := &fakeStep{
		name: domain.StepProcessOrder,
		err:  errors.New("invalid order"),
	}

	exec := newTestExecutor(t, time.Second, process, inventory, payment, store)

	_, err := exec.Execute(context.Background(), testOrder(), nil)
	if !errors.Is(err, ErrProcessingFailed) {
		t.Fatalf("expected ErrProcessingFailed, got: %v", err)
	}

	// Ветки не запускаются, если process-order упал.
	if inventory.calls.Load() != 0 {
		t.Errorf("inventory called %d times, want 0", inventory.calls.Load())
	}
	if payment.calls.Load() != 0 {
		t.Errorf("payment called %d times, want 0", payment.calls.Load())
	}
	if store.calls.Load() != 0 {
		t.Errorf("store called %d times, want 0", store.calls.Load())
	}
}

func TestExecutor_Execute_InventoryTimeout(t *testing.T) {
	slowInventory := okInventory()
	slowInventory.delay = 200 * time.Millisecond

	exec := newTestExecutor(t, 20*time.Millisecond,
		okProcess(), slowInventory, paymentWithStatus(domain.PaymentApproved), okStore())

	record, err := exec.Execute(context.Background(), testOrder(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Просроченная ветка деградирует до пустого результата,
	// финальный статус определяется только платежом.
	if !record.InventoryCheck.IsZero() {
		t.Error("inventory result should be empty after branch timeout")
	}
	if record.FinalStatus != domain.FinalStatusCompleted {
		t.Errorf("final status = %q, want %q", record.FinalStatus, domain.FinalStatusCompleted)
	}
}

func TestExecutor_Execute_PaymentBranchError(t *testing.T) {
	payment := &fakeStep{
		name: domain.StepPaymentProcessing,
		err:  errors.New("gateway unavailable"),
	}

	exec := newTestExecutor(t, time.Second,
		okProcess(), okInventory(), payment, okStore())

	record, err := exec.Execute(context.Background(), testOrder(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Пустой платёж — это не approved, запись получает finalStatus failed.
	if record.PaymentProcessing.IsApproved() {
		t.Error("payment should not be approved after branch failure")
	}
	if record.FinalStatus != domain.FinalStatusFailed {
		t.Errorf("final status = %q, want %q", record.FinalStatus, domain.FinalStatusFailed)
	}
}

func TestExecutor_Execute_PersistenceFailure(t *testing.T) {
	store := &fakeStep{
		name: domain.StepStoreOrder,
		err:  errors.New("database unavailable"),
	}

	exec := newTestExecutor(t, time.Second,
		okProcess(), okInventory(), paymentWithStatus(domain.PaymentApproved), store)

	_, err := exec.Execute(context.Background(), testOrder(), nil)
	if !errors.Is(err, ErrPersistenceFailed) {
		t.Fatalf("expected ErrPersistenceFailed, got: %v", err)
	}
}

func TestExecutor_Execute_Cancelled(t *testing.T) {
	slowInventory := okInventory()
	slowInventory.delay = 200 * time.Millisecond
	slowPayment := paymentWithStatus(domain.PaymentApproved)
	slowPayment.delay = 200 * time.Millisecond
	store := okStore()

	exec := newTestExecutor(t, time.Second,
		okProcess(), slowInventory, slowPayment, store)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := exec.Execute(ctx, testOrder(), nil)
	if err == nil {
		t.Fatal("expected error after cancellation")
	}

	// После отмены запись не сохраняется.
	if store.calls.Load() != 0 {
		t.Errorf("store called %d times, want 0", store.calls.Load())
	}
}

func TestExecutor_Execute_PhaseTracking(t *testing.T) {
	sub := &domain.Submission{OrderID: "order-1", Status: domain.SubmissionPending}
	state := NewRunState(sub)

	exec := newTestExecutor(t, time.Second,
		okProcess(), okInventory(), paymentWithStatus(domain.PaymentApproved), okStore())

	if _, err := exec.Execute(context.Background(), testOrder(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Последняя фаза, которую выставляет Executor — персистенция;
	// терминальные фазы проставляет Orchestrator.
	if got := state.Phase(); got != PhasePersisting {
		t.Errorf("phase = %q, want %q", got, PhasePersisting)
	}
}
