package steps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shaiso/Orderline/internal/domain"
)

// DefaultTimeout — step-level таймаут по умолчанию.
const DefaultTimeout = 30 * time.Second

// Ошибки шагов.
var (
	// ErrUnknownStep — шаг не найден в реестре.
	ErrUnknownStep = errors.New("step not found")

	// ErrInvalidPayload — шагу передан payload без нужного поля.
	ErrInvalidPayload = errors.New("invalid step payload")

	// ErrStepTimeout — шаг превысил таймаут.
	ErrStepTimeout = errors.New("step execution timeout")

	// ErrStepCancelled — выполнение шага отменено.
	ErrStepCancelled = errors.New("step execution cancelled")
)

// Step — интерфейс шага pipeline.
type Step interface {
	// Name возвращает имя шага (domain.Step*).
	Name() string

	// Execute выполняет шаг и возвращает результат.
	// Шаг должен проверять ctx.Done() для graceful shutdown.
	Execute(ctx context.Context, p *Payload) (*Result, error)
}

// Payload — вход шага. Заполненное поле определяется шагом;
// остальные поля nil.
type Payload struct {
	// Submission — сырой сабмит заказа (process-order).
	Submission *domain.Order

	// Order — нормализованный заказ (inventory-check, payment-processing).
	// Обе ветки получают один и тот же выход process-order.
	Order *domain.ProcessResult

	// Record — финальная запись (store-order).
	Record *domain.OrderRecord
}

// Result — выход шага. Заполненное поле определяется шагом.
type Result struct {
	// Order — нормализованный заказ (process-order).
	Order *domain.ProcessResult

	// Inventory — результат проверки склада (inventory-check).
	Inventory *domain.InventoryResult

	// Payment — результат платежа (payment-processing).
	Payment *domain.PaymentResult

	// Location — дескриптор сохранённой записи (store-order).
	Location *domain.StoredObject
}

// Run выполняет шаг с step-level таймаутом.
//
// Если timeout <= 0, используется DefaultTimeout. Шаг запускается в
// отдельной горутине: даже шаг, игнорирующий контекст, не заблокирует
// вызывающего дольше таймаута (его горутина дорабатывает в фоне,
// результат отбрасывается).
//
// Возвращает:
//   - ErrStepTimeout  — шаг не уложился в таймаут
//   - ErrStepCancelled — родительский контекст отменён
func Run(ctx context.Context, step Step, p *Payload, timeout time.Duration) (*Result, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		res *Result
		err error
	}

	// Буфер 1: горутина не протечёт, если вызывающий уже ушёл по таймауту.
	done := make(chan outcome, 1)

	go func() {
		res, err := step.Execute(stepCtx, p)
		done <- outcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil && errors.Is(out.err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrStepTimeout, step.Name())
		}
		return out.res, out.err

	case <-stepCtx.Done():
		if ctx.Err() != nil {
			// Отменён родительский контекст, а не step-level дедлайн.
			return nil, fmt.Errorf("%w: %s: %v", ErrStepCancelled, step.Name(), ctx.Err())
		}
		return nil, fmt.Errorf("%w: %s", ErrStepTimeout, step.Name())
	}
}
