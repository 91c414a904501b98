package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/shaiso/Orderline/internal/domain"
)

// defaultCustomerName подставляется, если клиент не передал имя.
const defaultCustomerName = "Unknown Customer"

// ProcessStep — шаг process-order: нормализация сабмита.
//
// Заполняет отсутствующие поля значениями по умолчанию
// (orderId "order-<unix-millis>", customerName "Unknown Customer",
// пустой список items, нулевая сумма), проставляет status "processed"
// и время вызова. Исходный сабмит не мутируется.
type ProcessStep struct {
	// now инжектируется в тестах для детерминированных таймстемпов.
	now func() time.Time
}

// NewProcessStep создаёт новый ProcessStep.
func NewProcessStep() *ProcessStep {
	return &ProcessStep{now: time.Now}
}

// Name возвращает имя шага.
func (s *ProcessStep) Name() string {
	return domain.StepProcessOrder
}

// Execute нормализует сабмит заказа.
func (s *ProcessStep) Execute(ctx context.Context, p *Payload) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrStepCancelled, ctx.Err())
	default:
	}

	if p == nil || p.Submission == nil {
		return nil, fmt.Errorf("%w: %s requires a submission", ErrInvalidPayload, s.Name())
	}

	in := p.Submission
	if in.TotalAmount < 0 {
		return nil, fmt.Errorf("%w: %s: negative totalAmount %v",
			ErrInvalidPayload, s.Name(), in.TotalAmount)
	}

	now := s.now()

	order := domain.ProcessResult{
		OrderID:      in.OrderID,
		CustomerName: in.CustomerName,
		Items:        in.Items,
		TotalAmount:  in.TotalAmount,
		Status:       domain.OrderStatusProcessed,
		ProcessedAt:  now,
		ProcessedBy:  s.Name(),
	}

	if order.OrderID == "" {
		order.OrderID = domain.NewOrderID(now)
	}
	if order.CustomerName == "" {
		order.CustomerName = defaultCustomerName
	}
	if order.Items == nil {
		order.Items = []domain.Item{}
	}

	return &Result{Order: &order}, nil
}
