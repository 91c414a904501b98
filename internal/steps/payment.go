package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/shaiso/Orderline/internal/domain"
)

const (
	// declineThreshold — доля отклонённых платежей: 5%.
	declineThreshold = 0.05

	// paymentMethod — единственный поддерживаемый метод оплаты.
	paymentMethod = "credit_card"
)

// PaymentStep — шаг payment-processing: симуляция платёжного шлюза.
//
// Одобряет платёж с вероятностью 95%, генерирует id транзакции
// вида "txn-<unix-millis>".
type PaymentStep struct {
	rnd Rand
	now func() time.Time
}

// NewPaymentStep создаёт новый PaymentStep.
// Если rnd == nil, используется SystemRand().
func NewPaymentStep(rnd Rand) *PaymentStep {
	if rnd == nil {
		rnd = SystemRand()
	}
	return &PaymentStep{rnd: rnd, now: time.Now}
}

// Name возвращает имя шага.
func (s *PaymentStep) Name() string {
	return domain.StepPaymentProcessing
}

// Execute выполняет обработку платежа.
func (s *PaymentStep) Execute(ctx context.Context, p *Payload) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrStepCancelled, ctx.Err())
	default:
	}

	if p == nil || p.Order == nil {
		return nil, fmt.Errorf("%w: %s requires a processed order", ErrInvalidPayload, s.Name())
	}

	order := p.Order
	now := s.now()

	status := domain.PaymentDeclined
	if s.rnd.Float64() > declineThreshold {
		status = domain.PaymentApproved
	}

	return &Result{
		Payment: &domain.PaymentResult{
			OrderID:       order.OrderID,
			TotalAmount:   order.TotalAmount,
			PaymentStatus: status,
			TransactionID: fmt.Sprintf("txn-%d", now.UnixMilli()),
			PaymentMethod: paymentMethod,
			ProcessedAt:   now,
			ProcessedBy:   s.Name(),
		},
	}, nil
}
