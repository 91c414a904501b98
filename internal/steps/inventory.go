package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/shaiso/Orderline/internal/domain"
)

const (
	// outOfStockThreshold — доля "нет в наличии": 10%.
	outOfStockThreshold = 0.1

	// stockLevelMin / stockLevelSpan — остаток равномерно в [10, 109].
	stockLevelMin  = 10
	stockLevelSpan = 100
)

// InventoryStep — шаг inventory-check: симуляция проверки склада.
//
// Для каждой позиции заказа генерирует флаг наличия (90% "в наличии")
// и остаток на складе. Порядок позиций сохраняется.
type InventoryStep struct {
	rnd Rand
	now func() time.Time
}

// NewInventoryStep создаёт новый InventoryStep.
// Если rnd == nil, используется SystemRand().
func NewInventoryStep(rnd Rand) *InventoryStep {
	if rnd == nil {
		rnd = SystemRand()
	}
	return &InventoryStep{rnd: rnd, now: time.Now}
}

// Name возвращает имя шага.
func (s *InventoryStep) Name() string {
	return domain.StepInventoryCheck
}

// Execute выполняет проверку склада.
func (s *InventoryStep) Execute(ctx context.Context, p *Payload) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrStepCancelled, ctx.Err())
	default:
	}

	if p == nil || p.Order == nil {
		return nil, fmt.Errorf("%w: %s requires a processed order", ErrInvalidPayload, s.Name())
	}

	order := p.Order

	stock := make([]domain.StockItem, 0, len(order.Items))
	for _, item := range order.Items {
		stock = append(stock, domain.StockItem{
			ID:         item.ID,
			Qty:        item.Qty,
			InStock:    s.rnd.Float64() > outOfStockThreshold,
			StockLevel: s.rnd.IntN(stockLevelSpan) + stockLevelMin,
		})
	}

	return &Result{
		Inventory: &domain.InventoryResult{
			OrderID:   order.OrderID,
			Status:    domain.InventoryStatusChecked,
			Stock:     stock,
			CheckedAt: s.now(),
			CheckedBy: s.Name(),
		},
	}, nil
}
