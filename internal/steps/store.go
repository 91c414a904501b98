package steps

import (
	"context"
	"fmt"

	"github.com/shaiso/Orderline/internal/domain"
)

// RecordStore — хранилище записей заказов, в которое пишет store-order.
//
// Put сохраняет запись под ключом и возвращает дескриптор.
// Семантика last-write-wins: повторная запись по тому же ключу
// перезаписывает тело.
type RecordStore interface {
	Put(ctx context.Context, key string, rec *domain.OrderRecord) (*domain.StoredObject, error)
}

// StoreStep — шаг store-order: персистенция финальной записи.
//
// В отличие от параллельных веток ошибка этого шага фатальна для
// run: без сохранённой записи результат workflow потерян.
type StoreStep struct {
	store RecordStore
}

// NewStoreStep создаёт новый StoreStep.
func NewStoreStep(store RecordStore) *StoreStep {
	return &StoreStep{store: store}
}

// Name возвращает имя шага.
func (s *StoreStep) Name() string {
	return domain.StepStoreOrder
}

// Execute записывает OrderRecord под ключом "orders/<orderId>.json".
func (s *StoreStep) Execute(ctx context.Context, p *Payload) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrStepCancelled, ctx.Err())
	default:
	}

	if p == nil || p.Record == nil {
		return nil, fmt.Errorf("%w: %s requires a merged record", ErrInvalidPayload, s.Name())
	}

	rec := p.Record
	key := domain.RecordKey(rec.OrderID)

	loc, err := s.store.Put(ctx, key, rec)
	if err != nil {
		return nil, fmt.Errorf("store record %s: %w", key, err)
	}

	return &Result{Location: loc}, nil
}
