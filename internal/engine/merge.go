package engine

import (
	"errors"
	"time"

	"github.com/shaiso/Orderline/internal/domain"
)

// mergedBy проставляется в OrderRecord.ProcessedBy.
const mergedBy = "merge-results"

// Ошибки merge.
var (
	// ErrMissingOrderID — ни один из результатов не содержит orderId.
	ErrMissingOrderID = errors.New("merge: order id missing in all results")
)

// Merge склеивает результаты шагов в финальный OrderRecord.
//
// Чистая функция: одинаковый набор входов всегда даёт одинаковую
// запись (с точностью до processedAt, который передаётся снаружи).
//
// Правила:
//   - orderId берётся из processResult, иначе из inventory, иначе
//     из payment; если нигде нет — ErrMissingOrderID.
//   - finalStatus — "completed" тогда и только тогда, когда
//     paymentStatus == "approved". Результат проверки склада на
//     finalStatus НЕ влияет — это правило источника, воспроизводится
//     как есть.
//   - branches — типизированная пара: инвентарь первый, платёж второй.
//     Упавшая ветка приходит zero value и попадает в запись пустой
//     структурой.
func Merge(process domain.ProcessResult, branches domain.BranchResults, mergedAt time.Time) (*domain.OrderRecord, error) {
	orderID := resolveOrderID(process, branches)
	if orderID == "" {
		return nil, ErrMissingOrderID
	}

	status := domain.FinalStatusFailed
	if branches.Payment.IsApproved() {
		status = domain.FinalStatusCompleted
	}

	return &domain.OrderRecord{
		OrderID:           orderID,
		OrderDetails:      process,
		InventoryCheck:    branches.Inventory,
		PaymentProcessing: branches.Payment,
		FinalStatus:       status,
		ProcessedAt:       mergedAt,
		ProcessedBy:       mergedBy,
	}, nil
}

// resolveOrderID возвращает первый непустой orderId в порядке:
// process → inventory → payment.
func resolveOrderID(process domain.ProcessResult, branches domain.BranchResults) string {
	if process.OrderID != "" {
		return process.OrderID
	}
	if branches.Inventory.OrderID != "" {
		return branches.Inventory.OrderID
	}
	return branches.Payment.OrderID
}
