package engine

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shaiso/Orderline/internal/domain"
)

var mergeTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func approvedPayment(orderID string) domain.PaymentResult {
	return domain.PaymentResult{
		OrderID:       orderID,
		TotalAmount:   100,
		PaymentStatus: domain.PaymentApproved,
		TransactionID: "txn-1",
		PaymentMethod: "credit_card",
		ProcessedAt:   mergeTime,
		ProcessedBy:   domain.StepPaymentProcessing,
	}
}

func checkedInventory(orderID string) domain.InventoryResult {
	return domain.InventoryResult{
		OrderID: orderID,
		Status:  domain.InventoryStatusChecked,
		Stock: []domain.StockItem{
			{ID: "A", Qty: 2, InStock: true, StockLevel: 50},
		},
		CheckedAt: mergeTime,
		CheckedBy: domain.StepInventoryCheck,
	}
}

func TestMerge_Completed(t *testing.T) {
	process := domain.ProcessResult{
		OrderID:      "order-1",
		CustomerName: "Alice",
		Items:        []domain.Item{{ID: "A", Qty: 2}},
		TotalAmount:  100,
		Status:       domain.OrderStatusProcessed,
	}
	branches := domain.BranchResults{
		Inventory: checkedInventory("order-1"),
		Payment:   approvedPayment("order-1"),
	}

	rec, err := Merge(process, branches, mergeTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.OrderID != "order-1" {
		t.Errorf("expected orderId order-1, got %s", rec.OrderID)
	}
	if rec.FinalStatus != domain.FinalStatusCompleted {
		t.Errorf("expected completed, got %s", rec.FinalStatus)
	}
	if rec.OrderDetails.TotalAmount != 100 {
		t.Errorf("expected totalAmount 100, got %v", rec.OrderDetails.TotalAmount)
	}
	if rec.ProcessedBy != mergedBy {
		t.Errorf("expected processedBy %s, got %s", mergedBy, rec.ProcessedBy)
	}
	if !rec.ProcessedAt.Equal(mergeTime) {
		t.Errorf("expected processedAt %v, got %v", mergeTime, rec.ProcessedAt)
	}
}

func TestMerge_DeclinedPayment(t *testing.T) {
	process := domain.ProcessResult{OrderID: "order-1", TotalAmount: 100}
	payment := approvedPayment("order-1")
	payment.PaymentStatus = domain.PaymentDeclined

	rec, err := Merge(process, domain.BranchResults{
		Inventory: checkedInventory("order-1"),
		Payment:   payment,
	}, mergeTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.FinalStatus != domain.FinalStatusFailed {
		t.Errorf("expected failed, got %s", rec.FinalStatus)
	}
}

// Инвентарь не влияет на finalStatus — бизнес-правило источника.
func TestMerge_FinalStatusIgnoresInventory(t *testing.T) {
	process := domain.ProcessResult{OrderID: "order-1"}

	inventories := map[string]domain.InventoryResult{
		"checked":      checkedInventory("order-1"),
		"empty":        {},
		"out of stock": {OrderID: "order-1", Status: domain.InventoryStatusChecked, Stock: []domain.StockItem{{ID: "A", InStock: false}}},
	}

	for name, inv := range inventories {
		rec, err := Merge(process, domain.BranchResults{
			Inventory: inv,
			Payment:   approvedPayment("order-1"),
		}, mergeTime)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if rec.FinalStatus != domain.FinalStatusCompleted {
			t.Errorf("%s: expected completed regardless of inventory, got %s", name, rec.FinalStatus)
		}
	}
}

func TestMerge_EmptyPaymentIsFailed(t *testing.T) {
	// Просроченная/упавшая платёжная ветка приходит zero value.
	rec, err := Merge(domain.ProcessResult{OrderID: "order-1"}, domain.BranchResults{
		Inventory: checkedInventory("order-1"),
	}, mergeTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.FinalStatus != domain.FinalStatusFailed {
		t.Errorf("expected failed for empty payment, got %s", rec.FinalStatus)
	}
	if rec.PaymentProcessing.IsApproved() {
		t.Error("empty payment must not be approved")
	}
}

func TestMerge_OrderIDResolutionOrder(t *testing.T) {
	tests := []struct {
		name      string
		process   string
		inventory string
		payment   string
		want      string
	}{
		{"process wins", "p", "i", "y", "p"},
		{"inventory fallback", "", "i", "y", "i"},
		{"payment fallback", "", "", "y", "y"},
	}

	for _, tt := range tests {
		rec, err := Merge(
			domain.ProcessResult{OrderID: tt.process},
			domain.BranchResults{
				Inventory: domain.InventoryResult{OrderID: tt.inventory},
				Payment:   domain.PaymentResult{OrderID: tt.payment},
			},
			mergeTime,
		)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if rec.OrderID != tt.want {
			t.Errorf("%s: expected orderId %s, got %s", tt.name, tt.want, rec.OrderID)
		}
	}
}

func TestMerge_MissingOrderID(t *testing.T) {
	_, err := Merge(domain.ProcessResult{}, domain.BranchResults{}, mergeTime)
	if !errors.Is(err, ErrMissingOrderID) {
		t.Errorf("expected ErrMissingOrderID, got %v", err)
	}
}

func TestMerge_Deterministic(t *testing.T) {
	process := domain.ProcessResult{
		OrderID:     "order-1",
		Items:       []domain.Item{{ID: "A", Qty: 2}, {ID: "B", Qty: 1}},
		TotalAmount: 100,
	}
	branches := domain.BranchResults{
		Inventory: checkedInventory("order-1"),
		Payment:   approvedPayment("order-1"),
	}

	first, err := Merge(process, branches, mergeTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Merge(process, branches, mergeTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("merge is not deterministic:\n%s\n%s", a, b)
	}
}
