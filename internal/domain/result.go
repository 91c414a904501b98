package domain

import "time"

// Имена шагов pipeline. Шаги регистрируются в steps.Registry
// под этими именами; результаты помечаются ими в processedBy.
const (
	StepProcessOrder      = "process-order"
	StepInventoryCheck    = "inventory-check"
	StepPaymentProcessing = "payment-processing"
	StepStoreOrder        = "store-order"
)

// Статусы, которые шаги проставляют в свои результаты.
const (
	// OrderStatusProcessed — заказ нормализован шагом process-order.
	OrderStatusProcessed = "processed"

	// InventoryStatusChecked — проверка склада выполнена.
	InventoryStatusChecked = "checked"

	// PaymentApproved — платёж одобрен.
	PaymentApproved = "approved"

	// PaymentDeclined — платёж отклонён.
	PaymentDeclined = "declined"
)

// ProcessResult — результат шага process-order: нормализованный заказ.
//
// Все отсутствующие во входных данных поля заполнены значениями
// по умолчанию. Именно эта структура подаётся на вход обеим
// параллельным веткам.
type ProcessResult struct {
	OrderID      string  `json:"orderId"`
	CustomerName string  `json:"customerName"`
	Items        []Item  `json:"items"`
	TotalAmount  float64 `json:"totalAmount"`

	// Status — всегда "processed" после успешного шага.
	Status string `json:"status,omitempty"`

	// ProcessedAt — время вызова шага.
	ProcessedAt time.Time `json:"processedAt,omitzero"`

	// ProcessedBy — идентификатор шага ("process-order").
	ProcessedBy string `json:"processedBy,omitempty"`
}

// Order возвращает исходные поля заказа без метаданных шага.
func (p *ProcessResult) Order() Order {
	return Order{
		OrderID:      p.OrderID,
		CustomerName: p.CustomerName,
		Items:        p.Items,
		TotalAmount:  p.TotalAmount,
	}
}

// StockItem — позиция заказа с результатом проверки склада.
type StockItem struct {
	ID  string `json:"id"`
	Qty int    `json:"qty"`

	// InStock — есть ли товар в наличии.
	InStock bool `json:"inStock"`

	// StockLevel — остаток на складе, [10, 109].
	StockLevel int `json:"stockLevel"`
}

// InventoryResult — результат шага inventory-check.
//
// Zero value используется как результат упавшей/просроченной ветки:
// merge подставляет пустую структуру вместо прерывания run.
type InventoryResult struct {
	OrderID string `json:"orderId,omitempty"`

	// Status — "checked" при успешной проверке.
	Status string `json:"inventoryStatus,omitempty"`

	// Stock — по одной записи на каждую позицию заказа, в исходном порядке.
	Stock []StockItem `json:"availableStock,omitempty"`

	CheckedAt time.Time `json:"checkedAt,omitzero"`
	CheckedBy string    `json:"checkedBy,omitempty"`
}

// IsZero возвращает true для пустого (defaulted) результата ветки.
func (r *InventoryResult) IsZero() bool {
	return r.OrderID == "" && r.Status == "" && len(r.Stock) == 0
}

// PaymentResult — результат шага payment-processing.
//
// Zero value — результат упавшей/просроченной ветки. Пустой
// PaymentStatus не равен "approved", поэтому такой run завершается
// записью с finalStatus "failed".
type PaymentResult struct {
	OrderID     string  `json:"orderId,omitempty"`
	TotalAmount float64 `json:"totalAmount,omitempty"`

	// PaymentStatus — "approved" или "declined".
	PaymentStatus string `json:"paymentStatus,omitempty"`

	// TransactionID — сгенерированный id транзакции ("txn-<unix-millis>").
	TransactionID string `json:"transactionId,omitempty"`

	// PaymentMethod — всегда "credit_card".
	PaymentMethod string `json:"paymentMethod,omitempty"`

	ProcessedAt time.Time `json:"processedAt,omitzero"`
	ProcessedBy string    `json:"processedBy,omitempty"`
}

// IsApproved возвращает true, если платёж одобрен.
func (r *PaymentResult) IsApproved() bool {
	return r.PaymentStatus == PaymentApproved
}

// BranchResults — упорядоченная пара результатов параллельных веток.
//
// Порядок веток — инвариант merge: инвентарь всегда первый, платёж
// всегда второй. Пара типизирована (а не индексируемая коллекция),
// чтобы исключить перестановку веток при рефакторинге.
type BranchResults struct {
	// Inventory — результат ветки inventory-check (позиция 0).
	Inventory InventoryResult

	// Payment — результат ветки payment-processing (позиция 1).
	Payment PaymentResult
}
