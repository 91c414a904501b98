package domain

import (
	"fmt"
	"time"
)

// Order — заказ, принятый на обработку.
//
// Создаётся при сабмите через API/CLI. После того как orchestrator
// принял заказ, он становится неизменяемым: шаги pipeline порождают
// производные структуры (ProcessResult, OrderRecord), но никогда
// не мутируют исходный Order.
type Order struct {
	// OrderID — идентификатор заказа.
	// Если не задан при сабмите, генерируется как "order-<unix-millis>".
	OrderID string `json:"orderId,omitempty"`

	// CustomerName — имя клиента.
	CustomerName string `json:"customerName,omitempty"`

	// Items — позиции заказа в порядке, заданном клиентом.
	Items []Item `json:"items,omitempty"`

	// TotalAmount — сумма заказа. Неотрицательная.
	TotalAmount float64 `json:"totalAmount,omitempty"`
}

// Item — одна позиция заказа.
type Item struct {
	// ID — идентификатор товара.
	ID string `json:"id"`

	// Qty — количество.
	Qty int `json:"qty"`
}

// NewOrderID генерирует идентификатор заказа по умолчанию.
// Формат: "order-<unix-millis>".
func NewOrderID(now time.Time) string {
	return fmt.Sprintf("order-%d", now.UnixMilli())
}
