package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Orderline/internal/domain"
)

// Order DTOs

// SubmitOrderRequest — тело POST /orders. Все поля опциональны:
// отсутствующие значения заполняет шаг process-order.
type SubmitOrderRequest struct {
	OrderID      string        `json:"orderId,omitempty"`
	CustomerName string        `json:"customerName,omitempty"`
	Items        []domain.Item `json:"items,omitempty"`
	TotalAmount  float64       `json:"totalAmount,omitempty"`
}

// Order конвертирует запрос в domain.Order.
func (r *SubmitOrderRequest) Order() domain.Order {
	return domain.Order{
		OrderID:      r.OrderID,
		CustomerName: r.CustomerName,
		Items:        r.Items,
		TotalAmount:  r.TotalAmount,
	}
}

// SubmitOrderResponse — ответ на принятый сабмит.
// Обработка асинхронная: executionId позволяет позже найти запись.
type SubmitOrderResponse struct {
	Message        string       `json:"message"`
	ExecutionID    uuid.UUID    `json:"executionId"`
	StartedAt      time.Time    `json:"startedAt"`
	InputData      domain.Order `json:"inputData"`
	WorkflowStatus string       `json:"workflowStatus"`
}

// OrderListEntry — одна запись в ответе GET /orders: тело записи
// плюс метаданные хранилища.
type OrderListEntry struct {
	domain.OrderRecord

	FileName     string    `json:"fileName"`
	LastModified time.Time `json:"lastModified"`
	Size         int64     `json:"size"`
}

// Pagination — блок пагинации листинга.
type Pagination struct {
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}

// ListOrdersResponse — ответ GET /orders.
type ListOrdersResponse struct {
	Message     string           `json:"message"`
	Orders      []OrderListEntry `json:"orders"`
	TotalCount  int              `json:"totalCount"`
	RetrievedAt time.Time        `json:"retrievedAt"`
	Pagination  *Pagination      `json:"pagination,omitempty"`
}

// Execution DTOs

// ExecutionResponse — ответ GET /executions/{id}: статус сабмита.
type ExecutionResponse struct {
	ExecutionID uuid.UUID               `json:"executionId"`
	OrderID     string                  `json:"orderId"`
	Status      domain.SubmissionStatus `json:"status"`
	Error       string                  `json:"error,omitempty"`
	RecordKey   string                  `json:"recordKey,omitempty"`
	StartedAt   *time.Time              `json:"startedAt,omitempty"`
	FinishedAt  *time.Time              `json:"finishedAt,omitempty"`
	CreatedAt   time.Time               `json:"createdAt"`
}

// ExecutionFromDomain конвертирует domain.Submission в ExecutionResponse.
func ExecutionFromDomain(s *domain.Submission) ExecutionResponse {
	return ExecutionResponse{
		ExecutionID: s.ID,
		OrderID:     s.OrderID,
		Status:      s.Status,
		Error:       s.Error,
		RecordKey:   s.RecordKey,
		StartedAt:   s.StartedAt,
		FinishedAt:  s.FinishedAt,
		CreatedAt:   s.CreatedAt,
	}
}
