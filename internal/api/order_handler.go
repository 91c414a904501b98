package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/shaiso/Orderline/internal/domain"
	"github.com/shaiso/Orderline/internal/repo"
)

// Лимиты листинга заказов.
const (
	defaultListLimit = 10
	maxListLimit     = 50
)

// SubmitOrder обрабатывает POST /orders.
//
// Сабмит fire-and-forget: гейтвей сохраняет сабмит, публикует событие
// для orchestrator'а и сразу отвечает клиенту. По executionId из ответа
// можно позже получить статус и найти запись заказа.
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req SubmitOrderRequest

	// Пустое тело — валидный сабмит: все поля заполнят дефолты.
	body, err := io.ReadAll(r.Body)
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			BadRequest(w, "invalid JSON body")
			return
		}
	}

	// Если нет ни orderId, ни customerName — генерируем orderId здесь,
	// чтобы вернуть его клиенту в inputData.
	if req.OrderID == "" && req.CustomerName == "" {
		req.OrderID = domain.NewOrderID(h.now())
	}

	order := req.Order()

	sub := &domain.Submission{
		ID:        uuid.New(),
		OrderID:   order.OrderID,
		Input:     order,
		Status:    domain.SubmissionPending,
		CreatedAt: h.now(),
	}

	if err := h.submissions.Create(r.Context(), sub); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	// Публикация best-effort: при недоступном RabbitMQ сабмит
	// подхватит polling fallback orchestrator'а.
	if h.publisher != nil {
		if err := h.publisher.PublishOrderPending(r.Context(), sub.ID); err != nil {
			h.logger.Warn("failed to publish order.pending",
				"submission_id", sub.ID,
				"error", err,
			)
		}
	}

	h.logger.Info("order submitted",
		"submission_id", sub.ID,
		"order_id", sub.OrderID,
	)

	JSON(w, http.StatusOK, SubmitOrderResponse{
		Message:        "Order workflow started successfully",
		ExecutionID:    sub.ID,
		StartedAt:      sub.CreatedAt,
		InputData:      order,
		WorkflowStatus: "started",
	})
}

// ListOrders обрабатывает GET /orders.
//
// Возвращает не более limit последних записей (default 10), самые
// свежие первыми. Запись с нечитаемым телом пропускается: листинг
// отдаёт частичный результат вместо ошибки.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = min(n, maxListLimit)
	}

	objects, hasMore, err := h.records.List(r.Context(), domain.RecordPrefix, limit)
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	if len(objects) == 0 {
		JSON(w, http.StatusOK, ListOrdersResponse{
			Message:     "No orders found",
			Orders:      []OrderListEntry{},
			TotalCount:  0,
			RetrievedAt: h.now(),
		})
		return
	}

	totalCount, err := h.records.Count(r.Context(), domain.RecordPrefix)
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	orders := make([]OrderListEntry, 0, len(objects))
	for _, obj := range objects {
		rec, err := h.records.Get(r.Context(), obj.Key)
		if err != nil {
			// Битая запись не валит весь листинг.
			h.logger.Error("failed to read order record, skipping",
				"key", obj.Key,
				"error", err,
			)
			continue
		}

		orders = append(orders, OrderListEntry{
			OrderRecord:  *rec,
			FileName:     obj.Key,
			LastModified: obj.LastModified,
			Size:         obj.Size,
		})
	}

	JSON(w, http.StatusOK, ListOrdersResponse{
		Message:     "Orders retrieved successfully",
		Orders:      orders,
		TotalCount:  totalCount,
		RetrievedAt: h.now(),
		Pagination: &Pagination{
			Limit:   limit,
			HasMore: hasMore,
		},
	})
}

// GetExecution обрабатывает GET /executions/{id}: статус сабмита.
func (h *Handler) GetExecution(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid execution id")
		return
	}

	sub, err := h.submissions.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			NotFound(w, "execution not found")
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	JSON(w, http.StatusOK, ExecutionFromDomain(sub))
}
