package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// OrderItem — позиция заказа.
type OrderItem struct {
	ID  string `json:"id"`
	Qty int    `json:"qty"`
}

// OrderInput — заказ в том виде, в каком его принял gateway.
type OrderInput struct {
	OrderID      string      `json:"orderId,omitempty"`
	CustomerName string      `json:"customerName,omitempty"`
	Items        []OrderItem `json:"items,omitempty"`
	TotalAmount  float64     `json:"totalAmount,omitempty"`
}

// SubmitResponse — ответ POST /orders.
type SubmitResponse struct {
	Message        string     `json:"message"`
	ExecutionID    string     `json:"executionId"`
	StartedAt      string     `json:"startedAt"`
	InputData      OrderInput `json:"inputData"`
	WorkflowStatus string     `json:"workflowStatus"`
}

// OrderEntry — одна запись в листинге заказов.
type OrderEntry struct {
	OrderID      string         `json:"orderId"`
	OrderDetails map[string]any `json:"orderDetails"`
	FinalStatus  string         `json:"finalStatus"`
	ProcessedAt  string         `json:"processedAt"`
	FileName     string         `json:"fileName"`
	LastModified string         `json:"lastModified"`
	Size         int64          `json:"size"`
}

// OrdersResponse — ответ GET /orders.
type OrdersResponse struct {
	Message     string       `json:"message"`
	Orders      []OrderEntry `json:"orders"`
	TotalCount  int          `json:"totalCount"`
	RetrievedAt string       `json:"retrievedAt"`
	Pagination  *struct {
		Limit   int  `json:"limit"`
		HasMore bool `json:"hasMore"`
	} `json:"pagination,omitempty"`
}

// ExecutionResponse — ответ GET /executions/{id}.
type ExecutionResponse struct {
	ExecutionID string `json:"executionId"`
	OrderID     string `json:"orderId"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	RecordKey   string `json:"recordKey,omitempty"`
	StartedAt   string `json:"startedAt,omitempty"`
	FinishedAt  string `json:"finishedAt,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

// errorResponse — тело ответа на ошибку.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// --- Client ---

// Client — HTTP-клиент для Orderline API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SubmitOrder отправляет заказ на обработку.
func (c *Client) SubmitOrder(order OrderInput) (*SubmitResponse, error) {
	var out SubmitResponse
	if err := c.doJSON(http.MethodPost, "/orders", order, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders возвращает последние заказы. limit <= 0 — лимит сервера.
func (c *Client) ListOrders(limit int) (*OrdersResponse, error) {
	path := "/orders"
	if limit > 0 {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(limit))
		path += "?" + params.Encode()
	}

	var out OrdersResponse
	if err := c.doJSON(http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetExecution возвращает статус сабмита по executionId.
func (c *Client) GetExecution(id string) (*ExecutionResponse, error) {
	var out ExecutionResponse
	if err := c.doJSON(http.MethodGet, "/executions/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- HTTP helpers ---

func (c *Client) doJSON(method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil || er.Message == "" {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	if er.Error != "" {
		return fmt.Errorf("%s: %s", er.Message, er.Error)
	}
	return fmt.Errorf("%s", er.Message)
}
