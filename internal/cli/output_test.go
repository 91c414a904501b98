package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func newTestOutput(jsonMode bool) (*Output, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &Output{jsonMode: jsonMode, w: &out, errW: &errOut}, &out, &errOut
}

func sampleOrders() *OrdersResponse {
	resp := &OrdersResponse{
		Message: "Orders retrieved successfully",
		Orders: []OrderEntry{
			{OrderID: "order-1", FinalStatus: "completed", ProcessedAt: "2025-06-01T12:00:00Z", FileName: "order-1.json", Size: 512},
			{OrderID: "order-2", FinalStatus: "failed", ProcessedAt: "2025-06-01T11:00:00Z", FileName: "order-2.json", Size: 2048},
		},
		TotalCount: 5,
	}
	resp.Pagination = &struct {
		Limit   int  `json:"limit"`
		HasMore bool `json:"hasMore"`
	}{Limit: 2, HasMore: true}
	return resp
}

func TestOutput_OrdersTable(t *testing.T) {
	o, out, errOut := newTestOutput(false)

	o.Orders(sampleOrders())

	table := out.String()
	for _, want := range []string{"ORDER", "FINAL STATUS", "order-1", "completed", "order-2", "failed", "512 B", "2.0 KB"} {
		if !strings.Contains(table, want) {
			t.Errorf("table output missing %q:\n%s", want, table)
		}
	}
	if !strings.Contains(errOut.String(), "Showing 2 of 5 orders") {
		t.Errorf("expected has-more hint on stderr, got %q", errOut.String())
	}
}

func TestOutput_OrdersEmpty(t *testing.T) {
	o, out, errOut := newTestOutput(false)

	o.Orders(&OrdersResponse{Message: "No orders found"})

	if out.Len() != 0 {
		t.Errorf("empty listing must not render a table, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "No orders found") {
		t.Errorf("expected server message on stderr, got %q", errOut.String())
	}
}

func TestOutput_OrdersJSONMode(t *testing.T) {
	o, out, _ := newTestOutput(true)

	o.Orders(sampleOrders())

	var decoded OrdersResponse
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("json mode output is not valid JSON: %v", err)
	}
	if len(decoded.Orders) != 2 || decoded.TotalCount != 5 {
		t.Errorf("json output lost fields: %+v", decoded)
	}
}

func TestOutput_Submitted(t *testing.T) {
	o, out, errOut := newTestOutput(false)

	o.Submitted(&SubmitResponse{
		ExecutionID:    "exec-1",
		StartedAt:      "2025-06-01T12:00:00Z",
		InputData:      OrderInput{OrderID: "order-1"},
		WorkflowStatus: "started",
	})

	if !strings.Contains(errOut.String(), "Order submitted: order-1 (execution exec-1)") {
		t.Errorf("expected confirmation on stderr, got %q", errOut.String())
	}
	for _, want := range []string{"EXECUTION", "exec-1", "order-1", "started"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("table output missing %q:\n%s", want, out.String())
		}
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
	}

	for _, tt := range tests {
		if got := formatSize(tt.size); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}
