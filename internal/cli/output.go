package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
)

// Output отвечает за весь вывод CLI: таблицы по умолчанию,
// полное тело ответа API в режиме --json.
type Output struct {
	jsonMode bool
	w        io.Writer // stdout для данных
	errW     io.Writer // stderr для сообщений
}

// NewOutput создаёт Output. Если jsonMode=true, данные выводятся в JSON.
func NewOutput(jsonMode bool) *Output {
	return &Output{
		jsonMode: jsonMode,
		w:        os.Stdout,
		errW:     os.Stderr,
	}
}

// Submitted выводит результат отправки заказа.
func (o *Output) Submitted(resp *SubmitResponse) {
	if o.jsonMode {
		o.printJSON(resp)
		return
	}

	o.Success(fmt.Sprintf("Order submitted: %s (execution %s)",
		resp.InputData.OrderID, resp.ExecutionID))
	o.table(
		[]string{"EXECUTION", "ORDER", "STATUS", "STARTED"},
		[][]string{{resp.ExecutionID, resp.InputData.OrderID, resp.WorkflowStatus, resp.StartedAt}},
	)
}

// Orders выводит листинг заказов, новые первыми.
func (o *Output) Orders(resp *OrdersResponse) {
	if o.jsonMode {
		o.printJSON(resp)
		return
	}

	if len(resp.Orders) == 0 {
		o.Success(resp.Message)
		return
	}

	rows := make([][]string, len(resp.Orders))
	for i, ord := range resp.Orders {
		rows[i] = []string{
			ord.OrderID,
			ord.FinalStatus,
			ord.ProcessedAt,
			ord.FileName,
			formatSize(ord.Size),
		}
	}
	o.table([]string{"ORDER", "FINAL STATUS", "PROCESSED", "FILE", "SIZE"}, rows)

	if resp.Pagination != nil && resp.Pagination.HasMore {
		o.Success(fmt.Sprintf("Showing %d of %d orders, use --limit for more",
			len(resp.Orders), resp.TotalCount))
	}
}

// Execution выводит статус одного сабмита.
func (o *Output) Execution(exec *ExecutionResponse) {
	if o.jsonMode {
		o.printJSON(exec)
		return
	}

	o.table(
		[]string{"EXECUTION", "ORDER", "STATUS", "RECORD", "ERROR"},
		[][]string{{exec.ExecutionID, exec.OrderID, exec.Status, exec.RecordKey, exec.Error}},
	)
}

// Success выводит сообщение об успехе в stderr.
func (o *Output) Success(msg string) {
	fmt.Fprintln(o.errW, msg)
}

// Error выводит сообщение об ошибке в stderr.
func (o *Output) Error(msg string) {
	fmt.Fprintln(o.errW, "Error: "+msg)
}

// table выводит данные в виде таблицы через tabwriter.
func (o *Output) table(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)

	// Заголовки
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	// Разделитель
	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	// Строки данных
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	tw.Flush()
}

// printJSON выводит данные в формате JSON с отступами.
func (o *Output) printJSON(v any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// formatSize форматирует размер записи в человекочитаемый вид.
func formatSize(size int64) string {
	const kb = 1024
	if size < kb {
		return strconv.FormatInt(size, 10) + " B"
	}
	return fmt.Sprintf("%.1f KB", float64(size)/kb)
}
