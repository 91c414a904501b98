package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewOrderCmd создаёт группу команд для работы с заказами.
func NewOrderCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Submit orders and browse history",
	}

	cmd.AddCommand(
		newOrderSubmitCmd(clientFn, outputFn),
		newOrderListCmd(clientFn, outputFn),
		newOrderStatusCmd(clientFn, outputFn),
	)

	return cmd
}

func newOrderSubmitCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var (
		orderID  string
		customer string
		amount   float64
		items    []string
		file     string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit an order for processing",
		Long: `Submit an order for asynchronous processing.

All fields are optional: missing values are filled in by the workflow.
Items are passed as repeated --item id:qty flags:

  orderline order submit --customer "Alice" --amount 100 --item A:2 --item B:1

Alternatively the whole order can be read from a JSON file:

  orderline order submit --file order.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			var input OrderInput
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("failed to read order file: %w", err)
				}
				if err := json.Unmarshal(data, &input); err != nil {
					return fmt.Errorf("order file is not a valid order: %w", err)
				}
			} else {
				parsed, err := parseItems(items)
				if err != nil {
					return err
				}
				input = OrderInput{
					OrderID:      orderID,
					CustomerName: customer,
					Items:        parsed,
					TotalAmount:  amount,
				}
			}

			resp, err := client.SubmitOrder(input)
			if err != nil {
				return err
			}

			out.Submitted(resp)
			return nil
		},
	}

	cmd.Flags().StringVar(&orderID, "order-id", "", "Order id (generated if absent)")
	cmd.Flags().StringVar(&customer, "customer", "", "Customer name")
	cmd.Flags().Float64Var(&amount, "amount", 0, "Total amount")
	cmd.Flags().StringArrayVar(&items, "item", nil, "Order item as id:qty (repeatable)")
	cmd.Flags().StringVar(&file, "file", "", "Path to order JSON file (overrides inline flags)")

	return cmd
}

func newOrderListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent orders, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			resp, err := client.ListOrders(limit)
			if err != nil {
				return err
			}

			out.Orders(resp)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of orders (default: server limit)")

	return cmd
}

func newOrderStatusCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "status <execution-id>",
		Short: "Show the status of a submitted order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			exec, err := client.GetExecution(args[0])
			if err != nil {
				return err
			}

			out.Execution(exec)
			return nil
		},
	}
}

// parseItems разбирает флаги вида "id:qty".
func parseItems(raw []string) ([]OrderItem, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	items := make([]OrderItem, 0, len(raw))
	for _, s := range raw {
		id, qtyStr, ok := strings.Cut(s, ":")
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid item %q, expected id:qty", s)
		}

		qty, err := strconv.Atoi(qtyStr)
		if err != nil || qty < 1 {
			return nil, fmt.Errorf("invalid quantity in item %q", s)
		}

		items = append(items, OrderItem{ID: id, Qty: qty})
	}
	return items, nil
}
