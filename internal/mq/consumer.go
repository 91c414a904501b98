package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// OrderHandler — обработчик события order.pending.
// Возвращает error, если сабмит не удалось обработать
// (сообщение вернётся в очередь для retry).
type OrderHandler func(ctx context.Context, submissionID uuid.UUID) error

// Consumer потребляет события order.pending из очереди orders.pending
// и передаёт submissionID обработчику (Orchestrator).
//
// Это единственный consumer системы: очередь и тип сообщения
// зафиксированы. Сообщения подтверждаются вручную:
//   - обработчик вернул nil   → ack
//   - обработчик вернул error → nack с requeue
//   - нечитаемое тело или чужой тип → nack в DLQ
type Consumer struct {
	conn     *Connection
	logger   *slog.Logger
	handler  OrderHandler
	prefetch int

	cancelFunc context.CancelFunc
}

// ConsumerConfig — конфигурация Consumer.
type ConsumerConfig struct {
	// Handler — обработчик событий order.pending.
	Handler OrderHandler

	// Prefetch — количество сообщений для предварительной загрузки.
	Prefetch int
}

// NewConsumer создаёт новый Consumer.
func NewConsumer(conn *Connection, logger *slog.Logger, cfg ConsumerConfig) *Consumer {
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}

	return &Consumer{
		conn:     conn,
		logger:   logger,
		handler:  cfg.Handler,
		prefetch: prefetch,
	}
}

// Start запускает потребление событий.
func (c *Consumer) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	c.cancelFunc = cancel

	return c.consume(ctx)
}

// consume — основной цикл потребления.
func (c *Consumer) consume(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		deliveries, err := c.setupConsume()
		if err != nil {
			c.logger.Error("failed to setup consume", "queue", QueueOrdersPending, "error", err)
			// Ждём переподключения
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.conn.ReconnectNotify():
				c.logger.Info("reconnected, restarting consumer", "queue", QueueOrdersPending)
				continue
			}
		}

		c.logger.Info("order consumer started", "queue", QueueOrdersPending)

		if err := c.processDeliveries(ctx, deliveries); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("deliveries channel closed, reconnecting", "queue", QueueOrdersPending)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.conn.ReconnectNotify():
				continue
			}
		}
	}
}

// setupConsume настраивает канал и начинает потребление из orders.pending.
func (c *Consumer) setupConsume() (<-chan amqp.Delivery, error) {
	ch := c.conn.Channel()
	if ch == nil {
		return nil, fmt.Errorf("no channel available")
	}

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := ch.Consume(
		string(QueueOrdersPending), // queue
		"",                         // consumer tag (auto-generated)
		false,                      // auto-ack (мы ack вручную)
		false,                      // exclusive
		false,                      // no-local
		false,                      // no-wait
		nil,                        // args
	)
	if err != nil {
		return nil, fmt.Errorf("consume: %w", err)
	}

	return deliveries, nil
}

// processDeliveries обрабатывает сообщения из канала.
func (c *Consumer) processDeliveries(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case raw, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("deliveries channel closed")
			}

			c.handleDelivery(ctx, raw)
		}
	}
}

// handleDelivery обрабатывает одно событие order.pending.
func (c *Consumer) handleDelivery(ctx context.Context, raw amqp.Delivery) {
	submissionID, err := decodeOrderPending(raw.Body)
	if err != nil {
		c.logger.Error("dropping unreadable order.pending message",
			"queue", QueueOrdersPending,
			"error", err,
			"body", string(raw.Body),
		)
		// Яд — отправляем в DLQ
		raw.Nack(false, false)
		return
	}

	c.logger.Debug("received order.pending event",
		"queue", QueueOrdersPending,
		"submission_id", submissionID,
	)

	if err := c.handler(ctx, submissionID); err != nil {
		c.logger.Error("order handler failed",
			"queue", QueueOrdersPending,
			"submission_id", submissionID,
			"error", err,
		)
		// Ошибка обработки — возвращаем в очередь для retry
		// (если retry исчерпаны, DLQ настроен на уровне очереди)
		raw.Nack(false, true)
		return
	}

	raw.Ack(false)
}

// decodeOrderPending извлекает submissionID из тела сообщения.
// Возвращает error для нечитаемых сообщений, чужих типов и пустого id.
func decodeOrderPending(body []byte) (uuid.UUID, error) {
	var msg struct {
		Type    MessageType `json:"type"`
		Payload struct {
			SubmissionID uuid.UUID `json:"submission_id"`
		} `json:"payload"`
	}

	if err := json.Unmarshal(body, &msg); err != nil {
		return uuid.Nil, fmt.Errorf("unmarshal message: %w", err)
	}
	if msg.Type != MessageTypeOrderPending {
		return uuid.Nil, fmt.Errorf("unexpected message type %q", msg.Type)
	}
	if msg.Payload.SubmissionID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("empty submission_id")
	}

	return msg.Payload.SubmissionID, nil
}

// Stop останавливает consumer.
func (c *Consumer) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
}
