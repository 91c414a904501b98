// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений в очереди
//   - consumer.go   — потребление событий order.pending из orders.pending
//
// Типы сообщений:
//   - order.pending — новый сабмит заказа ожидает обработки
//
// Exchanges:
//   - orderline.orders — события заказов
//   - orderline.dlq    — dead letter queue
package mq
