// Package api содержит HTTP API сервер (gateway).
//
// Структура:
//   - handler.go       — Handler с DI (репозитории, publisher, logger)
//   - routes.go        — регистрация маршрутов
//   - middleware.go    — middleware (logging, recovery)
//   - response.go      — JSON-ответы и обработка ошибок
//   - dto.go           — Data Transfer Objects (request/response)
//   - order_handler.go — обработчики для /orders и /executions
//
// Gateway принимает сабмиты заказов (POST /orders, fire-and-forget:
// обработку выполняет orchestrator асинхронно) и отдаёт историю
// заказов из хранилища (GET /orders).
package api
