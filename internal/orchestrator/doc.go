// Package orchestrator управляет обработкой сабмитов заказов.
//
// Orchestrator отвечает за:
//   - Получение новых сабмитов из очереди RabbitMQ (polling fallback через БД)
//   - Выполнение workflow: process-order → (inventory-check ∥ payment-processing)
//     → merge-results → store-order
//   - Деградацию упавших веток до пустого результата
//   - Финализацию сабмита (COMPLETED/FAILED)
//
// Orchestrator — это "мозг" системы, который координирует выполнение.
package orchestrator
