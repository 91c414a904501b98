// Package cli реализует инструмент командной строки Orderline.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с Orderline API.
// Работает через HTTP, не импортирует внутренние пакеты системы.
// CLI используется для сабмита заказов и просмотра истории.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Orderline API. Инкапсулирует HTTP-запросы,
// парсинг ответов и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	orders, err := client.ListOrders(10)
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: orderline order list --json | jq .
//
// ## Commands
//
// Cobra-команды:
//   - order: submit, list, status
//
// Группа создаётся через фабричную функцию (NewOrderCmd),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
