// Package steps содержит реализации шагов order pipeline.
//
// # Обзор
//
// Шаг — именованная единица работы. Pipeline фиксированный, шагов
// ровно четыре:
//
//   - process-order        — нормализация сабмита (process.go)
//   - inventory-check      — проверка склада, ветка 0 (inventory.go)
//   - payment-processing   — обработка платежа, ветка 1 (payment.go)
//   - store-order          — запись OrderRecord в хранилище (store.go)
//
// # Интерфейс Step
//
// Все шаги реализуют интерфейс Step:
//
//	type Step interface {
//	    Name() string
//	    Execute(ctx context.Context, p *Payload) (*Result, error)
//	}
//
// Payload — типизированный вход: какое поле заполнено, определяется
// шагом (сабмит для process-order, нормализованный заказ для веток,
// готовая запись для store-order). Result — типизированный выход.
// Динамических map-пейлоадов нет: каждая стадия имеет явную структуру.
//
// # Таймауты
//
// Orchestrator выполняет шаги через Run, который навешивает
// step-level таймаут (по умолчанию 30s). Превышение — ErrStepTimeout,
// отмена родительского контекста — ErrStepCancelled. Шаги обязаны
// проверять ctx.Done() для graceful shutdown.
//
// # Случайность
//
// inventory-check и payment-processing симулируют внешние системы:
// вероятностные исходы (0.9 "в наличии", 0.95 "approved") берутся из
// инжектируемого Rand. Тесты подставляют детерминированный источник
// или стаб с фиксированной последовательностью — от wall-clock
// энтропии ничего не зависит.
//
// # Registry
//
// Registry — реестр шагов по имени:
//
//	registry := steps.DefaultRegistry(store, nil)
//	step, err := registry.Get(domain.StepPaymentProcessing)
//
// Retry-логики в шагах нет: каждый вызов — одна попытка, политика
// повторов принадлежит вызывающему.
package steps
