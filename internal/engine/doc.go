// Package engine содержит чистую логику слияния результатов pipeline.
//
// Включает:
//   - merge.go — склейка нормализованного заказа и результатов
//     параллельных веток в финальный OrderRecord
//
// Engine не имеет побочных эффектов и не знает про хранилище и
// очереди: Merge детерминирован и тестируется без orchestrator'а.
package engine
