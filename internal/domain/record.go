package domain

import (
	"fmt"
	"time"
)

// FinalStatus — итоговый статус заказа в OrderRecord.
//
// Вычисляется merge'ем исключительно по результату платёжной ветки:
// "completed" тогда и только тогда, когда paymentStatus == "approved".
// Результат проверки склада на итоговый статус не влияет.
type FinalStatus string

const (
	// FinalStatusCompleted — платёж одобрен.
	FinalStatusCompleted FinalStatus = "completed"

	// FinalStatusFailed — платёж отклонён или ветка платежа не дала результата.
	FinalStatusFailed FinalStatus = "failed"
)

// OrderRecord — финальная, неизменяемая запись об обработанном заказе.
//
// Склеивается из нормализованного заказа и результатов обеих веток,
// записывается в хранилище один раз и после этого не обновляется.
// Повторный сабмит с тем же orderId перезаписывает запись целиком
// (last-write-wins), версионирования нет.
type OrderRecord struct {
	OrderID string `json:"orderId"`

	// OrderDetails — результат шага process-order.
	OrderDetails ProcessResult `json:"orderDetails"`

	// InventoryCheck — результат ветки inventory-check
	// (пустая структура, если ветка упала или просрочилась).
	InventoryCheck InventoryResult `json:"inventoryCheck"`

	// PaymentProcessing — результат ветки payment-processing
	// (пустая структура, если ветка упала или просрочилась).
	PaymentProcessing PaymentResult `json:"paymentProcessing"`

	// FinalStatus — "completed" | "failed", только по платежу.
	FinalStatus FinalStatus `json:"finalStatus"`

	// ProcessedAt — время merge.
	ProcessedAt time.Time `json:"processedAt"`

	// ProcessedBy — идентификатор компонента, собравшего запись.
	ProcessedBy string `json:"processedBy,omitempty"`
}

// IsCompleted возвращает true, если заказ завершился успешно.
func (r *OrderRecord) IsCompleted() bool {
	return r.FinalStatus == FinalStatusCompleted
}

// RecordKey возвращает логический путь записи в хранилище:
// "orders/<orderId>.json".
func RecordKey(orderID string) string {
	return fmt.Sprintf("orders/%s.json", orderID)
}

// RecordPrefix — префикс, под которым лежат все записи заказов.
const RecordPrefix = "orders/"

// StoredObject — дескриптор сохранённой записи.
//
// Возвращается шагом store-order и листингом хранилища. Описывает
// место (bucket/key) и содержимое (etag — дайджест тела, size).
type StoredObject struct {
	// Bucket — логическое имя хранилища.
	Bucket string `json:"bucket"`

	// Key — путь записи, "orders/<orderId>.json".
	Key string `json:"key"`

	// ETag — hex-дайджест сериализованного тела записи.
	ETag string `json:"etag,omitempty"`

	// Size — размер тела в байтах.
	Size int64 `json:"size,omitempty"`

	// LastModified — время последней записи по этому ключу.
	LastModified time.Time `json:"lastModified,omitzero"`
}

// URI возвращает адрес объекта вида "store://<bucket>/<key>".
func (o *StoredObject) URI() string {
	return fmt.Sprintf("store://%s/%s", o.Bucket, o.Key)
}
