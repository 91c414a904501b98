// Package retention удаляет устаревшие записи заказов.
//
// Purger по cron-расписанию находит записи старше настроенного
// срока хранения и удаляет их из хранилища. Аналог политики
// жизненного цикла объектного хранилища: история заказов не
// растёт бесконечно.
package retention
