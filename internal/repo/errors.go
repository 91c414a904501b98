package repo

import "errors"

// Общие ошибки репозиториев.
var (
	// ErrNotFound — запись не найдена в БД.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists — запись уже существует (конфликт уникальности).
	ErrAlreadyExists = errors.New("already exists")

	// ErrCorruptRecord — тело записи не разбирается как OrderRecord.
	// При листинге такая запись пропускается, а не роняет весь запрос.
	ErrCorruptRecord = errors.New("corrupt record body")
)
