package services

import (
	"errors"
	"fmt"
)

// Причины отказа элемента пакетной синхронизации.
const (
	ReasonValidation          = "ValidationError"
	ReasonUnsupportedPageType = "UnsupportedPageType"
	ReasonExternalUpdate      = "ExternalUpdateError"
	ReasonPersistence         = "PersistenceError"
)

// Кастомные ошибки сервисов. Вызывающий классифицирует их через errors.Is,
// исходная ошибка HubSpot остается доступной через errors.As.
var (
	ErrValidation          = errors.New("некорректный запрос")
	ErrAuth                = errors.New("доступ запрещен")
	ErrExternalFetch       = errors.New("не удалось получить данные из HubSpot")
	ErrExternalUpdate      = errors.New("не удалось обновить страницу в HubSpot")
	ErrSpreadsheet         = errors.New("ошибка Google Sheets")
	ErrPersistence         = errors.New("ошибка хранилища")
	ErrUnsupportedPageType = errors.New("неподдерживаемый тип страницы")
	ErrSnapshotNotFound    = errors.New("снимок страницы не найден")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// wrap связывает сентинел сервиса с исходной ошибкой.
func wrap(sentinel, err error) error {
	return fmt.Errorf("%w: %w", sentinel, err)
}
