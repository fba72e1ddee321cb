// Package sl содержит вспомогательные функции для структурированного
// логирования через slog.
package sl

import "log/slog"

// Err возвращает атрибут с ключом "error" и текстом ошибки.
// Вызов с nil безопасен и даёт пустое значение, поэтому Err можно
// использовать там, где ошибка опциональна.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
