// Package smtp реализует SMTP транспорт для внешней доставки уведомлений.
package smtp

import "io"

// Client описывает минимальный набор операций SMTP-сессии,
// используемый сервисом отправки. Позволяет подменять клиента в тестах.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}
