// Package month реализует календарную арифметику для сроков членства.
package month

import "time"

// AddMonths прибавляет months календарных месяцев к t с ограничением по
// последнему дню месяца: 31 января + 1 месяц = 28 (29) февраля, а не 2-3 марта,
// как при наивном time.AddDate. Часы, минуты и зона сохраняются.
func AddMonths(t time.Time, months int) time.Time {
	year, mon, day := t.Date()
	hour, min, sec := t.Clock()

	// Первое число целевого месяца: нормализация time.Date переносит
	// избыточные месяцы в год.
	first := time.Date(year, mon+time.Month(months), 1, hour, min, sec, t.Nanosecond(), t.Location())
	last := daysIn(first.Year(), first.Month())
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

// daysIn возвращает количество дней в месяце.
func daysIn(year int, mon time.Month) int {
	return time.Date(year, mon+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
