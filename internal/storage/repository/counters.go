package repository

import (
	"context"
	"fmt"
)

// NextMembershipSequence атомарно выдаёт следующий порядковый номер членства
// для пары (префикс, год). Счётчик хранится строкой в membership_counters и
// инкрементируется одним upsert-запросом, поэтому конкурентные регистрации
// не могут получить одинаковый номер.
func (s *Storage) NextMembershipSequence(ctx context.Context, prefix string, year int) (int, error) {
	const op = "storage.NextMembershipSequence"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO membership_counters (prefix, year, value)
			  VALUES ($1, $2, 1)
			  ON CONFLICT (prefix, year) DO UPDATE
			  SET value = membership_counters.value + 1
			  RETURNING value`
	var value int
	if err := s.DB.QueryRowContext(ctx, query, prefix, year).Scan(&value); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return value, nil
}
