// Package reference генерирует уникальные ссылки платежей.
//
// Ссылка присваивается ровно один раз, до любого обращения к платёжному
// шлюзу, и служит ключом записи платежа, транзакции шлюза и последующего
// зачёта в членство.
package reference

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// New возвращает ссылку вида PAY-<unix-millis>-<8 hex символов>.
// Коллизии практически исключены, криптографическая стойкость не требуется.
func New() string {
	buf := make([]byte, 4)
	// rand.Read из crypto/rand не возвращает ошибку начиная с go1.24
	_, _ = rand.Read(buf)
	return fmt.Sprintf("PAY-%d-%s", time.Now().UnixMilli(), hex.EncodeToString(buf))
}
