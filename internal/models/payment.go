package models

import "time"

// Статусы платежа. Переход pending -> successful|failed|cancelled происходит
// ровно один раз, повторные подтверждения не создают второго членства.
const (
	PaymentStatusPending    = "pending"
	PaymentStatusSuccessful = "successful"
	PaymentStatusFailed     = "failed"
	PaymentStatusCancelled  = "cancelled"
)

// Payment представляет одну попытку оплаты членства.
// Reference генерируется до обращения к шлюзу, поэтому упавший между
// созданием записи и открытием виджета клиент оставляет восстановимую
// pending-запись.
type Payment struct {
	Reference      string     `json:"reference"`       // Уникальный идентификатор, генерируется сервером
	UserUID        string     `json:"user_uid"`        // Идентификатор плательщика
	Amount         int        `json:"amount"`          // Сумма в минимальных единицах валюты
	Currency       string     `json:"currency"`        // Валюта, например ZMW
	MembershipType string     `json:"membership_type"` // Оплачиваемая категория членства
	DurationMonths int        `json:"duration_months"` // Оплачиваемый срок в месяцах
	Status         string     `json:"status"`          // pending, successful, failed, cancelled
	LencoReference string     `json:"lenco_reference"` // Идентификатор транзакции на стороне шлюза
	Fee            string     `json:"fee"`             // Комиссия шлюза
	PaymentMethod  string     `json:"payment_method"`  // Способ оплаты: card, mobile-money
	Reconciled     bool       `json:"reconciled"`      // Платёж уже зачтён в членство
	CompletedAt    *time.Time `json:"completed_at"`    // Момент подтверждения шлюзом
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// DummyPaymentInit используется для приёма данных инициализации платежа из JSON-запроса.
type DummyPaymentInit struct {
	Amount         int    `json:"amount" validate:"required,gt=0"`
	Currency       string `json:"currency" validate:"required,len=3"`
	MembershipType string `json:"membership_type" validate:"required,oneof=full associate student fellow"`
	DurationMonths int    `json:"duration_months" validate:"required,gte=1,lte=12"`
}

// PaymentParams — параметры подключения платёжного виджета, возвращаемые клиенту.
// Секретный ключ шлюза клиенту не передаётся никогда.
type PaymentParams struct {
	PublicKey string `json:"public_key"`
	Reference string `json:"reference"`
	Amount    int    `json:"amount"`
	Currency  string `json:"currency"`
	Email     string `json:"email"`
}
