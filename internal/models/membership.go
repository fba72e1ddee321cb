package models

import "time"

// Статусы членства. IsActive хранимым полем не является:
// активность всегда вычисляется из Status и ExpiresAt.
const (
	MembershipStatusActive    = "active"
	MembershipStatusInactive  = "inactive"
	MembershipStatusSuspended = "suspended"
	MembershipStatusExpired   = "expired"
)

// Membership представляет запись о членстве: одна запись на пользователя.
type Membership struct {
	UserUID          string    `json:"user_uid"`          // Идентификатор владельца записи
	Type             string    `json:"type"`              // Категория членства: full, associate, student, fellow
	Status           string    `json:"status"`            // Статус: active, inactive, suspended, expired
	MembershipNumber string    `json:"membership_number"` // Номер членства вида <PREFIX><YEAR><NNN>
	StartDate        time.Time `json:"start_date"`        // Дата начала членства
	ExpiresAt        time.Time `json:"expires_at"`        // Дата истечения членства
	DurationMonths   int       `json:"duration_months"`   // Оплаченный срок в месяцах
	PaymentReference string    `json:"payment_reference"` // Ссылка на платёж, оплативший запись
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// MembershipStatusView — ответ на запрос статуса: запись плюс вычисленная активность.
type MembershipStatusView struct {
	Membership *Membership `json:"membership"`
	IsActive   bool        `json:"is_active"`
}

// DummyMembershipCreate используется для приёма данных о новом членстве из JSON-запроса.
type DummyMembershipCreate struct {
	Type             string `json:"type" validate:"required,oneof=full associate student fellow"`
	DurationMonths   int    `json:"duration_months" validate:"required,gte=1,lte=12"`
	PaymentReference string `json:"payment_reference" validate:"omitempty,max=100"`
}

// DummyMembershipExtend используется для приёма срока продления из JSON-запроса.
type DummyMembershipExtend struct {
	Months int `json:"months" validate:"required,gte=1,lte=12"`
}

// DummyMembershipStatusUpdate используется администратором для смены статуса.
type DummyMembershipStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=active inactive suspended expired"`
}
