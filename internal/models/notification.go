package models

import "time"

// Audience задаёт фильтр получателей рассылки.
const (
	AudienceAll      = "all"
	AudienceActive   = "active"
	AudienceExpired  = "expired"
	AudienceType     = "type"
	AudienceSpecific = "specific"
)

// Notification представляет одну запись уведомления у конкретного получателя.
type Notification struct {
	ID      int       `json:"id"`
	UserUID string    `json:"user_uid"`
	Type    string    `json:"type"`
	Subject string    `json:"subject"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
	IsRead  bool      `json:"is_read"`
}

// DummyNotificationSend используется для приёма административной рассылки из JSON-запроса.
// MembershipType обязателен при audience=type, UserUID — при audience=specific.
type DummyNotificationSend struct {
	Audience       string `json:"audience" validate:"required,oneof=all active expired type specific"`
	MembershipType string `json:"membership_type" validate:"omitempty,oneof=full associate student fellow"`
	UserUID        string `json:"user_uid" validate:"omitempty,uuid"`
	Subject        string `json:"subject" validate:"required,max=200"`
	Message        string `json:"message" validate:"required,max=2000"`
}

// NotificationEvent публикуется в очередь для внешней доставки по email.
type NotificationEvent struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}
