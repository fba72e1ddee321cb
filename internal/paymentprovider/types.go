package paymentprovider

// CollectionStatusResponse — ответ Lenco на запрос статуса коллекции.
type CollectionStatusResponse struct {
	Status  bool       `json:"status"`
	Message string     `json:"message"`
	Data    Collection `json:"data"`
}

// Collection описывает транзакцию сбора средств на стороне Lenco.
type Collection struct {
	ID             string `json:"id"`
	Amount         string `json:"amount"` // сумма в строке, например "1500.00"
	Fee            string `json:"fee"`
	Currency       string `json:"currency"`
	Reference      string `json:"reference"`      // ссылка, сгенерированная нашей стороной
	LencoReference string `json:"lencoReference"` // идентификатор на стороне шлюза
	Type           string `json:"type"`           // card, mobile-money
	Status         string `json:"status"`         // pending, successful, failed
	CompletedAt    string `json:"completedAt"`
}

// WebhookPayload — тело вебхука Lenco о завершении коллекции.
type WebhookPayload struct {
	Event string         `json:"event"` // collection.successful, collection.failed
	Data  WebhookDetails `json:"data"`
}

// WebhookDetails содержит данные транзакции из вебхука. UID плательщика
// передаётся в metadata при открытии виджета и возвращается здесь.
type WebhookDetails struct {
	ID             string            `json:"id"`
	Amount         string            `json:"amount"`
	Fee            string            `json:"fee"`
	Currency       string            `json:"currency"`
	Reference      string            `json:"reference"`
	LencoReference string            `json:"lencoReference"`
	Type           string            `json:"type"`
	Status         string            `json:"status"`
	CompletedAt    string            `json:"completedAt"`
	Metadata       map[string]string `json:"metadata"`
}
