// Package paymentwebhook реализует HTTP-обработчик вебхуков платёжного шлюза.
//
// Подпись проверяется по сырому телу запроса до любого разбора JSON;
// запрос с неверной подписью не приводит ни к каким изменениям состояния.
package paymentwebhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/membership-service/internal/lib/sl"
	"github.com/magabrotheeeer/membership-service/internal/paymentprovider"
	"github.com/magabrotheeeer/membership-service/internal/storage/repository"
)

// Service описывает интерфейс обработки аутентифицированного вебхука.
type Service interface {
	ProcessWebhookEvent(ctx context.Context, payload *paymentprovider.WebhookPayload) error
}

// Handler обрабатывает HTTP-запросы вебхуков шлюза.
type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string // Секрет для проверки подписи
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: secret,
	}
}

// verifySignature проверяет подпись HMAC-SHA256 в base64 из заголовка X-Lenco-Signature.
func (h *Handler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.webhookSecret))
	mac.Write(body)
	expectedSig := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expectedSig), []byte(signature))
}

// ServeHTTP godoc
// @Summary Вебхук платёжного шлюза
// @Description Принимает события шлюза Lenco. Подпись проверяется по сырому телу запроса.
// @Tags Payments
// @Accept  json
// @Success 200 "Событие обработано"
// @Failure 400 "Некорректное тело запроса"
// @Failure 401 "Неверная подпись"
// @Failure 500 "Ошибка обработки события"
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"
	log := h.log.With(slog.String("op", op))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer func() {
		_ = r.Body.Close()
	}()

	signature := r.Header.Get("X-Lenco-Signature")
	if signature == "" || !h.verifySignature(body, signature) {
		log.Error("invalid or missing webhook signature")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var payload paymentprovider.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.service.ProcessWebhookEvent(r.Context(), &payload); err != nil {
		// Неизвестная ссылка подтверждается, чтобы шлюз не ретраил её бесконечно
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("webhook for unknown payment reference",
				slog.String("reference", payload.Data.Reference))
			w.WriteHeader(http.StatusOK)
			return
		}
		log.Error("failed to process webhook event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	log.Info("webhook processed successfully",
		slog.String("event", payload.Event),
		slog.String("reference", payload.Data.Reference))
	w.WriteHeader(http.StatusOK)
}
