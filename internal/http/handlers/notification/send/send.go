// Package send реализует HTTP-обработчик административной рассылки уведомлений.
package send

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/membership-service/internal/http/response"
	"github.com/magabrotheeeer/membership-service/internal/lib/sl"
	"github.com/magabrotheeeer/membership-service/internal/models"
)

// Handler обрабатывает HTTP-запросы рассылки уведомлений.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики рассылки.
type Service interface {
	Send(ctx context.Context, req models.DummyNotificationSend) (int, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Разослать уведомление
// @Description Рассылает уведомление аудитории: всем, активным, истёкшим, категории или конкретному пользователю.
// @Tags Notifications
// @Accept  json
// @Produce  json
// @Param request body models.DummyNotificationSend true "Параметры рассылки"
// @Success 200 {object} map[string]any "Количество получателей"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка рассылки"
// @Security BearerAuth
// @Router /notifications/send [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.send"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyNotificationSend
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	// Зависимые поля аудитории проверяются отдельно от тегов валидатора
	if req.Audience == models.AudienceType && req.MembershipType == "" {
		log.Error("membership_type required for audience=type")
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("field membership_type is required for audience type"))
		return
	}
	if req.Audience == models.AudienceSpecific && req.UserUID == "" {
		log.Error("user_uid required for audience=specific")
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("field user_uid is required for audience specific"))
		return
	}
	log.Info("all fields are validated")

	sent, err := h.service.Send(r.Context(), req)
	if err != nil {
		log.Error("failed to send notification", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to send notification"))
		return
	}

	log.Info("notification sent", slog.Int("recipients", sent))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"recipients": sent,
	}))
}
