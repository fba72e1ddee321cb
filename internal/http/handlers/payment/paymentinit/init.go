// Package paymentinit реализует HTTP-обработчик инициализации платежа за членство.
//
// Сервер генерирует ссылку платежа, создаёт pending-запись и возвращает
// параметры для платёжного виджета с публичным ключом шлюза.
package paymentinit

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/membership-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/membership-service/internal/http/response"
	"github.com/magabrotheeeer/membership-service/internal/lib/sl"
	"github.com/magabrotheeeer/membership-service/internal/models"
)

// Handler обрабатывает HTTP-запросы инициализации платежа.
type Handler struct {
	log      *slog.Logger
	service  Service
	users    UserService
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики инициализации платежа.
type Service interface {
	Initialize(ctx context.Context, userUID, email string, req models.DummyPaymentInit) (*models.PaymentParams, error)
}

// UserService отдаёт email плательщика для платёжного виджета.
type UserService interface {
	GetProfile(ctx context.Context, userUID string) (*models.User, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, users UserService) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		users:    users,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Инициализировать платёж
// @Description Создает pending-запись платежа и возвращает параметры платёжного виджета.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body models.DummyPaymentInit true "Параметры платежа"
// @Success 200 {object} map[string]any "Параметры платёжного виджета"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /payments/initialize [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentinit"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyPaymentInit
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
	log.Info("all fields are validated")

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	user, err := h.users.GetProfile(r.Context(), userUID)
	if err != nil {
		log.Error("failed to get payer profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to initialize payment"))
		return
	}

	params, err := h.service.Initialize(r.Context(), userUID, user.Email, req)
	if err != nil {
		log.Error("failed to initialize payment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to initialize payment"))
		return
	}

	log.Info("payment initialized", slog.String("reference", params.Reference))
	render.JSON(w, r, response.OKWithData(params))
}
