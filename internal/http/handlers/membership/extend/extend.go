// Package extend реализует HTTP-обработчик продления членства.
//
// Продлить можно собственное членство; администратор может продлить любое.
// Действующее членство продлевается от хранимой даты истечения, уже истёкшее —
// от текущего момента, чтобы пользователь не оплачивал прошедшие месяцы.
package extend

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/membership-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/membership-service/internal/http/response"
	"github.com/magabrotheeeer/membership-service/internal/lib/sl"
	"github.com/magabrotheeeer/membership-service/internal/models"
	"github.com/magabrotheeeer/membership-service/internal/services/membership"
	"github.com/magabrotheeeer/membership-service/internal/storage/repository"
)

// Handler обрабатывает HTTP-запросы продления членства.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики продления членства.
type Service interface {
	Extend(ctx context.Context, userUID string, months int, policy membership.ExtendPolicy) (*models.Membership, error)
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
// @Summary Продлить членство
// @Description Продлевает членство на указанное число месяцев. Доступно владельцу членства и администратору.
// @Tags Membership
// @Accept  json
// @Produce  json
// @Param uid path string true "UID пользователя"
// @Param request body models.DummyMembershipExtend true "Срок продления"
// @Success 200 {object} map[string]any "Продлённое членство"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Чужое членство"
// @Failure 404 {object} response.ErrorResponse "Членство не найдено"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /membership/{uid}/extend [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.membership.extend"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	targetUID := chi.URLParam(r, "uid")
	if targetUID == "" {
		log.Error("missing uid in path")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing user uid"))
		return
	}

	callerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || callerUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	role, _ := r.Context().Value(middlewarectx.Role).(string)
	if callerUID != targetUID && role != "admin" {
		log.Error("extend attempt on another user's membership",
			slog.String("caller_uid", callerUID),
			slog.String("target_uid", targetUID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("cannot extend another user's membership"))
		return
	}

	var req models.DummyMembershipExtend
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

	m, err := h.service.Extend(r.Context(), targetUID, req.Months, membership.AnchorNow)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Error("membership not found", slog.String("user_uid", targetUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("membership not found"))
			return
		}
		log.Error("failed to extend membership", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to extend membership"))
		return
	}

	log.Info("membership extended",
		slog.String("user_uid", targetUID),
		slog.Int("months", req.Months),
		slog.Time("expires_at", m.ExpiresAt))
	render.JSON(w, r, response.OKWithData(m))
}
