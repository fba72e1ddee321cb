package send

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/membership-service/internal/models"
)

// MockService реализует интерфейс send.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Send(ctx context.Context, req models.DummyNotificationSend) (int, error) {
	args := m.Called(ctx, req)
	return args.Int(0), args.Error(1)
}

func TestSendHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "рассылка активным",
			requestBody: models.DummyNotificationSend{
				Audience: models.AudienceActive,
				Subject:  "Renewal reminder",
				Message:  "Please renew",
			},
			setupMock: func(m *MockService) {
				m.On("Send", mock.Anything, mock.MatchedBy(func(req models.DummyNotificationSend) bool {
					return req.Audience == models.AudienceActive
				})).Return(42, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"recipients":42`,
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name: "неизвестная аудитория",
			requestBody: models.DummyNotificationSend{
				Audience: "everyone",
				Subject:  "s",
				Message:  "m",
			},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Audience has unsupported value`,
		},
		{
			name: "audience=type без категории",
			requestBody: models.DummyNotificationSend{
				Audience: models.AudienceType,
				Subject:  "s",
				Message:  "m",
			},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field membership_type is required`,
		},
		{
			name: "audience=specific без uid",
			requestBody: models.DummyNotificationSend{
				Audience: models.AudienceSpecific,
				Subject:  "s",
				Message:  "m",
			},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field user_uid is required`,
		},
		{
			name: "ошибка сервиса",
			requestBody: models.DummyNotificationSend{
				Audience: models.AudienceAll,
				Subject:  "s",
				Message:  "m",
			},
			setupMock: func(m *MockService) {
				m.On("Send", mock.Anything, mock.Anything).Return(0, errors.New("db error")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"failed to send notification"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			var body []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				assert.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/notifications/send", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-id"))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
