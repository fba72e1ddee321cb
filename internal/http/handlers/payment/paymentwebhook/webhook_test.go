package paymentwebhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/membership-service/internal/paymentprovider"
	"github.com/magabrotheeeer/membership-service/internal/storage/repository"
)

// MockService реализует интерфейс paymentwebhook.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ProcessWebhookEvent(ctx context.Context, payload *paymentprovider.WebhookPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestWebhookHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	const secret = "webhook-secret"

	body := []byte(`{"event":"collection.successful","data":{"reference":"PAY-1-abc","lencoReference":"lnc-777"}}`)

	tests := []struct {
		name           string
		body           []byte
		signature      string
		setupMock      func(*MockService)
		expectedStatus int
	}{
		{
			name:      "валидная подпись — событие обработано",
			body:      body,
			signature: sign(secret, body),
			setupMock: func(m *MockService) {
				m.On("ProcessWebhookEvent", mock.Anything, mock.MatchedBy(func(p *paymentprovider.WebhookPayload) bool {
					return p.Event == "collection.successful" && p.Data.Reference == "PAY-1-abc"
				})).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "отсутствует подпись",
			body:           body,
			signature:      "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "подпись от другого секрета",
			body:           body,
			signature:      sign("wrong-secret", body),
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			// Подпись снята с оригинального тела, тело подменено
			name:           "подменённое тело",
			body:           []byte(`{"event":"collection.successful","data":{"reference":"PAY-other"}}`),
			signature:      sign(secret, body),
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "некорректный JSON с валидной подписью",
			body:           []byte(`not a json`),
			signature:      sign(secret, []byte(`not a json`)),
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService, secret)

			req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(tt.body))
			if tt.signature != "" {
				req.Header.Set("X-Lenco-Signature", tt.signature)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestWebhookHandler_UnknownReferenceIsAcknowledged(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	const secret = "webhook-secret"

	body := []byte(`{"event":"collection.successful","data":{"reference":"PAY-unknown"}}`)

	mockService := new(MockService)
	mockService.On("ProcessWebhookEvent", mock.Anything, mock.Anything).
		Return(fmt.Errorf("storage.GetPayment: %w", repository.ErrNotFound)).Once()

	handler := New(logger, mockService, secret)

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(body))
	req.Header.Set("X-Lenco-Signature", sign(secret, body))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}
