package paymentprovider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetCollectionByReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/status/PAY-1-abc", r.URL.Path)
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": true,
			"data": {
				"id": "c-1",
				"amount": "1500.00",
				"fee": "30.00",
				"currency": "ZMW",
				"reference": "PAY-1-abc",
				"lencoReference": "lnc-777",
				"type": "mobile-money",
				"status": "successful"
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key")
	collection, err := client.GetCollectionByReference(context.Background(), "PAY-1-abc")
	require.NoError(t, err)
	assert.Equal(t, "successful", collection.Status)
	assert.Equal(t, "lnc-777", collection.LencoReference)
	assert.Equal(t, "ZMW", collection.Currency)
}

func TestClient_GetCollectionByReference_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key")
	_, err := client.GetCollectionByReference(context.Background(), "PAY-1-abc")
	assert.Error(t, err)
}

func TestClient_GetCollectionByReference_FalseStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": false, "message": "transaction not found"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key")
	_, err := client.GetCollectionByReference(context.Background(), "PAY-unknown")
	assert.ErrorContains(t, err, "transaction not found")
}
