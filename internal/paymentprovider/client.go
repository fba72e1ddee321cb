// Package paymentprovider реализует клиент платёжного шлюза Lenco.
//
// Сбор средств инициируется виджетом на клиенте по публичному ключу;
// сервер с секретным ключом только проверяет статус транзакции по ссылке.
package paymentprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client обращается к API Lenco с серверным секретным ключом.
type Client struct {
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент Lenco.
func NewClient(apiURL, secretKey string) *Client {
	return &Client{
		secretKey:  secretKey,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetCollectionByReference запрашивает статус коллекции по нашей ссылке платежа.
func (c *Client) GetCollectionByReference(ctx context.Context, reference string) (*Collection, error) {
	const op = "paymentprovider.GetCollectionByReference"

	url := fmt.Sprintf("%s/collections/status/%s", c.apiURL, reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var statusResp CollectionStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&statusResp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !statusResp.Status {
		return nil, fmt.Errorf("%s: gateway error: %s", op, statusResp.Message)
	}
	return &statusResp.Data, nil
}
