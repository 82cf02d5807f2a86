// Package bankclient реализует клиент банка-партнера, который проводит
// платежи за подписки и начисляет кэшбек. Банк отвечает только статусом:
// 200 — операция прошла, 400 — отклонена. Тело ответа не интерпретируется.
package bankclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/smilemedia/subscription-hub/internal/models"
)

// Client клиент HTTP API банка-партнера.
type Client struct {
	apiURL     string
	httpClient *http.Client
}

// NewClient создает новый клиент банка.
func NewClient(apiURL string, timeout time.Duration) *Client {
	return &Client{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type operationRequest struct {
	User  string `json:"user"`
	Price int    `json:"price"`
}

func (c *Client) post(ctx context.Context, path, userEmail string, price int) (int, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(operationRequest{User: userEmail, Price: price}); err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	return resp.StatusCode, nil
}

// Pay проводит платеж за подписку. Возвращает models.ErrPaymentFailed,
// если банк отклонил операцию или недоступен.
func (c *Client) Pay(ctx context.Context, userEmail string, price int) error {
	const op = "bankclient.Pay"
	status, err := c.post(ctx, "/payment", userEmail, price)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, models.ErrPaymentFailed, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%s: %w: status %d", op, models.ErrPaymentFailed, status)
	}
	return nil
}

// AccrueCashback начисляет пользователю кэшбек. Возвращает
// models.ErrCashbackFailed, если банк отклонил операцию или недоступен.
func (c *Client) AccrueCashback(ctx context.Context, userEmail string, price int) error {
	const op = "bankclient.AccrueCashback"
	status, err := c.post(ctx, "/cashback_accrual", userEmail, price)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, models.ErrCashbackFailed, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%s: %w: status %d", op, models.ErrCashbackFailed, status)
	}
	return nil
}
