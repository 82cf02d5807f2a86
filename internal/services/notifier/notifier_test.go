package notifier

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemedia/subscription-hub/internal/lib/smtp"
	"github.com/smilemedia/subscription-hub/internal/models"
)

type fakeWriteCloser struct{ buf *bytes.Buffer }

func (w *fakeWriteCloser) Write(p []byte) (int, error) { return w.buf.Write(p) }
func (w *fakeWriteCloser) Close() error                { return nil }

type fakeClient struct {
	from string
	to   []string
	body bytes.Buffer
}

func (c *fakeClient) Mail(from string) error { c.from = from; return nil }
func (c *fakeClient) Rcpt(to string) error   { c.to = append(c.to, to); return nil }
func (c *fakeClient) Data() (io.WriteCloser, error) {
	return &fakeWriteCloser{buf: &c.body}, nil
}
func (c *fakeClient) Quit() error  { return nil }
func (c *fakeClient) Close() error { return nil }

type fakeTransport struct {
	client *fakeClient
}

func (t *fakeTransport) Connect() (smtp.Client, error) { return t.client, nil }
func (t *fakeTransport) Sender() string                { return "billing@example.com" }

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestService_HandleEvent(t *testing.T) {
	event := models.BillingEvent{
		Kind:   "cashback.credited",
		Email:  "user@example.com",
		Amount: 42,
		Date:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	body, err := json.Marshal(event)
	require.NoError(t, err)

	client := &fakeClient{}
	svc := New(&fakeTransport{client: client}, newNoopLogger())

	require.NoError(t, svc.HandleEvent(body))
	assert.Equal(t, "billing@example.com", client.from)
	assert.Equal(t, []string{"user@example.com"}, client.to)
	assert.Contains(t, client.body.String(), "Subject: Начислен кэшбек")
	assert.Contains(t, client.body.String(), "42")
	assert.Contains(t, client.body.String(), "03.2025")
}

func TestService_HandleEventWithoutRecipient(t *testing.T) {
	body, err := json.Marshal(models.BillingEvent{Kind: "renewal.success"})
	require.NoError(t, err)

	client := &fakeClient{}
	svc := New(&fakeTransport{client: client}, newNoopLogger())

	// письмо некому отправлять, но событие не возвращается в очередь
	require.NoError(t, svc.HandleEvent(body))
	assert.Empty(t, client.to)
}

func TestService_HandleEventBadPayload(t *testing.T) {
	svc := New(&fakeTransport{client: &fakeClient{}}, newNoopLogger())
	assert.Error(t, svc.HandleEvent([]byte("{not json")))
}

func TestRenderEmail(t *testing.T) {
	tests := []struct {
		name        string
		kind        string
		wantSubject string
	}{
		{"успешное продление", "renewal.success", "Подписка продлена"},
		{"отказ в продлении", "renewal.failed", "Не удалось продлить подписку"},
		{"начисление кэшбека", "cashback.credited", "Начислен кэшбек"},
		{"неизвестный тип", "unknown.kind", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, _ := renderEmail(models.BillingEvent{Kind: tt.kind})
			assert.Equal(t, tt.wantSubject, subject)
		})
	}
}
