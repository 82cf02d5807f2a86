// Package notifier реализует воркер почтовых уведомлений: читает
// события биллинга из очереди и отправляет пользователям письма
// о продлении подписки и начислении кэшбека.
package notifier

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/smilemedia/subscription-hub/internal/lib/sl"
	"github.com/smilemedia/subscription-hub/internal/lib/smtp"
	"github.com/smilemedia/subscription-hub/internal/models"
)

// Transport устанавливает SMTP соединения и знает адрес отправителя.
type Transport interface {
	Connect() (smtp.Client, error)
	Sender() string
}

// Service отправляет почтовые уведомления по событиям биллинга.
type Service struct {
	transport Transport
	log       *slog.Logger
}

// New создает новый Service.
func New(transport Transport, log *slog.Logger) *Service {
	return &Service{transport: transport, log: log}
}

// HandleEvent обрабатывает одно событие биллинга из очереди.
// Ошибка возвращает сообщение в очередь, поэтому событие без адреса
// получателя не считается ошибкой: письмо просто не отправляется.
func (s *Service) HandleEvent(body []byte) error {
	const op = "notifier.HandleEvent"

	var event models.BillingEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if event.Email == "" {
		s.log.Warn("billing event without recipient", slog.String("kind", event.Kind))
		return nil
	}

	subject, text := renderEmail(event)
	if subject == "" {
		s.log.Warn("unknown billing event kind", slog.String("kind", event.Kind))
		return nil
	}

	if err := s.send(event.Email, subject, text); err != nil {
		s.log.Error("failed to send email", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("email sent",
		slog.String("kind", event.Kind), slog.String("to", event.Email))
	return nil
}

// renderEmail собирает тему и текст письма по типу события.
// Для неизвестного типа возвращает пустую тему.
func renderEmail(event models.BillingEvent) (subject, text string) {
	switch event.Kind {
	case "renewal.success":
		return "Подписка продлена",
			fmt.Sprintf("Здравствуйте!\n\nВаша подписка продлена, списано %d руб.", event.Amount)
	case "renewal.failed":
		return "Не удалось продлить подписку",
			fmt.Sprintf("Здравствуйте!\n\nНе удалось списать %d руб. за продление подписки. "+
				"Обслуживание приостановлено, оформите подписку заново.", event.Amount)
	case "cashback.credited":
		return "Начислен кэшбек",
			fmt.Sprintf("Здравствуйте!\n\nВам начислен кэшбек %d руб. за %s.",
				event.Amount, event.Date.Format("01.2006"))
	}
	return "", ""
}

func (s *Service) send(to, subject, text string) error {
	client, err := s.transport.Connect()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	from := s.transport.Sender()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
		"",
		text,
	}, "\r\n")

	if err = client.Mail(from); err != nil {
		return err
	}
	if err = client.Rcpt(to); err != nil {
		return err
	}
	wc, err := client.Data()
	if err != nil {
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		return err
	}
	if err = wc.Close(); err != nil {
		return err
	}
	return client.Quit()
}
