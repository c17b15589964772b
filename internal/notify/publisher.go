package notify

//go:generate mockgen -destination=../mocks/mock_notifier.go -package=mocks github.com/edulift/auth-service/internal/notify Notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	exchangeName         = "auth.events"
	passwordResetRouting = "auth.password.reset"
)

// Notifier is the outbound notification channel. Dispatch is fire-and-forget
// from the caller's perspective; delivery failures are the consumer's problem.
type Notifier interface {
	SendPasswordReset(ctx context.Context, recipientEmail, plainToken string) error
	Close()
}

type passwordResetEvent struct {
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AMQPNotifier publishes notification events to a RabbitMQ topic exchange.
type AMQPNotifier struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewAMQPNotifier(amqpURL string) (*AMQPNotifier, error) {
	conn, err := amqp.DialConfig(amqpURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &AMQPNotifier{conn: conn, channel: ch}, nil
}

func (n *AMQPNotifier) SendPasswordReset(ctx context.Context, recipientEmail, plainToken string) error {
	now := time.Now()
	body, err := json.Marshal(passwordResetEvent{
		Email:     recipientEmail,
		Token:     plainToken,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	if err != nil {
		return err
	}

	return n.channel.PublishWithContext(ctx,
		exchangeName,
		passwordResetRouting,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   now,
			Body:        body,
		},
	)
}

func (n *AMQPNotifier) Close() {
	if n.channel != nil {
		n.channel.Close()
	}
	if n.conn != nil {
		n.conn.Close()
	}
}

// LogNotifier is a no-op fallback used when RabbitMQ is unavailable at
// startup, so the service can still come up in development.
type LogNotifier struct{}

func (n *LogNotifier) SendPasswordReset(_ context.Context, recipientEmail, _ string) error {
	log.Printf("[notify-fallback] would dispatch password reset to %s", recipientEmail)
	return nil
}

func (n *LogNotifier) Close() {}
