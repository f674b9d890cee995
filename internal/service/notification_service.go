package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/semenggoh/parkguide-api/internal/models"
)

// Notifier delivers fire-and-forget decision notifications. Delivery happens
// outside any database transaction; failures are logged and never surfaced
// to the workflow that triggered them.
type Notifier interface {
	PaymentDecision(ctx context.Context, user models.User, payment models.PaymentTransaction, decision string)
	LicenseDecision(ctx context.Context, user models.User, decision string)
}

type emailEvent struct {
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sent_at"`
}

type natsNotifier struct {
	conn      *nats.Conn
	subject   string
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewNotifier constructs a Notifier publishing email events to NATS. A nil
// connection degrades to log-only delivery.
func NewNotifier(conn *nats.Conn, subject string, logger zerolog.Logger) Notifier {
	if subject == "" {
		subject = "parkguide.notifications.email"
	}

	return &natsNotifier{
		conn:      conn,
		subject:   subject,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "notifier").Logger(),
	}
}

func (n *natsNotifier) PaymentDecision(ctx context.Context, user models.User, payment models.PaymentTransaction, decision string) {
	name := n.sanitizer.Sanitize(user.FirstName)

	var subject, body string
	if decision == models.PaymentStatusApproved {
		subject = "Payment Approved"
		body = fmt.Sprintf("Dear %s,\n\nYour payment of %.2f for %q has been approved. The module is now available in your training area.\n\nPark Guide Training Team", name, payment.Amount, payment.Purpose)
	} else {
		subject = "Payment Rejected"
		body = fmt.Sprintf("Dear %s,\n\nYour payment of %.2f for %q was not approved. Please review your receipt and submit again.\n\nPark Guide Training Team", name, payment.Amount, payment.Purpose)
	}

	n.publish(ctx, emailEvent{To: user.Email, Subject: subject, Body: body, SentAt: time.Now().UTC()})
}

func (n *natsNotifier) LicenseDecision(ctx context.Context, user models.User, decision string) {
	name := n.sanitizer.Sanitize(user.FirstName)

	var subject, body string
	if decision == models.GuideLicenseApproved {
		subject = "Park Guide License Approved"
		body = fmt.Sprintf("Dear %s,\n\nCongratulations! Your park guide license has been approved and your park assignment is confirmed.\n\nPark Guide Training Team", name)
	} else {
		subject = "Park Guide License Application Status"
		body = fmt.Sprintf("Dear %s,\n\nWe regret to inform you that your license application has not been approved at this time.\n\nPark Guide Training Team", name)
	}

	n.publish(ctx, emailEvent{To: user.Email, Subject: subject, Body: body, SentAt: time.Now().UTC()})
}

func (n *natsNotifier) publish(ctx context.Context, event emailEvent) {
	if strings.TrimSpace(event.To) == "" {
		n.logger.Warn().Str("subject", event.Subject).Msg("notification skipped, recipient missing")
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Error().Err(err).Msg("failed to encode notification event")
		return
	}

	if n.conn == nil {
		n.logger.Info().Str("to", event.To).Str("subject", event.Subject).Msg("notification logged, broker not configured")
		return
	}

	if err := n.conn.Publish(n.subject, payload); err != nil {
		n.logger.Error().Err(err).Str("to", event.To).Msg("failed to publish notification")
		return
	}

	n.logger.Info().Str("to", event.To).Str("subject", event.Subject).Msg("notification published")
}
