// Package notify delivers alert messages to coaches over a pluggable
// transport (log, SMTP or Kafka).
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/ironsys/internal/domain/model"
)

// Sentinel kinds for notification errors.
var (
	ErrDelivery      = errors.New("notification delivery failed")
	ErrInvalidTarget = errors.New("invalid notification target")
	ErrNotConfigured = errors.New("notifier not configured")
)

// Message is one rendered alert notification.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`

	AlertID   string `json:"alert_id,omitempty"`
	AthleteID string `json:"athlete_id,omitempty"`
	Kind      string `json:"kind,omitempty"`
}

// Notifier sends one message.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
	// Name identifies the driver in logs and metrics.
	Name() string
}

// ValidTarget reports whether target looks like an address worth sending to.
func ValidTarget(target string) bool {
	return strings.Contains(target, "@")
}

// BuildMessage renders the notification for an alert.
func BuildMessage(a model.Alert) Message {
	var b strings.Builder
	b.WriteString("Hello,\n\nA training alert was raised automatically:\n\n")
	fmt.Fprintf(&b, "Athlete: %s\n", a.Name)
	fmt.Fprintf(&b, "Type: %s\n", a.Kind)
	fmt.Fprintf(&b, "Metric: %s = %s\n", a.Metric, a.Value)
	fmt.Fprintf(&b, "Recommendation: %s\n", a.Recommendation)
	fmt.Fprintf(&b, "Details: %s\n", a.Note)
	b.WriteString("\nSee the alert log for the full history.\n\nIronSystems\n")

	return Message{
		To:        strings.TrimSpace(a.NotifyTarget),
		Subject:   fmt.Sprintf("ALERT: %s - %s", a.Kind, a.Name),
		Body:      b.String(),
		AlertID:   a.ID,
		AthleteID: a.AthleteID,
		Kind:      string(a.Kind),
	}
}
