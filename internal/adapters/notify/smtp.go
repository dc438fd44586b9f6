package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier sends messages as plain-text mail.
type SMTPNotifier struct {
	host     string
	port     int
	from     string
	username string
	password string
	send     SendFunc
	now      func() time.Time
}

// SMTPOption configures an SMTPNotifier.
type SMTPOption func(*SMTPNotifier)

// WithAuth enables PLAIN auth.
func WithAuth(username, password string) SMTPOption {
	return func(n *SMTPNotifier) {
		n.username = username
		n.password = password
	}
}

// WithSendFunc replaces smtp.SendMail.
func WithSendFunc(fn SendFunc) SMTPOption {
	return func(n *SMTPNotifier) {
		if fn != nil {
			n.send = fn
		}
	}
}

// NewSMTPNotifier returns a notifier for the given relay.
func NewSMTPNotifier(host string, port int, from string, opts ...SMTPOption) (*SMTPNotifier, error) {
	if strings.TrimSpace(host) == "" || !ValidTarget(from) {
		return nil, fmt.Errorf("%w: smtp host and from address are required", ErrNotConfigured)
	}
	n := &SMTPNotifier{
		host: host,
		port: port,
		from: from,
		send: smtp.SendMail,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

func (n *SMTPNotifier) Name() string { return "smtp" }

func (n *SMTPNotifier) Notify(ctx context.Context, msg Message) error {
	if !ValidTarget(msg.To) {
		return fmt.Errorf("%w: %q", ErrInvalidTarget, msg.To)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	var auth smtp.Auth
	if n.username != "" {
		auth = smtp.PlainAuth("", n.username, n.password, n.host)
	}
	addr := net.JoinHostPort(n.host, strconv.Itoa(n.port))
	return n.send(addr, auth, n.from, []string{msg.To}, n.render(msg))
}

func (n *SMTPNotifier) render(msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", headerValue(n.from))
	fmt.Fprintf(&b, "To: %s\r\n", headerValue(msg.To))
	fmt.Fprintf(&b, "Subject: %s\r\n", headerValue(msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", n.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// headerValue folds line breaks into spaces so a value cannot start a new
// header. Athlete names come straight from workbook cells.
func headerValue(v string) string {
	return strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(v)
}
