package notify

import (
	"context"

	"github.com/okian/ironsys/pkg/logger"
)

// LogNotifier writes messages to the application log instead of sending
// them anywhere.
type LogNotifier struct {
	log logger.Logger
}

// NewLogNotifier returns a notifier that logs through l, or the global
// logger when l is nil.
func NewLogNotifier(l logger.Logger) *LogNotifier {
	if l == nil {
		l = logger.Named("notify")
	}
	return &LogNotifier{log: l}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Notify(ctx context.Context, msg Message) error {
	n.log.Info(ctx, "alert notification",
		logger.String("to", msg.To),
		logger.String("subject", msg.Subject),
		logger.String("alert_id", msg.AlertID),
	)
	return nil
}
