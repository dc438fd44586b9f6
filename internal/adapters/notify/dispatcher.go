package notify

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/okian/ironsys/internal/domain/model"
	"github.com/okian/ironsys/pkg/logger"
	"github.com/okian/ironsys/pkg/metrics"
)

// Result summarizes one dispatch.
type Result struct {
	Sent    int
	Skipped int
	Failed  int
}

// Dispatcher sends one message per alert whose target is an address.
// A failed delivery never stops the remaining ones.
type Dispatcher struct {
	notifier Notifier
	log      logger.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(l logger.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// NewDispatcher wraps a notifier.
func NewDispatcher(n Notifier, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{notifier: n}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = logger.Named("notify")
	}
	return d
}

// Dispatch notifies every alert with a usable target. The returned error
// combines every per-alert failure and matches ErrDelivery.
func (d *Dispatcher) Dispatch(ctx context.Context, alerts []model.Alert) (Result, error) {
	var (
		res  Result
		errs error
	)
	driver := d.notifier.Name()
	for _, a := range alerts {
		if !ValidTarget(a.NotifyTarget) {
			res.Skipped++
			continue
		}
		msg := BuildMessage(a)
		if err := d.notifier.Notify(ctx, msg); err != nil {
			res.Failed++
			metrics.RecordNotification(driver, false)
			d.log.Warn(ctx, "notification failed",
				logger.String("driver", driver),
				logger.String("to", msg.To),
				logger.String("alert_id", a.ID),
				logger.Error(err),
			)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", msg.To, err))
			continue
		}
		res.Sent++
		metrics.RecordNotification(driver, true)
	}
	if errs != nil {
		return res, fmt.Errorf("%w: %d of %d: %w", ErrDelivery, res.Failed, res.Sent+res.Failed, errs)
	}
	return res, nil
}
