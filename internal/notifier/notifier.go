// Package notifier delivers confirmed crossover alerts to the configured
// channels and serves the Telegram command interface.
package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/Alien67x6/mt5-monitoring-API/internal/logger"
	"github.com/Alien67x6/mt5-monitoring-API/internal/model"
)

// Notifier delivers one alert to one channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, alert model.Alert) error
}

// LogNotifier writes alerts to the process log. It never fails.
type LogNotifier struct{}

func (LogNotifier) Name() string { return "log" }

func (LogNotifier) Send(_ context.Context, alert model.Alert) error {
	logger.Info("%s", FormatAlert(alert))
	return nil
}

// Multi fans an alert out to every channel. A failing channel does not stop
// the others; all failures are joined into the returned error.
type Multi struct {
	notifiers []Notifier
}

// NewMulti skips nil entries so callers can pass optional channels directly.
func NewMulti(notifiers ...Notifier) *Multi {
	m := &Multi{}
	for _, n := range notifiers {
		if n != nil {
			m.notifiers = append(m.notifiers, n)
		}
	}
	return m
}

func (m *Multi) Name() string { return "multi" }

// Channels returns the names of the wrapped notifiers.
func (m *Multi) Channels() []string {
	names := make([]string, len(m.notifiers))
	for i, n := range m.notifiers {
		names[i] = n.Name()
	}
	return names
}

func (m *Multi) Send(ctx context.Context, alert model.Alert) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Send(ctx, alert); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}
