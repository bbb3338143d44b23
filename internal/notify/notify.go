// Package notify delivers desktop notifications over the session bus.
package notify

import (
	"codeberg.org/waldrek/battwatch/internal/errors"
	"codeberg.org/waldrek/battwatch/internal/logger"
	"github.com/godbus/dbus/v5"
)

const (
	notifyService   = "org.freedesktop.Notifications"
	notifyPath      = "/org/freedesktop/Notifications"
	notifyMethod    = "org.freedesktop.Notifications.Notify"
	notifyAppName   = "battwatch"
	notifyNoTimeout = int32(-1)
)

// Sink receives (title, body) pairs. Implementations may drop silently;
// callers must not depend on delivery.
type Sink interface {
	Notify(title, body string) error
}

type dbusSink struct {
	conn *dbus.Conn
}

// NewSink connects to the session bus. When the bus is unavailable the
// caller should fall back to Noop; monitoring never depends on this.
func NewSink() (Sink, error) {
	errFactory := errors.New()

	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrNotifyFailed, err)
	}

	return &dbusSink{conn: conn}, nil
}

func (s *dbusSink) Notify(title, body string) error {
	errFactory := errors.New()

	obj := s.conn.Object(notifyService, dbus.ObjectPath(notifyPath))
	call := obj.Call(notifyMethod, 0,
		notifyAppName,
		uint32(0), // no notification to replace
		"",        // no icon
		title,
		body,
		[]string{},
		map[string]dbus.Variant{},
		notifyNoTimeout,
	)
	if call.Err != nil {
		return errFactory.Wrap(errors.ErrNotifyFailed, call.Err)
	}

	logger.Debug().Str("title", title).Msg("Notification delivered")

	return nil
}

type noopSink struct{}

// Noop returns a sink that drops everything, for hosts without a session bus
// or when notifications are disabled.
func Noop() Sink {
	return noopSink{}
}

func (noopSink) Notify(_, _ string) error {
	return nil
}
