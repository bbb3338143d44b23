// Package wakelock holds a logind idle inhibitor while monitoring runs.
package wakelock

import (
	"os"
	"sync"

	"codeberg.org/waldrek/battwatch/internal/errors"
	"codeberg.org/waldrek/battwatch/internal/logger"
	"github.com/godbus/dbus/v5"
)

const (
	login1Service = "org.freedesktop.login1"
	login1Path    = "/org/freedesktop/login1"
	inhibitMethod = "org.freedesktop.login1.Manager.Inhibit"
)

// Lock is an exclusive idle inhibitor. Acquire while already held is an
// error; Release is idempotent. Hosts without logind degrade gracefully: the
// caller logs and carries on without the lock.
type Lock struct {
	mu sync.Mutex
	fd *os.File
}

func New() *Lock {
	return &Lock{}
}

// Acquire takes the inhibitor. logind keeps the inhibit active for as long
// as the returned file descriptor stays open.
func (l *Lock) Acquire(why string) error {
	errFactory := errors.New()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fd != nil {
		return errFactory.WithMessage(errors.ErrWakeLock, "wake lock already held")
	}

	conn, err := dbus.SystemBus()
	if err != nil {
		return errFactory.Wrap(errors.ErrWakeLock, err)
	}

	var fd dbus.UnixFD
	obj := conn.Object(login1Service, dbus.ObjectPath(login1Path))
	if err := obj.Call(inhibitMethod, 0, "idle", "battwatch", why, "block").Store(&fd); err != nil {
		return errFactory.Wrap(errors.ErrWakeLock, err)
	}

	l.fd = os.NewFile(uintptr(fd), "battwatch-idle-inhibit")
	logger.Info().Str("why", why).Msg("Wake lock acquired")

	return nil
}

// Release drops the inhibitor. Releasing an unheld lock is a no-op.
func (l *Lock) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fd == nil {
		return
	}

	if err := l.fd.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close wake lock fd")
	}
	l.fd = nil
	logger.Info().Msg("Wake lock released")
}

// Held reports whether the inhibitor is currently active.
func (l *Lock) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fd != nil
}
