// Package pid enforces the single-instance rule through a PID file in the
// system temp directory.
package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"codeberg.org/waldrek/battwatch/internal/errors"
	"codeberg.org/waldrek/battwatch/internal/logger"
)

const pidFile = "battwatch.pid"

// Path returns the location of the PID file.
func Path() string {
	return filepath.Join(os.TempDir(), pidFile)
}

// Write claims the PID file for this process. It fails with
// errors.ErrAlreadyRunning when the file belongs to a live process; a stale
// file left by a crashed instance is replaced.
func Write() error {
	errFactory := errors.New()
	path := Path()

	if owner, ok := currentOwner(path); ok {
		if processAlive(owner) {
			return errFactory.New(errors.ErrAlreadyRunning)
		}
		logger.Debug().Int("pid", owner).Msg("Replacing stale PID file")
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// Remove deletes the PID file. A missing file is not an error.
func Remove() error {
	errFactory := errors.New()

	if err := os.Remove(Path()); err != nil && !os.IsNotExist(err) {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// currentOwner reads the PID recorded in the file. A missing or garbled file
// counts as unowned.
func currentOwner(path string) (int, bool) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}

	owner, err := strconv.Atoi(string(bytes))
	if err != nil {
		return 0, false
	}

	return owner, true
}

func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// Signal 0 probes for existence without delivering anything.
	return process.Signal(syscall.Signal(0)) == nil
}
