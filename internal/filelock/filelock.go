// Package filelock provides an exclusive advisory lock on a file, acquired
// with a bounded number of retries.
package filelock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/GNPower/Vitis/internal/ctxlog"
	"github.com/cenkalti/backoff/v4"
)

// ErrLocked is returned by a single acquisition attempt when another holder
// owns the lock.
var ErrLocked = errors.New("lock is held by another process")

// LockError is returned when the lock could not be acquired.
type LockError struct {
	Path     string
	Attempts int
	Err      error
}

func (e *LockError) Error() string {
	return fmt.Sprintf("failed to lock %s after %d attempt(s): %v", e.Path, e.Attempts, e.Err)
}

func (e *LockError) Unwrap() error {
	return e.Err
}

// Options bound the acquisition retries.
type Options struct {
	// Retries is the number of attempts after the first one.
	Retries uint64
	// Interval is the wait between attempts.
	Interval time.Duration
}

// DefaultOptions retries for about five seconds.
var DefaultOptions = Options{Retries: 50, Interval: 100 * time.Millisecond}

// Lock is a held lock. Release it on every exit path.
type Lock struct {
	path string
	f    *os.File
}

// Acquire takes the exclusive lock on path, creating the file if needed.
// Contention is retried according to opts; any other failure is returned
// at once.
func Acquire(ctx context.Context, path string, opts Options) (*Lock, error) {
	logger := ctxlog.FromContext(ctx).With("path", path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &LockError{Path: path, Err: err}
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, &LockError{Path: path, Err: err}
	}

	attempts := 0
	op := func() error {
		attempts++
		err := tryLock(f)
		if err != nil && !errors.Is(err, ErrLocked) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.Debug("Lock is busy, retrying.", "attempt", attempts, "wait", wait)
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(opts.Interval), opts.Retries), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		f.Close()
		return nil, &LockError{Path: path, Attempts: attempts, Err: err}
	}

	logger.Debug("Acquired lock.", "attempts", attempts)
	return &Lock{path: path, f: f}, nil
}

// Path returns the locked file.
func (l *Lock) Path() string {
	return l.path
}

// Release drops the lock. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := unlock(l.f)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	return err
}
