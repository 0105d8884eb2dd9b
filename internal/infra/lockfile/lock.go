package lockfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/osvaldoandrade/edgeboot/internal/app/bootstrap"
	"golang.org/x/sys/unix"
)

const pollInterval = 100 * time.Millisecond

// Locker serializes bootstraps that share a checkout path with an advisory
// flock on "<checkout>.lock".
type Locker struct {
	poll time.Duration
}

func NewLocker() *Locker {
	return &Locker{poll: pollInterval}
}

type Lock struct {
	file *os.File
}

func PathFor(checkoutPath string) string {
	return filepath.Clean(checkoutPath) + ".lock"
}

// Acquire blocks until the lock for checkoutPath is held or ctx ends.
func (l *Locker) Acquire(ctx context.Context, checkoutPath string) (bootstrap.Releaser, error) {
	path := PathFor(checkoutPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()
	for {
		err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return &Lock{file: file}, nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			file.Close()
			return nil, fmt.Errorf("lock %s: %w", path, err)
		}
		select {
		case <-ctx.Done():
			file.Close()
			return nil, fmt.Errorf("wait for %s: %w", path, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("unlock: %w", err)
	}
	return closeErr
}
