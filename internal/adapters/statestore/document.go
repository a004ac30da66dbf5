package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/okian/mela/pkg/logger"
	"github.com/okian/mela/pkg/metrics"
)

// Default locking configuration.
const (
	defaultLockTimeout   = 5 * time.Second
	defaultRetryInterval = 50 * time.Millisecond
)

// docFile is one durable JSON document guarded by an in-process mutex and a
// cross-process flock. Writes go through a temp file and an atomic rename, so
// lock-free readers never observe a partially written document.
type docFile struct {
	path          string
	mu            sync.Mutex
	lock          *flock.Flock
	lockTimeout   time.Duration
	retryInterval time.Duration
	log           logger.Logger
}

func newDocFile(path string, opts ...Option) *docFile {
	d := &docFile{
		path:          path,
		lock:          flock.New(path + ".lock"),
		lockTimeout:   defaultLockTimeout,
		retryInterval: defaultRetryInterval,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// load reads and decodes the document into v. A missing or corrupt file is
// treated as an empty document; the original system recovered the same way.
func (d *docFile) load(v any) error {
	data, err := os.ReadFile(d.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrUnavailable, d.path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		if d.log != nil {
			d.log.Warn(context.Background(), "corrupt document, starting empty",
				logger.String("path", d.path), logger.Error(err))
		}
		return nil
	}
	return nil
}

// save encodes v and replaces the document atomically.
func (d *docFile) save(v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrUnavailable, d.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return fmt.Errorf("%w: mkdir for %s: %w", ErrUnavailable, d.path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(d.path), filepath.Base(d.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: temp file for %s: %w", ErrUnavailable, d.path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %w", ErrUnavailable, d.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %w", ErrUnavailable, d.path, err)
	}
	if err := os.Rename(tmpName, d.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: replace %s: %w", ErrUnavailable, d.path, err)
	}
	return nil
}

// acquire takes the exclusive cross-process lock, bounded by the configured
// timeout. The caller must hold d.mu and must call release on success.
func (d *docFile) acquire(ctx context.Context) error {
	start := time.Now()
	lockCtx, cancel := context.WithTimeout(ctx, d.lockTimeout)
	defer cancel()

	ok, err := d.lock.TryLockContext(lockCtx, d.retryInterval)
	metrics.ObserveLockWait(time.Since(start))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: lock %s: timed out after %s", ErrBusy, d.path, d.lockTimeout)
		}
		return fmt.Errorf("%w: lock %s: %w", ErrUnavailable, d.path, err)
	}
	if !ok {
		return fmt.Errorf("%w: lock %s", ErrBusy, d.path)
	}
	return nil
}

func (d *docFile) release() {
	if err := d.lock.Unlock(); err != nil && d.log != nil {
		d.log.Warn(context.Background(), "releasing document lock failed",
			logger.String("path", d.path), logger.Error(err))
	}
}

// Option applies a configuration option to a document-backed store.
type Option func(*docFile)

// WithLockTimeout bounds how long a transaction waits for the store lock
// before failing busy.
func WithLockTimeout(timeout time.Duration) Option {
	return func(d *docFile) {
		if timeout > 0 {
			d.lockTimeout = timeout
		}
	}
}

// WithRetryInterval sets the lock acquisition polling interval.
func WithRetryInterval(interval time.Duration) Option {
	return func(d *docFile) {
		if interval > 0 {
			d.retryInterval = interval
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(log logger.Logger) Option {
	return func(d *docFile) {
		if log != nil {
			d.log = log
		}
	}
}
