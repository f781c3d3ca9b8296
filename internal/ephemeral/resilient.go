package ephemeral

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Backend is a named Store in a Resilient chain.
type Backend struct {
	Name  string
	Store Store
}

// Resilient is a Store over an ordered list of backends.
//
// Writes (Put, Delete) go to the first backend that accepts them; a later
// backend is only tried when every earlier one failed, and successful
// writes are never mirrored. Reads return the first present value and
// move on to the next backend on a miss or an error, so values written
// during a primary outage stay readable after it recovers. Only the last
// backend's error is returned to the caller.
type Resilient struct {
	backends []Backend
	logger   *zap.Logger
	metrics  *Metrics
}

// NewResilient chains backends in priority order. metrics may be nil.
func NewResilient(logger *zap.Logger, metrics *Metrics, backends ...Backend) *Resilient {
	if len(backends) == 0 {
		panic("ephemeral: resilient store needs at least one backend")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resilient{backends: backends, logger: logger, metrics: metrics}
}

// Put implements Store.
func (s *Resilient) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.write("put", key, func(st Store) error {
		return st.Put(ctx, key, value, ttl)
	})
}

// Delete implements Store.
func (s *Resilient) Delete(ctx context.Context, key string) error {
	return s.write("delete", key, func(st Store) error {
		return st.Delete(ctx, key)
	})
}

func (s *Resilient) write(op, key string, fn func(Store) error) error {
	var err error
	last := len(s.backends) - 1
	for i, b := range s.backends {
		if err = fn(b.Store); err == nil {
			return nil
		}
		if i < last {
			s.logger.Warn("ephemeral backend failed, falling back",
				zap.String("op", op), zap.String("backend", b.Name), zap.String("key", key), zap.Error(err))
			s.metrics.fallback(op, b.Name, "error")
		}
	}
	return err
}

// Get implements Store.
func (s *Resilient) Get(ctx context.Context, key string) (string, bool, error) {
	last := len(s.backends) - 1
	for i, b := range s.backends {
		val, ok, err := b.Store.Get(ctx, key)
		if i == last {
			return val, ok, err
		}
		if err != nil {
			s.logger.Warn("ephemeral backend failed, falling back",
				zap.String("op", "get"), zap.String("backend", b.Name), zap.String("key", key), zap.Error(err))
			s.metrics.fallback("get", b.Name, "error")
			continue
		}
		if ok {
			return val, true, nil
		}
		s.metrics.fallback("get", b.Name, "miss")
	}
	return "", false, nil
}

// Purge deletes key from every backend. Failures are logged and only
// returned when no backend accepted the delete.
func (s *Resilient) Purge(ctx context.Context, key string) error {
	var lastErr error
	purged := false
	for _, b := range s.backends {
		if err := b.Store.Delete(ctx, key); err != nil {
			s.logger.Warn("ephemeral purge failed on backend",
				zap.String("backend", b.Name), zap.String("key", key), zap.Error(err))
			lastErr = err
			continue
		}
		purged = true
	}
	if purged {
		return nil
	}
	return lastErr
}
