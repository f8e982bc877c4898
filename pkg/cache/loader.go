package cache

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// FetchFunc loads the body for a key from the backend.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Loader serves reads from a Store and fetches on a miss, sharing one
// fetch among concurrent callers of the same key.
type Loader struct {
	store  Store
	group  singleflight.Group
	logger zerolog.Logger
}

// NewLoader creates a loader over store.
func NewLoader(store Store, logger zerolog.Logger) *Loader {
	if store == nil {
		panic("cache store cannot be nil")
	}
	return &Loader{
		store:  store,
		logger: logger,
	}
}

// Store returns the underlying store.
func (l *Loader) Store() Store {
	return l.store
}

// Load returns the cached body for key, calling fetch on a miss. Failed
// fetches are not cached. The shared fetch is detached from ctx so that one
// caller giving up does not fail the others; ctx only bounds this caller's
// wait.
func (l *Loader) Load(ctx context.Context, key Key, fetch FetchFunc) ([]byte, error) {
	label := partitionLabel(key.Partition)
	k := key.String()

	entry, err := l.store.Get(ctx, key)
	switch {
	case err == nil:
		CacheHits.WithLabelValues(label).Inc()
		l.logger.Debug().Str("key", k).Dur("age", entry.Age()).Msg("Cache hit")
		return entry.Data, nil
	case errors.Is(err, ErrCacheMiss):
		CacheMisses.WithLabelValues(label).Inc()
	default:
		// A broken cache falls through to the backend.
		l.logger.Warn().Err(err).Str("key", k).Msg("Cache get error")
	}

	shared := context.WithoutCancel(ctx)
	ch := l.group.DoChan(k, func() (any, error) {
		l.logger.Debug().Str("key", k).Msg("Cache miss - fetching")

		data, err := fetch(shared)
		if err != nil {
			return nil, err
		}

		if err := l.store.Set(shared, key, &Entry{
			Data:       data,
			StatusCode: http.StatusOK,
			CachedAt:   time.Now(),
		}); err != nil {
			l.logger.Warn().Err(err).Str("key", k).Msg("Failed to cache response")
		}
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load %s: %w", k, ctx.Err())
	case res := <-ch:
		if res.Shared {
			SharedLoads.WithLabelValues(label).Inc()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// Invalidate drops every entry of the given partitions so the next read of
// each refetches.
func (l *Loader) Invalidate(ctx context.Context, partitions ...string) error {
	var errs []error
	for _, p := range partitions {
		n, err := l.store.DeletePartition(ctx, p)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalidate %s: %w", p, err))
			continue
		}
		Invalidations.WithLabelValues(partitionLabel(p)).Inc()
		l.logger.Debug().Str("partition", p).Int("entries", n).Msg("Cache partition invalidated")
	}
	return errors.Join(errs...)
}

// partitionLabel folds per-product partitions into one metric label.
func partitionLabel(partition string) string {
	if i := strings.IndexByte(partition, ':'); i >= 0 {
		return partition[:i]
	}
	return partition
}

// DecodeFunc turns a response body into a value.
type DecodeFunc[T any] func(data []byte) (T, error)

// LoadDecoded is Load for bodies that are only worth keeping once they
// decode. A fetched body that fails decode is returned as an error and never
// stored. A stored entry that no longer decodes is dropped and refetched once.
func LoadDecoded[T any](ctx context.Context, l *Loader, key Key, fetch FetchFunc, decode DecodeFunc[T]) (T, error) {
	var zero T

	checked := func(ctx context.Context) ([]byte, error) {
		data, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := decode(data); err != nil {
			DecodeFailures.WithLabelValues(partitionLabel(key.Partition)).Inc()
			return nil, err
		}
		return data, nil
	}

	data, err := l.Load(ctx, key, checked)
	if err != nil {
		return zero, err
	}
	v, err := decode(data)
	if err == nil {
		return v, nil
	}

	l.logger.Warn().Err(err).Str("key", key.String()).Msg("Dropping undecodable cache entry")
	DecodeFailures.WithLabelValues(partitionLabel(key.Partition)).Inc()
	if err := l.store.Delete(context.WithoutCancel(ctx), key); err != nil {
		return zero, fmt.Errorf("drop %s: %w", key.String(), err)
	}

	data, err = l.Load(ctx, key, checked)
	if err != nil {
		return zero, err
	}
	return decode(data)
}
