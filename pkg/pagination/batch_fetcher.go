package pagination

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds batch fetcher configuration
type Config struct {
	// MaxConcurrency is the maximum number of parallel page requests
	MaxConcurrency int
	// Timeout per page fetch
	Timeout time.Duration
	// MaxPages caps how many pages are fetched (0 = no cap)
	MaxPages int
}

// DefaultConfig returns a conservative configuration for the storefront backend
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        15 * time.Second,
	}
}

// PageFunc fetches one page and reports the total page count.
type PageFunc[T any] func(ctx context.Context, page int) (data T, totalPages int, err error)

// pageResult represents the result of fetching a single page
type pageResult[T any] struct {
	page int
	data T
	err  error
}

// BatchFetcher fetches every page of a listing with a worker pool
type BatchFetcher[T any] struct {
	fetch  PageFunc[T]
	config Config
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher[T any](fetch PageFunc[T], config Config) *BatchFetcher[T] {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	return &BatchFetcher[T]{
		fetch:  fetch,
		config: config,
	}
}

// FetchAll fetches page 1 to learn the page count, then the remaining pages
// in parallel. Pages are returned in order. The first failing page aborts
// the batch.
func (bf *BatchFetcher[T]) FetchAll(ctx context.Context) ([]T, error) {
	start := time.Now()

	first, totalPages, err := bf.fetchOne(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("fetch first page: %w", err)
	}
	if totalPages < 1 {
		totalPages = 1
	}
	if bf.config.MaxPages > 0 && totalPages > bf.config.MaxPages {
		totalPages = bf.config.MaxPages
	}

	log.Debug().
		Int("total_pages", totalPages).
		Msg("Starting parallel page fetch")

	results := make([]T, totalPages)
	results[0] = first
	if totalPages == 1 {
		return results, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pageQueue := make(chan int)
	pageResults := make(chan pageResult[T])

	go func() {
		defer close(pageQueue)
		for page := 2; page <= totalPages; page++ {
			select {
			case pageQueue <- page:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < bf.config.MaxConcurrency; i++ {
		wg.Add(1)
		go bf.worker(ctx, pageQueue, pageResults, &wg)
	}

	go func() {
		wg.Wait()
		close(pageResults)
	}()

	var firstErr error
	fetched := 1
	for res := range pageResults {
		if res.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("fetch page %d: %w", res.page, res.err)
				cancel()
			}
			continue
		}
		results[res.page-1] = res.data
		fetched++
	}

	if firstErr != nil {
		log.Warn().
			Err(firstErr).
			Int("fetched_pages", fetched).
			Int("total_pages", totalPages).
			Msg("Batch fetch aborted")
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch fetch: %w", err)
	}

	log.Debug().
		Int("pages", fetched).
		Dur("duration", time.Since(start)).
		Msg("Batch fetch complete")

	return results, nil
}

func (bf *BatchFetcher[T]) fetchOne(ctx context.Context, page int) (T, int, error) {
	pageCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
	defer cancel()
	return bf.fetch(pageCtx, page)
}

// worker processes pages from the queue
func (bf *BatchFetcher[T]) worker(ctx context.Context, pageQueue <-chan int, results chan<- pageResult[T], wg *sync.WaitGroup) {
	defer wg.Done()

	for page := range pageQueue {
		if ctx.Err() != nil {
			return
		}

		data, _, err := bf.fetchOne(ctx, page)

		select {
		case results <- pageResult[T]{page: page, data: data, err: err}:
		case <-ctx.Done():
			return
		}
	}
}
