package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/filter"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/pagination"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/query"
)

// Pipeline wires the filter store to the fetcher: filter state and page
// size go in, a normalized Page comes out. Every narrowing change moves the
// cursor back to page 1.
type Pipeline struct {
	fetcher *Fetcher
	filters *filter.Store

	mu    sync.RWMutex
	limit int
}

// NewPipeline creates a pipeline over fetcher and filters. An invalid limit
// falls back to query.DefaultPageSize.
func NewPipeline(fetcher *Fetcher, filters *filter.Store, limit int) *Pipeline {
	if !query.ValidPageSize(limit) {
		limit = query.DefaultPageSize
	}
	return &Pipeline{
		fetcher: fetcher,
		filters: filters,
		limit:   limit,
	}
}

// Filters returns the underlying filter store.
func (p *Pipeline) Filters() *filter.Store {
	return p.filters
}

// PageSize returns the current page size.
func (p *Pipeline) PageSize() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.limit
}

// Descriptor builds the descriptor for the current state.
func (p *Pipeline) Descriptor() query.Descriptor {
	return query.Build(p.filters.State(), p.PageSize())
}

// Current fetches the page for the current state.
func (p *Pipeline) Current(ctx context.Context) (*Page, error) {
	return p.fetcher.Products(ctx, p.Descriptor())
}

// ApplyFilters merges patch and returns to page 1. An empty patch changes
// nothing and keeps the cursor where it is.
func (p *Pipeline) ApplyFilters(patch filter.Patch) error {
	if patch.IsEmpty() {
		return nil
	}
	p.filters.SetFilters(patch)
	return p.filters.SetCurrentPage(1)
}

// SetSort changes the ordering and returns to page 1.
func (p *Pipeline) SetSort(key filter.SortKey) error {
	return p.ApplyFilters(filter.Patch{Sort: &key})
}

// Search applies a search term immediately and returns to page 1. Typed
// input should go through filter.Debouncer instead.
func (p *Pipeline) Search(text string) error {
	return p.ApplyFilters(filter.Patch{Search: &text})
}

// SetPageSize changes the page size and returns to page 1.
func (p *Pipeline) SetPageSize(limit int) error {
	if !query.ValidPageSize(limit) {
		return fmt.Errorf("page size %d not in %v", limit, query.PageSizes)
	}
	p.mu.Lock()
	p.limit = limit
	p.mu.Unlock()
	return p.filters.SetCurrentPage(1)
}

// Reset restores the default filters and returns to page 1.
func (p *Pipeline) Reset() error {
	p.filters.ResetFilters()
	return p.filters.SetCurrentPage(1)
}

// Pagination returns a controller for page, driving the filter store.
func (p *Pipeline) Pagination(page *Page) *pagination.Controller {
	return pagination.NewController(page.CurrentPage, page.TotalPages, p.filters)
}

// ExportAll fetches every page of the current listing, in order, through
// the cache.
func (p *Pipeline) ExportAll(ctx context.Context, cfg pagination.Config) ([]Product, error) {
	d := p.Descriptor().WithPage(1)

	pages, err := pagination.NewBatchFetcher(p.fetcher.FetchPage(d), cfg).FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("export listing: %w", err)
	}

	var products []Product
	for _, page := range pages {
		products = append(products, page.Products...)
	}
	return products, nil
}
