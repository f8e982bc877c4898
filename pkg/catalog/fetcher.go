// Package catalog reads the product catalog through the partitioned query
// cache and normalizes the backend's listing shapes.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/cache"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/client"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/logging"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/query"
)

// Backend paths.
const (
	PathProducts   = "/product"
	PathCategories = "/category"
	PathBrands     = "/brand"
)

// Getter is the slice of *client.Client the fetcher needs.
type Getter interface {
	Do(ctx context.Context, r client.Request) (*client.Response, error)
}

// Fetcher serves catalog reads from the cache, fetching on a miss.
type Fetcher struct {
	client Getter
	loader *cache.Loader
	logger zerolog.Logger
}

// New creates a catalog fetcher.
func New(c Getter, loader *cache.Loader, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		client: c,
		loader: loader,
		logger: logger.With().Str("component", logging.ComponentCatalog).Logger(),
	}
}

// Products returns the listing page described by d. Identical descriptors
// share one cache entry and at most one in-flight request.
func (f *Fetcher) Products(ctx context.Context, d query.Descriptor) (*Page, error) {
	key := cache.Key{Partition: cache.PartitionProducts, ID: d.Key()}

	page, err := cache.LoadDecoded(ctx, f.loader, key, f.get(PathProducts, PathProducts, d.Values()), decodePage)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	f.logger.Debug().
		Str("descriptor", d.String()).
		Int("products", len(page.Products)).
		Int("total_pages", page.TotalPages).
		Msg("Listing page loaded")
	return page, nil
}

// FetchPage adapts Products for the pagination batch fetcher: it loads page
// n of d and reports the total page count.
func (f *Fetcher) FetchPage(d query.Descriptor) func(ctx context.Context, page int) (*Page, int, error) {
	return func(ctx context.Context, page int) (*Page, int, error) {
		p, err := f.Products(ctx, d.WithPage(page))
		if err != nil {
			return nil, 0, err
		}
		return p, p.TotalPages, nil
	}
}

// Product returns a single product.
func (f *Fetcher) Product(ctx context.Context, id string) (*Product, error) {
	id = strings.TrimSpace(id)
	if strings.Trim(id, ".") == "" {
		return nil, fmt.Errorf("invalid product id %q", id)
	}

	key := cache.Key{Partition: cache.ProductPartition(id)}
	path := PathProducts + "/" + url.PathEscape(id)

	p, err := cache.LoadDecoded(ctx, f.loader, key, f.get(path, PathProducts+"/:id", nil), decodeProduct)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

// Categories returns every category.
func (f *Fetcher) Categories(ctx context.Context) ([]Category, error) {
	cats, err := cache.LoadDecoded(ctx, f.loader, cache.Key{Partition: cache.PartitionCategories},
		f.get(PathCategories, PathCategories, nil),
		func(body []byte) ([]Category, error) { return decodeList[Category](body, "categories") })
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// Brands returns every brand.
func (f *Fetcher) Brands(ctx context.Context) ([]Brand, error) {
	brands, err := cache.LoadDecoded(ctx, f.loader, cache.Key{Partition: cache.PartitionBrands},
		f.get(PathBrands, PathBrands, nil),
		func(body []byte) ([]Brand, error) { return decodeList[Brand](body, "brands") })
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	return brands, nil
}

// Invalidate drops cached listings so the next read refetches.
func (f *Fetcher) Invalidate(ctx context.Context) error {
	return f.loader.Invalidate(ctx, cache.PartitionProducts, cache.PartitionCategories, cache.PartitionBrands)
}

func (f *Fetcher) get(path, endpoint string, q url.Values) cache.FetchFunc {
	return func(ctx context.Context) ([]byte, error) {
		return client.Get(ctx, f.client, client.Request{Path: path, Query: q, Endpoint: endpoint})
	}
}
