package integration

import (
	"context"
	"net/http"
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/internal/testutil"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/cache"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/cart"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/catalog"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/client"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/filter"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/inflight"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/query"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/session"
)

const listingBody = `{"products":[{"_id":"p1","name":"Phone","subPrice":450}],"totalProducts":1,"totalPages":1,"currentPage":1}`

const cartBody = `{"_id":"c","products":[],"subTotal":0}`

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test needs Docker")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// process is one storefront process: its own client, loader and services,
// sharing the Redis cache with any other process.
type process struct {
	loader  *cache.Loader
	catalog *catalog.Fetcher
	cart    *cart.Service
}

func newProcess(t *testing.T, mock *testutil.MockBackend, redisClient *redis.Client) *process {
	t.Helper()

	sess, err := session.Open(nil)
	if err != nil {
		t.Fatalf("Failed to open session: %v", err)
	}
	if err := sess.Set("integration-token"); err != nil {
		t.Fatalf("Failed to set token: %v", err)
	}

	cfg := client.DefaultConfig(mock.URL())
	cfg.Session = sess
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	loader := cache.NewLoader(cache.NewRedisStore(redisClient), zerolog.Nop())
	return &process{
		loader:  loader,
		catalog: catalog.New(c, loader, zerolog.Nop()),
		cart:    cart.New(c, loader, inflight.NewGuard(zerolog.Nop()), zerolog.Nop()),
	}
}

// TestListingSharedAcrossProcesses tests the flow Descriptor -> Cache Miss ->
// Backend -> Redis, then a second process served from Redis.
func TestListingSharedAcrossProcesses(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockBackend()
	defer mock.Close()
	mock.SetResponse("/product", testutil.NewJSONResponse(listingBody))

	ctx := context.Background()
	d := query.Build(filter.Default(), query.DefaultPageSize)

	hitsBefore := promtestutil.ToFloat64(cache.CacheHits.WithLabelValues(cache.PartitionProducts))

	first := newProcess(t, mock, redisClient)
	page, err := first.catalog.Products(ctx, d)
	if err != nil {
		t.Fatalf("First listing failed: %v", err)
	}
	if len(page.Products) != 1 {
		t.Fatalf("products = %d, want 1", len(page.Products))
	}

	second := newProcess(t, mock, redisClient)
	if _, err := second.catalog.Products(ctx, d); err != nil {
		t.Fatalf("Second listing failed: %v", err)
	}

	if got := mock.PathCount("/product"); got != 1 {
		t.Errorf("backend listing requests = %d, want 1", got)
	}
	if got := promtestutil.ToFloat64(cache.CacheHits.WithLabelValues(cache.PartitionProducts)) - hitsBefore; got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
}

// TestCartMutationInvalidatesOnlyCart tests that a successful add drops the
// cart partition in Redis and leaves listings cached.
func TestCartMutationInvalidatesOnlyCart(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockBackend()
	defer mock.Close()
	mock.SetResponse("/product", testutil.NewJSONResponse(listingBody))
	mock.SetResponse("/cart", testutil.NewJSONResponse(cartBody))
	mock.SetResponse("POST /cart/add", testutil.NewCreatedResponse(cartBody))

	ctx := context.Background()
	p := newProcess(t, mock, redisClient)
	d := query.Build(filter.Default(), query.DefaultPageSize)

	if _, err := p.catalog.Products(ctx, d); err != nil {
		t.Fatalf("Listing failed: %v", err)
	}
	if _, err := p.cart.Get(ctx); err != nil {
		t.Fatalf("Get cart failed: %v", err)
	}

	if err := p.cart.Add(ctx, "p1", 1); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if _, err := p.cart.Get(ctx); err != nil {
		t.Fatalf("Get cart failed: %v", err)
	}
	if _, err := p.catalog.Products(ctx, d); err != nil {
		t.Fatalf("Listing failed: %v", err)
	}

	if got := mock.PathCount("/cart"); got != 2 {
		t.Errorf("cart requests = %d, want 2 (refetched after add)", got)
	}
	if got := mock.PathCount("/product"); got != 1 {
		t.Errorf("listing requests = %d, want 1 (still cached)", got)
	}
}

// TestFailedMutationKeepsCache tests that a rejected add leaves the cached
// cart in Redis.
func TestFailedMutationKeepsCache(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockBackend()
	defer mock.Close()
	mock.SetResponse("/cart", testutil.NewJSONResponse(cartBody))
	mock.SetResponse("POST /cart/add", testutil.NewErrorResponse(http.StatusBadRequest, "Out of stock"))

	ctx := context.Background()
	p := newProcess(t, mock, redisClient)

	if _, err := p.cart.Get(ctx); err != nil {
		t.Fatalf("Get cart failed: %v", err)
	}
	if err := p.cart.Add(ctx, "p1", 1); !client.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("Add error = %v, want 400", err)
	}
	if _, err := p.cart.Get(ctx); err != nil {
		t.Fatalf("Get cart failed: %v", err)
	}

	if got := mock.PathCount("/cart"); got != 1 {
		t.Errorf("cart requests = %d, want 1", got)
	}
	if p.cart.Busy("add", "p1") {
		t.Error("add control still disabled after failure")
	}
}

// TestProductPartitionsAreIsolated tests that dropping product:1 keeps
// product:12 cached.
func TestProductPartitionsAreIsolated(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockBackend()
	defer mock.Close()
	mock.SetResponse("/product/1", testutil.NewJSONResponse(`{"_id":"1"}`))
	mock.SetResponse("/product/12", testutil.NewJSONResponse(`{"_id":"12"}`))

	ctx := context.Background()
	p := newProcess(t, mock, redisClient)

	for _, id := range []string{"1", "12"} {
		if _, err := p.catalog.Product(ctx, id); err != nil {
			t.Fatalf("Product %s failed: %v", id, err)
		}
	}

	if err := p.loader.Invalidate(ctx, cache.ProductPartition("1")); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	for _, id := range []string{"1", "12"} {
		if _, err := p.catalog.Product(ctx, id); err != nil {
			t.Fatalf("Product %s failed: %v", id, err)
		}
	}

	if got := mock.PathCount("/product/1"); got != 2 {
		t.Errorf("/product/1 requests = %d, want 2", got)
	}
	if got := mock.PathCount("/product/12"); got != 1 {
		t.Errorf("/product/12 requests = %d, want 1", got)
	}
}
