package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/internal/testutil"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/cache"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/client"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/inflight"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/session"
)

const cartBody = `{
	"_id": "cart1",
	"products": [
		{"_id":"l1","productId":{"_id":"p1","name":"Phone","price":500,"subPrice":450,"mainImage":{"secure_url":"u"}},"quantity":2}
	],
	"subTotal": 900
}`

type fixture struct {
	mock   *testutil.MockBackend
	svc    *Service
	loader *cache.Loader
	store  *cache.MemoryStore
	guard  *inflight.Guard
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mock := testutil.NewMockBackend()
	t.Cleanup(mock.Close)

	sess, err := session.Open(nil)
	require.NoError(t, err)
	require.NoError(t, sess.Set("tok-123"))

	cfg := client.DefaultConfig(mock.URL())
	cfg.Session = sess
	c, err := client.New(cfg)
	require.NoError(t, err)

	store := cache.NewMemoryStore()
	loader := cache.NewLoader(store, zerolog.Nop())
	guard := inflight.NewGuard(zerolog.Nop())

	return &fixture{
		mock:   mock,
		svc:    New(c, loader, guard, zerolog.Nop()),
		loader: loader,
		store:  store,
		guard:  guard,
	}
}

func TestGet(t *testing.T) {
	f := newFixture(t)
	f.mock.SetResponse("/cart", testutil.NewJSONResponse(cartBody))

	c, err := f.svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cart1", c.ID)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "p1", c.Items[0].Product.ID)
	assert.Equal(t, "900", c.SubTotal.String())
	assert.Equal(t, "900", c.Items[0].LineTotal().String())
	assert.Equal(t, 2, c.Count())

	_, err = f.svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.mock.PathCount("/cart"), "second read served from cache")

	req, _ := f.mock.LastRequest()
	assert.Equal(t, "Bearer tok-123", req.Header.Get("Authorization"))
}

func TestAdd_SuccessInvalidatesCartOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mock.SetResponse("/cart", testutil.NewJSONResponse(cartBody))
	f.mock.SetResponse("POST /cart/add", testutil.NewCreatedResponse(cartBody))

	productsKey := cache.Key{Partition: cache.PartitionProducts, ID: "page=1"}
	require.NoError(t, f.store.Set(ctx, productsKey, &cache.Entry{Data: []byte(`[]`), CachedAt: time.Now()}))

	_, err := f.svc.Get(ctx)
	require.NoError(t, err)

	require.NoError(t, f.svc.Add(ctx, "p1", 0))

	req, _ := f.mock.LastRequest()
	var sent map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &sent))
	assert.Equal(t, "p1", sent["productId"])
	assert.EqualValues(t, 1, sent["quantity"], "quantity defaults to 1")

	_, err = f.store.Get(ctx, cache.Key{Partition: cache.PartitionCart})
	assert.ErrorIs(t, err, cache.ErrCacheMiss, "cart partition invalidated")
	_, err = f.store.Get(ctx, productsKey)
	assert.NoError(t, err, "products partition untouched")

	_, err = f.svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.mock.PathCount("/cart"))
	assert.False(t, f.svc.Busy("add", "p1"))
}

func TestAdd_FailureKeepsCacheAndReleasesGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mock.SetResponse("/cart", testutil.NewJSONResponse(cartBody))
	f.mock.SetResponse("POST /cart/add", testutil.NewErrorResponse(http.StatusBadRequest, "Out of stock"))

	_, err := f.svc.Get(ctx)
	require.NoError(t, err)

	err = f.svc.Add(ctx, "p1", 1)
	var cerr *client.Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "Out of stock", cerr.Message)
	assert.JSONEq(t, `{"message":"Out of stock"}`, string(cerr.Payload))

	_, err = f.store.Get(ctx, cache.Key{Partition: cache.PartitionCart})
	assert.NoError(t, err, "cached cart survives a failed mutation")
	assert.False(t, f.svc.Busy("add", "p1"), "control re-enabled")
}

func TestAdd_DuplicateSubmissionRefused(t *testing.T) {
	f := newFixture(t)

	release, ok := f.guard.Acquire(inflight.Op("add", "p1"))
	require.True(t, ok)
	assert.True(t, f.svc.Busy("add", "p1"))

	err := f.svc.Add(context.Background(), "p1", 1)
	assert.ErrorIs(t, err, inflight.ErrBusy)
	assert.Equal(t, 0, f.mock.GetRequestCount(), "no request while in flight")

	release()
	f.mock.SetResponse("POST /cart/add", testutil.NewCreatedResponse(cartBody))
	assert.NoError(t, f.svc.Add(context.Background(), "p1", 1))
}

func TestRemoveAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mock.SetResponse("PATCH /cart/remove", testutil.NewJSONResponse(cartBody))
	f.mock.SetResponse("PATCH /cart/update", testutil.NewJSONResponse(cartBody))

	require.NoError(t, f.svc.Remove(ctx, "p1"))
	req, _ := f.mock.LastRequest()
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.JSONEq(t, `{"productId":"p1"}`, string(req.Body))

	require.NoError(t, f.svc.UpdateQuantity(ctx, "p1", 5))
	req, _ = f.mock.LastRequest()
	assert.JSONEq(t, `{"productId":"p1","quantity":5}`, string(req.Body))

	assert.Error(t, f.svc.UpdateQuantity(ctx, "p1", 0))
	assert.Error(t, f.svc.Remove(ctx, ""))
}

func TestGet_UndecodableBodyNotCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mock.SetResponse("/cart", testutil.NewJSONResponse(`<html>proxy error</html>`))

	_, err := f.svc.Get(ctx)
	require.Error(t, err)
	assert.Equal(t, 0, f.store.Len(), "html body must not be cached")

	f.mock.SetResponse("/cart", testutil.NewJSONResponse(cartBody))
	c, err := f.svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cart1", c.ID)
	assert.Equal(t, 2, f.mock.PathCount("/cart"))
}

// cancelAfterDo cancels the caller's context as soon as the backend has
// answered, before the service gets to invalidate.
type cancelAfterDo struct {
	Doer
	cancel context.CancelFunc
}

func (c cancelAfterDo) Do(ctx context.Context, r client.Request) (*client.Response, error) {
	resp, err := c.Doer.Do(ctx, r)
	c.cancel()
	return resp, err
}

// ctxStore fails partition deletes on a done context, like a network store.
type ctxStore struct{ *cache.MemoryStore }

func (s ctxStore) DeletePartition(ctx context.Context, partition string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.MemoryStore.DeletePartition(ctx, partition)
}

func TestAdd_CallerCancelledAfterSuccessStillInvalidates(t *testing.T) {
	f := newFixture(t)
	f.mock.SetResponse("POST /cart/add", testutil.NewCreatedResponse(cartBody))

	sess, err := session.Open(nil)
	require.NoError(t, err)
	require.NoError(t, sess.Set("tok-123"))
	cfg := client.DefaultConfig(f.mock.URL())
	cfg.Session = sess
	c, err := client.New(cfg)
	require.NoError(t, err)

	store := ctxStore{cache.NewMemoryStore()}
	cartKey := cache.Key{Partition: cache.PartitionCart}
	require.NoError(t, store.Set(context.Background(), cartKey, &cache.Entry{Data: []byte(cartBody), CachedAt: time.Now()}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := New(cancelAfterDo{Doer: c, cancel: cancel}, cache.NewLoader(store, zerolog.Nop()), inflight.NewGuard(zerolog.Nop()), zerolog.Nop())

	require.NoError(t, svc.Add(ctx, "p1", 1))
	require.Error(t, ctx.Err())

	_, err = store.Get(context.Background(), cartKey)
	assert.ErrorIs(t, err, cache.ErrCacheMiss, "stale cart must be dropped")
}
