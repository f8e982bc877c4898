// Package cart manages the signed-in user's cart. Reads go through the
// "cart" cache partition; successful mutations invalidate it.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/cache"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/catalog"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/client"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/inflight"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/logging"
)

// Backend paths.
const (
	PathCart   = "/cart"
	PathAdd    = "/cart/add"
	PathRemove = "/cart/remove"
	PathUpdate = "/cart/update"
)

// ItemProduct is the product as embedded in a cart line.
type ItemProduct struct {
	ID        string          `json:"_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	SubPrice  decimal.Decimal `json:"subPrice"`
	MainImage catalog.Image   `json:"mainImage"`
}

// Item is one cart line.
type Item struct {
	ID       string      `json:"_id"`
	Product  ItemProduct `json:"productId"`
	Quantity int         `json:"quantity"`
}

// LineTotal is SubPrice times Quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Product.SubPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the backend's cart document.
type Cart struct {
	ID       string          `json:"_id"`
	Items    []Item          `json:"products"`
	SubTotal decimal.Decimal `json:"subTotal"`
}

// Count is the total quantity across lines.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Doer is the slice of *client.Client the service needs.
type Doer interface {
	Do(ctx context.Context, r client.Request) (*client.Response, error)
}

// Service reads and mutates the cart.
type Service struct {
	client Doer
	loader *cache.Loader
	guard  *inflight.Guard
	logger zerolog.Logger
}

// New creates a cart service. guard may be shared with other services.
func New(c Doer, loader *cache.Loader, guard *inflight.Guard, logger zerolog.Logger) *Service {
	return &Service{
		client: c,
		loader: loader,
		guard:  guard,
		logger: logger.With().Str("component", logging.ComponentCart).Logger(),
	}
}

// Get returns the current cart.
func (s *Service) Get(ctx context.Context) (*Cart, error) {
	c, err := cache.LoadDecoded(ctx, s.loader, cache.Key{Partition: cache.PartitionCart}, func(ctx context.Context) ([]byte, error) {
		return client.Get(ctx, s.client, client.Request{Path: PathCart})
	}, decodeCart)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return c, nil
}

func decodeCart(body []byte) (*Cart, error) {
	var c Cart
	if err := json.Unmarshal(body, &c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []Item{}
	}
	return &c, nil
}

type lineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity,omitempty"`
}

// Add puts quantity units of productID in the cart. A quantity below 1 is
// sent as 1.
func (s *Service) Add(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	return s.mutate(ctx, "add", http.MethodPost, PathAdd, lineRequest{ProductID: productID, Quantity: quantity})
}

// Remove drops productID from the cart.
func (s *Service) Remove(ctx context.Context, productID string) error {
	return s.mutate(ctx, "remove", http.MethodPatch, PathRemove, lineRequest{ProductID: productID})
}

// UpdateQuantity sets the quantity of productID.
func (s *Service) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be >= 1 (got %d)", quantity)
	}
	return s.mutate(ctx, "update", http.MethodPatch, PathUpdate, lineRequest{ProductID: productID, Quantity: quantity})
}

// Busy reports whether verb ("add", "remove", "update") is in flight for
// productID, i.e. whether its control is disabled.
func (s *Service) Busy(verb, productID string) bool {
	return s.guard.Busy(inflight.Op(verb, productID))
}

// mutate runs one cart mutation under its in-flight guard. Only success
// invalidates the cart partition; the guard is released either way.
func (s *Service) mutate(ctx context.Context, verb, method, path string, body lineRequest) error {
	if strings.TrimSpace(body.ProductID) == "" {
		return fmt.Errorf("product id is required")
	}

	op := inflight.Op(verb, body.ProductID)
	err := s.guard.Run(op, func() error {
		if err := client.SendJSON(ctx, s.client, client.Request{Method: method, Path: path, Body: body}, nil); err != nil {
			return err
		}
		// The backend has changed; the caller going away must not leave the
		// old cart cached.
		if err := s.loader.Invalidate(context.WithoutCancel(ctx), cache.PartitionCart); err != nil {
			s.logger.Warn().Err(err).Msg("Cart invalidation failed")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s cart item %s: %w", verb, body.ProductID, err)
	}

	s.logger.Info().
		Str("op", verb).
		Str("product_id", body.ProductID).
		Int("quantity", body.Quantity).
		Msg("Cart updated")
	return nil
}
