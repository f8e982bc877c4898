// Package orders places orders, starts card payments and lists the
// signed-in user's order history.
package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/cache"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/client"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/inflight"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/logging"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/validation"
)

// Backend paths.
const (
	PathOrders        = "/order"
	PathCreate        = "/order/create"
	PathCreatePayment = "/order/create-payment"
)

// PaymentMethod selects how an order is paid.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// ParsePaymentMethod accepts the method names case-insensitively, plus the
// "cod" alias for cash.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash", "cod":
		return PaymentCash, true
	case "card", "visa":
		return PaymentCard, true
	}
	return "", false
}

// Checkout is the checkout form.
type Checkout struct {
	Phone         string        `json:"phone" validate:"required,egphone" msg:"Phone must be a valid Egyptian number"`
	Address       string        `json:"address" validate:"required,min=5" msg:"Address must be at least 5 characters"`
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"oneof=cash card" msg:"Payment method must be cash or card"`
}

// Item is one line of a placed order.
type Item struct {
	ID        string          `json:"_id"`
	Name      string          `json:"name"`
	MainImage string          `json:"mainImage"`
	SubPrice  decimal.Decimal `json:"subPrice"`
	Quantity  int             `json:"quantity"`
}

// Order is a placed order.
type Order struct {
	ID         string          `json:"_id"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Status     string          `json:"status"`
	ArrivesAt  time.Time       `json:"arrivesAt"`
	Items      []Item          `json:"items"`
}

// Result is the outcome of Checkout. PaymentURL is set for card orders;
// the caller sends the user there to pay.
type Result struct {
	OrderID    string
	PaymentURL string
}

// Doer is the slice of *client.Client the service needs.
type Doer interface {
	Do(ctx context.Context, r client.Request) (*client.Response, error)
}

// Service places and lists orders.
type Service struct {
	client Doer
	loader *cache.Loader
	guard  *inflight.Guard
	logger zerolog.Logger
}

// New creates an orders service.
func New(c Doer, loader *cache.Loader, guard *inflight.Guard, logger zerolog.Logger) *Service {
	return &Service{
		client: c,
		loader: loader,
		guard:  guard,
		logger: logger.With().Str("component", logging.ComponentOrders).Logger(),
	}
}

type createResponse struct {
	Message string `json:"message"`
	Order   struct {
		ID string `json:"_id"`
	} `json:"order"`
}

// Create validates form and places the order, returning its id. On success
// the orders and cart partitions are invalidated: the backend empties the
// cart into the order.
func (s *Service) Create(ctx context.Context, form Checkout) (string, error) {
	form.Phone = strings.TrimSpace(form.Phone)
	form.Address = strings.TrimSpace(form.Address)
	if err := validation.Struct(form); err != nil {
		return "", err
	}

	var out createResponse
	if err := client.SendJSON(ctx, s.client, client.Request{Method: http.MethodPost, Path: PathCreate, Body: form}, &out); err != nil {
		return "", fmt.Errorf("create order: %w", err)
	}
	if out.Order.ID == "" {
		return "", fmt.Errorf("create order: response carries no order id")
	}

	if err := s.loader.Invalidate(context.WithoutCancel(ctx), cache.PartitionOrders, cache.PartitionCart); err != nil {
		s.logger.Warn().Err(err).Msg("Order invalidation failed")
	}

	s.logger.Info().
		Str("order_id", out.Order.ID).
		Str("payment_method", string(form.PaymentMethod)).
		Msg("Order placed")
	return out.Order.ID, nil
}

// CreatePayment starts a card payment for orderID and returns the hosted
// payment page URL.
func (s *Service) CreatePayment(ctx context.Context, orderID string) (string, error) {
	if strings.TrimSpace(orderID) == "" {
		return "", fmt.Errorf("order id is required")
	}

	var out struct {
		URL string `json:"url"`
	}
	err := client.SendJSON(ctx, s.client, client.Request{
		Method: http.MethodPost,
		Path:   PathCreatePayment,
		Body:   map[string]string{"orderId": orderID},
	}, &out)
	if err != nil {
		return "", fmt.Errorf("create payment: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("create payment: response carries no url")
	}
	return out.URL, nil
}

// Checkout places the order and, for card payments, starts the payment.
// A second checkout while one is in flight returns inflight.ErrBusy.
func (s *Service) Checkout(ctx context.Context, form Checkout) (Result, error) {
	var res Result
	err := s.guard.Run(inflight.Op("checkout", "order"), func() error {
		id, err := s.Create(ctx, form)
		if err != nil {
			return err
		}
		res.OrderID = id

		if form.PaymentMethod != PaymentCard {
			return nil
		}
		url, err := s.CreatePayment(ctx, id)
		if err != nil {
			return err
		}
		res.PaymentURL = url
		return nil
	})
	return res, err
}

// List returns the order history.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	orders, err := cache.LoadDecoded(ctx, s.loader, cache.Key{Partition: cache.PartitionOrders}, func(ctx context.Context) ([]byte, error) {
		return client.Get(ctx, s.client, client.Request{Path: PathOrders})
	}, decodeOrders)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// decodeOrders accepts a bare array or {"orders": [...]}.
func decodeOrders(body []byte) ([]Order, error) {
	body = bytes.TrimSpace(body)
	out := []Order{}

	if len(body) > 0 && body[0] == '{' {
		var wrapped struct {
			Orders []Order `json:"orders"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("decode orders: %w", err)
		}
		if wrapped.Orders != nil {
			out = wrapped.Orders
		}
		return out, nil
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	if out == nil {
		out = []Order{}
	}
	return out, nil
}
