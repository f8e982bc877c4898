package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/internal/config"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/auth"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/cache"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/cart"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/catalog"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/client"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/inflight"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/logging"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/metrics"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/orders"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/session"
)

// app holds everything a command needs. It is built once per invocation.
type app struct {
	cfg    config.Config
	logger zerolog.Logger

	session *session.Session
	client  *client.Client
	loader  *cache.Loader
	guard   *inflight.Guard

	catalog *catalog.Fetcher
	cart    *cart.Service
	orders  *orders.Service
	auth    *auth.Service

	redis   *redis.Client
	metrics *metrics.Server
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
	})
	a := &app{cfg: cfg, logger: logging.NewLogger(logging.ComponentCLI)}

	fileStore, err := session.NewFileStore(cfg.SessionFile)
	if err != nil {
		return nil, err
	}
	if a.session, err = session.Open(fileStore); err != nil {
		return nil, err
	}

	clientCfg := client.DefaultConfig(cfg.BaseURL)
	clientCfg.UserAgent = cfg.UserAgent
	clientCfg.Timeout = cfg.Timeout
	clientCfg.Session = a.session
	clientCfg.Logger = &logger
	if a.client, err = client.New(clientCfg); err != nil {
		return nil, err
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	a.loader = cache.NewLoader(store, logging.NewLogger(logging.ComponentCache))
	a.guard = inflight.NewGuard(logging.NewLogger(logging.ComponentGuard))

	a.catalog = catalog.New(a.client, a.loader, logger)
	a.cart = cart.New(a.client, a.loader, a.guard, logger)
	a.orders = orders.New(a.client, a.loader, a.guard, logger)
	a.auth = auth.New(a.client, a.session, a.loader, a.guard, logger)

	if cfg.MetricsAddr != "" {
		if a.metrics, err = metrics.Listen(cfg.MetricsAddr, logger); err != nil {
			a.close()
			return nil, err
		}
	}

	return a, nil
}

// openStore picks the cache backend: Redis when configured, so entries are
// shared across invocations, otherwise process memory.
func (a *app) openStore(ctx context.Context) (cache.Store, error) {
	if a.cfg.RedisURL == "" {
		return cache.NewMemoryStore(), nil
	}

	opts, err := redis.ParseURL(a.cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	a.redis = redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := a.redis.Ping(pingCtx).Err(); err != nil {
		a.redis.Close()
		a.redis = nil
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	a.logger.Debug().Str("addr", opts.Addr).Msg("Connected to Redis")
	return cache.NewRedisStore(a.redis), nil
}

func (a *app) close() {
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = a.metrics.Shutdown(ctx)
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// requireSession fails fast for protected commands.
func (a *app) requireSession() error {
	if err := a.session.Require(); err != nil {
		return fmt.Errorf("%w: run 'neostore signin' first", err)
	}
	return nil
}
