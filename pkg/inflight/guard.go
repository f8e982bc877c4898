package inflight

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for in-flight gating.
var (
	operationsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_operations_in_flight",
		Help: "Number of guarded mutations currently in flight",
	})

	duplicateRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_duplicate_submissions_total",
		Help: "Total number of submissions refused because the same operation was in flight",
	})
)

// Guard tracks which operations are in flight. The zero value is not
// usable; call NewGuard.
type Guard struct {
	mu      sync.Mutex
	holders map[string]State
	logger  zerolog.Logger
}

// NewGuard creates an empty guard.
func NewGuard(logger zerolog.Logger) *Guard {
	return &Guard{
		holders: make(map[string]State),
		logger:  logger,
	}
}

// Acquire claims op. When op is already held it returns ok=false and a nil
// release. Otherwise release must be called exactly once when the
// operation finishes, successfully or not; extra calls are ignored.
func (g *Guard) Acquire(op string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if held, busy := g.holders[op]; busy {
		duplicateRejectionsTotal.Inc()
		g.logger.Debug().
			Str("operation", op).
			Dur("elapsed", held.Elapsed()).
			Msg("Duplicate submission refused")
		return nil, false
	}

	g.holders[op] = State{Operation: op, StartedAt: time.Now()}
	operationsInFlight.Inc()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.holders, op)
			g.mu.Unlock()
			operationsInFlight.Dec()
		})
	}, true
}

// Busy reports whether op is in flight; a UI disables op's control while
// this is true.
func (g *Guard) Busy(op string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.holders[op]
	return busy
}

// Snapshot lists the operations in flight, sorted by name.
func (g *Guard) Snapshot() []State {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]State, 0, len(g.holders))
	for _, s := range g.holders {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}

// Run executes fn while holding op, returning ErrBusy if op is in flight.
func (g *Guard) Run(op string, fn func() error) error {
	release, ok := g.Acquire(op)
	if !ok {
		return ErrBusy
	}
	defer release()
	return fn()
}
