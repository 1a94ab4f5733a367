package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"draftly/internal/config"
	"draftly/internal/port"
)

// ErrCircuitOpen is returned when a provider is skipped because its breaker
// or rate-limit cooldown is open.
var ErrCircuitOpen = errors.New("provider circuit open")

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// Guard wraps provider calls with a per-provider circuit breaker and a
// rate-limit cooldown. One Guard is shared for the life of the process so
// failure counts survive across requests.
type Guard struct {
	cfg    config.BreakerConfig
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[*port.RawResponse]
	circuits map[string]*circuitState
}

// NewGuard creates a Guard with the given breaker settings.
func NewGuard(cfg config.BreakerConfig, logger *zap.Logger) *Guard {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		breakers: make(map[string]*gobreaker.CircuitBreaker[*port.RawResponse]),
		circuits: make(map[string]*circuitState),
	}
}

// Call invokes p.Generate unless the provider is cooling down after a 429 or
// its breaker is open.
func (g *Guard) Call(ctx context.Context, p port.LLMProvider, packet port.PromptPacket) (*port.RawResponse, error) {
	name := p.Name()
	breaker, circuit := g.state(name)

	if resetAt, open := circuit.isOpenWithReset(g.now()); open {
		return nil, NewRateLimitError(name, ErrCircuitOpen, secondsUntil(resetAt, g.now()))
	}

	out, err := breaker.Execute(func() (*port.RawResponse, error) {
		return p.Generate(ctx, packet)
	})
	if err == nil {
		return out, nil
	}

	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		circuit.open(g.now().Add(rlErr.RetryAfter))
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s: %w: %w", name, ErrCircuitOpen, err)
	}
	return nil, err
}

// State reports the breaker state of a provider, "closed" when never called.
func (g *Guard) State(name string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if b, ok := g.breakers[name]; ok {
		return b.State().String()
	}
	return gobreaker.StateClosed.String()
}

func (g *Guard) state(name string) (*gobreaker.CircuitBreaker[*port.RawResponse], *circuitState) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if b, ok := g.breakers[name]; ok {
		return b, g.circuits[name]
	}

	threshold := g.cfg.FailureThreshold
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: g.cfg.MaxRequests,
		Interval:    g.cfg.Interval,
		Timeout:     g.cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellations say nothing about provider health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.logger.Warn("circuit breaker state change",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	b := gobreaker.NewCircuitBreaker[*port.RawResponse](settings)
	c := &circuitState{}
	g.breakers[name] = b
	g.circuits[name] = c
	return b, c
}

func secondsUntil(t, now time.Time) int {
	secs := int(t.Sub(now).Seconds())
	if secs < 1 {
		secs = 1
	}
	return secs
}
