package imagestore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// BreakerConfig holds configuration for the circuit breaker.
type BreakerConfig struct {
	// Name identifies this breaker in metrics and logs.
	Name string

	// MaxRequests is the maximum number of requests allowed in the half-open state.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state for clearing counts.
	Interval time.Duration

	// Timeout is how long the breaker stays open before moving to half-open.
	Timeout time.Duration

	// FailureRatio trips the breaker once MinRequests have been seen.
	FailureRatio float64
	MinRequests  uint32
}

func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

var breakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Current state of the circuit breaker (0=closed, 1=half-open, 2=open)",
	},
	[]string{"name"},
)

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Breaker guards a Store with a circuit breaker. While open, uploads and
// deletes fail fast with an Unavailable error.
type Breaker struct {
	next    Store
	uploads *gobreaker.CircuitBreaker[domain.Image]
	deletes *gobreaker.CircuitBreaker[struct{}]
}

func NewBreaker(next Store, cfg BreakerConfig, logger *slog.Logger) *Breaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		// A cancelled request says nothing about the store's health.
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	}
	breakerState.WithLabelValues(cfg.Name).Set(0)

	deleteSettings := settings
	deleteSettings.Name = cfg.Name + "-delete"
	breakerState.WithLabelValues(deleteSettings.Name).Set(0)

	return &Breaker{
		next:    next,
		uploads: gobreaker.NewCircuitBreaker[domain.Image](settings),
		deletes: gobreaker.NewCircuitBreaker[struct{}](deleteSettings),
	}
}

func (b *Breaker) Upload(ctx context.Context, folder string, file File) (domain.Image, error) {
	img, err := b.uploads.Execute(func() (domain.Image, error) {
		return b.next.Upload(ctx, folder, file)
	})
	if err != nil {
		return domain.Image{}, unavailable(err)
	}
	return img, nil
}

func (b *Breaker) Delete(ctx context.Context, publicID string) error {
	_, err := b.deletes.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Delete(ctx, publicID)
	})
	if err != nil {
		return unavailable(err)
	}
	return nil
}

// State returns the state of the upload breaker.
func (b *Breaker) State() gobreaker.State {
	return b.uploads.State()
}

func unavailable(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperrors.Unavailable("image store is unavailable", err)
	}
	return apperrors.Unavailable("image store request failed", err)
}
