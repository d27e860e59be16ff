package cartsync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/yungbote/printshop-backend/internal/domain/cart"
	"github.com/yungbote/printshop-backend/internal/platform/logger"
	"github.com/yungbote/printshop-backend/internal/services"
)

type BreakerConfig struct {
	Name     string
	Failures uint32
	Cooldown time.Duration
	// OnState, when set, receives every state change (0 closed, 1
	// half-open, 2 open).
	OnState func(name string, state int)
}

// NewRemoteBreaker guards the cart service. Only persistence failures count:
// a line_not_found or a validation error says nothing about the database.
func NewRemoteBreaker(log *logger.Logger, cfg BreakerConfig) *gobreaker.CircuitBreaker[any] {
	if cfg.Name == "" {
		cfg.Name = "cart-remote"
	}
	if cfg.Failures == 0 {
		cfg.Failures = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	breakerLog := log.With("service", "CartRemoteBreaker")
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !cart.IsCode(err, cart.CodePersistence)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			breakerLog.Warn("Breaker state changed", "name", name, "from", from.String(), "to", to.String())
			if cfg.OnState != nil {
				cfg.OnState(name, int(to))
			}
		},
	})
}

// RemoteBackend is the authenticated cart of one user, served by CartService.
type RemoteBackend struct {
	ownerID uuid.UUID
	svc     services.CartService
	breaker *gobreaker.CircuitBreaker[any]
	timeout time.Duration
}

// NewRemoteFactory returns a RemoteFactory sharing one breaker across all
// sessions. breaker may be nil.
func NewRemoteFactory(svc services.CartService, breaker *gobreaker.CircuitBreaker[any], timeout time.Duration) RemoteFactory {
	return func(ownerID uuid.UUID) Backend {
		return &RemoteBackend{ownerID: ownerID, svc: svc, breaker: breaker, timeout: timeout}
	}
}

func (b *RemoteBackend) Mode() Mode { return ModeAuthenticated }

func (b *RemoteBackend) OwnerID() uuid.UUID { return b.ownerID }

func (b *RemoteBackend) List(ctx context.Context) ([]cart.Line, error) {
	out, err := b.call(ctx, "cart.remote.list", func(ctx context.Context) (any, error) {
		return b.svc.List(ctx, b.ownerID)
	})
	if err != nil {
		return nil, err
	}
	lines, _ := out.([]cart.Line)
	if lines == nil {
		lines = []cart.Line{}
	}
	return lines, nil
}

func (b *RemoteBackend) AddOrIncrement(ctx context.Context, in cart.AddLineInput) error {
	_, err := b.call(ctx, "cart.remote.add", func(ctx context.Context) (any, error) {
		return b.svc.AddOrIncrement(ctx, b.ownerID, in)
	})
	return err
}

func (b *RemoteBackend) Update(ctx context.Context, lineID string, quantity int) error {
	_, err := b.call(ctx, "cart.remote.update", func(ctx context.Context) (any, error) {
		return b.svc.Update(ctx, b.ownerID, lineID, quantity)
	})
	return err
}

func (b *RemoteBackend) Remove(ctx context.Context, lineID string) error {
	_, err := b.call(ctx, "cart.remote.remove", func(ctx context.Context) (any, error) {
		return nil, b.svc.Remove(ctx, b.ownerID, lineID)
	})
	return err
}

func (b *RemoteBackend) ClearAll(ctx context.Context) error {
	_, err := b.call(ctx, "cart.remote.clear", func(ctx context.Context) (any, error) {
		return b.svc.ClearAll(ctx, b.ownerID)
	})
	return err
}

func (b *RemoteBackend) call(ctx context.Context, op string, fn func(ctx context.Context) (any, error)) (any, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	run := func() (any, error) {
		out, err := fn(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && cart.CodeOf(err) == "" {
				return nil, cart.NewError(cart.CodePersistence, op, "cart service timed out", err)
			}
			return nil, cart.Normalize(op, err)
		}
		return out, nil
	}
	if b.breaker == nil {
		return run()
	}
	out, err := b.breaker.Execute(run)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, cart.NewError(cart.CodePersistence, op, "cart service unavailable", err)
	}
	return out, err
}
