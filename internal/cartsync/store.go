// Package cartsync keeps a shopper's cart consistent across the anonymous
// (profile-local) and authenticated (server-side) persistence modes.
package cartsync

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/yungbote/printshop-backend/internal/domain/cart"
	"github.com/yungbote/printshop-backend/internal/normalization"
	"github.com/yungbote/printshop-backend/internal/platform/logger"
)

// State is a point-in-time view of a Store.
type State struct {
	Items        []cart.LineView `json:"items"`
	Loading      bool            `json:"loading"`
	Error        string          `json:"error,omitempty"`
	ErrorKind    cart.ErrorCode  `json:"error_kind,omitempty"`
	Mode         Mode            `json:"mode"`
	TotalPrice   int64           `json:"total_price"`
	TotalItems   int             `json:"total_items"`
	DisplayTotal string          `json:"display_total"`
	Degraded     bool            `json:"local_storage_degraded,omitempty"`
}

// Recorder receives cart telemetry. A nil Recorder records nothing.
type Recorder interface {
	ObserveCartOp(op, mode, outcome string, dur time.Duration)
	SetCartSessions(n int)
}

// Store is the cart of one browser profile. Mutations are serialized; every
// mutation and identity switch bumps an operation counter, and a reload that
// finishes after a newer operation started is dropped.
type Store struct {
	log       *logger.Logger
	local     *LocalBackend
	newRemote RemoteFactory
	recorder  Recorder
	sem       *semaphore.Weighted
	seq       atomic.Uint64

	mu       sync.RWMutex
	identity Identity
	backend  Backend
	items    []cart.Line
	loading  bool
	errMsg   string
	errKind  cart.ErrorCode
	closed   bool
}

// NewStore builds a store starting as initial. It holds no items until the
// first Refresh.
func NewStore(log *logger.Logger, local *LocalBackend, newRemote RemoteFactory, initial Identity) *Store {
	s := &Store{
		log:       log.With("service", "CartStore"),
		local:     local,
		newRemote: newRemote,
		sem:       semaphore.NewWeighted(1),
		items:     []cart.Line{},
	}
	s.identity = initial
	s.backend = s.backendFor(initial)
	return s
}

// Bind makes the store follow identity transitions reported to o.
func (s *Store) Bind(o *Observer) {
	o.Subscribe(func(ctx context.Context, _, next Identity) error {
		return s.SwitchIdentity(ctx, next)
	})
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := cart.TotalPrice(s.items)
	return State{
		Items:        cart.ViewOf(s.items),
		Loading:      s.loading,
		Error:        s.errMsg,
		ErrorKind:    s.errKind,
		Mode:         s.identity.Mode(),
		TotalPrice:   total,
		TotalItems:   cart.TotalItems(s.items),
		DisplayTotal: normalization.FormatPrice(total),
		Degraded:     s.local != nil && s.local.Degraded(),
	}
}

func (s *Store) Items() []cart.Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneLines(s.items)
}

func (s *Store) Identity() Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

func (s *Store) Mode() Mode { return s.Identity().Mode() }

func (s *Store) TotalPrice() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cart.TotalPrice(s.items)
}

func (s *Store) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cart.TotalItems(s.items)
}

// AddItem adds quantity of product, incrementing the existing line when the
// product is already in the cart. A zero quantity means one.
func (s *Store) AddItem(ctx context.Context, product cart.ProductRef, quantity int) error {
	const op = "cart.add_item"
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return s.fail(op, s.seq.Load(), cart.Validation(op, "quantity must be a positive integer"))
	}
	in := cart.AddLineInput{
		ProductID: product.ID,
		UnitPrice: normalization.ParsePrice(product.DisplayPrice),
		Quantity:  quantity,
		Title:     product.Title,
		Image:     product.Image,
		Size:      product.Size,
	}
	return s.mutate(ctx, op, func(ctx context.Context, b Backend) error {
		return b.AddOrIncrement(ctx, in)
	})
}

func (s *Store) RemoveItem(ctx context.Context, lineID string) error {
	return s.mutate(ctx, "cart.remove_item", func(ctx context.Context, b Backend) error {
		return b.Remove(ctx, lineID)
	})
}

// UpdateQuantity sets the quantity of a line. quantity <= 0 removes it.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	const op = "cart.update_quantity"
	if quantity > cart.MaxQuantity {
		return s.fail(op, s.seq.Load(), cart.ValidateQuantity(op, quantity))
	}
	return s.mutate(ctx, op, func(ctx context.Context, b Backend) error {
		if quantity <= 0 {
			return b.Remove(ctx, lineID)
		}
		return b.Update(ctx, lineID, quantity)
	})
}

func (s *Store) ClearCart(ctx context.Context) error {
	return s.mutate(ctx, "cart.clear", func(ctx context.Context, b Backend) error {
		return b.ClearAll(ctx)
	})
}

// Refresh reloads from whichever backend is authoritative.
func (s *Store) Refresh(ctx context.Context) error {
	return s.mutate(ctx, "cart.refresh", nil)
}

// RecordError puts a failure that happened outside the store, such as a
// catalog lookup for an add, into the error slot and returns it normalized.
func (s *Store) RecordError(op string, err error) error {
	if err == nil {
		return nil
	}
	return s.fail(op, s.seq.Load(), err)
}

func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
	s.errKind = ""
}

// SwitchIdentity moves the store to next. The old identity's items are
// dropped immediately and nothing is merged; the new backend is then
// reloaded in full. In-flight operations of the old identity are discarded.
func (s *Store) SwitchIdentity(ctx context.Context, next Identity) error {
	const op = "cart.switch_identity"
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return cart.Validation(op, "store closed")
	}
	prev := s.identity
	if prev == next {
		s.mu.Unlock()
		return nil
	}
	s.seq.Add(1)
	s.identity = next
	s.backend = s.backendFor(next)
	s.items = []cart.Line{}
	s.errMsg = ""
	s.errKind = ""
	s.mu.Unlock()

	if next.Authenticated() && s.local != nil {
		s.local.Reset()
	}
	s.log.Info("Cart identity switched", "from", string(prev.Mode()), "to", string(next.Mode()))
	return s.mutate(ctx, op, nil)
}

// Close tears the store down. Every later call fails.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.seq.Add(1)
}

func (s *Store) mutate(ctx context.Context, op string, fn func(ctx context.Context, b Backend) error) (err error) {
	start := time.Now()
	var mode Mode
	defer func() { s.record(op, mode, err, start) }()

	if aerr := s.sem.Acquire(ctx, 1); aerr != nil {
		mode = s.Mode()
		return s.fail(op, s.seq.Load(), cart.Wrap(cart.CodePersistence, op, aerr))
	}
	defer s.sem.Release(1)

	s.mu.Lock()
	mode = s.identity.Mode()
	if s.closed {
		s.mu.Unlock()
		return cart.Validation(op, "store closed")
	}
	seq := s.seq.Add(1)
	backend := s.backend
	s.loading = true
	s.mu.Unlock()
	defer s.finishLoading()

	if fn != nil {
		if ferr := fn(ctx, backend); ferr != nil {
			return s.fail(op, seq, ferr)
		}
	}
	lines, lerr := backend.List(ctx)
	if lerr != nil {
		return s.fail(op, seq, lerr)
	}
	s.commit(op, seq, lines)
	return nil
}

func (s *Store) commit(op string, seq uint64, lines []cart.Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq.Load() {
		s.log.Debug("Discarding stale cart reload", "op", op, "seq", seq)
		return
	}
	s.items = lines
	s.errMsg = ""
	s.errKind = ""
}

// fail normalizes err, records it in the error slot when seq is still the
// newest operation, and returns it.
func (s *Store) fail(op string, seq uint64, err error) error {
	ce := cart.Normalize(op, err)
	s.mu.Lock()
	if seq == s.seq.Load() {
		s.errMsg = cart.DisplayMessage(ce)
		s.errKind = ce.Code
	}
	s.mu.Unlock()

	if ce.Code == cart.CodeUnknown || ce.Code == cart.CodePersistence {
		s.log.Warn("Cart operation failed", "op", op, "code", string(ce.Code), "error", ce)
	} else {
		s.log.Debug("Cart operation rejected", "op", op, "code", string(ce.Code), "error", ce)
	}
	return ce
}

func (s *Store) record(op string, mode Mode, err error, start time.Time) {
	if s.recorder == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(cart.CodeOf(err))
	}
	s.recorder.ObserveCartOp(op, string(mode), outcome, time.Since(start))
}

func (s *Store) finishLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

func (s *Store) backendFor(id Identity) Backend {
	if id.Authenticated() && s.newRemote != nil {
		return s.newRemote(id.UserID)
	}
	return s.local
}
