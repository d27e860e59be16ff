package cartsync

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/printshop-backend/internal/domain/cart"
	"github.com/yungbote/printshop-backend/internal/platform/logger"
)

var (
	posterA = cart.ProductRef{ID: "poster-a", Title: "Poster A", Size: "A2", DisplayPrice: "5,000원"}
	cardsB  = cart.ProductRef{ID: "cards-b", Title: "Business cards", Size: "90x50", DisplayPrice: "12,000원"}
)

func newAnonStore(t *testing.T, snapshots SnapshotStore, r *remotes) *Store {
	t.Helper()
	log := logger.NewNop()
	local := NewLocalBackend(log, NewLocalAdapter(snapshots, "profile-1"))
	var factory RemoteFactory
	if r != nil {
		factory = r.factory()
	}
	return NewStore(log, local, factory, Anonymous())
}

func TestStore_AnonymousSameProductAddsIncrement(t *testing.T) {
	ctx := context.Background()
	snaps := NewMemorySnapshotStore()
	s := newAnonStore(t, snaps, nil)

	if err := s.AddItem(ctx, posterA, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := s.AddItem(ctx, posterA, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	items := s.Items()
	if len(items) != 1 {
		t.Fatalf("items: want=1 got=%d", len(items))
	}
	if items[0].Quantity != 3 || items[0].UnitPrice != 5000 {
		t.Fatalf("line: want qty=3 price=5000 got qty=%d price=%d", items[0].Quantity, items[0].UnitPrice)
	}
	if got := s.TotalPrice(); got != 15000 {
		t.Fatalf("TotalPrice: want=15000 got=%d", got)
	}

	stored, err := NewLocalAdapter(snaps, "profile-1").Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(stored) != 1 || stored[0].Quantity != 3 {
		t.Fatalf("snapshot must mirror memory, got %+v", stored)
	}
}

func TestStore_TotalsFollowEveryMutation(t *testing.T) {
	ctx := context.Background()
	s := newAnonStore(t, NewMemorySnapshotStore(), nil)

	check := func(step string) {
		t.Helper()
		var want int64
		var qty int
		for _, l := range s.Items() {
			want += l.UnitPrice * int64(l.Quantity)
			qty += l.Quantity
		}
		if got := s.TotalPrice(); got != want {
			t.Fatalf("%s: TotalPrice want=%d got=%d", step, want, got)
		}
		if got := s.TotalItems(); got != qty {
			t.Fatalf("%s: TotalItems want=%d got=%d", step, qty, got)
		}
		st := s.State()
		if st.TotalPrice != want || st.Loading {
			t.Fatalf("%s: state totals=%d loading=%v", step, st.TotalPrice, st.Loading)
		}
	}

	_ = s.AddItem(ctx, posterA, 2)
	check("add a")
	_ = s.AddItem(ctx, cardsB, 1)
	check("add b")
	b := s.Items()[1]
	if err := s.UpdateQuantity(ctx, b.ID, 4); err != nil {
		t.Fatalf("UpdateQuantity: %v", err)
	}
	check("update b")
	a := s.Items()[0]
	if err := s.RemoveItem(ctx, a.ID); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	check("remove a")
	if got := s.TotalPrice(); got != 48000 {
		t.Fatalf("final TotalPrice: want=48000 got=%d", got)
	}
	if got := s.State().DisplayTotal; got != "48,000원" {
		t.Fatalf("DisplayTotal: got=%q", got)
	}
}

func TestStore_UpdateQuantityNonPositiveRemoves(t *testing.T) {
	ctx := context.Background()
	for _, q := range []int{0, -5} {
		s := newAnonStore(t, NewMemorySnapshotStore(), nil)
		_ = s.AddItem(ctx, posterA, 1)
		_ = s.AddItem(ctx, cardsB, 1)
		id := s.Items()[0].ID
		if err := s.UpdateQuantity(ctx, id, q); err != nil {
			t.Fatalf("UpdateQuantity(%d): %v", q, err)
		}
		items := s.Items()
		if len(items) != 1 || items[0].ProductID != cardsB.ID {
			t.Fatalf("UpdateQuantity(%d): want only cards left, got %+v", q, items)
		}
	}
}

func TestStore_ClearCartDeletesLocalRecord(t *testing.T) {
	ctx := context.Background()
	snaps := NewMemorySnapshotStore()
	s := newAnonStore(t, snaps, nil)
	_ = s.AddItem(ctx, posterA, 1)

	if err := s.ClearCart(ctx); err != nil {
		t.Fatalf("ClearCart: %v", err)
	}
	if len(s.Items()) != 0 {
		t.Fatalf("items must be empty after clear")
	}
	if _, found, _ := snaps.Get(ctx, LocalKey("profile-1")); found {
		t.Fatalf("local record must be absent after clear")
	}
}

func TestStore_LoginShowsOnlyServerCart(t *testing.T) {
	ctx := context.Background()
	r := newRemotes()
	userID := uuid.New()
	r.get(userID).lines = []cart.Line{{ID: "srv-1", ProductID: "mug", UnitPrice: 700, Quantity: 1}}

	s := newAnonStore(t, NewMemorySnapshotStore(), r)
	_ = s.AddItem(ctx, posterA, 1)
	_ = s.AddItem(ctx, posterA, 2)
	if s.TotalPrice() != 15000 {
		t.Fatalf("anonymous total: want=15000 got=%d", s.TotalPrice())
	}

	if err := s.SwitchIdentity(ctx, User(userID)); err != nil {
		t.Fatalf("SwitchIdentity: %v", err)
	}
	items := s.Items()
	if len(items) != 1 || items[0].ID != "srv-1" {
		t.Fatalf("after login only the server cart is shown, got %+v", items)
	}
	if s.Mode() != ModeAuthenticated {
		t.Fatalf("mode: want authenticated got %s", s.Mode())
	}

	// Authenticated adds go to the server, never to the local snapshot.
	if err := s.AddItem(ctx, cardsB, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if got := len(r.get(userID).lines); got != 2 {
		t.Fatalf("server lines: want=2 got=%d", got)
	}

	if err := s.SwitchIdentity(ctx, Anonymous()); err != nil {
		t.Fatalf("SwitchIdentity (logout): %v", err)
	}
	items = s.Items()
	if len(items) != 1 || items[0].ProductID != posterA.ID || items[0].Quantity != 3 {
		t.Fatalf("after logout the old local snapshot returns, got %+v", items)
	}
}

func TestStore_SwitchBetweenUsers(t *testing.T) {
	ctx := context.Background()
	r := newRemotes()
	alice, bob := uuid.New(), uuid.New()
	r.get(alice).lines = []cart.Line{{ID: "a1", ProductID: "p", UnitPrice: 1, Quantity: 1}}
	r.get(bob).lines = []cart.Line{{ID: "b1", ProductID: "q", UnitPrice: 2, Quantity: 1}}

	s := newAnonStore(t, NewMemorySnapshotStore(), r)
	if err := s.SwitchIdentity(ctx, User(alice)); err != nil {
		t.Fatalf("switch alice: %v", err)
	}
	if err := s.SwitchIdentity(ctx, User(bob)); err != nil {
		t.Fatalf("switch bob: %v", err)
	}
	items := s.Items()
	if len(items) != 1 || items[0].ID != "b1" {
		t.Fatalf("want bob's cart, got %+v", items)
	}
}

func TestStore_AuthenticatedRemoveUnknownID(t *testing.T) {
	ctx := context.Background()
	r := newRemotes()
	userID := uuid.New()
	r.get(userID).lines = []cart.Line{{ID: "srv-1", ProductID: "mug", UnitPrice: 700, Quantity: 2}}

	s := NewStore(logger.NewNop(), NewLocalBackend(logger.NewNop(), NewLocalAdapter(NewMemorySnapshotStore(), "p")), r.factory(), User(userID))
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	err := s.RemoveItem(ctx, "does-not-exist")
	if !cart.IsCode(err, cart.CodeLineNotFound) {
		t.Fatalf("RemoveItem unknown: want line_not_found got %v", err)
	}
	st := s.State()
	if len(st.Items) != 1 || st.Items[0].Quantity != 2 {
		t.Fatalf("items must be unchanged, got %+v", st.Items)
	}
	if st.Error == "" || st.ErrorKind != cart.CodeLineNotFound {
		t.Fatalf("error slot: got %q (%s)", st.Error, st.ErrorKind)
	}
	if st.Loading {
		t.Fatalf("loading must be reset after a failure")
	}

	s.ClearError()
	if st := s.State(); st.Error != "" || st.ErrorKind != "" {
		t.Fatalf("ClearError: got %q", st.Error)
	}
}

func TestStore_UnknownLineAnonymous(t *testing.T) {
	ctx := context.Background()
	s := newAnonStore(t, NewMemorySnapshotStore(), nil)
	_ = s.AddItem(ctx, posterA, 1)

	if err := s.UpdateQuantity(ctx, "local-0", 3); !cart.IsCode(err, cart.CodeLineNotFound) {
		t.Fatalf("UpdateQuantity unknown: want line_not_found got %v", err)
	}
	if err := s.RemoveItem(ctx, "local-0"); !cart.IsCode(err, cart.CodeLineNotFound) {
		t.Fatalf("RemoveItem unknown: want line_not_found got %v", err)
	}
	if len(s.Items()) != 1 {
		t.Fatalf("items must be unchanged")
	}
}

func TestStore_AddItemQuantityRules(t *testing.T) {
	ctx := context.Background()
	s := newAnonStore(t, NewMemorySnapshotStore(), nil)

	if err := s.AddItem(ctx, posterA, 0); err != nil {
		t.Fatalf("AddItem(0): %v", err)
	}
	if got := s.Items()[0].Quantity; got != 1 {
		t.Fatalf("zero quantity defaults to one, got %d", got)
	}
	if err := s.AddItem(ctx, posterA, -2); !cart.IsCode(err, cart.CodeValidation) {
		t.Fatalf("negative quantity: want validation got %v", err)
	}
	if s.State().ErrorKind != cart.CodeValidation {
		t.Fatalf("validation failure must be recorded")
	}
	if got := s.Items()[0].Quantity; got != 1 {
		t.Fatalf("items must be unchanged after a rejected add, got %d", got)
	}

	free := cart.ProductRef{ID: "sample", Title: "Sample", DisplayPrice: "무료"}
	if err := s.AddItem(ctx, free, 1); err != nil {
		t.Fatalf("AddItem(free): %v", err)
	}
	if got := s.Items()[1].UnitPrice; got != 0 {
		t.Fatalf("digitless price parses to 0, got %d", got)
	}
}

func TestStore_LocalStorageFailureDegrades(t *testing.T) {
	ctx := context.Background()
	s := newAnonStore(t, failingSnapshots{}, nil)

	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if err := s.AddItem(ctx, posterA, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := s.AddItem(ctx, posterA, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	st := s.State()
	if st.Error != "" {
		t.Fatalf("storage failures must not surface, got %q", st.Error)
	}
	if !st.Degraded {
		t.Fatalf("backend must report degraded")
	}
	if len(st.Items) != 1 || st.Items[0].Quantity != 3 {
		t.Fatalf("memory cart must keep working, got %+v", st.Items)
	}
	if err := s.ClearCart(ctx); err != nil {
		t.Fatalf("ClearCart: %v", err)
	}
	if len(s.Items()) != 0 {
		t.Fatalf("clear must empty memory")
	}
}

func TestStore_StaleReloadDiscardedAfterSwitch(t *testing.T) {
	ctx := context.Background()
	r := newRemotes()
	userID := uuid.New()
	remote := r.get(userID)
	remote.lines = []cart.Line{{ID: "srv-1", ProductID: "mug", UnitPrice: 700, Quantity: 1}}

	s := NewStore(logger.NewNop(), NewLocalBackend(logger.NewNop(), NewLocalAdapter(NewMemorySnapshotStore(), "p")), r.factory(), User(userID))
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	entered, release := remote.gateList()
	addErr := make(chan error, 1)
	go func() { addErr <- s.AddItem(ctx, cardsB, 1) }()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("remote reload never started")
	}

	switchErr := make(chan error, 1)
	go func() { switchErr <- s.SwitchIdentity(ctx, Anonymous()) }()

	deadline := time.Now().Add(2 * time.Second)
	for s.Mode() != ModeAnonymous {
		if time.Now().After(deadline) {
			t.Fatalf("identity switch never started")
		}
		time.Sleep(time.Millisecond)
	}
	release()

	if err := <-addErr; err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := <-switchErr; err != nil {
		t.Fatalf("SwitchIdentity: %v", err)
	}

	st := s.State()
	if st.Mode != ModeAnonymous {
		t.Fatalf("mode: want anonymous got %s", st.Mode)
	}
	if len(st.Items) != 0 {
		t.Fatalf("stale server reload must be discarded, got %+v", st.Items)
	}
}

func TestStore_Closed(t *testing.T) {
	ctx := context.Background()
	s := newAnonStore(t, NewMemorySnapshotStore(), nil)
	s.Close()
	s.Close()
	if err := s.AddItem(ctx, posterA, 1); !cart.IsCode(err, cart.CodeValidation) {
		t.Fatalf("closed store: want validation got %v", err)
	}
	if err := s.SwitchIdentity(ctx, User(uuid.New())); !cart.IsCode(err, cart.CodeValidation) {
		t.Fatalf("closed store switch: want validation got %v", err)
	}
}

type countingRecorder struct {
	mu       sync.Mutex
	ops      map[string]int
	sessions int
}

func (c *countingRecorder) ObserveCartOp(op, mode, outcome string, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops[op+"/"+mode+"/"+outcome]++
}

func (c *countingRecorder) SetCartSessions(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions = n
}

func (c *countingRecorder) count(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ops[key]
}

func (c *countingRecorder) snapshot() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.ops))
	for k, v := range c.ops {
		out[k] = v
	}
	return out
}

func TestStore_RecordsOperations(t *testing.T) {
	ctx := context.Background()
	rec := &countingRecorder{ops: map[string]int{}}
	s := newAnonStore(t, NewMemorySnapshotStore(), nil)
	s.recorder = rec

	_ = s.AddItem(ctx, posterA, 1)
	_ = s.RemoveItem(ctx, "missing")

	if rec.ops["cart.add_item/anonymous/ok"] != 1 {
		t.Fatalf("add not recorded: %v", rec.ops)
	}
	if rec.ops["cart.remove_item/anonymous/line_not_found"] != 1 {
		t.Fatalf("failed remove not recorded: %v", rec.ops)
	}
}

func TestStore_QuantityAndPriceLimits(t *testing.T) {
	ctx := context.Background()
	s := newAnonStore(t, NewMemorySnapshotStore(), nil)

	gold := cart.ProductRef{ID: "gold", Title: "Gold leaf", DisplayPrice: "99999999999999999999원"}
	if err := s.AddItem(ctx, gold, 2); !cart.IsCode(err, cart.CodeValidation) {
		t.Fatalf("oversized price: want validation got %v", err)
	}
	if st := s.State(); len(st.Items) != 0 || st.TotalPrice != 0 || st.DisplayTotal != "0원" {
		t.Fatalf("rejected add must leave cart empty, got %+v", st)
	}

	if err := s.AddItem(ctx, posterA, maxInt()); !cart.IsCode(err, cart.CodeValidation) {
		t.Fatalf("huge quantity: want validation got %v", err)
	}
	if err := s.AddItem(ctx, posterA, cart.MaxQuantity); err != nil {
		t.Fatalf("AddItem at cap: %v", err)
	}
	if err := s.AddItem(ctx, posterA, 5); !cart.IsCode(err, cart.CodeValidation) {
		t.Fatalf("increment past cap: want validation got %v", err)
	}
	line := s.Items()[0]
	if line.Quantity != cart.MaxQuantity {
		t.Fatalf("quantity after rejected increment: want=%d got=%d", cart.MaxQuantity, line.Quantity)
	}
	if err := s.UpdateQuantity(ctx, line.ID, cart.MaxQuantity+1); !cart.IsCode(err, cart.CodeValidation) {
		t.Fatalf("update past cap: want validation got %v", err)
	}
	st := s.State()
	if st.TotalItems != cart.MaxQuantity || st.TotalPrice != 5000*cart.MaxQuantity {
		t.Fatalf("totals: items=%d price=%d", st.TotalItems, st.TotalPrice)
	}
	if st.ErrorKind != cart.CodeValidation {
		t.Fatalf("rejected update must be recorded, got %q", st.ErrorKind)
	}
}

func maxInt() int { return int(^uint(0) >> 1) }

func TestStore_ConcurrentMutationsAreSerialized(t *testing.T) {
	ctx := context.Background()
	r := newRemotes()
	userID := uuid.New()
	remote := r.get(userID)
	remote.lines = []cart.Line{{ID: "srv-1", ProductID: "mug", UnitPrice: 700, Quantity: 1}}

	s := NewStore(logger.NewNop(), NewLocalBackend(logger.NewNop(), NewLocalAdapter(NewMemorySnapshotStore(), "p")), r.factory(), User(userID))
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	entered, release := remote.gateList()
	var g errgroup.Group
	g.Go(func() error { return s.AddItem(ctx, cardsB, 2) })

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("first reload never started")
	}

	updated := make(chan struct{})
	g.Go(func() error {
		defer close(updated)
		return s.UpdateQuantity(ctx, "srv-1", 5)
	})

	// The update must wait for the add to finish its reload.
	select {
	case <-updated:
		t.Fatalf("update ran while the add was still in flight")
	case <-time.After(50 * time.Millisecond):
	}
	remote.mu.Lock()
	qty := remote.lines[0].Quantity
	remote.mu.Unlock()
	if qty != 1 {
		t.Fatalf("update applied before the add finished: qty=%d", qty)
	}

	release()
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent mutations: %v", err)
	}

	want, _ := remote.List(ctx)
	got := s.Items()
	if len(got) != 2 || len(want) != 2 {
		t.Fatalf("both writes must land: store=%+v remote=%+v", got, want)
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Quantity != want[i].Quantity {
			t.Fatalf("items must match the last reload: store=%+v remote=%+v", got, want)
		}
	}
	if got[0].Quantity != 5 || got[1].Quantity != 2 {
		t.Fatalf("quantities: got %+v", got)
	}
	if st := s.State(); st.Loading || st.Error != "" {
		t.Fatalf("final state: loading=%v error=%q", st.Loading, st.Error)
	}
}

func TestStore_RecordsModeAfterWaitingForSwitch(t *testing.T) {
	ctx := context.Background()
	r := newRemotes()
	userID := uuid.New()
	remote := r.get(userID)
	rec := &countingRecorder{ops: map[string]int{}}

	s := NewStore(logger.NewNop(), NewLocalBackend(logger.NewNop(), NewLocalAdapter(NewMemorySnapshotStore(), "p")), r.factory(), User(userID))
	s.recorder = rec

	entered, release := remote.gateList()
	refreshErr := make(chan error, 1)
	go func() { refreshErr <- s.Refresh(ctx) }()
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("reload never started")
	}

	// Queued behind the reload while still authenticated.
	addErr := make(chan error, 1)
	go func() { addErr <- s.AddItem(ctx, posterA, 1) }()
	time.Sleep(20 * time.Millisecond)

	switchErr := make(chan error, 1)
	go func() { switchErr <- s.SwitchIdentity(ctx, Anonymous()) }()
	deadline := time.Now().Add(2 * time.Second)
	for s.Mode() != ModeAnonymous {
		if time.Now().After(deadline) {
			t.Fatalf("identity switch never started")
		}
		time.Sleep(time.Millisecond)
	}
	release()

	for _, ch := range []chan error{refreshErr, addErr, switchErr} {
		if err := <-ch; err != nil {
			t.Fatalf("operation: %v", err)
		}
	}
	if got := rec.count("cart.add_item/anonymous/ok"); got != 1 {
		t.Fatalf("add must be labelled with the mode it ran in: %v", rec.snapshot())
	}
	if len(remote.lines) != 0 {
		t.Fatalf("add after logout must not reach the server cart, got %+v", remote.lines)
	}
}
