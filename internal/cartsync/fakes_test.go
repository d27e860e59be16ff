package cartsync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/printshop-backend/internal/domain/cart"
)

// fakeRemote is an in-memory server cart for one owner.
type fakeRemote struct {
	mu      sync.Mutex
	ownerID uuid.UUID
	lines   []cart.Line

	// listGate, when set, blocks List until it is closed. listEntered is
	// signalled each time List starts waiting.
	listGate    chan struct{}
	listEntered chan struct{}
}

func newFakeRemote(ownerID uuid.UUID, lines ...cart.Line) *fakeRemote {
	return &fakeRemote{ownerID: ownerID, lines: lines}
}

func (f *fakeRemote) Mode() Mode { return ModeAuthenticated }

func (f *fakeRemote) List(ctx context.Context) ([]cart.Line, error) {
	f.mu.Lock()
	gate, entered := f.listGate, f.listEntered
	f.mu.Unlock()
	if gate != nil {
		if entered != nil {
			entered <- struct{}{}
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneLines(f.lines), nil
}

func (f *fakeRemote) AddOrIncrement(_ context.Context, in cart.AddLineInput) error {
	if err := in.Validate("fake.add"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.lines {
		if f.lines[i].ProductID == in.ProductID {
			f.lines[i].Quantity += in.Quantity
			return nil
		}
	}
	f.lines = append(f.lines, cart.Line{
		ID:        uuid.NewString(),
		OwnerID:   f.ownerID,
		ProductID: in.ProductID,
		Title:     in.Title,
		UnitPrice: in.UnitPrice,
		Quantity:  in.Quantity,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (f *fakeRemote) Update(_ context.Context, lineID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.lines {
		if f.lines[i].ID == lineID {
			if quantity <= 0 {
				f.lines = append(f.lines[:i], f.lines[i+1:]...)
			} else {
				f.lines[i].Quantity = quantity
			}
			return nil
		}
	}
	return cart.LineNotFound("fake.update", lineID)
}

func (f *fakeRemote) Remove(_ context.Context, lineID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.lines {
		if f.lines[i].ID == lineID {
			f.lines = append(f.lines[:i], f.lines[i+1:]...)
			return nil
		}
	}
	return cart.LineNotFound("fake.remove", lineID)
}

func (f *fakeRemote) ClearAll(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = nil
	return nil
}

func (f *fakeRemote) gateList() (entered <-chan struct{}, release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listGate = make(chan struct{})
	f.listEntered = make(chan struct{}, 1)
	gate := f.listGate
	return f.listEntered, func() {
		f.mu.Lock()
		f.listGate = nil
		f.listEntered = nil
		f.mu.Unlock()
		close(gate)
	}
}

// remotes hands out one fakeRemote per user so state survives switches.
type remotes struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*fakeRemote
}

func newRemotes() *remotes { return &remotes{byID: map[uuid.UUID]*fakeRemote{}} }

func (r *remotes) get(id uuid.UUID) *fakeRemote {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.byID[id]
	if !ok {
		f = newFakeRemote(id)
		r.byID[id] = f
	}
	return f
}

func (r *remotes) factory() RemoteFactory {
	return func(id uuid.UUID) Backend { return r.get(id) }
}

// failingSnapshots fails every call.
type failingSnapshots struct{}

var errStorageDown = errors.New("storage quota exceeded")

func (failingSnapshots) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errStorageDown
}
func (failingSnapshots) Set(context.Context, string, []byte) error { return errStorageDown }
func (failingSnapshots) Delete(context.Context, string) error      { return errStorageDown }
