package cartsync

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/printshop-backend/internal/domain/cart"
	"github.com/yungbote/printshop-backend/internal/platform/logger"
)

// SnapshotStore is the key/value medium behind the local adapter.
type SnapshotStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// LocalKey is the single storage record shared by every tab of a profile.
func LocalKey(profileID string) string {
	return fmt.Sprintf("printshop:profile:%s:cart", strings.TrimSpace(profileID))
}

// LocalAdapter persists the anonymous cart as one JSON array under one key.
// Writes always replace the whole list.
type LocalAdapter struct {
	store SnapshotStore
	key   string
}

func NewLocalAdapter(store SnapshotStore, profileID string) *LocalAdapter {
	return &LocalAdapter{store: store, key: LocalKey(profileID)}
}

func (a *LocalAdapter) Key() string { return a.key }

// Load returns the stored lines, or an empty list when nothing is stored.
func (a *LocalAdapter) Load(ctx context.Context) ([]cart.Line, error) {
	raw, found, err := a.store.Get(ctx, a.key)
	if err != nil {
		return nil, err
	}
	if !found || len(raw) == 0 {
		return []cart.Line{}, nil
	}
	var lines []cart.Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	if lines == nil {
		lines = []cart.Line{}
	}
	return lines, nil
}

func (a *LocalAdapter) Save(ctx context.Context, lines []cart.Line) error {
	if lines == nil {
		lines = []cart.Line{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	return a.store.Set(ctx, a.key, raw)
}

func (a *LocalAdapter) Clear(ctx context.Context) error {
	return a.store.Delete(ctx, a.key)
}

// LocalBackend owns the anonymous in-memory list and mirrors it through the
// adapter after every change. Once storage fails it is marked degraded and
// keeps working from memory only.
type LocalBackend struct {
	log     *logger.Logger
	adapter *LocalAdapter
	ids     *idSource

	mu       sync.Mutex
	items    []cart.Line
	loaded   bool
	degraded bool
}

func NewLocalBackend(log *logger.Logger, adapter *LocalAdapter) *LocalBackend {
	return &LocalBackend{
		log:     log.With("service", "LocalCartBackend"),
		adapter: adapter,
		ids:     anonymousIDs,
	}
}

func (b *LocalBackend) Mode() Mode { return ModeAnonymous }

func (b *LocalBackend) Degraded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.degraded
}

// Reset drops the in-memory list without touching storage.
func (b *LocalBackend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = nil
	b.loaded = false
}

// List re-reads the snapshot so writes from other tabs are picked up. A
// degraded backend answers from memory.
func (b *LocalBackend) List(ctx context.Context) ([]cart.Line, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.degraded {
		b.loaded = false
	}
	b.ensureLoadedLocked(ctx)
	return cloneLines(b.items), nil
}

func (b *LocalBackend) AddOrIncrement(ctx context.Context, in cart.AddLineInput) error {
	const op = "cart.local.add"
	if err := in.Validate(op); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureLoadedLocked(ctx)

	for i := range b.items {
		if b.items[i].ProductID == in.ProductID {
			if b.items[i].Quantity > cart.MaxQuantity-in.Quantity {
				return cart.Validation(op, fmt.Sprintf("quantity must not exceed %d", cart.MaxQuantity))
			}
			b.items[i].Quantity += in.Quantity
			b.items[i].UpdatedAt = time.Now().UTC()
			b.mirrorLocked(ctx)
			return nil
		}
	}
	now := time.Now().UTC()
	b.items = append(b.items, cart.Line{
		ID:        b.ids.Next(),
		ProductID: in.ProductID,
		Title:     in.Title,
		Image:     in.Image,
		Size:      in.Size,
		UnitPrice: in.UnitPrice,
		Quantity:  in.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	})
	b.mirrorLocked(ctx)
	return nil
}

func (b *LocalBackend) Update(ctx context.Context, lineID string, quantity int) error {
	const op = "cart.local.update"
	if quantity > cart.MaxQuantity {
		return cart.ValidateQuantity(op, quantity)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureLoadedLocked(ctx)

	idx := b.indexLocked(lineID)
	if idx < 0 {
		return cart.LineNotFound(op, lineID)
	}
	if quantity <= 0 {
		b.items = append(b.items[:idx], b.items[idx+1:]...)
	} else {
		b.items[idx].Quantity = quantity
		b.items[idx].UpdatedAt = time.Now().UTC()
	}
	b.mirrorLocked(ctx)
	return nil
}

func (b *LocalBackend) Remove(ctx context.Context, lineID string) error {
	const op = "cart.local.remove"
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureLoadedLocked(ctx)

	idx := b.indexLocked(lineID)
	if idx < 0 {
		return cart.LineNotFound(op, lineID)
	}
	b.items = append(b.items[:idx], b.items[idx+1:]...)
	b.mirrorLocked(ctx)
	return nil
}

func (b *LocalBackend) ClearAll(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = []cart.Line{}
	b.loaded = true
	if b.degraded {
		return nil
	}
	if err := b.adapter.Clear(ctx); err != nil {
		b.degradeLocked("clear", err)
	}
	return nil
}

func (b *LocalBackend) ensureLoadedLocked(ctx context.Context) {
	if b.loaded {
		return
	}
	b.loaded = true
	if b.degraded {
		return
	}
	lines, err := b.adapter.Load(ctx)
	if err != nil {
		b.degradeLocked("load", err)
		if b.items == nil {
			b.items = []cart.Line{}
		}
		return
	}
	b.items = lines
}

func (b *LocalBackend) mirrorLocked(ctx context.Context) {
	if b.degraded {
		return
	}
	if err := b.adapter.Save(ctx, b.items); err != nil {
		b.degradeLocked("save", err)
	}
}

func (b *LocalBackend) degradeLocked(stage string, err error) {
	b.degraded = true
	b.log.Warn("Local cart storage unavailable, continuing in memory",
		"stage", stage,
		"key", b.adapter.Key(),
		"error", err,
	)
}

func (b *LocalBackend) indexLocked(lineID string) int {
	for i := range b.items {
		if b.items[i].ID == lineID {
			return i
		}
	}
	return -1
}

func cloneLines(lines []cart.Line) []cart.Line {
	out := make([]cart.Line, len(lines))
	copy(out, lines)
	return out
}

// MemorySnapshotStore keeps snapshots in process memory. It backs the local
// adapter when no Redis is configured.
type MemorySnapshotStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{data: map[string][]byte{}}
}

func (m *MemorySnapshotStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, true, nil
}

func (m *MemorySnapshotStore) Set(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = buf
	return nil
}

func (m *MemorySnapshotStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
