package cartsync

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yungbote/printshop-backend/internal/domain/cart"
	"github.com/yungbote/printshop-backend/internal/platform/logger"
)

// Session is the cart state of one browser profile.
type Session struct {
	ProfileID string
	Store     *Store
	Observer  *Observer

	lastSeen atomic.Int64
}

type RegistryConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
	Recorder      Recorder
}

// Registry owns one Session per browser profile and expires idle ones.
type Registry struct {
	baseLog   *logger.Logger
	log       *logger.Logger
	snapshots SnapshotStore
	newRemote RemoteFactory
	cfg       RegistryConfig
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(log *logger.Logger, snapshots SnapshotStore, newRemote RemoteFactory, cfg RegistryConfig) *Registry {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if snapshots == nil {
		snapshots = NewMemorySnapshotStore()
	}
	return &Registry{
		baseLog:   log,
		log:       log.With("service", "CartSessionRegistry"),
		snapshots: snapshots,
		newRemote: newRemote,
		cfg:       cfg,
		now:       time.Now,
		sessions:  map[string]*Session{},
	}
}

// Session returns the profile's session, creating and loading it on first
// use, and reports id to its observer so a login or logout switches the
// cart before the caller touches it.
func (r *Registry) Session(ctx context.Context, profileID string, id Identity) (*Session, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return nil, cart.Validation("cart.session", "profile id is required")
	}

	r.mu.Lock()
	sess, ok := r.sessions[profileID]
	if !ok {
		sess = r.newSession(profileID, id)
		r.sessions[profileID] = sess
		r.recordSessionsLocked()
	}
	sess.lastSeen.Store(r.now().UnixNano())
	r.mu.Unlock()

	if !ok {
		r.log.Debug("Cart session created", "profile_id", profileID, "mode", string(id.Mode()))
		// Load failures land in the state's error slot.
		_ = sess.Store.Refresh(ctx)
		return sess, nil
	}
	if _, err := sess.Observer.Set(ctx, id); err != nil {
		r.log.Debug("Identity switch reload failed", "profile_id", profileID, "error", err)
	}
	return sess, nil
}

// Drop tears down a profile's session. It reports whether one existed.
func (r *Registry) Drop(profileID string) bool {
	r.mu.Lock()
	sess, ok := r.sessions[profileID]
	delete(r.sessions, profileID)
	r.recordSessionsLocked()
	r.mu.Unlock()
	if ok {
		sess.Store.Close()
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle longer than the configured TTL.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.cfg.IdleTTL).UnixNano()
	var expired []*Session
	r.mu.Lock()
	for id, sess := range r.sessions {
		if sess.lastSeen.Load() < cutoff {
			expired = append(expired, sess)
			delete(r.sessions, id)
		}
	}
	r.recordSessionsLocked()
	r.mu.Unlock()
	for _, sess := range expired {
		sess.Store.Close()
	}
	if len(expired) > 0 {
		r.log.Debug("Expired idle cart sessions", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps on an interval until ctx is done, then closes every session.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = map[string]*Session{}
	r.recordSessionsLocked()
	r.mu.Unlock()
	for _, sess := range sessions {
		sess.Store.Close()
	}
}

func (r *Registry) newSession(profileID string, id Identity) *Session {
	sessLog := r.baseLog.With("profile_id", profileID)
	local := NewLocalBackend(sessLog, NewLocalAdapter(r.snapshots, profileID))
	store := NewStore(sessLog, local, r.newRemote, id)
	store.recorder = r.cfg.Recorder
	obs := NewObserver(id)
	store.Bind(obs)
	return &Session{ProfileID: profileID, Store: store, Observer: obs}
}

func (r *Registry) recordSessionsLocked() {
	if r.cfg.Recorder != nil {
		r.cfg.Recorder.SetCartSessions(len(r.sessions))
	}
}
