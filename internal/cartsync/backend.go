package cartsync

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/printshop-backend/internal/domain/cart"
)

type Mode string

const (
	ModeAnonymous     Mode = "anonymous"
	ModeAuthenticated Mode = "authenticated"
)

// Identity is who the browser profile is acting as. A nil UserID means the
// shopper is anonymous.
type Identity struct {
	UserID uuid.UUID
}

func Anonymous() Identity { return Identity{} }

func User(id uuid.UUID) Identity { return Identity{UserID: id} }

func (i Identity) Authenticated() bool { return i.UserID != uuid.Nil }

func (i Identity) Mode() Mode {
	if i.Authenticated() {
		return ModeAuthenticated
	}
	return ModeAnonymous
}

// Backend is where a cart lives for one identity. Mutations never return
// lines: the Store always reloads the authoritative list afterwards.
type Backend interface {
	Mode() Mode
	List(ctx context.Context) ([]cart.Line, error)
	AddOrIncrement(ctx context.Context, in cart.AddLineInput) error
	Update(ctx context.Context, lineID string, quantity int) error
	Remove(ctx context.Context, lineID string) error
	ClearAll(ctx context.Context) error
}

// RemoteFactory binds a server-side backend to one user.
type RemoteFactory func(ownerID uuid.UUID) Backend
