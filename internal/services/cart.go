package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/printshop-backend/internal/data/repos"
	types "github.com/yungbote/printshop-backend/internal/domain"
	"github.com/yungbote/printshop-backend/internal/domain/cart"
	"github.com/yungbote/printshop-backend/internal/pkg/dbctx"
	"github.com/yungbote/printshop-backend/internal/platform/logger"
)

// CartService is the server-side cart of an authenticated user. Every call
// is scoped to ownerID: a line id that belongs to someone else is reported
// as line_not_found.
type CartService interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]types.CartLine, error)
	AddOrIncrement(ctx context.Context, ownerID uuid.UUID, in types.AddLineInput) (*types.CartLine, error)
	// Update sets the quantity of a line. A quantity <= 0 deletes the line and
	// returns a nil line.
	Update(ctx context.Context, ownerID uuid.UUID, lineID string, quantity int) (*types.CartLine, error)
	Remove(ctx context.Context, ownerID uuid.UUID, lineID string) error
	ClearAll(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

type cartService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	lineRepo repos.CartLineRepo
}

func NewCartService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, lineRepo repos.CartLineRepo) CartService {
	serviceLog := log.With("service", "CartService")
	return &cartService{
		db:       db,
		log:      serviceLog,
		userRepo: userRepo,
		lineRepo: lineRepo,
	}
}

func (cs *cartService) List(ctx context.Context, ownerID uuid.UUID) ([]types.CartLine, error) {
	const op = "cart.list"
	dbc := dbctx.New(ctx)
	if err := cs.ensureOwner(dbc, op, ownerID); err != nil {
		return nil, err
	}
	rows, err := cs.lineRepo.ListByOwner(dbc, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]types.CartLine, 0, len(rows))
	for _, r := range rows {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (cs *cartService) AddOrIncrement(ctx context.Context, ownerID uuid.UUID, in types.AddLineInput) (*types.CartLine, error) {
	const op = "cart.add"
	in.ProductID = strings.TrimSpace(in.ProductID)
	if err := in.Validate(op); err != nil {
		return nil, err
	}

	var result *types.CartLine
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := cs.ensureOwner(dbc, op, ownerID); err != nil {
			return err
		}
		line := &types.CartLine{
			OwnerID:   ownerID,
			ProductID: in.ProductID,
			Title:     in.Title,
			Image:     in.Image,
			Size:      in.Size,
			UnitPrice: in.UnitPrice,
			Quantity:  in.Quantity,
		}
		if err := cs.lineRepo.UpsertIncrement(dbc, line); err != nil {
			return err
		}
		stored, err := cs.lineRepo.GetByOwnerAndProduct(dbc, ownerID, in.ProductID)
		if err != nil {
			return err
		}
		// Rolls the increment back when it pushed the line past the cap.
		if stored.Quantity > cart.MaxQuantity {
			return cart.ValidateQuantity(op, stored.Quantity)
		}
		result = stored
		return nil
	})
	if err != nil {
		if cart.CodeOf(err) == "" {
			cs.log.Warn("Cart add failed", "owner_id", ownerID.String(), "product_id", in.ProductID, "error", err)
		}
		return nil, cart.Wrap(cart.CodePersistence, op, err)
	}
	return result, nil
}

func (cs *cartService) Update(ctx context.Context, ownerID uuid.UUID, lineID string, quantity int) (*types.CartLine, error) {
	const op = "cart.update"
	lineID = strings.TrimSpace(lineID)
	if lineID == "" {
		return nil, cart.Validation(op, "line id is required")
	}
	if quantity <= 0 {
		if err := cs.Remove(ctx, ownerID, lineID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err := cart.ValidateQuantity(op, quantity); err != nil {
		return nil, err
	}

	var result *types.CartLine
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := cs.ensureOwner(dbc, op, ownerID); err != nil {
			return err
		}
		n, err := cs.lineRepo.UpdateQuantity(dbc, ownerID, lineID, quantity)
		if err != nil {
			return err
		}
		if n == 0 {
			return cart.LineNotFound(op, lineID)
		}
		stored, err := cs.lineRepo.GetForOwner(dbc, ownerID, lineID)
		if err != nil {
			return err
		}
		result = stored
		return nil
	})
	if err != nil {
		return nil, cart.Wrap(cart.CodePersistence, op, err)
	}
	return result, nil
}

func (cs *cartService) Remove(ctx context.Context, ownerID uuid.UUID, lineID string) error {
	const op = "cart.remove"
	lineID = strings.TrimSpace(lineID)
	if lineID == "" {
		return cart.Validation(op, "line id is required")
	}
	dbc := dbctx.New(ctx)
	if err := cs.ensureOwner(dbc, op, ownerID); err != nil {
		return err
	}
	n, err := cs.lineRepo.DeleteByIDs(dbc, ownerID, []string{lineID})
	if err != nil {
		return err
	}
	if n == 0 {
		return cart.LineNotFound(op, lineID)
	}
	return nil
}

func (cs *cartService) ClearAll(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	const op = "cart.clear"
	dbc := dbctx.New(ctx)
	if err := cs.ensureOwner(dbc, op, ownerID); err != nil {
		return 0, err
	}
	n, err := cs.lineRepo.DeleteByOwner(dbc, ownerID)
	if err != nil {
		return 0, err
	}
	cs.log.Debug("Cart cleared", "owner_id", ownerID.String(), "lines", n)
	return n, nil
}

func (cs *cartService) ensureOwner(dbc dbctx.Context, op string, ownerID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return cart.Validation(op, "owner id is required")
	}
	ok, err := cs.userRepo.Exists(dbc, ownerID)
	if err != nil {
		return cart.Wrap(cart.CodePersistence, op, err)
	}
	if !ok {
		return cart.OwnerNotFound(op, ownerID.String())
	}
	return nil
}
