package cart

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/printshop-backend/internal/domain"
	domaincart "github.com/yungbote/printshop-backend/internal/domain/cart"
	"github.com/yungbote/printshop-backend/internal/pkg/dbctx"
	"github.com/yungbote/printshop-backend/internal/platform/logger"
)

type CartLineRepo interface {
	ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.CartLine, error)
	GetForOwner(dbc dbctx.Context, ownerID uuid.UUID, lineID string) (*types.CartLine, error)
	GetByOwnerAndProduct(dbc dbctx.Context, ownerID uuid.UUID, productID string) (*types.CartLine, error)
	UpsertIncrement(dbc dbctx.Context, line *types.CartLine) error
	UpdateQuantity(dbc dbctx.Context, ownerID uuid.UUID, lineID string, quantity int) (int64, error)
	DeleteByIDs(dbc dbctx.Context, ownerID uuid.UUID, lineIDs []string) (int64, error)
	DeleteByOwner(dbc dbctx.Context, ownerID uuid.UUID) (int64, error)
}

type cartLineRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCartLineRepo(db *gorm.DB, baseLog *logger.Logger) CartLineRepo {
	repoLog := baseLog.With("repo", "CartLineRepo")
	return &cartLineRepo{db: db, log: repoLog}
}

func (r *cartLineRepo) ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.CartLine, error) {
	var results []*types.CartLine
	if err := dbc.DB(r.db).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, MapError("cart.list", err)
	}
	return results, nil
}

func (r *cartLineRepo) GetForOwner(dbc dbctx.Context, ownerID uuid.UUID, lineID string) (*types.CartLine, error) {
	var line types.CartLine
	err := dbc.DB(r.db).
		Where("owner_id = ? AND id = ?", ownerID, lineID).
		Take(&line).Error
	if err != nil {
		return nil, MapError("cart.get", err)
	}
	return &line, nil
}

func (r *cartLineRepo) GetByOwnerAndProduct(dbc dbctx.Context, ownerID uuid.UUID, productID string) (*types.CartLine, error) {
	var line types.CartLine
	err := dbc.DB(r.db).
		Where("owner_id = ? AND product_id = ?", ownerID, productID).
		Take(&line).Error
	if err != nil {
		return nil, MapError("cart.get_by_product", err)
	}
	return &line, nil
}

// UpsertIncrement inserts line, or adds line.Quantity to the existing row for
// the same (owner_id, product_id). The existing row keeps its id, unit price
// and display snapshot.
func (r *cartLineRepo) UpsertIncrement(dbc dbctx.Context, line *types.CartLine) error {
	if line == nil {
		return domaincart.Validation("cart.upsert", "line is required")
	}
	if line.ID == "" {
		line.ID = uuid.New().String()
	}

	transaction := dbc.DB(r.db)
	increment := "cart_lines.quantity + excluded.quantity"
	if transaction.Dialector.Name() == "mysql" {
		increment = "quantity + VALUES(quantity)"
	}

	err := transaction.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "owner_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr(increment),
				"updated_at": time.Now().UTC(),
			}),
		}).
		Create(line).Error
	if err != nil {
		return MapError("cart.upsert", err)
	}
	return nil
}

func (r *cartLineRepo) UpdateQuantity(dbc dbctx.Context, ownerID uuid.UUID, lineID string, quantity int) (int64, error) {
	res := dbc.DB(r.db).
		Model(&types.CartLine{}).
		Where("owner_id = ? AND id = ?", ownerID, lineID).
		Updates(map[string]any{
			"quantity":   quantity,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, MapError("cart.update", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *cartLineRepo) DeleteByIDs(dbc dbctx.Context, ownerID uuid.UUID, lineIDs []string) (int64, error) {
	if len(lineIDs) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Where("owner_id = ? AND id IN ?", ownerID, lineIDs).
		Delete(&types.CartLine{})
	if res.Error != nil {
		return 0, MapError("cart.delete", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *cartLineRepo) DeleteByOwner(dbc dbctx.Context, ownerID uuid.UUID) (int64, error) {
	res := dbc.DB(r.db).
		Where("owner_id = ?", ownerID).
		Delete(&types.CartLine{})
	if res.Error != nil {
		return 0, MapError("cart.clear", res.Error)
	}
	return res.RowsAffected, nil
}
