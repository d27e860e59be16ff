package cart

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domaincart "github.com/yungbote/printshop-backend/internal/domain/cart"
)

// MapError maps infrastructure failures into cart error codes.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var cartErr *domaincart.Error
	if errors.As(err, &cartErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domaincart.Wrap(domaincart.CodeLineNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domaincart.Wrap(domaincart.CodePersistence, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "22P02", "23502", "23514":
			return domaincart.Wrap(domaincart.CodeValidation, op, err) // invalid text / not null / check
		case "23503":
			return domaincart.Wrap(domaincart.CodeOwnerNotFound, op, err) // foreign_key_violation
		}
		return domaincart.Wrap(domaincart.CodePersistence, op, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "temporar"):
		return domaincart.Wrap(domaincart.CodePersistence, op, err)
	default:
		return domaincart.Wrap(domaincart.CodeUnknown, op, err)
	}
}
