package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Base is embedded by the domain repositories; it carries the connection and
// binds request contexts to every query.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Conn exposes the raw connection so repositories can rebind inside a transaction.
func (b Base) Conn() *gorm.DB {
	return b.db
}

// Found converts gorm's not-found sentinel into a nil result, the convention
// every Find* method in this module follows.
func Found[T any](row *T, err error) (*T, error) {
	if err == nil {
		return row, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}
