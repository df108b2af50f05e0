package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is embedded by the user-scoped repositories.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Rebind returns a copy of b running on tx. A nil tx keeps the current
// connection.
func (b Base) Rebind(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

// Owned restricts model to rows owned by userID. Rows of another user behave
// exactly like missing rows.
func (b Base) Owned(ctx context.Context, model any, userID uuid.UUID) *gorm.DB {
	return b.DB(ctx).Model(model).Where("user_id = ?", userID)
}
