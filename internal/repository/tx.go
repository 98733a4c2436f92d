package repository

import (
	"context"

	"gorm.io/gorm"
)

// conn picks the transaction when one is in flight, otherwise the pool.
// Methods taking a tx argument accept nil.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// paginar normalizes page/limit the way every list endpoint expects.
func paginar(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit, (page - 1) * limit
}
