package persistence

import (
	"errors"

	"github.com/erp/subcontracting/internal/domain/shared"
	"gorm.io/gorm"
)

// notFound maps gorm.ErrRecordNotFound to the domain sentinel
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// updateWithLock writes every column of model when the stored row is still at
// version-1, and reports a concurrency conflict otherwise
func updateWithLock(db *gorm.DB, model any, version int) error {
	result := db.Model(model).
		Where("version = ?", version-1).
		Select("*").
		Omit("created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
