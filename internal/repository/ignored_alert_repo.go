package repository

import (
	"context"

	"github.com/MachinePay/backend-agarramais-sub000/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IgnoredAlertRepository interface {
	Create(ctx context.Context, ia *model.IgnoredAlert) error
	// IgnoredKeys returns the full suppression set; it is small (one row per
	// user action, never expired) and checked on every detection pass.
	IgnoredKeys(ctx context.Context) (map[string]bool, error)
}

type ignoredAlertRepo struct{ db *gorm.DB }

func NewIgnoredAlertRepository(db *gorm.DB) IgnoredAlertRepository {
	return &ignoredAlertRepo{db: db}
}

// Create is idempotent: suppressing an already-suppressed alert is a no-op.
func (r *ignoredAlertRepo) Create(ctx context.Context, ia *model.IgnoredAlert) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "alert_key"}},
		DoNothing: true,
	}).Create(ia).Error
}

func (r *ignoredAlertRepo) IgnoredKeys(ctx context.Context) (map[string]bool, error) {
	var keys []string
	if err := r.db.WithContext(ctx).Model(&model.IgnoredAlert{}).
		Pluck("alert_key", &keys).Error; err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set, nil
}
