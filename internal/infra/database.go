package infra

import (
	"fmt"

	"github.com/MachinePay/backend-agarramais-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs
// AutoMigrate for the core's tables. Reference tables (stores, machines,
// products, users) are included so a standalone deployment works; in the
// full installation the CRUD service owns their schema and AutoMigrate is
// a no-op for them.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.AutoMigrate(
		&model.Store{},
		&model.User{},
		&model.Machine{},
		&model.Product{},
		&model.Movement{},
		&model.MovementProduct{},
		&model.FixedCost{},
		&model.FixedCostMonthlyTotal{},
		&model.VariableCost{},
		&model.CashRegisterEntry{},
		&model.IgnoredAlert{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	return db, nil
}
