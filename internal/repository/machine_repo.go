package repository

import (
	"context"

	"github.com/MachinePay/backend-agarramais-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MachineRepository is a read-only view over the reference data owned by the
// CRUD collaborator. The core never writes machines or stores.
type MachineRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Machine, error)
	ListActive(ctx context.Context, storeID *uuid.UUID) ([]model.Machine, error)
	FindStoreByID(ctx context.Context, id uuid.UUID) (*model.Store, error)
}

type machineRepo struct{ db *gorm.DB }

func NewMachineRepository(db *gorm.DB) MachineRepository { return &machineRepo{db: db} }

func (r *machineRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Machine, error) {
	var m model.Machine
	err := r.db.WithContext(ctx).Preload("Store").First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *machineRepo) ListActive(ctx context.Context, storeID *uuid.UUID) ([]model.Machine, error) {
	q := r.db.WithContext(ctx).Where("active = ?", true)
	if storeID != nil {
		q = q.Where("store_id = ?", *storeID)
	}
	var machines []model.Machine
	err := q.Order("name ASC").Find(&machines).Error
	return machines, err
}

func (r *machineRepo) FindStoreByID(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	var s model.Store
	err := r.db.WithContext(ctx).First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
