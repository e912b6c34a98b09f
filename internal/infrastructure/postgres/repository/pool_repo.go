package repository

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultPoolRepository struct {
	db *gorm.DB
}

func NewDefaultPoolRepository(db *gorm.DB) *DefaultPoolRepository {
	return &DefaultPoolRepository{db: db}
}

func (r *DefaultPoolRepository) Create(entry *domain.PoolEntry) error {
	return r.db.Create(mappers.ToGORMPoolEntry(entry)).Error
}

func (r *DefaultPoolRepository) ActiveEntries(packageID string) ([]*domain.PoolEntry, error) {
	var entryModels []models.PoolEntryModel
	err := r.db.
		Where("package_id = ? AND is_active = ?", packageID, true).
		Order("level ASC, sub_level ASC, created_at ASC").
		Find(&entryModels).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.PoolEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = mappers.ToDomainPoolEntry(&entryModels[i])
	}
	return entries, nil
}
