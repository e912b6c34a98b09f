package repository

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultLedgerRepository struct {
	db *gorm.DB
}

func NewDefaultLedgerRepository(db *gorm.DB) *DefaultLedgerRepository {
	return &DefaultLedgerRepository{db: db}
}

func (r *DefaultLedgerRepository) GetByReference(referenceID string) ([]*domain.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	if err := r.db.
		Where("reference_id = ?", referenceID).
		Order("created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]*domain.LedgerEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = mappers.ToDomainLedgerEntry(&entryModels[i])
	}
	return entries, nil
}

func (r *DefaultLedgerRepository) GetByWallet(walletID string, page, limit int) ([]*domain.LedgerEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	baseQuery := r.db.Model(&models.LedgerEntryModel{}).
		Where("from_wallet = ? OR to_wallet = ?", walletID, walletID)

	var total int64
	if err := baseQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entryModels []models.LedgerEntryModel
	if err := baseQuery.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&entryModels).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]*domain.LedgerEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = mappers.ToDomainLedgerEntry(&entryModels[i])
	}
	return entries, total, nil
}
