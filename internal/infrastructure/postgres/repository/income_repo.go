package repository

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultIncomeRepository struct {
	db *gorm.DB
}

func NewDefaultIncomeRepository(db *gorm.DB) *DefaultIncomeRepository {
	return &DefaultIncomeRepository{db: db}
}

func (r *DefaultIncomeRepository) Exists(category domain.IncomeCategory, referenceID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.IncomeRecordModel{}).
		Where("category = ? AND reference_id = ?", string(category), referenceID).
		Count(&count).Error
	return count > 0, err
}

func (r *DefaultIncomeRepository) GetByBeneficiary(beneficiaryID string, page, limit int) ([]*domain.IncomeRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	baseQuery := r.db.Model(&models.IncomeRecordModel{}).
		Where("beneficiary_id = ?", beneficiaryID)

	var total int64
	if err := baseQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recordModels []models.IncomeRecordModel
	if err := baseQuery.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&recordModels).Error; err != nil {
		return nil, 0, err
	}

	records := make([]*domain.IncomeRecord, len(recordModels))
	for i := range recordModels {
		records[i] = mappers.ToDomainIncomeRecord(&recordModels[i])
	}
	return records, total, nil
}
