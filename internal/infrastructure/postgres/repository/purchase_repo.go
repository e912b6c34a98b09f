package repository

import (
	"errors"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultPurchaseRepository struct {
	db *gorm.DB
}

func NewDefaultPurchaseRepository(db *gorm.DB) *DefaultPurchaseRepository {
	return &DefaultPurchaseRepository{db: db}
}

func (r *DefaultPurchaseRepository) Create(purchase *domain.Purchase) error {
	return r.db.Create(mappers.ToGORMPurchase(purchase)).Error
}

func (r *DefaultPurchaseRepository) GetByID(purchaseID string) (*domain.Purchase, error) {
	var purchaseModel models.PurchaseModel
	if err := r.db.First(&purchaseModel, "id = ?", purchaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPurchaseNotFound
		}
		return nil, err
	}
	return mappers.ToDomainPurchase(&purchaseModel), nil
}
