package repository

import (
	"errors"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultInvestmentRepository struct {
	db *gorm.DB
}

func NewDefaultInvestmentRepository(db *gorm.DB) *DefaultInvestmentRepository {
	return &DefaultInvestmentRepository{db: db}
}

func (r *DefaultInvestmentRepository) Create(investment *domain.Investment) error {
	return r.db.Create(mappers.ToGORMInvestment(investment)).Error
}

func (r *DefaultInvestmentRepository) GetByID(investmentID string) (*domain.Investment, error) {
	var investmentModel models.InvestmentModel
	if err := r.db.First(&investmentModel, "id = ?", investmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvestmentNotFound
		}
		return nil, err
	}
	return mappers.ToDomainInvestment(&investmentModel), nil
}

func (r *DefaultInvestmentRepository) UpdateStatus(investmentID string, status domain.InvestmentStatus) error {
	return r.db.Model(&models.InvestmentModel{}).
		Where("id = ?", investmentID).
		Update("status", string(status)).Error
}

func (r *DefaultInvestmentRepository) FindDueAccruals(day time.Time, limit int) ([]*domain.Investment, error) {
	var investmentModels []models.InvestmentModel
	err := r.db.
		Where("status = ?", string(domain.InvestmentActive)).
		Where("last_accrual_date IS NULL OR last_accrual_date < ?", day).
		Order("created_at ASC").
		Limit(limit).
		Find(&investmentModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainInvestments(investmentModels), nil
}

func (r *DefaultInvestmentRepository) FindDueMaturities(now time.Time, limit int) ([]*domain.Investment, error) {
	var investmentModels []models.InvestmentModel
	err := r.db.
		Where("status = ?", string(domain.InvestmentActive)).
		Where("end_at IS NOT NULL AND end_at <= ?", now).
		Order("end_at ASC").
		Limit(limit).
		Find(&investmentModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainInvestments(investmentModels), nil
}

func toDomainInvestments(investmentModels []models.InvestmentModel) []*domain.Investment {
	investments := make([]*domain.Investment, len(investmentModels))
	for i := range investmentModels {
		investments[i] = mappers.ToDomainInvestment(&investmentModels[i])
	}
	return investments
}
