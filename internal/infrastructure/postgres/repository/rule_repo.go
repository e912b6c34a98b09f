package repository

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultRuleRepository struct {
	db *gorm.DB
}

func NewDefaultRuleRepository(db *gorm.DB) *DefaultRuleRepository {
	return &DefaultRuleRepository{db: db}
}

func (r *DefaultRuleRepository) Create(rule *domain.CommissionRule) error {
	return r.db.Create(mappers.ToGORMRule(rule)).Error
}

func (r *DefaultRuleRepository) Candidates(category domain.IncomeCategory, packageID string, level, subLevel int) ([]*domain.CommissionRule, error) {
	var ruleModels []models.CommissionRuleModel
	err := r.db.
		Where("category = ? AND is_active = ?", string(category), true).
		Where("package_id = ? OR package_id = ''", packageID).
		Where("level = ? AND sub_level = ?", level, subLevel).
		Order("version DESC").
		Find(&ruleModels).Error
	if err != nil {
		return nil, err
	}

	rules := make([]*domain.CommissionRule, len(ruleModels))
	for i := range ruleModels {
		rules[i] = mappers.ToDomainRule(&ruleModels[i])
	}
	return rules, nil
}

func (r *DefaultRuleRepository) Deactivate(category domain.IncomeCategory, packageID string, level, subLevel int) error {
	return r.db.Model(&models.CommissionRuleModel{}).
		Where("category = ? AND package_id = ? AND level = ? AND sub_level = ?",
			string(category), packageID, level, subLevel).
		Update("is_active", false).Error
}
