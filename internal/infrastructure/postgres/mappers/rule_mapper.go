package mappers

import (
	"encoding/json"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
)

func ToGORMRule(rule *domain.CommissionRule) *models.CommissionRuleModel {
	extra := "{}"
	if len(rule.ExtraParams) > 0 {
		if raw, err := json.Marshal(rule.ExtraParams); err == nil {
			extra = string(raw)
		}
	}
	return &models.CommissionRuleModel{
		ID:            rule.ID,
		Category:      string(rule.Category),
		PackageID:     rule.PackageID,
		Level:         rule.Level,
		SubLevel:      rule.SubLevel,
		Kind:          string(rule.Kind),
		Value:         rule.Value,
		IsActive:      rule.IsActive,
		Version:       rule.Version,
		EffectiveFrom: rule.EffectiveFrom,
		EffectiveTo:   rule.EffectiveTo,
		ExtraParams:   extra,
		CreatedAt:     rule.CreatedAt,
	}
}

func ToDomainRule(model *models.CommissionRuleModel) *domain.CommissionRule {
	extra := map[string]string{}
	if model.ExtraParams != "" {
		_ = json.Unmarshal([]byte(model.ExtraParams), &extra)
	}
	return &domain.CommissionRule{
		ID:            model.ID,
		Category:      domain.IncomeCategory(model.Category),
		PackageID:     model.PackageID,
		Level:         model.Level,
		SubLevel:      model.SubLevel,
		Kind:          domain.AmountKind(model.Kind),
		Value:         model.Value,
		IsActive:      model.IsActive,
		Version:       model.Version,
		EffectiveFrom: model.EffectiveFrom,
		EffectiveTo:   model.EffectiveTo,
		ExtraParams:   extra,
		CreatedAt:     model.CreatedAt,
	}
}
