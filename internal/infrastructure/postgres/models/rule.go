package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CommissionRuleModel struct {
	ID            string `gorm:"primaryKey;type:uuid"`
	Category      string `gorm:"index:idx_rule_tuple"`
	PackageID     string `gorm:"index:idx_rule_tuple"`
	Level         int    `gorm:"index:idx_rule_tuple"`
	SubLevel      int    `gorm:"index:idx_rule_tuple"`
	Kind          string
	Value         decimal.Decimal `gorm:"type:numeric(30,8)"`
	IsActive      bool            `gorm:"index"`
	Version       int
	EffectiveFrom *time.Time
	EffectiveTo   *time.Time
	ExtraParams   string `gorm:"type:jsonb"`
	CreatedAt     time.Time
}

func (CommissionRuleModel) TableName() string {
	return "rules"
}
