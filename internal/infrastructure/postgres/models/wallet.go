package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type WalletModel struct {
	ID             string          `gorm:"primaryKey;type:uuid"`
	ParticipantID  string          `gorm:"index:idx_wallet_owner,unique"`
	Category       string          `gorm:"index:idx_wallet_owner,unique"`
	Currency       string          `gorm:"index:idx_wallet_owner,unique"`
	Balance        decimal.Decimal `gorm:"type:numeric(30,8)"`
	PendingBalance decimal.Decimal `gorm:"type:numeric(30,8)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (WalletModel) TableName() string {
	return "wallets"
}
