package repository

import (
	"errors"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DefaultWalletRepository struct {
	db *gorm.DB
}

func NewDefaultWalletRepository(db *gorm.DB) *DefaultWalletRepository {
	return &DefaultWalletRepository{db: db}
}

func (r *DefaultWalletRepository) GetOrCreate(ref domain.WalletRef, currency string) (*domain.Wallet, error) {
	var walletModel models.WalletModel
	err := r.db.
		Where("participant_id = ? AND category = ? AND currency = ?",
			ref.ParticipantID, string(ref.Category), currency).
		First(&walletModel).Error
	if err == nil {
		return mappers.ToDomainWallet(&walletModel), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	walletModel = models.WalletModel{
		ID:             uuid.New().String(),
		ParticipantID:  ref.ParticipantID,
		Category:       string(ref.Category),
		Currency:       currency,
		Balance:        decimal.Zero,
		PendingBalance: decimal.Zero,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := r.db.Create(&walletModel).Error; err != nil {
		// Lost a race with a concurrent creator: read theirs.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.GetOrCreate(ref, currency)
		}
		return nil, err
	}
	return mappers.ToDomainWallet(&walletModel), nil
}

func (r *DefaultWalletRepository) GetByParticipant(participantID string) ([]*domain.Wallet, error) {
	var walletModels []models.WalletModel
	if err := r.db.
		Where("participant_id = ?", participantID).
		Order("category ASC").
		Find(&walletModels).Error; err != nil {
		return nil, err
	}

	wallets := make([]*domain.Wallet, len(walletModels))
	for i := range walletModels {
		wallets[i] = mappers.ToDomainWallet(&walletModels[i])
	}
	return wallets, nil
}
