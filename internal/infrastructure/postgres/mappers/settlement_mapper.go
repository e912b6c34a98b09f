package mappers

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
)

func ToDomainWallet(model *models.WalletModel) *domain.Wallet {
	return &domain.Wallet{
		ID:             model.ID,
		ParticipantID:  model.ParticipantID,
		Category:       domain.WalletCategory(model.Category),
		Currency:       model.Currency,
		Balance:        model.Balance,
		PendingBalance: model.PendingBalance,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

func ToDomainLedgerEntry(model *models.LedgerEntryModel) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		ID:              model.ID,
		Code:            model.Code,
		FromParticipant: model.FromParticipant,
		ToParticipant:   model.ToParticipant,
		FromWallet:      model.FromWallet,
		ToWallet:        model.ToWallet,
		Category:        domain.IncomeCategory(model.Category),
		Amount:          model.Amount,
		Currency:        model.Currency,
		ReferenceID:     model.ReferenceID,
		Description:     model.Description,
		CreatedAt:       model.CreatedAt,
	}
}

func ToGORMIncomeRecord(record *domain.IncomeRecord) *models.IncomeRecordModel {
	return &models.IncomeRecordModel{
		ID:                record.ID,
		BeneficiaryID:     record.BeneficiaryID,
		OriginParticipant: record.OriginParticipant,
		Category:          string(record.Category),
		ReferenceID:       record.ReferenceID,
		Amount:            record.Amount,
		Status:            string(record.Status),
		RuleVersion:       record.RuleVersion,
		CreatedAt:         record.CreatedAt,
	}
}

func ToDomainIncomeRecord(model *models.IncomeRecordModel) *domain.IncomeRecord {
	return &domain.IncomeRecord{
		ID:                model.ID,
		BeneficiaryID:     model.BeneficiaryID,
		OriginParticipant: model.OriginParticipant,
		Category:          domain.IncomeCategory(model.Category),
		ReferenceID:       model.ReferenceID,
		Amount:            model.Amount,
		Status:            domain.IncomeStatus(model.Status),
		RuleVersion:       model.RuleVersion,
		CreatedAt:         model.CreatedAt,
	}
}
