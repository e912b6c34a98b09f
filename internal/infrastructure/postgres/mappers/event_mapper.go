package mappers

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
)

func ToGORMPurchase(p *domain.Purchase) *models.PurchaseModel {
	return &models.PurchaseModel{
		ID:              p.ID,
		ParticipantID:   p.ParticipantID,
		SponsorID:       p.SponsorID,
		PackageID:       p.PackageID,
		Amount:          p.Amount,
		Currency:        p.Currency,
		FirstEnrollment: p.FirstEnrollment,
		ProcessedAt:     p.ProcessedAt,
		CreatedAt:       p.CreatedAt,
	}
}

func ToDomainPurchase(model *models.PurchaseModel) *domain.Purchase {
	return &domain.Purchase{
		ID:              model.ID,
		ParticipantID:   model.ParticipantID,
		SponsorID:       model.SponsorID,
		PackageID:       model.PackageID,
		Amount:          model.Amount,
		Currency:        model.Currency,
		FirstEnrollment: model.FirstEnrollment,
		ProcessedAt:     model.ProcessedAt,
		CreatedAt:       model.CreatedAt,
	}
}

func ToGORMInvestment(inv *domain.Investment) *models.InvestmentModel {
	return &models.InvestmentModel{
		ID:              inv.ID,
		ParticipantID:   inv.ParticipantID,
		PackageID:       inv.PackageID,
		Principal:       inv.Principal,
		DailyRate:       inv.DailyRate,
		Currency:        inv.Currency,
		Status:          string(inv.Status),
		AccruedInterest: inv.AccruedInterest,
		LastAccrualDate: inv.LastAccrualDate,
		StartAt:         inv.StartAt,
		EndAt:           inv.EndAt,
		CreatedAt:       inv.CreatedAt,
	}
}

func ToDomainInvestment(model *models.InvestmentModel) *domain.Investment {
	return &domain.Investment{
		ID:              model.ID,
		ParticipantID:   model.ParticipantID,
		PackageID:       model.PackageID,
		Principal:       model.Principal,
		DailyRate:       model.DailyRate,
		Currency:        model.Currency,
		Status:          domain.InvestmentStatus(model.Status),
		AccruedInterest: model.AccruedInterest,
		LastAccrualDate: model.LastAccrualDate,
		StartAt:         model.StartAt,
		EndAt:           model.EndAt,
		CreatedAt:       model.CreatedAt,
	}
}

func ToGORMPoolEntry(entry *domain.PoolEntry) *models.PoolEntryModel {
	return &models.PoolEntryModel{
		ID:            entry.ID,
		ParticipantID: entry.ParticipantID,
		PackageID:     entry.PackageID,
		Level:         entry.Level,
		SubLevel:      entry.SubLevel,
		IsActive:      entry.IsActive,
		CreatedAt:     entry.CreatedAt,
	}
}

func ToDomainPoolEntry(model *models.PoolEntryModel) *domain.PoolEntry {
	return &domain.PoolEntry{
		ID:            model.ID,
		ParticipantID: model.ParticipantID,
		PackageID:     model.PackageID,
		Level:         model.Level,
		SubLevel:      model.SubLevel,
		IsActive:      model.IsActive,
		CreatedAt:     model.CreatedAt,
	}
}
