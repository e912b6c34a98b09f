package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func fundWallet(t *testing.T, db *gorm.DB, repo *DefaultSettlementRepository, ref domain.WalletRef, amount string) {
	t.Helper()
	err := repo.Apply(&domain.SettlementBatch{
		Currency: "USDT",
		Postings: []domain.Posting{{
			Credit:      &ref,
			Amount:      decimalFromString(t, amount),
			Category:    domain.CategoryPayout,
			ReferenceID: "seed-" + uuid.NewString(),
			Description: "test funding",
		}},
	})
	require.NoError(t, err)
}

func walletBalance(t *testing.T, db *gorm.DB, ref domain.WalletRef) string {
	t.Helper()
	var walletModel models.WalletModel
	err := db.
		Where("participant_id = ? AND category = ? AND currency = ?",
			ref.ParticipantID, string(ref.Category), "USDT").
		First(&walletModel).Error
	require.NoError(t, err)
	return walletModel.Balance.String()
}

func TestApplyCreditCreatesWalletAndLedger(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDefaultSettlementRepository(db)

	ref := domain.WalletRef{ParticipantID: "alice", Category: domain.WalletCommission}
	err := repo.Apply(&domain.SettlementBatch{
		Currency: "USDT",
		Postings: []domain.Posting{{
			Credit:      &ref,
			Amount:      decimalFromString(t, "10.5"),
			Category:    domain.CategoryLevel,
			ReferenceID: "purchase-1",
			Description: "level income",
			Income: &domain.IncomeRecord{
				BeneficiaryID: "alice",
				Category:      domain.CategoryLevel,
				Amount:        decimalFromString(t, "10.5"),
				Status:        domain.IncomePaid,
				ReferenceID:   "purchase-1:1",
			},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "10.5", walletBalance(t, db, ref))

	var entries []models.LedgerEntryModel
	require.NoError(t, db.Where("reference_id = ?", "purchase-1").Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].ToParticipant)
	assert.NotEmpty(t, entries[0].Code)

	var incomeCount int64
	require.NoError(t, db.Model(&models.IncomeRecordModel{}).Count(&incomeCount).Error)
	assert.Equal(t, int64(1), incomeCount)
}

func TestApplyTransferMovesBetweenWallets(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDefaultSettlementRepository(db)

	from := domain.WalletRef{ParticipantID: "bob", Category: domain.WalletMain}
	to := domain.WalletRef{Category: domain.WalletMain} // company
	fundWallet(t, db, repo, from, "100")

	err := repo.Apply(&domain.SettlementBatch{
		Currency: "USDT",
		Postings: []domain.Posting{{
			Debit:       &from,
			Credit:      &to,
			Amount:      decimalFromString(t, "40"),
			Category:    domain.CategoryPayout,
			ReferenceID: "inv-1:principal",
			Description: "principal",
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "60", walletBalance(t, db, from))
	assert.Equal(t, "40", walletBalance(t, db, to))
}

func TestApplyRejectsInsufficientFunds(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDefaultSettlementRepository(db)

	from := domain.WalletRef{ParticipantID: "bob", Category: domain.WalletMain}
	to := domain.WalletRef{ParticipantID: "carol", Category: domain.WalletMain}
	fundWallet(t, db, repo, from, "5")

	err := repo.Apply(&domain.SettlementBatch{
		Currency: "USDT",
		Postings: []domain.Posting{{
			Debit:       &from,
			Credit:      &to,
			Amount:      decimalFromString(t, "10"),
			Category:    domain.CategoryPayout,
			ReferenceID: "overdraw",
		}},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// The whole batch rolled back.
	assert.Equal(t, "5", walletBalance(t, db, from))
}

func TestApplyRejectsNonPositiveAmount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDefaultSettlementRepository(db)

	ref := domain.WalletRef{ParticipantID: "alice", Category: domain.WalletMain}
	err := repo.Apply(&domain.SettlementBatch{
		Currency: "USDT",
		Postings: []domain.Posting{{
			Credit:      &ref,
			Amount:      decimalFromString(t, "-1"),
			Category:    domain.CategoryPayout,
			ReferenceID: "bad",
		}},
	})
	assert.ErrorIs(t, err, domain.ErrNegativeAmount)
}

func TestApplyDuplicateIncomeRollsBackEverything(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDefaultSettlementRepository(db)

	ref := domain.WalletRef{ParticipantID: "alice", Category: domain.WalletCommission}
	batch := func(purchaseID string) *domain.SettlementBatch {
		return &domain.SettlementBatch{
			Currency: "USDT",
			Postings: []domain.Posting{{
				Credit:      &ref,
				Amount:      decimalFromString(t, "10"),
				Category:    domain.CategoryLevel,
				ReferenceID: purchaseID,
				Income: &domain.IncomeRecord{
					BeneficiaryID: "alice",
					Category:      domain.CategoryLevel,
					Amount:        decimalFromString(t, "10"),
					Status:        domain.IncomePaid,
					ReferenceID:   "dup-key",
				},
			}},
		}
	}

	require.NoError(t, repo.Apply(batch("p1")))
	err := repo.Apply(batch("p2"))
	require.ErrorIs(t, err, domain.ErrDuplicateEvent)

	// Replay settled nothing: balance unchanged, one ledger entry, one
	// income record.
	assert.Equal(t, "10", walletBalance(t, db, ref))
	var ledgerCount, incomeCount int64
	require.NoError(t, db.Model(&models.LedgerEntryModel{}).Count(&ledgerCount).Error)
	require.NoError(t, db.Model(&models.IncomeRecordModel{}).Count(&incomeCount).Error)
	assert.Equal(t, int64(1), ledgerCount)
	assert.Equal(t, int64(1), incomeCount)
}

func TestApplyPurchaseMark(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDefaultSettlementRepository(db)

	purchase := models.PurchaseModel{
		ID:            "p1",
		ParticipantID: "bob",
		Amount:        decimalFromString(t, "100"),
		Currency:      "USDT",
		CreatedAt:     time.Now(),
	}
	require.NoError(t, db.Create(&purchase).Error)

	err := repo.Apply(&domain.SettlementBatch{
		Currency: "USDT",
		Marks:    []domain.Mark{{Kind: domain.MarkPurchaseProcessed, PurchaseID: "p1"}},
	})
	require.NoError(t, err)

	var reloaded models.PurchaseModel
	require.NoError(t, db.First(&reloaded, "id = ?", "p1").Error)
	assert.NotNil(t, reloaded.ProcessedAt)
}

func TestApplyAccrualMarkAccumulatesInterest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDefaultSettlementRepository(db)

	investment := models.InvestmentModel{
		ID:              "inv-1",
		ParticipantID:   "bob",
		Principal:       decimalFromString(t, "1000"),
		DailyRate:       decimalFromString(t, "1.5"),
		Currency:        "USDT",
		Status:          string(domain.InvestmentActive),
		AccruedInterest: decimalFromString(t, "0"),
		CreatedAt:       time.Now(),
	}
	require.NoError(t, db.Create(&investment).Error)

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		err := repo.Apply(&domain.SettlementBatch{
			Currency: "USDT",
			Marks: []domain.Mark{{
				Kind:         domain.MarkAccrualDate,
				InvestmentID: "inv-1",
				AccrualDate:  day.AddDate(0, 0, i),
				AccruedDelta: decimalFromString(t, "15"),
			}},
		})
		require.NoError(t, err)
	}

	var reloaded models.InvestmentModel
	require.NoError(t, db.First(&reloaded, "id = ?", "inv-1").Error)
	assert.Equal(t, "30", reloaded.AccruedInterest.String())
	require.NotNil(t, reloaded.LastAccrualDate)
}

func TestApplyStatusMarkSetsStartAt(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDefaultSettlementRepository(db)

	investment := models.InvestmentModel{
		ID:            "inv-2",
		ParticipantID: "bob",
		Principal:     decimalFromString(t, "500"),
		Currency:      "USDT",
		Status:        string(domain.InvestmentPending),
		CreatedAt:     time.Now(),
	}
	require.NoError(t, db.Create(&investment).Error)

	err := repo.Apply(&domain.SettlementBatch{
		Currency: "USDT",
		Marks: []domain.Mark{{
			Kind:         domain.MarkInvestmentStatus,
			InvestmentID: "inv-2",
			PriorStatus:  domain.InvestmentPending,
			NewStatus:    domain.InvestmentActive,
		}},
	})
	require.NoError(t, err)

	var reloaded models.InvestmentModel
	require.NoError(t, db.First(&reloaded, "id = ?", "inv-2").Error)
	assert.Equal(t, string(domain.InvestmentActive), reloaded.Status)
	assert.NotNil(t, reloaded.StartAt)
}

func TestApplyStatusMarkFailsWhenStatusMoved(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDefaultSettlementRepository(db)

	investment := models.InvestmentModel{
		ID:            "inv-3",
		ParticipantID: "bob",
		Principal:     decimalFromString(t, "500"),
		Currency:      "USDT",
		Status:        string(domain.InvestmentActive),
		CreatedAt:     time.Now(),
	}
	require.NoError(t, db.Create(&investment).Error)
	fundWallet(t, db, repo, domain.WalletRef{ParticipantID: "bob", Category: domain.WalletMain}, "500")

	// The mark expects PENDING but a concurrent activation already moved
	// the row to ACTIVE, so the whole batch must roll back.
	err := repo.Apply(&domain.SettlementBatch{
		Currency: "USDT",
		Postings: []domain.Posting{{
			Debit:       &domain.WalletRef{ParticipantID: "bob", Category: domain.WalletMain},
			Credit:      &domain.WalletRef{Category: domain.WalletMain},
			Amount:      decimalFromString(t, "500"),
			Category:    domain.CategoryPayout,
			ReferenceID: "inv-3:principal",
		}},
		Marks: []domain.Mark{{
			Kind:         domain.MarkInvestmentStatus,
			InvestmentID: "inv-3",
			PriorStatus:  domain.InvestmentPending,
			NewStatus:    domain.InvestmentActive,
		}},
	})
	require.ErrorIs(t, err, domain.ErrDuplicateEvent)

	assert.Equal(t, "500", walletBalance(t, db, domain.WalletRef{ParticipantID: "bob", Category: domain.WalletMain}))
}
