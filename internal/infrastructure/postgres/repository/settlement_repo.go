package repository

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	nanoid "github.com/jaevor/go-nanoid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultSettlementRepository applies a settlement batch in one database
// transaction: wallet balance updates, ledger entries, income records and
// idempotency marks commit together or not at all.
type DefaultSettlementRepository struct {
	db      *gorm.DB
	newCode func() string
}

func NewDefaultSettlementRepository(db *gorm.DB) *DefaultSettlementRepository {
	gen, err := nanoid.Standard(14)
	if err != nil {
		panic(fmt.Sprintf("nanoid init: %v", err))
	}
	return &DefaultSettlementRepository{db: db, newCode: gen}
}

type walletKey struct {
	participantID string
	category      string
}

func (r *DefaultSettlementRepository) Apply(batch *domain.SettlementBatch) error {
	for i := range batch.Postings {
		if !batch.Postings[i].Amount.IsPositive() {
			return domain.ErrNegativeAmount
		}
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		wallets, err := r.lockWallets(tx, batch)
		if err != nil {
			return err
		}

		deltas := make(map[string]decimal.Decimal)
		for i := range batch.Postings {
			p := &batch.Postings[i]
			if p.Debit != nil {
				id := wallets[refKey(p.Debit)].ID
				deltas[id] = deltas[id].Sub(p.Amount)
			}
			if p.Credit != nil {
				id := wallets[refKey(p.Credit)].ID
				deltas[id] = deltas[id].Add(p.Amount)
			}
		}

		for _, w := range wallets {
			delta, ok := deltas[w.ID]
			if !ok {
				continue
			}
			next := w.Balance.Add(delta)
			if next.IsNegative() {
				return domain.ErrInsufficientFunds
			}
			if err := tx.Model(&models.WalletModel{}).
				Where("id = ?", w.ID).
				Updates(map[string]interface{}{
					"balance":    next,
					"updated_at": time.Now(),
				}).Error; err != nil {
				return fmt.Errorf("updating wallet %s: %w", w.ID, err)
			}
		}

		for i := range batch.Postings {
			p := &batch.Postings[i]
			if err := r.insertLedgerEntry(tx, batch, p, wallets); err != nil {
				return err
			}
			if p.Income != nil {
				if err := r.insertIncomeRecord(tx, p.Income); err != nil {
					return err
				}
			}
		}

		for _, mark := range batch.Marks {
			if err := applyMark(tx, mark); err != nil {
				return err
			}
		}

		return nil
	})
}

// lockWallets resolves every wallet the batch touches, creating missing
// rows, then re-reads them locked in ascending id order so concurrent
// events touching the same wallets serialize without deadlocking.
func (r *DefaultSettlementRepository) lockWallets(tx *gorm.DB, batch *domain.SettlementBatch) (map[walletKey]*models.WalletModel, error) {
	refs := make(map[walletKey]domain.WalletRef)
	for i := range batch.Postings {
		p := &batch.Postings[i]
		if p.Debit != nil {
			refs[refKey(p.Debit)] = *p.Debit
		}
		if p.Credit != nil {
			refs[refKey(p.Credit)] = *p.Credit
		}
	}

	ids := make([]string, 0, len(refs))
	byID := make(map[string]walletKey, len(refs))
	for key, ref := range refs {
		var walletModel models.WalletModel
		err := tx.
			Where("participant_id = ? AND category = ? AND currency = ?",
				ref.ParticipantID, string(ref.Category), batch.Currency).
			First(&walletModel).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			walletModel = models.WalletModel{
				ID:            uuid.New().String(),
				ParticipantID: ref.ParticipantID,
				Category:      string(ref.Category),
				Currency:      batch.Currency,
				Balance:       decimal.Zero,
				CreatedAt:     time.Now(),
				UpdatedAt:     time.Now(),
			}
			err = tx.Create(&walletModel).Error
		}
		if err != nil {
			return nil, fmt.Errorf("resolving wallet: %w", err)
		}
		ids = append(ids, walletModel.ID)
		byID[walletModel.ID] = key
	}
	sort.Strings(ids)

	query := tx.Where("id IN ?", ids).Order("id ASC")
	// sqlite serializes writers on its own and rejects FOR UPDATE.
	if tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var lockedModels []models.WalletModel
	if err := query.Find(&lockedModels).Error; err != nil {
		return nil, fmt.Errorf("locking wallets: %w", err)
	}

	wallets := make(map[walletKey]*models.WalletModel, len(lockedModels))
	for i := range lockedModels {
		wallets[byID[lockedModels[i].ID]] = &lockedModels[i]
	}
	return wallets, nil
}

func (r *DefaultSettlementRepository) insertLedgerEntry(tx *gorm.DB, batch *domain.SettlementBatch, p *domain.Posting, wallets map[walletKey]*models.WalletModel) error {
	entry := models.LedgerEntryModel{
		ID:          uuid.New().String(),
		Code:        r.newCode(),
		Category:    string(p.Category),
		Amount:      p.Amount,
		Currency:    batch.Currency,
		ReferenceID: p.ReferenceID,
		Description: p.Description,
		CreatedAt:   time.Now(),
	}
	if p.Debit != nil {
		entry.FromParticipant = p.Debit.ParticipantID
		entry.FromWallet = wallets[refKey(p.Debit)].ID
	}
	if p.Credit != nil {
		entry.ToParticipant = p.Credit.ParticipantID
		entry.ToWallet = wallets[refKey(p.Credit)].ID
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("inserting ledger entry: %w", err)
	}
	return nil
}

func (r *DefaultSettlementRepository) insertIncomeRecord(tx *gorm.DB, record *domain.IncomeRecord) error {
	recordModel := mappers.ToGORMIncomeRecord(record)
	if recordModel.ID == "" {
		recordModel.ID = uuid.New().String()
	}
	if recordModel.CreatedAt.IsZero() {
		recordModel.CreatedAt = time.Now()
	}
	if err := tx.Create(recordModel).Error; err != nil {
		// The unique (category, reference_id) index proves a prior run
		// already settled this payment.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateEvent
		}
		return fmt.Errorf("inserting income record: %w", err)
	}
	return nil
}

func applyMark(tx *gorm.DB, mark domain.Mark) error {
	switch mark.Kind {
	case domain.MarkPurchaseProcessed:
		return tx.Model(&models.PurchaseModel{}).
			Where("id = ?", mark.PurchaseID).
			Update("processed_at", time.Now()).Error
	case domain.MarkAccrualDate:
		return tx.Model(&models.InvestmentModel{}).
			Where("id = ?", mark.InvestmentID).
			Updates(map[string]interface{}{
				"last_accrual_date": mark.AccrualDate,
				"accrued_interest":  gorm.Expr("accrued_interest + ?", mark.AccruedDelta),
			}).Error
	case domain.MarkInvestmentStatus:
		updates := map[string]interface{}{"status": string(mark.NewStatus)}
		if mark.NewStatus == domain.InvestmentActive {
			updates["start_at"] = time.Now()
		}
		res := tx.Model(&models.InvestmentModel{}).
			Where("id = ? AND status = ?", mark.InvestmentID, string(mark.PriorStatus)).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		// Zero rows means a concurrent transition already applied; fail
		// the transaction so none of the postings commit twice.
		if res.RowsAffected == 0 {
			return domain.ErrDuplicateEvent
		}
		return nil
	default:
		return fmt.Errorf("unknown settlement mark: %s", mark.Kind)
	}
}

func refKey(ref *domain.WalletRef) walletKey {
	return walletKey{participantID: ref.ParticipantID, category: string(ref.Category)}
}
