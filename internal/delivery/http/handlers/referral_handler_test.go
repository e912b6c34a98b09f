package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/distribution"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/investment"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/placement"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/processing"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/rules"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupHandler(t *testing.T) (*gorm.DB, http.Handler) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	treeRepo := repository.NewDefaultTreeRepository(db)
	participantRepo := repository.NewDefaultParticipantRepository(db)
	poolRepo := repository.NewDefaultPoolRepository(db)
	settlementRepo := repository.NewDefaultSettlementRepository(db)
	investmentRepo := repository.NewDefaultInvestmentRepository(db)

	resolver := rules.NewResolver(repository.NewDefaultRuleRepository(db), time.Minute)
	placementService := placement.NewService(treeRepo, participantRepo, 4, 10, false)
	processor := &processing.Processor{
		Purchases:   repository.NewDefaultPurchaseRepository(db),
		Investments: investmentRepo,
		Incomes:     repository.NewDefaultIncomeRepository(db),
		Settlements: settlementRepo,
		Placement:   placementService,
		Workers: distribution.NewTable(
			distribution.NewLevelWorker(treeRepo, resolver, 10),
			distribution.NewFasttrackWorker(resolver),
			distribution.NewClubWorker(placementService, resolver),
			distribution.NewPoolWorker(poolRepo, resolver),
		),
		Clock:    processing.SystemClock(),
		Currency: "USDT",
	}

	mux := http.NewServeMux()
	handler := &ReferralHandler{
		Processor:   processor,
		Placement:   placementService,
		Investments: investment.NewUsecase(investmentRepo, participantRepo, settlementRepo, resolver),
		Wallets:     repository.NewDefaultWalletRepository(db),
		Ledger:      repository.NewDefaultLedgerRepository(db),
		Incomes:     repository.NewDefaultIncomeRepository(db),
	}
	handler.Register(mux)
	return db, mux
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	handler.ServeHTTP(recorder, req)
	return recorder
}

func TestHealthz(t *testing.T) {
	_, handler := setupHandler(t)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestPlacementEndpoint(t *testing.T) {
	db, handler := setupHandler(t)
	require.NoError(t, db.Create(&models.ParticipantModel{ID: "root", Status: "ACTIVE", CreatedAt: time.Now()}).Error)
	require.NoError(t, db.Create(&models.ParticipantModel{ID: "kid", SponsorID: "root", Status: "ACTIVE", CreatedAt: time.Now()}).Error)

	recorder := postJSON(t, handler, "/placement/network", map[string]string{"participant_id": "root"})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = postJSON(t, handler, "/placement/network", map[string]string{
		"participant_id": "kid", "sponsor_id": "root",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp struct {
		Depth int    `json:"depth"`
		Path  string `json:"path"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Depth)
	assert.Equal(t, "/root/kid/", resp.Path)
}

func TestPlacementRequiresParticipant(t *testing.T) {
	_, handler := setupHandler(t)
	recorder := postJSON(t, handler, "/placement/network", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestPlacementUnknownSponsorIs404(t *testing.T) {
	_, handler := setupHandler(t)
	recorder := postJSON(t, handler, "/placement/network", map[string]string{
		"participant_id": "kid", "sponsor_id": "ghost",
	})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestProcessPurchaseEndpoint(t *testing.T) {
	db, handler := setupHandler(t)
	require.NoError(t, db.Create(&models.ParticipantModel{ID: "A", Status: "ACTIVE", CreatedAt: time.Now()}).Error)
	require.NoError(t, db.Create(&models.ParticipantModel{ID: "B", SponsorID: "A", Status: "ACTIVE", CreatedAt: time.Now()}).Error)
	require.NoError(t, db.Create(&models.TreeNodeModel{
		ID: "n-a", Kind: string(domain.TreeNetwork), ParticipantID: "A",
		Path: "/A/", CreatedAt: time.Now(),
	}).Error)
	require.NoError(t, db.Create(&models.CommissionRuleModel{
		ID: uuid.NewString(), Category: string(domain.CategoryFasttrack),
		Kind: string(domain.AmountPercent), Value: decimal.NewFromInt(10),
		IsActive: true, Version: 1, CreatedAt: time.Now(),
	}).Error)
	require.NoError(t, db.Create(&models.PurchaseModel{
		ID: "p1", ParticipantID: "B", SponsorID: "A",
		Amount: decimal.NewFromInt(100), Currency: "USDT",
		FirstEnrollment: true, CreatedAt: time.Now(),
	}).Error)

	recorder := postJSON(t, handler, "/process/purchase", map[string]string{"purchase_id": "p1"})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	// The sponsor's wallets are visible through the read endpoint.
	getRec := httptest.NewRecorder()
	handler.ServeHTTP(getRec, httptest.NewRequest(http.MethodGet, "/wallets/A", nil))
	require.Equal(t, http.StatusOK, getRec.Code)
	var wallets []struct {
		Category string `json:"category"`
		Balance  string `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &wallets))
	found := false
	for _, w := range wallets {
		if w.Category == string(domain.WalletFasttrack) {
			found = true
			assert.Equal(t, "10.00", w.Balance)
		}
	}
	assert.True(t, found)
}

func TestProcessPurchaseUnknownIs404(t *testing.T) {
	_, handler := setupHandler(t)
	recorder := postJSON(t, handler, "/process/purchase", map[string]string{"purchase_id": "nope"})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestInvestmentLifecycleEndpoints(t *testing.T) {
	db, handler := setupHandler(t)
	require.NoError(t, db.Create(&models.ParticipantModel{ID: "bob", Status: "ACTIVE", CreatedAt: time.Now()}).Error)

	recorder := postJSON(t, handler, "/investments", map[string]interface{}{
		"participant_id": "bob",
		"principal":      "250",
		"daily_rate":     "1.0",
		"currency":       "USDT",
		"term_days":      30,
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	var created struct {
		InvestmentID string `json:"investment_id"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	require.NotEmpty(t, created.InvestmentID)

	// Activation fails with 409 while the investor has no funds.
	recorder = postJSON(t, handler, "/investments/activate", map[string]string{"investment_id": created.InvestmentID})
	assert.Equal(t, http.StatusConflict, recorder.Code)

	recorder = postJSON(t, handler, "/investments/cancel", map[string]string{"investment_id": created.InvestmentID})
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = postJSON(t, handler, "/investments/withdraw", map[string]string{"investment_id": created.InvestmentID})
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestPoolEndpointRejectsBadAmount(t *testing.T) {
	_, handler := setupHandler(t)
	recorder := postJSON(t, handler, "/process/pool", map[string]string{
		"package_id": "pkg", "run_id": "r1", "amount": "not-a-number",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRebuildEndpointValidatesKind(t *testing.T) {
	_, handler := setupHandler(t)
	recorder := postJSON(t, handler, "/placement/rebuild", map[string]string{"kind": "WEIRD"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = postJSON(t, handler, "/placement/rebuild", map[string]string{"kind": "NETWORK"})
	assert.Equal(t, http.StatusOK, recorder.Code)
}
