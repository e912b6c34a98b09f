package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/investment"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/placement"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/processing"
	"github.com/shopspring/decimal"
)

// ReferralHandler is the thin admin surface: it validates ids, delegates
// to the processors and returns JSON. Auth sits in front of this service.
type ReferralHandler struct {
	Processor   *processing.Processor
	Placement   *placement.Service
	Investments *investment.Usecase
	Wallets     domain.WalletRepository
	Ledger      domain.LedgerRepository
	Incomes     domain.IncomeRepository
}

type errorResponse struct {
	Error string `json:"error"`
}

type okResponse struct {
	Status string `json:"status"`
}

func (h *ReferralHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /process/purchase", h.processPurchase)
	mux.HandleFunc("POST /process/accrual", h.processAccrual)
	mux.HandleFunc("POST /process/maturity", h.processMaturity)
	mux.HandleFunc("POST /process/pool", h.processPool)
	mux.HandleFunc("POST /placement/network", h.placeInNetwork)
	mux.HandleFunc("POST /placement/club", h.placeInClub)
	mux.HandleFunc("POST /investments", h.createInvestment)
	mux.HandleFunc("POST /investments/activate", h.activateInvestment)
	mux.HandleFunc("POST /investments/withdraw", h.withdrawInvestment)
	mux.HandleFunc("POST /investments/cancel", h.cancelInvestment)
	mux.HandleFunc("POST /placement/rebuild", h.rebuildPaths)
	mux.HandleFunc("GET /wallets/{participant_id}", h.getWallets)
	mux.HandleFunc("GET /wallets/{wallet_id}/statement", h.getStatement)
	mux.HandleFunc("GET /participants/{participant_id}/incomes", h.getIncomes)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, okResponse{Status: "ok"})
	})
}

type processPurchaseRequest struct {
	PurchaseID string `json:"purchase_id"`
}

func (h *ReferralHandler) processPurchase(w http.ResponseWriter, r *http.Request) {
	var req processPurchaseRequest
	if !decode(w, r, &req) || !requireID(w, req.PurchaseID, "purchase_id") {
		return
	}
	if err := h.Processor.ProcessPurchase(r.Context(), req.PurchaseID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Status: "processed"})
}

type investmentIDRequest struct {
	InvestmentID string `json:"investment_id"`
}

func (h *ReferralHandler) processAccrual(w http.ResponseWriter, r *http.Request) {
	var req investmentIDRequest
	if !decode(w, r, &req) || !requireID(w, req.InvestmentID, "investment_id") {
		return
	}
	if err := h.Processor.ProcessDailyAccrual(r.Context(), req.InvestmentID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Status: "processed"})
}

func (h *ReferralHandler) processMaturity(w http.ResponseWriter, r *http.Request) {
	var req investmentIDRequest
	if !decode(w, r, &req) || !requireID(w, req.InvestmentID, "investment_id") {
		return
	}
	if err := h.Processor.ProcessMaturity(r.Context(), req.InvestmentID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Status: "processed"})
}

type processPoolRequest struct {
	PackageID string `json:"package_id"`
	Amount    string `json:"amount"`
	RunID     string `json:"run_id"`
}

func (h *ReferralHandler) processPool(w http.ResponseWriter, r *http.Request) {
	var req processPoolRequest
	if !decode(w, r, &req) || !requireID(w, req.PackageID, "package_id") || !requireID(w, req.RunID, "run_id") {
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad amount"})
		return
	}
	if err := h.Processor.ProcessPoolDistribution(r.Context(), req.PackageID, amount, req.RunID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Status: "processed"})
}

type placementRequest struct {
	ParticipantID string `json:"participant_id"`
	SponsorID     string `json:"sponsor_id"`
}

type placementResponse struct {
	NodeID string `json:"node_id"`
	Depth  int    `json:"depth"`
	Slot   int    `json:"slot"`
	Path   string `json:"path"`
}

func (h *ReferralHandler) placeInNetwork(w http.ResponseWriter, r *http.Request) {
	var req placementRequest
	if !decode(w, r, &req) || !requireID(w, req.ParticipantID, "participant_id") {
		return
	}
	node, err := h.Placement.PlaceInNetwork(r.Context(), req.ParticipantID, req.SponsorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, placementResponse{NodeID: node.ID, Depth: node.Depth, Slot: node.Slot, Path: node.Path})
}

func (h *ReferralHandler) placeInClub(w http.ResponseWriter, r *http.Request) {
	var req placementRequest
	if !decode(w, r, &req) || !requireID(w, req.ParticipantID, "participant_id") || !requireID(w, req.SponsorID, "sponsor_id") {
		return
	}
	node, err := h.Placement.PlaceInClubMatrix(r.Context(), req.ParticipantID, req.SponsorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, placementResponse{NodeID: node.ID, Depth: node.Depth, Slot: node.Slot, Path: node.Path})
}

type createInvestmentRequest struct {
	ParticipantID string `json:"participant_id"`
	PackageID     string `json:"package_id"`
	Principal     string `json:"principal"`
	DailyRate     string `json:"daily_rate"`
	Currency      string `json:"currency"`
	TermDays      int    `json:"term_days"`
}

func (h *ReferralHandler) createInvestment(w http.ResponseWriter, r *http.Request) {
	var req createInvestmentRequest
	if !decode(w, r, &req) || !requireID(w, req.ParticipantID, "participant_id") {
		return
	}
	principal, err := decimal.NewFromString(req.Principal)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad principal"})
		return
	}
	rate, err := decimal.NewFromString(req.DailyRate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad daily_rate"})
		return
	}
	created, err := h.Investments.Create(r.Context(), &investment.CreateInvestmentInput{
		ParticipantID: req.ParticipantID,
		PackageID:     req.PackageID,
		Principal:     principal,
		DailyRate:     rate,
		Currency:      req.Currency,
		TermDays:      req.TermDays,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"investment_id": created.ID})
}

func (h *ReferralHandler) activateInvestment(w http.ResponseWriter, r *http.Request) {
	var req investmentIDRequest
	if !decode(w, r, &req) || !requireID(w, req.InvestmentID, "investment_id") {
		return
	}
	if err := h.Investments.Activate(r.Context(), req.InvestmentID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Status: "active"})
}

func (h *ReferralHandler) withdrawInvestment(w http.ResponseWriter, r *http.Request) {
	var req investmentIDRequest
	if !decode(w, r, &req) || !requireID(w, req.InvestmentID, "investment_id") {
		return
	}
	if err := h.Investments.Withdraw(r.Context(), req.InvestmentID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Status: "withdrawn"})
}

func (h *ReferralHandler) cancelInvestment(w http.ResponseWriter, r *http.Request) {
	var req investmentIDRequest
	if !decode(w, r, &req) || !requireID(w, req.InvestmentID, "investment_id") {
		return
	}
	if err := h.Investments.Cancel(r.Context(), req.InvestmentID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Status: "cancelled"})
}

type walletResponse struct {
	Category string `json:"category"`
	Currency string `json:"currency"`
	Balance  string `json:"balance"`
}

func (h *ReferralHandler) getWallets(w http.ResponseWriter, r *http.Request) {
	participantID := r.PathValue("participant_id")
	if !requireID(w, participantID, "participant_id") {
		return
	}
	wallets, err := h.Wallets.GetByParticipant(participantID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]walletResponse, len(wallets))
	for i, wallet := range wallets {
		out[i] = walletResponse{
			Category: string(wallet.Category),
			Currency: wallet.Currency,
			Balance:  wallet.Balance.StringFixed(2),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type rebuildRequest struct {
	Kind   string `json:"kind"`
	RootID string `json:"root_id"`
}

func (h *ReferralHandler) rebuildPaths(w http.ResponseWriter, r *http.Request) {
	var req rebuildRequest
	if !decode(w, r, &req) {
		return
	}
	kind := domain.TreeKind(req.Kind)
	if kind != domain.TreeNetwork && kind != domain.TreeClub {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad tree kind"})
		return
	}
	fixed, err := h.Placement.RebuildPaths(r.Context(), kind, req.RootID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"fixed": fixed})
}

type statementEntry struct {
	Code        string `json:"code"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	ReferenceID string `json:"reference_id"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

func (h *ReferralHandler) getStatement(w http.ResponseWriter, r *http.Request) {
	walletID := r.PathValue("wallet_id")
	if !requireID(w, walletID, "wallet_id") {
		return
	}
	page, limit := pagination(r)
	entries, total, err := h.Ledger.GetByWallet(walletID, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]statementEntry, len(entries))
	for i, entry := range entries {
		out[i] = statementEntry{
			Code:        entry.Code,
			Category:    string(entry.Category),
			Amount:      entry.Amount.String(),
			Currency:    entry.Currency,
			ReferenceID: entry.ReferenceID,
			Description: entry.Description,
			CreatedAt:   entry.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"total": total, "entries": out})
}

type incomeEntry struct {
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
	ReferenceID string `json:"reference_id"`
	CreatedAt   string `json:"created_at"`
}

func (h *ReferralHandler) getIncomes(w http.ResponseWriter, r *http.Request) {
	participantID := r.PathValue("participant_id")
	if !requireID(w, participantID, "participant_id") {
		return
	}
	page, limit := pagination(r)
	records, total, err := h.Incomes.GetByBeneficiary(participantID, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]incomeEntry, len(records))
	for i, record := range records {
		out[i] = incomeEntry{
			Category:    string(record.Category),
			Amount:      record.Amount.String(),
			Status:      string(record.Status),
			ReferenceID: record.ReferenceID,
			CreatedAt:   record.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"total": total, "incomes": out})
}

func pagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad request body"})
		return false
	}
	return true
}

func requireID(w http.ResponseWriter, value, name string) bool {
	if value == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: name + " is required"})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrParticipantNotFound),
		errors.Is(err, domain.ErrInvestmentNotFound),
		errors.Is(err, domain.ErrPurchaseNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrCapacityExhausted),
		errors.Is(err, domain.ErrNegativeAmount):
		status = http.StatusConflict
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
