package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nattapongd/Fund-Compare-Backend/internal/apperrors"
	"github.com/nattapongd/Fund-Compare-Backend/internal/model"
	"github.com/nattapongd/Fund-Compare-Backend/internal/service"
)

// FundHandler handles HTTP requests for fund endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the fundService.
type FundHandler struct {
	fundService *service.FundService
}

// NewFundHandler creates a new FundHandler with the provided service dependency.
func NewFundHandler(fundService *service.FundService) *FundHandler {
	return &FundHandler{
		fundService: fundService,
	}
}

// FundDetailResponse is the detail representation of a fund share class,
// including its peer classification fields.
type FundDetailResponse struct {
	ProjID                 string                    `json:"proj_id"`
	ClassAbbr              string                    `json:"class_abbr"`
	FundNameTH             *string                   `json:"fund_name_th"`
	FundNameEN             string                    `json:"fund_name_en"`
	FundAbbr               string                    `json:"fund_abbr"`
	AMCID                  string                    `json:"amc_id"`
	FundStatus             string                    `json:"fund_status"`
	Category               *string                   `json:"category"`
	AimcCategory           *string                   `json:"aimc_category"`
	RiskLevel              *string                   `json:"risk_level"`
	PeerFocus              *string                   `json:"peer_focus"`
	PeerCurrency           *string                   `json:"peer_currency"`
	PeerFXHedgedFlag       model.HedgeFlag           `json:"peer_fx_hedged_flag"`
	PeerDistributionPolicy *model.DistributionPolicy `json:"peer_distribution_policy"`
	PeerKey                *string                   `json:"peer_key"`
	PeerKeyFallbackLevel   int                       `json:"peer_key_fallback_level"`
}

// Funds handles GET requests to retrieve all funds.
//
// Endpoint: GET /api/fund
// Response: 200 OK with array of fund summaries
// Error: 500 Internal Server Error if retrieval fails
func (h *FundHandler) Funds(w http.ResponseWriter, r *http.Request) {
	funds, err := h.fundService.ListFunds()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to retrieve funds", err)
		return
	}

	respondJSON(w, http.StatusOK, funds)
}

// Fund handles GET requests to retrieve one fund by identifier.
// The identifier matches either a share-class abbreviation or a project ID.
//
// Endpoint: GET /api/fund/{identifier}
// Response: 200 OK with FundDetailResponse
// Error: 404 Not Found if no fund matches
func (h *FundHandler) Fund(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	fund, err := h.fundService.GetFund(identifier)
	if err != nil {
		if errors.Is(err, apperrors.ErrFundNotFound) {
			respondError(w, http.StatusNotFound, "Fund not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to retrieve fund", err)
		return
	}

	respondJSON(w, http.StatusOK, FundDetailResponse{
		ProjID:                 fund.ProjID,
		ClassAbbr:              fund.ClassAbbr,
		FundNameTH:             fund.FundNameTH,
		FundNameEN:             fund.FundNameEN,
		FundAbbr:               fund.FundAbbr,
		AMCID:                  fund.AMCID,
		FundStatus:             fund.FundStatus,
		Category:               fund.Category,
		AimcCategory:           fund.AimcCategory,
		RiskLevel:              fund.RiskLevel,
		PeerFocus:              fund.PeerFocus,
		PeerCurrency:           fund.PeerCurrency,
		PeerFXHedgedFlag:       fund.PeerFXHedgedFlag,
		PeerDistributionPolicy: fund.PeerDistributionPolicy,
		PeerKey:                fund.PeerKey,
		PeerKeyFallbackLevel:   fund.PeerKeyFallbackLevel,
	})
}
