package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nattapongd/Fund-Compare-Backend/internal/apperrors"
	"github.com/nattapongd/Fund-Compare-Backend/internal/model"
	"github.com/nattapongd/Fund-Compare-Backend/internal/service"
)

// PeerHandler handles HTTP requests for peer ranking endpoints.
type PeerHandler struct {
	rankingService *service.RankingService
	statsService   *service.PeerStatsService
}

// NewPeerHandler creates a new PeerHandler.
func NewPeerHandler(rankingService *service.RankingService, statsService *service.PeerStatsService) *PeerHandler {
	return &PeerHandler{
		rankingService: rankingService,
		statsService:   statsService,
	}
}

// FundPeerRank handles GET requests to rank one fund against its peers.
//
// Endpoint: GET /api/fund/{identifier}/peer-rank?horizon=1y&date=YYYY-MM-DD
// Response: 200 OK with a peer rank result; unavailable outcomes still
// return 200 with unavailable_reason set
// Error: 400 Bad Request on invalid horizon or date
func (h *PeerHandler) FundPeerRank(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	horizon, asOfDate, ok := parseRankParams(w, r.URL.Query().Get("horizon"), r)
	if !ok {
		return
	}

	result, err := h.rankingService.Rank(r.Context(), identifier, horizon, asOfDate)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to compute peer rank", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// BatchRankRequest is the request body for batch peer ranking.
type BatchRankRequest struct {
	FundIDs  []string `json:"fund_ids"`
	Horizon  string   `json:"horizon"`
	AsOfDate string   `json:"as_of_date,omitempty"`
}

// BatchPeerRank handles POST requests to rank a set of funds for one
// horizon and as-of date, computing each cohort's statistics at most once.
//
// Endpoint: POST /api/peer-rank/batch
// Response: 200 OK with a map from fund identifier to peer rank result
// Error: 400 Bad Request on malformed body, horizon, or date
func (h *PeerHandler) BatchPeerRank(w http.ResponseWriter, r *http.Request) {
	var req BatchRankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.FundIDs) == 0 {
		respondError(w, http.StatusBadRequest, "fund_ids must not be empty", nil)
		return
	}

	horizon, err := model.ParseHorizon(req.Horizon)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid horizon", err)
		return
	}

	asOfDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.AsOfDate != "" {
		asOfDate, err = time.Parse("2006-01-02", req.AsOfDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid as_of_date", err)
			return
		}
	}

	results, err := h.rankingService.RankBatch(r.Context(), req.FundIDs, horizon, asOfDate)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to compute peer ranks", err)
		return
	}

	respondJSON(w, http.StatusOK, results)
}

// PeerStatsResponse is the HTTP representation of a stored cohort
// statistics record.
type PeerStatsResponse struct {
	PeerKey           string             `json:"peer_key"`
	Horizon           model.Horizon      `json:"horizon"`
	AsOfDate          string             `json:"as_of_date"`
	PeerCountTotal    int                `json:"peer_count_total"`
	PeerCountEligible int                `json:"peer_count_eligible"`
	PeerMedianReturn  *float64           `json:"peer_median_return"`
	PeerP25Return     *float64           `json:"peer_p25_return"`
	PeerP75Return     *float64           `json:"peer_p75_return"`
	Entries           []model.PeerReturn `json:"entries"`
}

// PeerStats handles GET requests for a cohort's latest statistics record.
//
// Endpoint: GET /api/peer-stats?peer_key=...&horizon=1y&date=YYYY-MM-DD
// Response: 200 OK with PeerStatsResponse, 404 when no record covers the date
func (h *PeerHandler) PeerStats(w http.ResponseWriter, r *http.Request) {
	peerKey := r.URL.Query().Get("peer_key")
	if peerKey == "" {
		respondError(w, http.StatusBadRequest, "peer_key is required", nil)
		return
	}

	horizon, asOfDate, ok := parseRankParams(w, r.URL.Query().Get("horizon"), r)
	if !ok {
		return
	}

	stats, err := h.statsService.GetLatestStats(peerKey, horizon, asOfDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrPeerStatsNotFound) {
			respondError(w, http.StatusNotFound, "No peer statistics for this cohort and date", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to retrieve peer statistics", err)
		return
	}

	respondJSON(w, http.StatusOK, PeerStatsResponse{
		PeerKey:           stats.PeerKey,
		Horizon:           stats.Horizon,
		AsOfDate:          stats.AsOfDate.Format("2006-01-02"),
		PeerCountTotal:    stats.PeerCountTotal,
		PeerCountEligible: stats.PeerCountEligible,
		PeerMedianReturn:  stats.PeerMedianReturn,
		PeerP25Return:     stats.PeerP25Return,
		PeerP75Return:     stats.PeerP75Return,
		Entries:           stats.Entries,
	})
}

// parseRankParams parses the horizon (defaulting to 1y) and date query
// parameters, writing a 400 response itself when either is invalid.
func parseRankParams(w http.ResponseWriter, horizonParam string, r *http.Request) (model.Horizon, time.Time, bool) {
	if horizonParam == "" {
		horizonParam = string(model.Horizon1Y)
	}
	horizon, err := model.ParseHorizon(horizonParam)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid horizon", err)
		return "", time.Time{}, false
	}

	asOfDate, err := parseDateParam(r, "date")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date", err)
		return "", time.Time{}, false
	}

	return horizon, asOfDate, true
}
