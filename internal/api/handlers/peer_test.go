package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nattapongd/Fund-Compare-Backend/internal/model"
	"github.com/nattapongd/Fund-Compare-Backend/internal/testutil"
)

const testPeerKey = "Equity General|Equity General|THB|Unhedged|A"

func setupPeerRouter(t *testing.T) (chi.Router, *sql.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	handler := NewPeerHandler(
		testutil.NewTestRankingService(t, db),
		testutil.NewTestPeerStatsService(t, db),
	)

	r := chi.NewRouter()
	r.Get("/api/fund/{identifier}/peer-rank", handler.FundPeerRank)
	r.Post("/api/peer-rank/batch", handler.BatchPeerRank)
	r.Get("/api/peer-stats", handler.PeerStats)
	return r, db
}

func TestPeerHandler_FundPeerRank(t *testing.T) {
	asOf := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	t.Run("returns a rank for a fund in a full cohort", func(t *testing.T) {
		router, db := setupPeerRouter(t)
		testutil.CreatePeerCohort(t, db, testPeerKey, asOf, 12.0, 9.0, 9.0, 5.0, 1.0)

		req := httptest.NewRequest(http.MethodGet, "/api/fund/PEER002/peer-rank?horizon=1y&date=2026-06-30", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var result model.PeerRankResult
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&result)

		if result.Rank == nil || *result.Rank != 2 {
			t.Errorf("Expected rank 2, got %v", result.Rank)
		}
		if result.Quartile == nil || *result.Quartile != model.QuartileQ1 {
			t.Errorf("Expected quartile Q1, got %v", result.Quartile)
		}
	})

	t.Run("unavailable outcomes still return 200", func(t *testing.T) {
		router, db := setupPeerRouter(t)
		testutil.NewFund("M0001").Build(t, db)

		req := httptest.NewRequest(http.MethodGet, "/api/fund/M0001/peer-rank", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var result model.PeerRankResult
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&result)

		if result.UnavailableReason == nil || *result.UnavailableReason != model.ReasonPeerKeyMissing {
			t.Errorf("Expected PEER_KEY_MISSING, got %v", result.UnavailableReason)
		}
	})

	t.Run("rejects an invalid horizon", func(t *testing.T) {
		router, _ := setupPeerRouter(t)

		req := httptest.NewRequest(http.MethodGet, "/api/fund/M0001/peer-rank?horizon=2y", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPeerHandler_BatchPeerRank(t *testing.T) {
	asOf := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	t.Run("ranks all requested funds", func(t *testing.T) {
		router, db := setupPeerRouter(t)
		testutil.CreatePeerCohort(t, db, testPeerKey, asOf, 12.0, 9.0, 9.0, 5.0, 1.0)

		body := `{"fund_ids":["PEER001","PEER002"],"horizon":"1y","as_of_date":"2026-06-30"}`
		req := httptest.NewRequest(http.MethodPost, "/api/peer-rank/batch", strings.NewReader(body))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var results map[string]model.PeerRankResult
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&results)

		if len(results) != 2 {
			t.Fatalf("Expected 2 results, got %d", len(results))
		}
		if r := results["PEER001"]; r.Rank == nil || *r.Rank != 1 {
			t.Errorf("Expected rank 1 for PEER001, got %v", r.Rank)
		}
	})

	t.Run("rejects an empty fund list", func(t *testing.T) {
		router, _ := setupPeerRouter(t)

		body := `{"fund_ids":[],"horizon":"1y"}`
		req := httptest.NewRequest(http.MethodPost, "/api/peer-rank/batch", strings.NewReader(body))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPeerHandler_PeerStats(t *testing.T) {
	asOf := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	t.Run("returns stored statistics after a rank computed them", func(t *testing.T) {
		router, db := setupPeerRouter(t)
		testutil.CreatePeerCohort(t, db, testPeerKey, asOf, 12.0, 9.0, 9.0, 5.0, 1.0)

		// Trigger compute-on-demand via a rank request
		rankReq := httptest.NewRequest(http.MethodGet, "/api/fund/PEER001/peer-rank?horizon=1y&date=2026-06-30", nil)
		router.ServeHTTP(httptest.NewRecorder(), rankReq)

		req := httptest.NewRequest(http.MethodGet,
			"/api/peer-stats?peer_key="+url.QueryEscape(testPeerKey)+"&horizon=1y&date=2026-06-30", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response PeerStatsResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.PeerCountEligible != 5 {
			t.Errorf("Expected 5 eligible members, got %d", response.PeerCountEligible)
		}
		if response.PeerMedianReturn == nil || *response.PeerMedianReturn != 9.0 {
			t.Errorf("Expected median 9.0, got %v", response.PeerMedianReturn)
		}
	})

	t.Run("returns 404 when no statistics exist", func(t *testing.T) {
		router, _ := setupPeerRouter(t)

		req := httptest.NewRequest(http.MethodGet, "/api/peer-stats?peer_key=none&horizon=1y", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}
