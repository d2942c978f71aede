package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nattapongd/Fund-Compare-Backend/internal/apperrors"
	"github.com/nattapongd/Fund-Compare-Backend/internal/service"
)

// SettingsHandler manages operational settings, upstream API credentials
// in particular.
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// SECKeysRequest carries the upstream API keys to store.
type SECKeysRequest struct {
	FactsheetAPIKey string `json:"factsheet_api_key"`
	DailyInfoAPIKey string `json:"daily_info_api_key"`
}

// SECKeysStatusResponse reports which keys are configured without ever
// exposing their values.
type SECKeysStatusResponse struct {
	FactsheetAPIKeySet bool `json:"factsheet_api_key_set"`
	DailyInfoAPIKeySet bool `json:"daily_info_api_key_set"`
}

// SetSECKeys handles POST /api/settings/sec-keys. Keys are encrypted
// before storage; an empty field leaves that key untouched.
func (h *SettingsHandler) SetSECKeys(w http.ResponseWriter, r *http.Request) {
	var req SECKeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.FactsheetAPIKey == "" && req.DailyInfoAPIKey == "" {
		respondError(w, http.StatusBadRequest, "No API keys provided", nil)
		return
	}

	if req.FactsheetAPIKey != "" {
		if err := h.settingsService.SetSecret(r.Context(), service.SettingSECFactsheetKey, req.FactsheetAPIKey); err != nil {
			h.respondSecretError(w, err)
			return
		}
	}
	if req.DailyInfoAPIKey != "" {
		if err := h.settingsService.SetSecret(r.Context(), service.SettingSECDailyKey, req.DailyInfoAPIKey); err != nil {
			h.respondSecretError(w, err)
			return
		}
	}

	h.SECKeysStatus(w, r)
}

// SECKeysStatus handles GET /api/settings/sec-keys.
func (h *SettingsHandler) SECKeysStatus(w http.ResponseWriter, r *http.Request) {
	response := SECKeysStatusResponse{}

	if _, err := h.settingsService.GetSecret(r.Context(), service.SettingSECFactsheetKey); err == nil {
		response.FactsheetAPIKeySet = true
	}
	if _, err := h.settingsService.GetSecret(r.Context(), service.SettingSECDailyKey); err == nil {
		response.DailyInfoAPIKeySet = true
	}

	respondJSON(w, http.StatusOK, response)
}

func (h *SettingsHandler) respondSecretError(w http.ResponseWriter, err error) {
	if errors.Is(err, apperrors.ErrEncryptionKeyNotSet) {
		respondError(w, http.StatusConflict, "Settings encryption key is not configured", err)
		return
	}
	respondError(w, http.StatusInternalServerError, "Failed to store API key", err)
}
