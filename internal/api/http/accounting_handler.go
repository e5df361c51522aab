package http

import (
	"encoding/json"
	"net/http"
	"time"

	"cabinfolio-backend/internal/domain"
	"cabinfolio-backend/internal/service"
)

// AccountingHandler manages the accounting integration connection. The
// authorization-code handshake itself happens elsewhere; these endpoints
// store its outcome, report status, and disconnect.
type AccountingHandler struct {
	credentials service.CredentialService
	// adminOwnerRef is the single designated identity for the centralized
	// accounting variant, from configuration.
	adminOwnerRef string
}

func NewAccountingHandler(credentials service.CredentialService, adminOwnerRef string) *AccountingHandler {
	return &AccountingHandler{credentials: credentials, adminOwnerRef: adminOwnerRef}
}

type connectRequest struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	ExpiresIn        int    `json:"expiresIn"`
	TokenType        string `json:"tokenType"`
	Scope            string `json:"scope"`
	OrganizationID   string `json:"organizationId"`
	OrganizationName string `json:"organizationName"`
}

func (h *AccountingHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body", Kind: "BAD_REQUEST"})
		return
	}
	if req.AccessToken == "" || req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "accessToken and refreshToken are required", Kind: "BAD_REQUEST"})
		return
	}

	pair := domain.TokenPair{
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		TokenType:    req.TokenType,
		Scope:        req.Scope,
		ExpiresAt:    time.Now().Add(time.Duration(req.ExpiresIn) * time.Second),
	}
	if err := h.credentials.Connect(r.Context(), h.adminOwnerRef, pair, req.OrganizationID, req.OrganizationName); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "connected"})
}

func (h *AccountingHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.credentials.Status(r.Context(), h.adminOwnerRef)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *AccountingHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.credentials.Disconnect(r.Context(), h.adminOwnerRef); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
}
