package handler

import (
	"encoding/json"
	"net/http"

	"growwise/internal/service"
)

// ValidatorHandler handles code review endpoints
type ValidatorHandler struct {
	validatorSvc *service.ValidatorService
}

// NewValidatorHandler creates a new validator handler
func NewValidatorHandler(validatorSvc *service.ValidatorService) *ValidatorHandler {
	return &ValidatorHandler{validatorSvc: validatorSvc}
}

// ReviewRequest is the request body for a code review
type ReviewRequest struct {
	Language    string `json:"language"`
	Requirement string `json:"requirement"`
	Code        string `json:"code"`
}

// Review handles POST /v1/validator/review
func (h *ValidatorHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" || req.Requirement == "" {
		writeError(w, http.StatusBadRequest, "code and requirement are required")
		return
	}

	verdict := h.validatorSvc.Review(r.Context(), req.Language, req.Requirement, req.Code)
	writeJSON(w, http.StatusOK, verdict)
}
