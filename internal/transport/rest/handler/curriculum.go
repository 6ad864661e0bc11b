package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"growwise/internal/repository"
	"growwise/internal/service"
	"growwise/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// CurriculumHandler handles learning path endpoints
type CurriculumHandler struct {
	curriculumSvc *service.CurriculumService
}

// NewCurriculumHandler creates a new curriculum handler
func NewCurriculumHandler(curriculumSvc *service.CurriculumService) *CurriculumHandler {
	return &CurriculumHandler{curriculumSvc: curriculumSvc}
}

// GeneratePathRequest is the request body for generating a learning path
type GeneratePathRequest struct {
	ResultID string `json:"resultId"`
}

// Generate handles POST /v1/curricula
func (h *CurriculumHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req GeneratePathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	path, err := h.curriculumSvc.GeneratePath(r.Context(), userID, req.ResultID)
	if err != nil {
		if errors.Is(err, service.ErrResultNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, path)
}

// Current handles GET /v1/curricula/current
func (h *CurriculumHandler) Current(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	path, err := h.curriculumSvc.GetCurrent(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if path == nil {
		writeError(w, http.StatusNotFound, "no learning path yet")
		return
	}

	writeJSON(w, http.StatusOK, path)
}

// Get handles GET /v1/curricula/{pathId}
func (h *CurriculumHandler) Get(w http.ResponseWriter, r *http.Request) {
	pathID := mux.Vars(r)["pathId"]
	userID := middleware.GetUserID(r.Context())

	path, err := h.curriculumSvc.GetByID(r.Context(), pathID, userID)
	if err != nil {
		writeCurriculumError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, path)
}

// CompleteContent handles POST /v1/curricula/{pathId}/content/{contentId}/complete
func (h *CurriculumHandler) CompleteContent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := middleware.GetUserID(r.Context())

	completion, err := h.curriculumSvc.CompleteContent(r.Context(), vars["pathId"], userID, vars["contentId"])
	if err != nil {
		writeCurriculumError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"completion": completion})
}

func writeCurriculumError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrPathNotFound),
		errors.Is(err, repository.ErrContentNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotYourPath):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
