package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"growwise/internal/service"
	"growwise/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// AssessmentHandler handles assessment session endpoints
type AssessmentHandler struct {
	assessmentSvc *service.AssessmentService
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(assessmentSvc *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessmentSvc: assessmentSvc}
}

// StartAssessmentRequest is the request body for starting an assessment
type StartAssessmentRequest struct {
	Topic string `json:"topic"`
}

// SubmitAnswerRequest is the request body for answering a question
type SubmitAnswerRequest struct {
	QuestionID    string `json:"questionId"`
	SelectedIndex *int   `json:"selectedIndex,omitempty"` // single_choice
	AnswerText    string `json:"answerText,omitempty"`    // open_response
}

// Start handles POST /v1/assessments
func (h *AssessmentHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req StartAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snapshot, err := h.assessmentSvc.Start(r.Context(), userID, req.Topic)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, snapshot)
}

// Get handles GET /v1/assessments/{sessionId}
func (h *AssessmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	userID := middleware.GetUserID(r.Context())

	snapshot, err := h.assessmentSvc.Get(r.Context(), sessionID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// SubmitAnswer handles POST /v1/assessments/{sessionId}/answers
func (h *AssessmentHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	userID := middleware.GetUserID(r.Context())

	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.assessmentSvc.SubmitAnswer(r.Context(), sessionID, userID, req.QuestionID, req.SelectedIndex, req.AnswerText)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Exit handles POST /v1/assessments/{sessionId}/exit
func (h *AssessmentHandler) Exit(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	userID := middleware.GetUserID(r.Context())

	if err := h.assessmentSvc.Exit(r.Context(), sessionID, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})
}

// Result handles GET /v1/assessments/{sessionId}/result
func (h *AssessmentHandler) Result(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	userID := middleware.GetUserID(r.Context())

	result, err := h.assessmentSvc.Result(r.Context(), sessionID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Latest handles GET /v1/assessments/latest
func (h *AssessmentHandler) Latest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	result, err := h.assessmentSvc.Latest(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if result == nil {
		writeError(w, http.StatusNotFound, "no assessment results yet")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// writeServiceError maps assessment service errors to HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotYourSession):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrGradeInFlight),
		errors.Is(err, service.ErrSessionNotActive),
		errors.Is(err, service.ErrNotFinished):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrWrongQuestion),
		errors.Is(err, service.ErrMissingSelection),
		errors.Is(err, service.ErrMissingAnswer):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
