package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"intakeflow/internal/engine"
	"intakeflow/internal/model"
	"intakeflow/internal/service"
	"intakeflow/internal/transport/rest/middleware"
)

// SessionHandler handles the client-facing intake session endpoints. The
// client and questionnaire ids always come from the intake token, never from
// the URL, so a client can only ever touch its own session.
type SessionHandler struct {
	sessionSvc *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// Get handles GET /v1/session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	clientID, questionnaireID := identity(r)
	view, err := h.sessionSvc.View(r.Context(), clientID, questionnaireID)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Begin handles POST /v1/session/begin
func (h *SessionHandler) Begin(w http.ResponseWriter, r *http.Request) {
	clientID, questionnaireID := identity(r)
	view, err := h.sessionSvc.Begin(r.Context(), clientID, questionnaireID)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// AnswerRequest carries one answer value; any JSON shape is accepted and the
// validity rules decide whether it counts.
type AnswerRequest struct {
	Value model.AnswerValue `json:"value"`
}

// Answer handles PUT /v1/session/answers/{questionId}
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	clientID, questionnaireID := identity(r)
	questionID := mux.Vars(r)["questionId"]

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.sessionSvc.Answer(r.Context(), clientID, questionnaireID, questionID, req.Value)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Advance handles POST /v1/session/advance
func (h *SessionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	clientID, questionnaireID := identity(r)
	view, err := h.sessionSvc.Advance(r.Context(), clientID, questionnaireID)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Back handles POST /v1/session/back
func (h *SessionHandler) Back(w http.ResponseWriter, r *http.Request) {
	clientID, questionnaireID := identity(r)
	view, err := h.sessionSvc.Back(r.Context(), clientID, questionnaireID)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Skip handles POST /v1/session/skip
func (h *SessionHandler) Skip(w http.ResponseWriter, r *http.Request) {
	clientID, questionnaireID := identity(r)
	view, err := h.sessionSvc.Skip(r.Context(), clientID, questionnaireID)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SelectModule handles POST /v1/session/modules/{index}/select
func (h *SessionHandler) SelectModule(w http.ResponseWriter, r *http.Request) {
	clientID, questionnaireID := identity(r)
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid module index")
		return
	}

	view, err := h.sessionSvc.SelectModule(r.Context(), clientID, questionnaireID, index)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DismissMilestone handles POST /v1/session/milestone/dismiss
func (h *SessionHandler) DismissMilestone(w http.ResponseWriter, r *http.Request) {
	clientID, questionnaireID := identity(r)
	if err := h.sessionSvc.DismissMilestone(r.Context(), clientID, questionnaireID); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Sync handles POST /v1/session/sync (the manual "save now" button)
func (h *SessionHandler) Sync(w http.ResponseWriter, r *http.Request) {
	clientID, questionnaireID := identity(r)
	view, err := h.sessionSvc.ForceSync(r.Context(), clientID, questionnaireID)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ConfirmRequest gates submit and reset
type ConfirmRequest struct {
	Confirmed bool `json:"confirmed"`
}

// Submit handles POST /v1/session/submit
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	clientID, questionnaireID := identity(r)

	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.sessionSvc.Submit(r.Context(), clientID, questionnaireID, req.Confirmed)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Reset handles POST /v1/session/reset
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	clientID, questionnaireID := identity(r)

	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.sessionSvc.Reset(r.Context(), clientID, questionnaireID, req.Confirmed)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func identity(r *http.Request) (clientID, questionnaireID string) {
	ctx := r.Context()
	return middleware.GetClientID(ctx), middleware.GetQuestionnaireID(ctx)
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrQuestionnaireNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConfirmationRequired):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, engine.ErrAnswerRequired):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, engine.ErrUnknownQuestion):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrModuleLocked):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, engine.ErrBadModuleIndex):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
