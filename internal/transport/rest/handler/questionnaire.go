package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"intakeflow/internal/model"
	"intakeflow/internal/repository"
	"intakeflow/internal/service"
	"intakeflow/internal/transport/rest/middleware"
)

// QuestionnaireHandler handles questionnaire administration endpoints
type QuestionnaireHandler struct {
	repo    repository.QuestionnaireRepo
	authSvc *service.AuthService
}

// NewQuestionnaireHandler creates a new questionnaire handler
func NewQuestionnaireHandler(repo repository.QuestionnaireRepo, authSvc *service.AuthService) *QuestionnaireHandler {
	return &QuestionnaireHandler{repo: repo, authSvc: authSvc}
}

// Create handles POST /v1/questionnaires
func (h *QuestionnaireHandler) Create(w http.ResponseWriter, r *http.Request) {
	if middleware.GetAdminID(r.Context()) == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var q model.Questionnaire
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if len(q.Modules) == 0 {
		writeError(w, http.StatusBadRequest, "questionnaire needs at least one module")
		return
	}

	if err := h.repo.Upsert(r.Context(), &q); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"questionnaireId": q.ID})
}

// Update handles PUT /v1/questionnaires/{questionnaireId}
func (h *QuestionnaireHandler) Update(w http.ResponseWriter, r *http.Request) {
	if middleware.GetAdminID(r.Context()) == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var q model.Questionnaire
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	q.ID = mux.Vars(r)["questionnaireId"]

	if err := h.repo.Upsert(r.Context(), &q); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, &q)
}

// Get handles GET /v1/questionnaires/{questionnaireId}
func (h *QuestionnaireHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["questionnaireId"]

	q, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if q == nil {
		writeError(w, http.StatusNotFound, "questionnaire not found")
		return
	}

	writeJSON(w, http.StatusOK, q)
}

// List handles GET /v1/questionnaires
func (h *QuestionnaireHandler) List(w http.ResponseWriter, r *http.Request) {
	if middleware.GetAdminID(r.Context()) == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	qs, err := h.repo.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"questionnaires": qs})
}

// Delete handles DELETE /v1/questionnaires/{questionnaireId}
func (h *QuestionnaireHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if middleware.GetAdminID(r.Context()) == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := mux.Vars(r)["questionnaireId"]
	if err := h.repo.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"questionnaireId": id})
}

// IntakeLinkRequest names the client an intake link is issued for
type IntakeLinkRequest struct {
	ClientID string `json:"clientId"`
}

// CreateIntakeLink handles POST /v1/questionnaires/{questionnaireId}/intake-links
func (h *QuestionnaireHandler) CreateIntakeLink(w http.ResponseWriter, r *http.Request) {
	if middleware.GetAdminID(r.Context()) == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	questionnaireID := mux.Vars(r)["questionnaireId"]
	q, err := h.repo.GetByID(r.Context(), questionnaireID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if q == nil {
		writeError(w, http.StatusNotFound, "questionnaire not found")
		return
	}

	var req IntakeLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	clientID := req.ClientID
	if clientID == "" {
		clientID = "cl_" + uuid.New().String()[:8]
	}

	token, err := h.authSvc.GenerateIntakeToken(clientID, questionnaireID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"clientId":        clientID,
		"questionnaireId": questionnaireID,
		"token":           token,
	})
}
