package http

import (
	"encoding/json"
	"net/http"

	"podpal-backend/internal/domain"
	"podpal-backend/internal/service"
)

// RecruitmentHandler exposes the recruitment workflow. After a mutating call
// commits, the returned events are handed to the dispatcher; its failures
// never surface to the client.
type RecruitmentHandler struct {
	recruitment service.RecruitmentService
	dispatcher  service.EventDispatcher
}

func NewRecruitmentHandler(recruitment service.RecruitmentService, dispatcher service.EventDispatcher) *RecruitmentHandler {
	return &RecruitmentHandler{recruitment: recruitment, dispatcher: dispatcher}
}

type applyRequest struct {
	Message string `json:"message"`
}

func (h *RecruitmentHandler) Apply(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	podID, err := pathID(r, "podID")
	if err != nil {
		http.Error(w, "invalid pod id", http.StatusBadRequest)
		return
	}

	var req applyRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	app, events, err := h.recruitment.ApplyToPod(r.Context(), podID, userID, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	h.dispatcher.Dispatch(r.Context(), events)
	writeJSON(w, http.StatusCreated, app)
}

type reviewRequest struct {
	Decision string `json:"decision"`
}

func (h *RecruitmentHandler) Review(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	applicationID, err := pathID(r, "applicationID")
	if err != nil {
		http.Error(w, "invalid application id", http.StatusBadRequest)
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	decision := domain.ApplicationStatus(req.Decision)
	if decision != domain.ApplicationStatusApproved && decision != domain.ApplicationStatusRejected {
		http.Error(w, "decision must be APPROVED or REJECTED", http.StatusBadRequest)
		return
	}

	app, events, err := h.recruitment.ReviewApplication(r.Context(), applicationID, decision, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.dispatcher.Dispatch(r.Context(), events)
	writeJSON(w, http.StatusOK, app)
}

func (h *RecruitmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	applicationID, err := pathID(r, "applicationID")
	if err != nil {
		http.Error(w, "invalid application id", http.StatusBadRequest)
		return
	}

	if err := h.recruitment.CancelApplication(r.Context(), applicationID, userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecruitmentHandler) Hide(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	applicationID, err := pathID(r, "applicationID")
	if err != nil {
		http.Error(w, "invalid application id", http.StatusBadRequest)
		return
	}

	if err := h.recruitment.HideApplication(r.Context(), applicationID, userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecruitmentHandler) Leave(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	podID, err := pathID(r, "podID")
	if err != nil {
		http.Error(w, "invalid pod id", http.StatusBadRequest)
		return
	}

	events, err := h.recruitment.LeavePod(r.Context(), podID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.dispatcher.Dispatch(r.Context(), events)
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecruitmentHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	podID, err := pathID(r, "podID")
	if err != nil {
		http.Error(w, "invalid pod id", http.StatusBadRequest)
		return
	}
	includeHidden := r.URL.Query().Get("include_hidden") == "true"

	apps, err := h.recruitment.ListApplicationsForPod(r.Context(), podID, userID, includeHidden)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}
