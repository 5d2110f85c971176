package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"podpal-backend/internal/service"
)

type PodHandler struct {
	pods service.PodService
}

func NewPodHandler(pods service.PodService) *PodHandler {
	return &PodHandler{pods: pods}
}

type createPodRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Capacity    int32     `json:"capacity"`
	MeetAt      time.Time `json:"meet_at"`
}

func (h *PodHandler) CreatePod(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createPodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	pod, err := h.pods.CreatePod(r.Context(), userID, req.Title, req.Description, req.Capacity, req.MeetAt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pod)
}

func (h *PodHandler) GetPod(w http.ResponseWriter, r *http.Request) {
	podID, err := pathID(r, "podID")
	if err != nil {
		http.Error(w, "invalid pod id", http.StatusBadRequest)
		return
	}

	pod, err := h.pods.GetPod(r.Context(), podID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pod)
}

func (h *PodHandler) ListPods(w http.ResponseWriter, r *http.Request) {
	pods, err := h.pods.ListRecruitingPods(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pods)
}

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(id), nil
}
