package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/koltech/wallline/internal/service"
	"github.com/koltech/wallline/internal/transport/http/middleware"
)

type JoinRequestHandler struct {
	joinRequests *service.JoinRequestService
}

func NewJoinRequestHandler(joinRequests *service.JoinRequestService) *JoinRequestHandler {
	return &JoinRequestHandler{joinRequests: joinRequests}
}

type joinInput struct {
	Message *string `json:"message"`
}

func (h *JoinRequestHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	wallID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	// Body je opcionalan: join bez poruke je validan
	var input joinInput
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&input)
	}

	result, err := h.joinRequests.RequestJoin(r.Context(), userID, wallID, input.Message)
	if err != nil {
		writeServiceError(w, "join wall", err)
		return
	}

	status := http.StatusOK
	if result.Request != nil {
		status = http.StatusAccepted
	}
	writeJSON(w, status, result)
}

func (h *JoinRequestHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.GetUserID(r.Context())
	wallID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	requests, err := h.joinRequests.ListPending(r.Context(), adminID, wallID)
	if err != nil {
		writeServiceError(w, "list join requests", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": requests})
}

type respondInput struct {
	Action  string  `json:"action"`
	Message *string `json:"message"`
}

func (h *JoinRequestHandler) Respond(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.GetUserID(r.Context())
	wallID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	requestID, ok := pathID(w, r, "requestId")
	if !ok {
		return
	}

	var input respondInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	req, err := h.joinRequests.Respond(r.Context(), adminID, wallID, requestID, input.Action, input.Message)
	if err != nil {
		writeServiceError(w, "respond to join request", err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
