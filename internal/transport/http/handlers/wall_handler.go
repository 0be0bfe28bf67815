package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/koltech/wallline/internal/service"
	"github.com/koltech/wallline/internal/transport/http/middleware"
	"github.com/koltech/wallline/pkg/validator"
)

type WallHandler struct {
	wallService *service.WallService
}

func NewWallHandler(wallService *service.WallService) *WallHandler {
	return &WallHandler{wallService: wallService}
}

func (h *WallHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input service.CreateWallInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	errs := validator.ValidateWall(input.Name, input.Category)
	if input.Settings != nil {
		for field, msg := range validator.ValidateWallSettings(
			input.Settings.MaxMembers, input.Settings.PostPermissions, input.Settings.CommentPermissions) {
			errs.Add(field, msg)
		}
	}
	if errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	wall, err := h.wallService.Create(r.Context(), userID, input)
	if err != nil {
		writeServiceError(w, "create wall", err)
		return
	}

	writeJSON(w, http.StatusCreated, wall)
}

func (h *WallHandler) List(w http.ResponseWriter, r *http.Request) {
	walls, err := h.wallService.List(r.Context())
	if err != nil {
		writeServiceError(w, "list walls", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"walls": walls})
}

func (h *WallHandler) Get(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())
	wallID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	wall, err := h.wallService.GetByID(r.Context(), callerID, wallID)
	if err != nil {
		writeServiceError(w, "get wall", err)
		return
	}
	writeJSON(w, http.StatusOK, wall)
}

func (h *WallHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	wallID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var input service.UpdateWallInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if input.Name != nil {
		if errs := validator.ValidateWall(*input.Name, ""); errs.HasErrors() {
			writeValidationErrors(w, errs)
			return
		}
	}
	if input.Settings != nil {
		if errs := validator.ValidateWallSettings(
			input.Settings.MaxMembers, input.Settings.PostPermissions, input.Settings.CommentPermissions); errs.HasErrors() {
			writeValidationErrors(w, errs)
			return
		}
	}

	wall, err := h.wallService.Update(r.Context(), userID, wallID, input)
	if err != nil {
		writeServiceError(w, "update wall", err)
		return
	}
	writeJSON(w, http.StatusOK, wall)
}

func (h *WallHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	wallID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.wallService.Delete(r.Context(), userID, wallID); err != nil {
		writeServiceError(w, "delete wall", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WallHandler) Leave(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	wallID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.wallService.Leave(r.Context(), userID, wallID); err != nil {
		writeServiceError(w, "leave wall", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WallHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())
	wallID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	members, err := h.wallService.ListMembers(r.Context(), callerID, wallID)
	if err != nil {
		writeServiceError(w, "list members", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": members})
}

func (h *WallHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	requesterID := middleware.GetUserID(r.Context())
	wallID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	targetID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	if err := h.wallService.RemoveMember(r.Context(), requesterID, wallID, targetID); err != nil {
		writeServiceError(w, "remove member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WallHandler) PromoteAdmin(w http.ResponseWriter, r *http.Request) {
	requesterID := middleware.GetUserID(r.Context())
	wallID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	targetID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	if err := h.wallService.PromoteAdmin(r.Context(), requesterID, wallID, targetID); err != nil {
		writeServiceError(w, "promote admin", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathID parses a UUID path parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, key string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(key))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid id in URL")
		return uuid.Nil, false
	}
	return id, true
}
