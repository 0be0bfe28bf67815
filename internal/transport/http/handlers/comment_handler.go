package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/koltech/wallline/internal/service"
	"github.com/koltech/wallline/internal/transport/http/middleware"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	rootID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var input service.AddCommentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validateMessageInput(input.Content, input.Attachments, nil); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	comment, err := h.commentService.Add(r.Context(), userID, rootID, input)
	if err != nil {
		writeServiceError(w, "add comment", err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())
	rootID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	comments, err := h.commentService.List(r.Context(), callerID, rootID)
	if err != nil {
		writeServiceError(w, "list comments", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}
