package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/koltech/wallline/internal/service"
	"github.com/koltech/wallline/internal/transport/http/middleware"
	"github.com/koltech/wallline/pkg/validator"
)

type MessageHandler struct {
	messageService  *service.MessageService
	reactionService *service.ReactionService
}

func NewMessageHandler(messageService *service.MessageService, reactionService *service.ReactionService) *MessageHandler {
	return &MessageHandler{
		messageService:  messageService,
		reactionService: reactionService,
	}
}

func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	wallID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var input service.CreateMessageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validateMessageInput(input.Content, input.Attachments, input.Tags); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	msg, err := h.messageService.Create(r.Context(), userID, wallID, input)
	if err != nil {
		writeServiceError(w, "create message", err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())
	wallID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	resp, err := h.messageService.List(r.Context(), callerID, wallID, limit, page)
	if err != nil {
		writeServiceError(w, "list messages", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *MessageHandler) Edit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	messageID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var input service.EditMessageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if input.Content != nil {
		if errs := validator.ValidateMessage(*input.Content, 0, len(input.Tags)); errs.HasErrors() {
			writeValidationErrors(w, errs)
			return
		}
	}

	msg, err := h.messageService.Edit(r.Context(), userID, messageID, input)
	if err != nil {
		writeServiceError(w, "edit message", err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	messageID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.messageService.Delete(r.Context(), userID, messageID); err != nil {
		writeServiceError(w, "delete message", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type pinInput struct {
	Pinned bool `json:"pinned"`
}

func (h *MessageHandler) SetPinned(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	messageID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var input pinInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	msg, err := h.messageService.SetPinned(r.Context(), userID, messageID, input.Pinned)
	if err != nil {
		writeServiceError(w, "pin message", err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (h *MessageHandler) Report(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	messageID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	count, err := h.messageService.Report(r.Context(), userID, messageID)
	if err != nil {
		writeServiceError(w, "report message", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report_count": count})
}

type reactionInput struct {
	Emoji string `json:"emoji"`
}

func (h *MessageHandler) React(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	messageID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var input reactionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	result, err := h.reactionService.Toggle(r.Context(), userID, messageID, input.Emoji)
	if err != nil {
		writeServiceError(w, "toggle reaction", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *MessageHandler) CancelVideo(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	messageID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INDEX", "Invalid attachment index")
		return
	}

	msg, err := h.messageService.CancelVideo(r.Context(), userID, messageID, index)
	if err != nil {
		writeServiceError(w, "cancel video", err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func validateMessageInput(content string, attachments []service.AttachmentInput, tags []string) validator.ValidationErrors {
	errs := validator.ValidateMessage(content, len(attachments), len(tags))
	for _, att := range attachments {
		for field, msg := range validator.ValidateAttachment(att.Kind, att.URL) {
			errs.Add("attachments."+field, msg)
		}
	}
	return errs
}
