package handlers

import (
	"net/http"
	"strconv"

	"github.com/koltech/wallline/internal/service"
	"github.com/koltech/wallline/internal/transport/http/middleware"
)

type NotificationHandler struct {
	notifications *service.NotificationService
}

func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	unreadOnly := r.URL.Query().Get("unread") == "true"
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	notifications, err := h.notifications.List(r.Context(), userID, unreadOnly, limit)
	if err != nil {
		writeServiceError(w, "list notifications", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	notificationID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(r.Context(), userID, notificationID); err != nil {
		writeServiceError(w, "mark notification read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
