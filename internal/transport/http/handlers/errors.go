package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/koltech/wallline/internal/service"
)

// writeServiceError maps service sentinels onto HTTP responses. Anything
// unmapped is logged and reported as a 500 without leaking internals.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrWallNotFound),
		errors.Is(err, service.ErrWallInactive):
		writeError(w, http.StatusNotFound, "WALL_NOT_FOUND", "Wall not found")
	case errors.Is(err, service.ErrMessageNotFound):
		writeError(w, http.StatusNotFound, "MESSAGE_NOT_FOUND", "Message not found")
	case errors.Is(err, service.ErrCommentNotFound):
		writeError(w, http.StatusNotFound, "COMMENT_NOT_FOUND", "Comment not found")
	case errors.Is(err, service.ErrRequestNotFound):
		writeError(w, http.StatusNotFound, "REQUEST_NOT_FOUND", "Join request not found")
	case errors.Is(err, service.ErrAttachmentNotFound):
		writeError(w, http.StatusNotFound, "ATTACHMENT_NOT_FOUND", "Attachment not found")

	case errors.Is(err, service.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")

	case errors.Is(err, service.ErrNotMember):
		writeError(w, http.StatusForbidden, "NOT_MEMBER", "You are not a member of this wall")
	case errors.Is(err, service.ErrAdminsOnly),
		errors.Is(err, service.ErrNotWallAdmin):
		writeError(w, http.StatusForbidden, "ADMINS_ONLY", "Only wall admins can do this")
	case errors.Is(err, service.ErrNotWallCreator):
		writeError(w, http.StatusForbidden, "CREATOR_ONLY", "Only the wall creator can do this")
	case errors.Is(err, service.ErrNotMessageAuthor):
		writeError(w, http.StatusForbidden, "NOT_AUTHOR", "Only the author can do this")

	case errors.Is(err, service.ErrWallNameTaken):
		writeError(w, http.StatusConflict, "WALL_NAME_TAKEN", "A wall with this name already exists")
	case errors.Is(err, service.ErrAlreadyMember):
		writeError(w, http.StatusConflict, "ALREADY_MEMBER", "You are already a member of this wall")
	case errors.Is(err, service.ErrWallFull):
		writeError(w, http.StatusConflict, "WALL_FULL", "The wall has reached its member limit")
	case errors.Is(err, service.ErrRequestAlreadyPending):
		writeError(w, http.StatusConflict, "REQUEST_PENDING", "A pending join request already exists")
	case errors.Is(err, service.ErrRequestResolved):
		writeError(w, http.StatusConflict, "REQUEST_RESOLVED", "This join request has already been resolved")

	case errors.Is(err, service.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "EMPTY_MESSAGE", "Message needs content or at least one attachment")
	case errors.Is(err, service.ErrInvalidEmoji):
		writeError(w, http.StatusBadRequest, "INVALID_EMOJI", "Reaction must be a single emoji")
	case errors.Is(err, service.ErrInvalidRequestAction):
		writeError(w, http.StatusBadRequest, "INVALID_ACTION", "Action must be approve or reject")
	case errors.Is(err, service.ErrCannotPinComment):
		writeError(w, http.StatusBadRequest, "CANNOT_PIN_COMMENT", "Only root posts can be pinned")
	case errors.Is(err, service.ErrCannotReportOwn):
		writeError(w, http.StatusBadRequest, "CANNOT_REPORT_OWN", "You cannot report your own content")
	case errors.Is(err, service.ErrNotARootMessage):
		writeError(w, http.StatusBadRequest, "NOT_A_ROOT_MESSAGE", "Comments must target a root post")
	case errors.Is(err, service.ErrNotACommentReply):
		writeError(w, http.StatusBadRequest, "NOT_A_COMMENT", "Parent comment id does not reference a comment")
	case errors.Is(err, service.ErrParentMismatch):
		writeError(w, http.StatusBadRequest, "PARENT_MISMATCH", "Parent comment does not belong to this message")
	case errors.Is(err, service.ErrVideoNotCancelable):
		writeError(w, http.StatusBadRequest, "NOT_CANCELABLE", "Video is not awaiting processing")
	case errors.Is(err, service.ErrCreatorCannotLeave):
		writeError(w, http.StatusBadRequest, "CREATOR_CANNOT_LEAVE", "The wall creator cannot leave the wall")
	case errors.Is(err, service.ErrCreatorCannotBeRemoved):
		writeError(w, http.StatusBadRequest, "CREATOR_CANNOT_BE_REMOVED", "The wall creator cannot be removed")

	default:
		log.Printf("ERROR %s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}
