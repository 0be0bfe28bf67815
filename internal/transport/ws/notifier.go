package ws

import (
	"log"

	"github.com/google/uuid"
	"github.com/koltech/wallline/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) MessageReceived(msg *domain.Message) {
	n.broadcastMessage(EventTypeMessageReceived, msg)
}

func (n *HubNotifier) MessageUpdated(msg *domain.Message) {
	n.broadcastMessage(EventTypeMessageUpdated, msg)
}

func (n *HubNotifier) MessageDeleted(wallID, messageID uuid.UUID) {
	evt, err := NewEvent(EventTypeMessageDeleted, &wallID, MessageDeletedPayload{ID: messageID})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastToWall(wallID, evt, nil)
}

func (n *HubNotifier) MessagePinUpdated(msg *domain.Message) {
	n.broadcastMessage(EventTypeMessagePinUpdated, msg)
}

func (n *HubNotifier) MessageReactionUpdated(wallID, messageID uuid.UUID, reactions []domain.Reaction, userID uuid.UUID, userReaction *string) {
	n.broadcastReaction(EventTypeMessageReactionUpdated, wallID, messageID, reactions, userID, userReaction)
}

func (n *HubNotifier) MessageVideoProcessed(wallID, messageID uuid.UUID, attachments []domain.Attachment) {
	evt, err := NewEvent(EventTypeMessageVideoProcessed, &wallID, VideoProcessedPayload{
		MessageID:   messageID,
		Attachments: attachments,
	})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastToWall(wallID, evt, nil)
}

func (n *HubNotifier) CommentAdded(comment *domain.Message) {
	n.broadcastMessage(EventTypeNewComment, comment)
}

func (n *HubNotifier) NestedReplyAdded(comment *domain.Message) {
	n.broadcastMessage(EventTypeNestedReplyAdded, comment)
}

func (n *HubNotifier) CommentUpdated(comment *domain.Message) {
	n.broadcastMessage(EventTypeCommentUpdated, comment)
}

func (n *HubNotifier) CommentDeleted(wallID, rootMessageID, commentID uuid.UUID) {
	evt, err := NewEvent(EventTypeCommentDeleted, &wallID, CommentDeletedPayload{
		ID:            commentID,
		RootMessageID: rootMessageID,
	})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastToWall(wallID, evt, nil)
}

func (n *HubNotifier) CommentReactionUpdated(wallID, messageID uuid.UUID, reactions []domain.Reaction, userID uuid.UUID, userReaction *string) {
	n.broadcastReaction(EventTypeCommentReactionUpdated, wallID, messageID, reactions, userID, userReaction)
}

func (n *HubNotifier) NotifyUser(userID uuid.UUID, notification *domain.Notification) {
	evt, err := NewEvent(EventTypeNotification, nil, notification)
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastToUser(userID, evt)
}

func (n *HubNotifier) broadcastMessage(eventType string, msg *domain.Message) {
	evt, err := NewEvent(eventType, &msg.WallID, MessagePayload{Message: *msg})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastToWall(msg.WallID, evt, nil)
}

func (n *HubNotifier) broadcastReaction(eventType string, wallID, messageID uuid.UUID, reactions []domain.Reaction, userID uuid.UUID, userReaction *string) {
	evt, err := NewEvent(eventType, &wallID, ReactionUpdatedPayload{
		MessageID:    messageID,
		Reactions:    reactions,
		UserID:       userID,
		UserReaction: userReaction,
	})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastToWall(wallID, evt, nil)
}
