package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/koltech/wallline/internal/domain"
)

// In-memory repository fakes. They mimic the postgres repos' contract:
// missing rows come back as (nil, nil), reads return copies.

type fakeWallRepo struct {
	walls   map[uuid.UUID]*domain.Wall
	members map[uuid.UUID]map[uuid.UUID]*domain.WallMember
}

func newFakeWallRepo() *fakeWallRepo {
	return &fakeWallRepo{
		walls:   make(map[uuid.UUID]*domain.Wall),
		members: make(map[uuid.UUID]map[uuid.UUID]*domain.WallMember),
	}
}

func (r *fakeWallRepo) Create(_ context.Context, wall *domain.Wall) error {
	w := *wall
	r.walls[wall.ID] = &w
	return nil
}

func (r *fakeWallRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Wall, error) {
	wall, ok := r.walls[id]
	if !ok {
		return nil, nil
	}
	w := *wall
	w.MemberCount = len(r.members[id])
	return &w, nil
}

func (r *fakeWallRepo) GetByName(_ context.Context, name string) (*domain.Wall, error) {
	for id, wall := range r.walls {
		if strings.EqualFold(wall.Name, name) {
			return r.GetByID(context.Background(), id)
		}
	}
	return nil, nil
}

func (r *fakeWallRepo) List(_ context.Context, onlyActive bool) ([]domain.Wall, error) {
	var walls []domain.Wall
	for _, wall := range r.walls {
		if onlyActive && !wall.IsActive {
			continue
		}
		walls = append(walls, *wall)
	}
	return walls, nil
}

func (r *fakeWallRepo) Update(_ context.Context, wall *domain.Wall) error {
	w := *wall
	r.walls[wall.ID] = &w
	return nil
}

func (r *fakeWallRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	if wall, ok := r.walls[id]; ok {
		wall.IsActive = false
	}
	return nil
}

func (r *fakeWallRepo) AddMember(_ context.Context, m *domain.WallMember) error {
	if r.members[m.WallID] == nil {
		r.members[m.WallID] = make(map[uuid.UUID]*domain.WallMember)
	}
	if _, exists := r.members[m.WallID][m.UserID]; exists {
		return nil // ON CONFLICT DO NOTHING
	}
	mm := *m
	r.members[m.WallID][m.UserID] = &mm
	return nil
}

func (r *fakeWallRepo) RemoveMember(_ context.Context, wallID, userID uuid.UUID) error {
	delete(r.members[wallID], userID)
	return nil
}

func (r *fakeWallRepo) GetMember(_ context.Context, wallID, userID uuid.UUID) (*domain.WallMember, error) {
	m, ok := r.members[wallID][userID]
	if !ok {
		return nil, nil
	}
	mm := *m
	return &mm, nil
}

func (r *fakeWallRepo) ListMembers(_ context.Context, wallID uuid.UUID) ([]domain.WallMember, error) {
	var members []domain.WallMember
	for _, m := range r.members[wallID] {
		members = append(members, *m)
	}
	return members, nil
}

func (r *fakeWallRepo) CountMembers(_ context.Context, wallID uuid.UUID) (int, error) {
	return len(r.members[wallID]), nil
}

func (r *fakeWallRepo) SetMemberRole(_ context.Context, wallID, userID uuid.UUID, role string) error {
	if m, ok := r.members[wallID][userID]; ok {
		m.Role = role
	}
	return nil
}

type fakeJoinRequestRepo struct {
	requests map[uuid.UUID]*domain.JoinRequest
}

func newFakeJoinRequestRepo() *fakeJoinRequestRepo {
	return &fakeJoinRequestRepo{requests: make(map[uuid.UUID]*domain.JoinRequest)}
}

func (r *fakeJoinRequestRepo) Create(_ context.Context, req *domain.JoinRequest) error {
	rr := *req
	r.requests[req.ID] = &rr
	return nil
}

func (r *fakeJoinRequestRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.JoinRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	rr := *req
	return &rr, nil
}

func (r *fakeJoinRequestRepo) GetPending(_ context.Context, wallID, userID uuid.UUID) (*domain.JoinRequest, error) {
	for _, req := range r.requests {
		if req.WallID == wallID && req.UserID == userID && req.Status == domain.JoinRequestPending {
			rr := *req
			return &rr, nil
		}
	}
	return nil, nil
}

func (r *fakeJoinRequestRepo) ListPendingByWall(_ context.Context, wallID uuid.UUID) ([]domain.JoinRequest, error) {
	var reqs []domain.JoinRequest
	for _, req := range r.requests {
		if req.WallID == wallID && req.Status == domain.JoinRequestPending {
			reqs = append(reqs, *req)
		}
	}
	return reqs, nil
}

func (r *fakeJoinRequestRepo) Resolve(_ context.Context, id uuid.UUID, status string, reviewerID uuid.UUID, reviewMessage *string) error {
	req, ok := r.requests[id]
	if !ok || req.Status != domain.JoinRequestPending {
		return nil
	}
	now := time.Now()
	req.Status = status
	req.ReviewerID = &reviewerID
	req.ReviewMessage = reviewMessage
	req.ResolvedAt = &now
	return nil
}

func (r *fakeJoinRequestRepo) DeletePendingByWall(_ context.Context, wallID uuid.UUID) error {
	for id, req := range r.requests {
		if req.WallID == wallID && req.Status == domain.JoinRequestPending {
			delete(r.requests, id)
		}
	}
	return nil
}

type fakeMessageRepo struct {
	messages  map[uuid.UUID]*domain.Message
	usernames map[uuid.UUID]string
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{
		messages:  make(map[uuid.UUID]*domain.Message),
		usernames: make(map[uuid.UUID]string),
	}
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	m := *msg
	r.messages[msg.ID] = &m
	return nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Message, error) {
	msg, ok := r.messages[id]
	if !ok {
		return nil, nil
	}
	m := *msg
	m.Attachments = append([]domain.Attachment(nil), msg.Attachments...)
	m.AuthorUsername = r.usernames[msg.AuthorID]
	return &m, nil
}

func (r *fakeMessageRepo) ListByWall(_ context.Context, wallID uuid.UUID, limit, offset int) ([]domain.Message, error) {
	var roots []domain.Message
	for _, msg := range r.messages {
		if msg.WallID == wallID && msg.ParentMessageID == nil && msg.DeletedAt == nil {
			roots = append(roots, *msg)
		}
	}
	sort.Slice(roots, func(i, j int) bool {
		if roots[i].IsPinned != roots[j].IsPinned {
			return roots[i].IsPinned
		}
		return roots[i].CreatedAt.After(roots[j].CreatedAt)
	})
	if offset >= len(roots) {
		return nil, nil
	}
	roots = roots[offset:]
	if len(roots) > limit {
		roots = roots[:limit]
	}
	return roots, nil
}

func (r *fakeMessageRepo) ListComments(_ context.Context, rootMessageID uuid.UUID) ([]domain.Message, error) {
	var comments []domain.Message
	for _, msg := range r.messages {
		if msg.ParentMessageID != nil && *msg.ParentMessageID == rootMessageID && msg.DeletedAt == nil {
			comments = append(comments, *msg)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (r *fakeMessageRepo) UpdateContent(_ context.Context, msg *domain.Message) error {
	stored, ok := r.messages[msg.ID]
	if !ok {
		return nil
	}
	now := time.Now()
	stored.Content = msg.Content
	stored.Tags = msg.Tags
	stored.EditedAt = &now
	return nil
}

func (r *fakeMessageRepo) UpdateAttachments(_ context.Context, id uuid.UUID, attachments []domain.Attachment) error {
	if stored, ok := r.messages[id]; ok {
		stored.Attachments = append([]domain.Attachment(nil), attachments...)
	}
	return nil
}

func (r *fakeMessageRepo) SetPinned(_ context.Context, id uuid.UUID, pinned bool, pinnedBy *uuid.UUID) error {
	if stored, ok := r.messages[id]; ok {
		stored.IsPinned = pinned
		stored.PinnedBy = pinnedBy
	}
	return nil
}

func (r *fakeMessageRepo) IncrementReportCount(_ context.Context, id uuid.UUID) (int, error) {
	stored, ok := r.messages[id]
	if !ok {
		return 0, nil
	}
	stored.ReportCount++
	return stored.ReportCount, nil
}

func (r *fakeMessageRepo) SoftDelete(_ context.Context, id, deletedBy uuid.UUID) error {
	if stored, ok := r.messages[id]; ok {
		now := time.Now()
		stored.DeletedAt = &now
		stored.DeletedBy = &deletedBy
	}
	return nil
}

func (r *fakeMessageRepo) SoftDeleteByWall(_ context.Context, wallID, deletedBy uuid.UUID) error {
	for _, msg := range r.messages {
		if msg.WallID == wallID && msg.DeletedAt == nil {
			now := time.Now()
			msg.DeletedAt = &now
			msg.DeletedBy = &deletedBy
		}
	}
	return nil
}

type reactionKey struct {
	messageID uuid.UUID
	userID    uuid.UUID
}

type fakeReactionRepo struct {
	reactions map[reactionKey]*domain.Reaction
}

func newFakeReactionRepo() *fakeReactionRepo {
	return &fakeReactionRepo{reactions: make(map[reactionKey]*domain.Reaction)}
}

func (r *fakeReactionRepo) Get(_ context.Context, messageID, userID uuid.UUID) (*domain.Reaction, error) {
	reaction, ok := r.reactions[reactionKey{messageID, userID}]
	if !ok {
		return nil, nil
	}
	rr := *reaction
	return &rr, nil
}

func (r *fakeReactionRepo) Upsert(_ context.Context, reaction *domain.Reaction) error {
	rr := *reaction
	r.reactions[reactionKey{reaction.MessageID, reaction.UserID}] = &rr
	return nil
}

func (r *fakeReactionRepo) Delete(_ context.Context, messageID, userID uuid.UUID) error {
	delete(r.reactions, reactionKey{messageID, userID})
	return nil
}

func (r *fakeReactionRepo) ListByMessage(_ context.Context, messageID uuid.UUID) ([]domain.Reaction, error) {
	var reactions []domain.Reaction
	for key, reaction := range r.reactions {
		if key.messageID == messageID {
			reactions = append(reactions, *reaction)
		}
	}
	return reactions, nil
}

type fakeNotificationRepo struct {
	notifications []*domain.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	nn := *n
	r.notifications = append(r.notifications, &nn)
	return nil
}

func (r *fakeNotificationRepo) ListByRecipient(_ context.Context, recipientID uuid.UUID, unreadOnly bool, limit int) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range r.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.ReadAt != nil {
			continue
		}
		out = append(out, *n)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, recipientID uuid.UUID) error {
	for _, n := range r.notifications {
		if n.ID == id && n.RecipientID == recipientID {
			now := time.Now()
			n.ReadAt = &now
		}
	}
	return nil
}

func (r *fakeNotificationRepo) byType(ntype string) []*domain.Notification {
	var out []*domain.Notification
	for _, n := range r.notifications {
		if n.Type == ntype {
			out = append(out, n)
		}
	}
	return out
}

// fakeNotifier records every broadcast event by name.
type fakeNotifier struct {
	events []string
}

func (n *fakeNotifier) record(event string) { n.events = append(n.events, event) }

func (n *fakeNotifier) MessageReceived(*domain.Message)  { n.record("message_received") }
func (n *fakeNotifier) MessageUpdated(*domain.Message)   { n.record("message_updated") }
func (n *fakeNotifier) MessageDeleted(_, _ uuid.UUID)    { n.record("message_deleted") }
func (n *fakeNotifier) MessagePinUpdated(*domain.Message) {
	n.record("message_pin_updated")
}
func (n *fakeNotifier) MessageReactionUpdated(_, _ uuid.UUID, _ []domain.Reaction, _ uuid.UUID, _ *string) {
	n.record("message_reaction_updated")
}
func (n *fakeNotifier) MessageVideoProcessed(_, _ uuid.UUID, _ []domain.Attachment) {
	n.record("message_video_processed")
}
func (n *fakeNotifier) CommentAdded(*domain.Message)     { n.record("new_comment") }
func (n *fakeNotifier) NestedReplyAdded(*domain.Message) { n.record("nested_reply_added") }
func (n *fakeNotifier) CommentUpdated(*domain.Message)   { n.record("comment_updated") }
func (n *fakeNotifier) CommentDeleted(_, _, _ uuid.UUID) { n.record("comment_deleted") }
func (n *fakeNotifier) CommentReactionUpdated(_, _ uuid.UUID, _ []domain.Reaction, _ uuid.UUID, _ *string) {
	n.record("comment_reaction_updated")
}
func (n *fakeNotifier) NotifyUser(uuid.UUID, *domain.Notification) { n.record("notification") }

func (n *fakeNotifier) has(event string) bool {
	for _, e := range n.events {
		if e == event {
			return true
		}
	}
	return false
}

// fakeVideoProcessor records enqueued and cancelled jobs.
type fakeVideoProcessor struct {
	nextID    int64
	enqueued  []string
	cancelled []int64
	failNext  bool
}

func (v *fakeVideoProcessor) Enqueue(_ context.Context, _ uuid.UUID, _ int, _, jobKey string) (int64, error) {
	if v.failNext {
		v.failNext = false
		return 0, errEnqueue
	}
	v.nextID++
	v.enqueued = append(v.enqueued, jobKey)
	return v.nextID, nil
}

func (v *fakeVideoProcessor) Cancel(_ context.Context, jobID int64) error {
	v.cancelled = append(v.cancelled, jobID)
	return nil
}

var errEnqueue = errFake("enqueue failed")

type errFake string

func (e errFake) Error() string { return string(e) }

// testEnv wires every service against shared in-memory fakes.
type testEnv struct {
	wallRepo         *fakeWallRepo
	messageRepo      *fakeMessageRepo
	joinRequestRepo  *fakeJoinRequestRepo
	reactionRepo     *fakeReactionRepo
	notificationRepo *fakeNotificationRepo
	notifier         *fakeNotifier
	videos           *fakeVideoProcessor

	walls         *WallService
	joins         *JoinRequestService
	messages      *MessageService
	comments      *CommentService
	reactions     *ReactionService
	notifications *NotificationService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		wallRepo:         newFakeWallRepo(),
		messageRepo:      newFakeMessageRepo(),
		joinRequestRepo:  newFakeJoinRequestRepo(),
		reactionRepo:     newFakeReactionRepo(),
		notificationRepo: newFakeNotificationRepo(),
		notifier:         &fakeNotifier{},
		videos:           &fakeVideoProcessor{},
	}

	env.notifications = NewNotificationService(env.notificationRepo)
	env.notifications.SetNotifier(env.notifier)

	env.walls = NewWallService(env.wallRepo, env.messageRepo, env.joinRequestRepo, env.notifications)
	env.joins = NewJoinRequestService(env.wallRepo, env.joinRequestRepo, env.notifications)

	env.messages = NewMessageService(env.messageRepo, env.wallRepo, env.reactionRepo, env.notifications)
	env.messages.SetNotifier(env.notifier)
	env.messages.SetVideoProcessor(env.videos)

	env.comments = NewCommentService(env.messageRepo, env.wallRepo, env.reactionRepo, env.notifications)
	env.comments.SetNotifier(env.notifier)

	env.reactions = NewReactionService(env.reactionRepo, env.messageRepo, env.wallRepo, env.notifications)
	env.reactions.SetNotifier(env.notifier)

	return env
}

// newWall creates an active wall with the given creator as admin member.
func (env *testEnv) newWall(creatorID uuid.UUID, settings domain.WallSettings) *domain.Wall {
	wall := &domain.Wall{
		ID:        uuid.New(),
		Name:      "wall-" + uuid.NewString()[:8],
		Category:  "general",
		CreatorID: creatorID,
		IsPublic:  true,
		IsActive:  true,
		Settings:  settings,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	env.wallRepo.Create(context.Background(), wall)
	env.wallRepo.AddMember(context.Background(), &domain.WallMember{
		WallID:   wall.ID,
		UserID:   creatorID,
		Role:     domain.RoleAdmin,
		JoinedAt: time.Now(),
	})
	return wall
}

func (env *testEnv) addMember(wallID, userID uuid.UUID) {
	env.wallRepo.AddMember(context.Background(), &domain.WallMember{
		WallID:   wallID,
		UserID:   userID,
		Role:     domain.RoleMember,
		JoinedAt: time.Now(),
	})
}
