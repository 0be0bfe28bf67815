package jobqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koltech/wallline/internal/domain"
)

type fakeMessageStore struct {
	messages map[uuid.UUID]*domain.Message
}

func (s *fakeMessageStore) Create(_ context.Context, msg *domain.Message) error {
	m := *msg
	s.messages[msg.ID] = &m
	return nil
}

func (s *fakeMessageStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Message, error) {
	msg, ok := s.messages[id]
	if !ok {
		return nil, nil
	}
	m := *msg
	m.Attachments = append([]domain.Attachment(nil), msg.Attachments...)
	return &m, nil
}

func (s *fakeMessageStore) ListByWall(context.Context, uuid.UUID, int, int) ([]domain.Message, error) {
	return nil, nil
}

func (s *fakeMessageStore) ListComments(context.Context, uuid.UUID) ([]domain.Message, error) {
	return nil, nil
}

func (s *fakeMessageStore) UpdateContent(context.Context, *domain.Message) error { return nil }

func (s *fakeMessageStore) UpdateAttachments(_ context.Context, id uuid.UUID, attachments []domain.Attachment) error {
	if msg, ok := s.messages[id]; ok {
		msg.Attachments = append([]domain.Attachment(nil), attachments...)
	}
	return nil
}

func (s *fakeMessageStore) SetPinned(context.Context, uuid.UUID, bool, *uuid.UUID) error { return nil }
func (s *fakeMessageStore) IncrementReportCount(context.Context, uuid.UUID) (int, error) {
	return 0, nil
}
func (s *fakeMessageStore) SoftDelete(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (s *fakeMessageStore) SoftDeleteByWall(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

type fakeTranscoder struct {
	playlistURL string
	err         error
	calls       int
}

func (t *fakeTranscoder) TranscodeToHLS(_ context.Context, _, _ string) (string, error) {
	t.calls++
	return t.playlistURL, t.err
}

type fakePublisher struct {
	events int
}

func (p *fakePublisher) MessageVideoProcessed(_, _ uuid.UUID, _ []domain.Attachment) {
	p.events++
}

func newTestWorker(store *fakeMessageStore, transcoder *fakeTranscoder, publisher *fakePublisher) *VideoTranscodeWorker {
	return &VideoTranscodeWorker{
		messageRepo: store,
		transcoder:  transcoder,
		publisher:   publisher,
		config:      &QueueConfig{MaxWorkers: 1, MaxAttempts: 3, JobTimeout: time.Minute},
	}
}

func pendingVideoMessage(store *fakeMessageStore) (*domain.Message, VideoTranscodeArgs) {
	msg := &domain.Message{
		ID:       uuid.New(),
		WallID:   uuid.New(),
		AuthorID: uuid.New(),
		Attachments: []domain.Attachment{{
			Kind:       domain.AttachmentVideo,
			URL:        "http://localhost:8080/media/uploads/clip.mp4",
			Processing: domain.ProcessingPending,
			JobKey:     msgJobKey,
		}},
		CreatedAt: time.Now(),
	}
	store.Create(context.Background(), msg)
	return msg, VideoTranscodeArgs{
		MessageID:       msg.ID,
		AttachmentIndex: 0,
		SourceURL:       msg.Attachments[0].URL,
		JobKey:          msgJobKey,
	}
}

const msgJobKey = "test-message:0:12345"

func TestProcessPatchesAttachment(t *testing.T) {
	store := &fakeMessageStore{messages: make(map[uuid.UUID]*domain.Message)}
	transcoder := &fakeTranscoder{playlistURL: "http://localhost:8080/media/hls/x/index.m3u8"}
	publisher := &fakePublisher{}
	worker := newTestWorker(store, transcoder, publisher)

	msg, args := pendingVideoMessage(store)

	require.NoError(t, worker.process(context.Background(), args))
	assert.Equal(t, 1, transcoder.calls)
	assert.Equal(t, 1, publisher.events)

	stored, err := store.GetByID(context.Background(), msg.ID)
	require.NoError(t, err)
	att := stored.Attachments[0]
	assert.Equal(t, transcoder.playlistURL, att.URL)
	require.NotNil(t, att.OriginalURL)
	assert.Equal(t, "http://localhost:8080/media/uploads/clip.mp4", *att.OriginalURL)
	assert.True(t, att.IsHLS)
	assert.Equal(t, domain.ProcessingReady, att.Processing)
}

func TestProcessSkipsDeletedMessage(t *testing.T) {
	store := &fakeMessageStore{messages: make(map[uuid.UUID]*domain.Message)}
	transcoder := &fakeTranscoder{playlistURL: "http://x/index.m3u8"}
	worker := newTestWorker(store, transcoder, &fakePublisher{})

	msg, args := pendingVideoMessage(store)
	now := time.Now()
	store.messages[msg.ID].DeletedAt = &now

	require.NoError(t, worker.process(context.Background(), args))
	assert.Zero(t, transcoder.calls)
}

func TestProcessSkipsCancelledAttachment(t *testing.T) {
	store := &fakeMessageStore{messages: make(map[uuid.UUID]*domain.Message)}
	transcoder := &fakeTranscoder{playlistURL: "http://x/index.m3u8"}
	worker := newTestWorker(store, transcoder, &fakePublisher{})

	msg, args := pendingVideoMessage(store)
	store.messages[msg.ID].Attachments[0].Processing = domain.ProcessingFailed

	require.NoError(t, worker.process(context.Background(), args))
	assert.Zero(t, transcoder.calls)

	stored, _ := store.GetByID(context.Background(), msg.ID)
	assert.Equal(t, domain.ProcessingFailed, stored.Attachments[0].Processing)
}

func TestProcessReturnsTranscodeError(t *testing.T) {
	store := &fakeMessageStore{messages: make(map[uuid.UUID]*domain.Message)}
	transcoder := &fakeTranscoder{err: errors.New("ffmpeg exploded")}
	worker := newTestWorker(store, transcoder, &fakePublisher{})

	msg, args := pendingVideoMessage(store)

	err := worker.process(context.Background(), args)
	require.Error(t, err)

	// Attachment ostaje pending dok retry budget ne istekne
	stored, _ := store.GetByID(context.Background(), msg.ID)
	assert.Equal(t, domain.ProcessingPending, stored.Attachments[0].Processing)
}

func TestMarkFailedPublishesEvent(t *testing.T) {
	store := &fakeMessageStore{messages: make(map[uuid.UUID]*domain.Message)}
	publisher := &fakePublisher{}
	worker := newTestWorker(store, &fakeTranscoder{}, publisher)

	msg, args := pendingVideoMessage(store)

	require.NoError(t, worker.markFailed(context.Background(), args))
	assert.Equal(t, 1, publisher.events)

	stored, _ := store.GetByID(context.Background(), msg.ID)
	assert.Equal(t, domain.ProcessingFailed, stored.Attachments[0].Processing)
}

func TestFindAttachmentJobKeyMismatch(t *testing.T) {
	store := &fakeMessageStore{messages: make(map[uuid.UUID]*domain.Message)}
	worker := newTestWorker(store, &fakeTranscoder{}, &fakePublisher{})

	_, args := pendingVideoMessage(store)
	args.JobKey = "different-key"

	msg, att, err := worker.findAttachment(context.Background(), args)
	require.NoError(t, err)
	assert.Nil(t, msg)
	assert.Nil(t, att)
}
