// Package jobqueue runs the background video pipeline on a River job queue.
// Transcode jobs are enqueued at message creation, survive restarts in
// Postgres, and patch the stored message through the repository's public
// update contract when they finish.
package jobqueue

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/koltech/wallline/internal/domain"
	"github.com/koltech/wallline/internal/media"
	"github.com/koltech/wallline/internal/repository"
)

// EventPublisher pushes the follow-up event after an attachment changes
// state, so subscribed clients can swap the player source without a reload.
type EventPublisher interface {
	MessageVideoProcessed(wallID, messageID uuid.UUID, attachments []domain.Attachment)
}

// VideoTranscodeArgs identifies one video attachment conversion. JobKey is
// derived from (message, attachment index, timestamp) so a retried create
// addresses the same logical conversion.
type VideoTranscodeArgs struct {
	MessageID       uuid.UUID `json:"message_id"`
	AttachmentIndex int       `json:"attachment_index"`
	SourceURL       string    `json:"source_url"`
	JobKey          string    `json:"job_key"`
}

func (VideoTranscodeArgs) Kind() string { return "video_transcode" }

// VideoTranscodeWorker converts a video attachment to HLS and patches the
// owning message.
type VideoTranscodeWorker struct {
	river.WorkerDefaults[VideoTranscodeArgs]
	messageRepo repository.MessageRepository
	transcoder  media.Transcoder
	publisher   EventPublisher
	config      *QueueConfig
}

func (w *VideoTranscodeWorker) Timeout(*river.Job[VideoTranscodeArgs]) time.Duration {
	return w.config.JobTimeout
}

func (w *VideoTranscodeWorker) Work(ctx context.Context, job *river.Job[VideoTranscodeArgs]) error {
	err := w.process(ctx, job.Args)
	if err == nil {
		return nil
	}

	log.Printf("video worker: job %d (%s) attempt %d: %v", job.ID, job.Args.JobKey, job.Attempt, err)

	// Zadnji pokusaj: oznaci attachment failed, original ostaje playable
	if job.Attempt >= job.MaxAttempts {
		if markErr := w.markFailed(ctx, job.Args); markErr != nil {
			log.Printf("video worker: marking %s failed: %v", job.Args.JobKey, markErr)
		}
	}
	return err
}

func (w *VideoTranscodeWorker) process(ctx context.Context, args VideoTranscodeArgs) error {
	msg, att, err := w.findAttachment(ctx, args)
	if err != nil {
		return err
	}
	if msg == nil {
		// Message deleted or attachment cancelled meanwhile - nothing to do
		return nil
	}

	playlistURL, err := w.transcoder.TranscodeToHLS(ctx, args.SourceURL, args.JobKey)
	if err != nil {
		return fmt.Errorf("transcoding %s: %w", args.JobKey, err)
	}

	// Re-read prije patcha: cancel je mogao stici tijekom konverzije
	msg, att, err = w.findAttachment(ctx, args)
	if err != nil || msg == nil {
		return err
	}

	original := att.URL
	att.OriginalURL = &original
	att.URL = playlistURL
	att.IsHLS = true
	att.Processing = domain.ProcessingReady

	if err := w.messageRepo.UpdateAttachments(ctx, msg.ID, msg.Attachments); err != nil {
		return fmt.Errorf("patching message %s: %w", msg.ID, err)
	}

	if w.publisher != nil {
		w.publisher.MessageVideoProcessed(msg.WallID, msg.ID, msg.Attachments)
	}
	return nil
}

// findAttachment loads the message and locates the attachment this job owns.
// Returns (nil, nil, nil) when the work is moot: message gone, soft-deleted,
// job key mismatch, or the attachment already left the pending state.
func (w *VideoTranscodeWorker) findAttachment(ctx context.Context, args VideoTranscodeArgs) (*domain.Message, *domain.Attachment, error) {
	msg, err := w.messageRepo.GetByID(ctx, args.MessageID)
	if err != nil {
		return nil, nil, err
	}
	if msg == nil || msg.DeletedAt != nil {
		return nil, nil, nil
	}
	if args.AttachmentIndex < 0 || args.AttachmentIndex >= len(msg.Attachments) {
		return nil, nil, nil
	}
	att := &msg.Attachments[args.AttachmentIndex]
	if att.JobKey != args.JobKey || att.Processing != domain.ProcessingPending {
		return nil, nil, nil
	}
	return msg, att, nil
}

func (w *VideoTranscodeWorker) markFailed(ctx context.Context, args VideoTranscodeArgs) error {
	msg, att, err := w.findAttachment(ctx, args)
	if err != nil || msg == nil {
		return err
	}
	att.Processing = domain.ProcessingFailed
	if err := w.messageRepo.UpdateAttachments(ctx, msg.ID, msg.Attachments); err != nil {
		return err
	}
	if w.publisher != nil {
		w.publisher.MessageVideoProcessed(msg.WallID, msg.ID, msg.Attachments)
	}
	return nil
}

// Queue wraps the River client and implements service.VideoProcessor.
type Queue struct {
	client *river.Client[pgx.Tx]
	config *QueueConfig
}

func NewQueue(pool *pgxpool.Pool, messageRepo repository.MessageRepository, transcoder media.Transcoder, publisher EventPublisher) (*Queue, error) {
	config := GetQueueConfig()

	workers := river.NewWorkers()
	river.AddWorker(workers, &VideoTranscodeWorker{
		messageRepo: messageRepo,
		transcoder:  transcoder,
		publisher:   publisher,
		config:      config,
	})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:  config.RiverQueueConfig(),
		Workers: workers,
	})
	if err != nil {
		return nil, fmt.Errorf("creating river client: %w", err)
	}

	return &Queue{client: client, config: config}, nil
}

func (q *Queue) Start(ctx context.Context) error {
	return q.client.Start(ctx)
}

func (q *Queue) Stop(ctx context.Context) error {
	return q.client.Stop(ctx)
}

// Enqueue schedules a transcode job and returns its id for cancellation.
func (q *Queue) Enqueue(ctx context.Context, messageID uuid.UUID, attachmentIndex int, sourceURL, jobKey string) (int64, error) {
	res, err := q.client.Insert(ctx, VideoTranscodeArgs{
		MessageID:       messageID,
		AttachmentIndex: attachmentIndex,
		SourceURL:       sourceURL,
		JobKey:          jobKey,
	}, &river.InsertOpts{MaxAttempts: q.config.MaxAttempts})
	if err != nil {
		return 0, fmt.Errorf("enqueueing transcode job: %w", err)
	}
	return res.Job.ID, nil
}

func (q *Queue) Cancel(ctx context.Context, jobID int64) error {
	_, err := q.client.JobCancel(ctx, jobID)
	return err
}
