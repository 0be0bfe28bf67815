package jobqueue

import (
	"os"
	"strconv"
	"time"

	"github.com/riverqueue/river"
)

// QueueConfig holds the tunable parameters for the video transcode queue.
type QueueConfig struct {
	// MaxWorkers bounds concurrent ffmpeg invocations.
	MaxWorkers int
	// MaxAttempts caps retries before an attachment is marked failed.
	MaxAttempts int
	// JobTimeout bounds a single conversion run.
	JobTimeout time.Duration
}

func GetQueueConfig() *QueueConfig {
	return &QueueConfig{
		MaxWorkers:  getEnvInt("VIDEO_QUEUE_WORKERS", 2),
		MaxAttempts: getEnvInt("VIDEO_QUEUE_MAX_ATTEMPTS", 3),
		JobTimeout:  time.Duration(getEnvInt("VIDEO_QUEUE_TIMEOUT_SECONDS", 600)) * time.Second,
	}
}

// RiverQueueConfig returns the queue map for the River client.
func (c *QueueConfig) RiverQueueConfig() map[string]river.QueueConfig {
	return map[string]river.QueueConfig{
		river.QueueDefault: {MaxWorkers: c.MaxWorkers},
	}
}

func getEnvInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
