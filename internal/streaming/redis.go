package streaming

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisMirror appends published events to a per-run Redis Stream so
// consumers outside the process (dashboards, CLIs) can tail runs.
type RedisMirror struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
	maxLen int64
}

// NewRedisMirror builds a mirror writing to streams named
// research:events:<run-id>. Streams are capped and expire after ttl.
func NewRedisMirror(client *redis.Client, logger *zap.Logger, ttl time.Duration, maxLen int64) *RedisMirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxLen <= 0 {
		maxLen = 512
	}
	return &RedisMirror{client: client, logger: logger, ttl: ttl, maxLen: maxLen}
}

func streamKey(runID string) string { return "research:events:" + runID }

// Append implements Mirror. Failures are logged and swallowed; the
// in-process stream is the source of truth.
func (rm *RedisMirror) Append(runID string, evt Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := streamKey(runID)
	err := rm.client.XAdd(ctx, &redis.XAddArgs{
		Stream: key,
		MaxLen: rm.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"type":    evt.Type,
			"stage":   evt.Stage,
			"message": evt.Message,
			"seq":     evt.Seq,
			"ts":      evt.Timestamp.UTC().Format(time.RFC3339Nano),
		},
	}).Err()
	if err != nil {
		rm.logger.Warn("Failed to mirror event to Redis",
			zap.String("run_id", runID), zap.Error(err))
		return
	}
	// Refresh expiry on every append; abandoned runs age out.
	_ = rm.client.Expire(ctx, key, rm.ttl).Err()
}
