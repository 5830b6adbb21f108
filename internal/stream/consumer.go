// Package stream consumes analysis-ready reports from a Redis stream.
package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Matza-labs/atlas-ai/internal/advisor"
	"github.com/Matza-labs/atlas-ai/internal/report"
)

const (
	// StreamName is where the upstream analyzer publishes finished reports.
	StreamName = "atlas.reports.ready"
	// GroupName identifies this service's consumer group.
	GroupName = "atlas-ai"

	blockTimeout   = 5 * time.Second
	connectTimeout = 5 * time.Second
)

// Handler runs the analysis for one decoded report.
type Handler func(ctx context.Context, r report.Report) (advisor.Result, error)

// streamAPI is the slice of the Redis client the consumer touches.
type streamAPI interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
	Close() error
}

// Consumer reads reports one at a time from the stream and hands each to
// the handler. Entries are acknowledged whether or not handling succeeded:
// a report that cannot be processed is logged and dropped, not redelivered.
type Consumer struct {
	log      *slog.Logger
	rdb      streamAPI
	consumer string
	handle   Handler
}

// New connects to Redis, verifies the connection, and prepares a uniquely
// named consumer for the shared group.
func New(redisURL string, handler Handler, log *slog.Logger) (*Consumer, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Consumer{
		log:      log,
		rdb:      client,
		consumer: "atlas-ai-" + uuid.NewString(),
		handle:   handler,
	}, nil
}

// Run creates the consumer group if needed and processes entries until ctx
// is canceled. Each iteration blocks for up to blockTimeout waiting for a
// new entry.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		return err
	}

	c.log.Info("listening on stream",
		"stream", StreamName,
		"group", GroupName,
		"consumer", c.consumer)

	for {
		select {
		case <-ctx.Done():
			c.log.Info("shutting down stream consumer")
			return nil
		default:
		}

		streams, err := c.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    GroupName,
			Consumer: c.consumer,
			Streams:  []string{StreamName, ">"},
			Count:    1,
			Block:    blockTimeout,
		}).Result()
		if errors.Is(err, redis.Nil) {
			// No new entries within the block window.
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("shutting down stream consumer")
				return nil
			}
			return fmt.Errorf("stream read failed: %w", err)
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				c.process(ctx, msg)
			}
		}
	}
}

func (c *Consumer) ensureGroup(ctx context.Context) error {
	err := c.rdb.XGroupCreateMkStream(ctx, StreamName, GroupName, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	defer func() {
		if err := c.rdb.XAck(ctx, StreamName, GroupName, msg.ID).Err(); err != nil {
			c.log.Error("failed to ack message", "msg_id", msg.ID, "err", err)
		}
	}()

	payload := "{}"
	if v, ok := msg.Values["payload"].(string); ok {
		payload = v
	}

	r, err := report.Decode([]byte(payload))
	if err != nil {
		c.log.Error("failed to analyze message", "msg_id", msg.ID, "err", err)
		return
	}

	c.log.Info("analyzing report", "msg_id", msg.ID)
	result, err := c.handle(ctx, r)
	if err != nil {
		c.log.Error("failed to analyze message", "msg_id", msg.ID, "err", err)
		return
	}

	c.log.Info("analysis complete",
		"msg_id", msg.ID,
		"tokens_used", result.TokensUsed,
		"model", result.Model)
}

// Close releases the Redis connection.
func (c *Consumer) Close() error {
	return c.rdb.Close()
}
