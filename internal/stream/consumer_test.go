package stream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Matza-labs/atlas-ai/internal/advisor"
	"github.com/Matza-labs/atlas-ai/internal/report"
)

// fakeStreamClient serves queued messages one per read, then cancels the
// run context so Run exits cleanly.
type fakeStreamClient struct {
	cancel context.CancelFunc

	groupErr   error
	groupCalls int

	queue    []redis.XMessage
	lastArgs *redis.XReadGroupArgs

	acked  []string
	ackErr error
}

func (f *fakeStreamClient) XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd {
	f.groupCalls++
	if f.groupErr != nil {
		return redis.NewStatusResult("", f.groupErr)
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeStreamClient) XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd {
	f.lastArgs = a
	if len(f.queue) == 0 {
		f.cancel()
		return redis.NewXStreamSliceCmdResult(nil, redis.Nil)
	}
	msg := f.queue[0]
	f.queue = f.queue[1:]
	return redis.NewXStreamSliceCmdResult([]redis.XStream{
		{Stream: StreamName, Messages: []redis.XMessage{msg}},
	}, nil)
}

func (f *fakeStreamClient) XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd {
	f.acked = append(f.acked, ids...)
	if f.ackErr != nil {
		return redis.NewIntResult(0, f.ackErr)
	}
	return redis.NewIntResult(int64(len(ids)), nil)
}

func (f *fakeStreamClient) Close() error { return nil }

func newTestConsumer(fake *fakeStreamClient, handler Handler) *Consumer {
	return &Consumer{
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		rdb:      fake,
		consumer: "atlas-ai-test",
		handle:   handler,
	}
}

func TestRunProcessesEntries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := &fakeStreamClient{
		cancel: cancel,
		queue: []redis.XMessage{
			{ID: "1-0", Values: map[string]interface{}{"payload": `{"meta": {"name": "Build"}}`}},
			{ID: "2-0", Values: map[string]interface{}{"payload": `{"meta": {"name": "Deploy"}}`}},
		},
	}

	var seen []string
	handler := func(ctx context.Context, r report.Report) (advisor.Result, error) {
		seen = append(seen, r.Meta.Name)
		return advisor.Result{Model: "mistral", TokensUsed: 42}, nil
	}

	c := newTestConsumer(fake, handler)
	if err := c.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(seen) != 2 || seen[0] != "Build" || seen[1] != "Deploy" {
		t.Errorf("expected handler to see both reports in order, got %v", seen)
	}
	if len(fake.acked) != 2 || fake.acked[0] != "1-0" || fake.acked[1] != "2-0" {
		t.Errorf("expected both entries acked, got %v", fake.acked)
	}
	if fake.groupCalls != 1 {
		t.Errorf("expected one group creation attempt, got %d", fake.groupCalls)
	}
}

func TestRunReadArgs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := &fakeStreamClient{cancel: cancel}
	c := newTestConsumer(fake, func(ctx context.Context, r report.Report) (advisor.Result, error) {
		return advisor.Result{}, nil
	})

	if err := c.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	args := fake.lastArgs
	if args == nil {
		t.Fatal("expected XReadGroup to be called")
	}
	if args.Group != GroupName {
		t.Errorf("expected group %q, got %q", GroupName, args.Group)
	}
	if args.Consumer != "atlas-ai-test" {
		t.Errorf("expected consumer name, got %q", args.Consumer)
	}
	if len(args.Streams) != 2 || args.Streams[0] != StreamName || args.Streams[1] != ">" {
		t.Errorf("expected streams [%s >], got %v", StreamName, args.Streams)
	}
	if args.Count != 1 {
		t.Errorf("expected count 1, got %d", args.Count)
	}
	if args.Block != 5*time.Second {
		t.Errorf("expected 5s block, got %v", args.Block)
	}
}

func TestRunAcksFailedEntries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := &fakeStreamClient{
		cancel: cancel,
		queue: []redis.XMessage{
			{ID: "3-0", Values: map[string]interface{}{"payload": `{"meta": {"name": "Flaky"}}`}},
		},
	}

	handler := func(ctx context.Context, r report.Report) (advisor.Result, error) {
		return advisor.Result{}, errors.New("backend down")
	}

	c := newTestConsumer(fake, handler)
	if err := c.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fake.acked) != 1 || fake.acked[0] != "3-0" {
		t.Errorf("expected failed entry to still be acked, got %v", fake.acked)
	}
}

func TestRunAcksMalformedPayload(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := &fakeStreamClient{
		cancel: cancel,
		queue: []redis.XMessage{
			{ID: "4-0", Values: map[string]interface{}{"payload": "not json at all"}},
		},
	}

	var calls int
	handler := func(ctx context.Context, r report.Report) (advisor.Result, error) {
		calls++
		return advisor.Result{}, nil
	}

	c := newTestConsumer(fake, handler)
	if err := c.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 0 {
		t.Errorf("expected handler not to run for malformed payload, got %d calls", calls)
	}
	if len(fake.acked) != 1 || fake.acked[0] != "4-0" {
		t.Errorf("expected malformed entry to still be acked, got %v", fake.acked)
	}
}

func TestRunDefaultsMissingPayloadField(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := &fakeStreamClient{
		cancel: cancel,
		queue: []redis.XMessage{
			{ID: "5-0", Values: map[string]interface{}{"other": "field"}},
		},
	}

	var got *report.Report
	handler := func(ctx context.Context, r report.Report) (advisor.Result, error) {
		got = &r
		return advisor.Result{}, nil
	}

	c := newTestConsumer(fake, handler)
	if err := c.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got == nil {
		t.Fatal("expected handler to run with an empty report")
	}
	if got.Meta.Name != "" || len(got.Findings) != 0 {
		t.Errorf("expected zero-value report, got %+v", *got)
	}
	if len(fake.acked) != 1 {
		t.Errorf("expected entry acked, got %v", fake.acked)
	}
}

func TestRunToleratesExistingGroup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := &fakeStreamClient{
		cancel:   cancel,
		groupErr: errors.New("BUSYGROUP Consumer Group name already exists"),
	}

	c := newTestConsumer(fake, func(ctx context.Context, r report.Report) (advisor.Result, error) {
		return advisor.Result{}, nil
	})

	if err := c.Run(ctx); err != nil {
		t.Fatalf("expected existing group to be tolerated, got %v", err)
	}
}

func TestRunFailsOnGroupCreateError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := &fakeStreamClient{
		cancel:   cancel,
		groupErr: errors.New("connection reset"),
	}

	c := newTestConsumer(fake, func(ctx context.Context, r report.Report) (advisor.Result, error) {
		return advisor.Result{}, nil
	})

	err := c.Run(ctx)
	if err == nil {
		t.Fatal("expected error for group creation failure, got nil")
	}
}

func TestNewRejectsInvalidURL(t *testing.T) {
	_, err := New("not-a-redis-url", func(ctx context.Context, r report.Report) (advisor.Result, error) {
		return advisor.Result{}, nil
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err == nil {
		t.Fatal("expected error for invalid redis URL, got nil")
	}
}
