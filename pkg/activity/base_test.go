package activity_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-gaucho/pkg/activity"
	"github.com/ahrav/go-gaucho/pkg/events"
)

type flakySink struct {
	mu       sync.Mutex
	failures int
	got      []events.Envelope
	calls    int
}

func (s *flakySink) Append(_ context.Context, env events.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failures > 0 {
		s.failures--
		return errors.New("sink unavailable")
	}
	s.got = append(s.got, env)
	return nil
}

func TestGetWorkflowContext_OutsideActivity(t *testing.T) {
	base := activity.NewBaseActivities(nil)
	wfCtx := base.GetWorkflowContext(context.Background())
	assert.Equal(t, "local", wfCtx.WorkflowID)
	assert.Contains(t, wfCtx.RunID, "local-")
	assert.Equal(t, int32(1), wfCtx.Attempt)
}

func TestEmit_StampsWorkflow(t *testing.T) {
	sink := &flakySink{}
	base := activity.NewBaseActivities(sink)

	base.Emit(context.Background(), "analysis.record_appended", "worker", "key-1", map[string]int{"index": 3})

	require.Len(t, sink.got, 1)
	env := sink.got[0]
	assert.Equal(t, "analysis.record_appended", env.Type)
	assert.Equal(t, "worker", env.Source)
	assert.Equal(t, "key-1", env.IdempotencyKey)
	assert.Equal(t, "local", env.WorkflowID)
	assert.JSONEq(t, `{"index":3}`, string(env.Payload))
}

func TestEmitEventSafe_RetriesOnce(t *testing.T) {
	sink := &flakySink{failures: 1}
	base := activity.NewBaseActivities(sink)

	base.EmitEventSafe(context.Background(), events.Envelope{Type: "t"}, "test")
	assert.Equal(t, 2, sink.calls)
	assert.Len(t, sink.got, 1)
}

func TestEmitEventSafe_GivesUp(t *testing.T) {
	sink := &flakySink{failures: 5}
	base := activity.NewBaseActivities(sink)

	base.EmitEventSafe(context.Background(), events.Envelope{Type: "t"}, "test")
	assert.Equal(t, 2, sink.calls)
	assert.Empty(t, sink.got)
}

func TestEmitEventSafe_CancelledDuringBackoff(t *testing.T) {
	sink := &flakySink{failures: 5}
	base := activity.NewBaseActivities(sink)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	base.EmitEventSafe(ctx, events.Envelope{Type: "t"}, "test")
	assert.Equal(t, 1, sink.calls)
}

func TestNilSinkAndSafeHelpers(t *testing.T) {
	base := activity.NewBaseActivities(nil)
	assert.NotPanics(t, func() {
		base.EmitEventSafe(context.Background(), events.Envelope{}, "nothing")
		base.RecordHeartbeat(context.Background(), "progress")
		activity.SafeLog(context.Background(), "info")
		activity.SafeLogWarn(context.Background(), "warn")
		activity.SafeLogError(context.Background(), "error")
	})
}
