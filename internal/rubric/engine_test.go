package rubric_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-gaucho/internal/consensus"
	"github.com/ahrav/go-gaucho/internal/domain"
	"github.com/ahrav/go-gaucho/internal/judge"
	"github.com/ahrav/go-gaucho/internal/judge/judgetest"
	"github.com/ahrav/go-gaucho/internal/rubric"
	"github.com/ahrav/go-gaucho/pkg/events"
)

type recordingSink struct {
	mu     sync.Mutex
	events []events.Envelope
}

func (s *recordingSink) Append(_ context.Context, env events.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, env)
	return nil
}

func (s *recordingSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

func newEngine(j judge.Judge, sink events.EventSink) *rubric.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := consensus.NewValidator(consensus.Config{Validators: 2, MaxRounds: 2}, logger)
	return rubric.NewEngine(j, v, sink, logger)
}

// TestEngine_LowQualityScenario runs the full evaluation for a low quality
// image and checks the advisory reached the judge while the score did not
// get adjusted server side.
func TestEngine_LowQualityScenario(t *testing.T) {
	j := judgetest.New().Reply(judge.OpRubric, `{"score": 70, "message": "Buen asado, foto borrosa"}`, `{"message":"Buen asado, foto borrosa","score":70}`)
	sink := &recordingSink{}

	res, err := newEngine(j, sink).Evaluate(context.Background(), domain.EvaluationRequest{
		Description:  "Asado con amigos en Mendoza",
		Tags:         []string{"food", "friends"},
		ImageQuality: intPtr(20),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.EvaluationResult{Score: 70, Message: "Buen asado, foto borrosa"}, res)

	prompts := j.Prompts(judge.OpRubric)
	require.Len(t, prompts, 3, "leader plus two validators")
	for _, p := range prompts {
		assert.Equal(t, judge.FormatJSON, p.Format)
		assert.Contains(t, p.Text, "approximately 30%")
	}
	assert.Equal(t, prompts[0].Text, prompts[2].Text, "every execution sees the same task")
	assert.Equal(t, []string{string(domain.EventTypeRubricEvaluated)}, sink.types())
}

func TestEngine_InvalidRequest(t *testing.T) {
	j := judgetest.New()
	q := 101
	_, err := newEngine(j, nil).Evaluate(context.Background(), domain.EvaluationRequest{Description: "x", ImageQuality: &q})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Zero(t, j.Calls(judge.OpRubric))
}

func TestEngine_EmptyDescriptionAndTag(t *testing.T) {
	j := judgetest.New().Reply(judge.OpRubric, `{"score": 10, "message": "Poco para contar"}`)
	res, err := newEngine(j, nil).Evaluate(context.Background(), domain.EvaluationRequest{Tags: []string{""}})
	require.NoError(t, err)
	assert.Equal(t, domain.EvaluationResult{Score: 10, Message: "Poco para contar"}, res)
}

func TestEngine_OutOfRangeIsFatal(t *testing.T) {
	j := judgetest.New().Reply(judge.OpRubric, `{"score": 101, "message": "ok"}`)
	_, err := newEngine(j, nil).Evaluate(context.Background(), domain.EvaluationRequest{Description: "x"})
	assert.ErrorIs(t, err, rubric.ErrScoreOutOfRange)
}

func TestEngine_MissingMessageIsFatal(t *testing.T) {
	j := judgetest.New().Reply(judge.OpRubric, `{"score": 50}`)
	_, err := newEngine(j, nil).Evaluate(context.Background(), domain.EvaluationRequest{Description: "x"})
	assert.ErrorIs(t, err, rubric.ErrMissingField)
}

func TestEngine_DivergenceIsNoConsensus(t *testing.T) {
	j := judgetest.New().Reply(judge.OpRubric,
		`{"score": 60, "message": "a"}`, `{"score": 61, "message": "a"}`,
		`{"score": 62, "message": "a"}`, `{"score": 63, "message": "a"}`,
	)
	sink := &recordingSink{}
	_, err := newEngine(j, sink).Evaluate(context.Background(), domain.EvaluationRequest{Description: "x"})
	assert.ErrorIs(t, err, consensus.ErrNoConsensus)
	assert.Equal(t, []string{string(domain.EventTypeConsensusFailed)}, sink.types())
}
