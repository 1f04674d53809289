package worker_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/ahrav/go-gaucho/internal/analysis"
	"github.com/ahrav/go-gaucho/internal/consensus"
	"github.com/ahrav/go-gaucho/internal/domain"
	"github.com/ahrav/go-gaucho/internal/judge"
	"github.com/ahrav/go-gaucho/internal/judge/judgetest"
	"github.com/ahrav/go-gaucho/internal/render"
	"github.com/ahrav/go-gaucho/internal/store"
	"github.com/ahrav/go-gaucho/internal/worker"
	"github.com/ahrav/go-gaucho/internal/workflow"
	pkgactivity "github.com/ahrav/go-gaucho/pkg/activity"
)

type harness struct {
	env   *testsuite.TestActivityEnvironment
	judge *judgetest.Scripted
	store *store.MemoryStore
}

func newHarness(t *testing.T, j *judgetest.Scripted) harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fetch := render.Func(func(context.Context, string, render.Mode) (render.Payload, error) {
		return render.Payload{MIMEType: "image/png", Data: []byte{1}}, nil
	})
	st := store.NewMemoryStore()
	svc := analysis.NewService(fetch, j, nil, st, nil, logger)
	acts := worker.NewActivities(pkgactivity.NewBaseActivities(nil), analysis.NewStepExecutor(fetch, j, logger), j, svc)

	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	worker.RegisterActivities(env, acts)
	return harness{env: env, judge: j, store: st}
}

func appError(t *testing.T, err error) *temporal.ApplicationError {
	t.Helper()
	var appErr *temporal.ApplicationError
	require.ErrorAs(t, err, &appErr)
	return appErr
}

func TestExecuteStep(t *testing.T) {
	h := newHarness(t, judgetest.New().
		Reply(judge.OpAnalysis, "CATEGORY: \"futbol\"").
		Reply(judge.OpRubric, `{"score":1,"message":"m"}`))

	val, err := h.env.ExecuteActivity(workflow.ActivityExecuteStep, workflow.StepInput{Kind: workflow.StepAnalysis, URL: "http://example.com/gol.jpg"})
	require.NoError(t, err)
	var out string
	require.NoError(t, val.Get(&out))
	assert.Equal(t, "CATEGORY: \"futbol\"", out)

	val, err = h.env.ExecuteActivity(workflow.ActivityExecuteStep, workflow.StepInput{Kind: workflow.StepRubric, Task: "rate it"})
	require.NoError(t, err)
	require.NoError(t, val.Get(&out))
	assert.Equal(t, `{"score":1,"message":"m"}`, out)
	assert.Equal(t, judge.FormatJSON, h.judge.Prompts(judge.OpRubric)[0].Format)
}

func TestExecuteStep_UnknownKind(t *testing.T) {
	h := newHarness(t, judgetest.New())
	_, err := h.env.ExecuteActivity(workflow.ActivityExecuteStep, workflow.StepInput{Kind: "poetry"})
	appErr := appError(t, err)
	assert.Equal(t, workflow.ErrTypeValidation, appErr.Type())
	assert.True(t, appErr.NonRetryable())
}

func TestExecuteStep_JudgeErrorClassification(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		nonRetryable bool
	}{
		{"rate limited", &judge.ProviderError{Provider: "genai", Type: judge.ErrorTypeRateLimit}, false},
		{"circuit open", judge.ErrCircuitOpen, false},
		{"bad request", &judge.ProviderError{Provider: "genai", Type: judge.ErrorTypeValidation}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, judgetest.New().Fail(judge.OpRubric, tt.err))
			_, err := h.env.ExecuteActivity(workflow.ActivityExecuteStep, workflow.StepInput{Kind: workflow.StepRubric, Task: "t"})
			appErr := appError(t, err)
			assert.Equal(t, workflow.ErrTypeJudge, appErr.Type())
			assert.Equal(t, tt.nonRetryable, appErr.NonRetryable())
		})
	}
}

func TestProposeAndValidate_Strict(t *testing.T) {
	h := newHarness(t, judgetest.New().Reply(judge.OpRubric, `{"score": 3, "message": "x"}`))
	strict := workflow.PolicyInput{Kind: consensus.KindStrict}

	val, err := h.env.ExecuteActivity(workflow.ActivityPropose, workflow.ProposeInput{Policy: strict, Raw: `{ "score": 3, "message": "x" }`})
	require.NoError(t, err)
	var candidate string
	require.NoError(t, val.Get(&candidate))
	assert.Equal(t, `{"message":"x","score":3}`, candidate)

	val, err = h.env.ExecuteActivity(workflow.ActivityValidate, workflow.ValidateInput{
		Step:      workflow.StepInput{Kind: workflow.StepRubric, Task: "t"},
		Policy:    strict,
		Candidate: candidate,
	})
	require.NoError(t, err)
	var accept bool
	require.NoError(t, val.Get(&accept))
	assert.True(t, accept)
}

func TestPropose_NonJSONIsPermanent(t *testing.T) {
	h := newHarness(t, judgetest.New())
	_, err := h.env.ExecuteActivity(workflow.ActivityPropose, workflow.ProposeInput{
		Policy: workflow.PolicyInput{Kind: consensus.KindStrict},
		Raw:    "not json",
	})
	assert.True(t, appError(t, err).NonRetryable())
}

func TestValidate_UnreadableVoteRejects(t *testing.T) {
	h := newHarness(t, judgetest.New().
		Reply(judge.OpAnalysis, "CATEGORY: \"steak\"").
		Reply(judge.OpEquivalence, "maybe?"))

	val, err := h.env.ExecuteActivity(workflow.ActivityValidate, workflow.ValidateInput{
		Step:      workflow.StepInput{Kind: workflow.StepAnalysis, URL: "http://example.com/bife.jpg"},
		Policy:    workflow.PolicyInput{Kind: consensus.KindNonComparative, Task: "score", Criteria: "same"},
		Candidate: `{"category":"steak","score":1}`,
	})
	require.NoError(t, err)
	var accept bool
	require.NoError(t, val.Get(&accept))
	assert.False(t, accept)
}

func TestValidate_UnknownPolicy(t *testing.T) {
	h := newHarness(t, judgetest.New())
	_, err := h.env.ExecuteActivity(workflow.ActivityValidate, workflow.ValidateInput{Policy: workflow.PolicyInput{Kind: "fuzzy"}})
	appErr := appError(t, err)
	assert.Equal(t, workflow.ErrTypeValidation, appErr.Type())
}

func TestAppendRecord(t *testing.T) {
	h := newHarness(t, judgetest.New())
	rec := domain.NewAnalysisRecord(`{"category":"veggies","score":410}`, domain.Address{}, "", "http://example.com/ensalada.jpg")

	val, err := h.env.ExecuteActivity(workflow.ActivityAppendRecord, rec)
	require.NoError(t, err)
	var ref domain.RecordRef
	require.NoError(t, val.Get(&ref))
	assert.Equal(t, domain.RecordRef{Category: domain.CategoryVeggies, Index: 0}, ref)

	page, err := h.store.Read(context.Background(), domain.CategoryVeggies, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []domain.AnalysisRecord{rec}, page.Records)
}

type brokenPersister struct{}

func (brokenPersister) Persist(context.Context, domain.AnalysisRecord) (domain.RecordRef, error) {
	return domain.RecordRef{}, errors.New("connection reset")
}

func TestAppendRecord_StoreErrorIsRetryable(t *testing.T) {
	acts := worker.NewActivities(pkgactivity.NewBaseActivities(nil), nil, nil, brokenPersister{})
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	worker.RegisterActivities(env, acts)

	_, err := env.ExecuteActivity(workflow.ActivityAppendRecord, domain.AnalysisRecord{})
	appErr := appError(t, err)
	assert.Equal(t, workflow.ErrTypeStore, appErr.Type())
	assert.False(t, appErr.NonRetryable())
}
