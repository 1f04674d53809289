package rubric_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-gaucho/internal/domain"
	"github.com/ahrav/go-gaucho/internal/rubric"
)

func TestParseResult(t *testing.T) {
	long := strings.Repeat("a", 201)
	exact := strings.Repeat("ñ", 200)

	tests := []struct {
		name    string
		in      string
		want    domain.EvaluationResult
		wantErr error
	}{
		{"valid", `{"score": 85, "message": "¡Qué asado, che!"}`, domain.EvaluationResult{Score: 85, Message: "¡Qué asado, che!"}, nil},
		{"fenced", "```json\n{\"score\": 0, \"message\": \"\"}\n```", domain.EvaluationResult{Score: 0, Message: ""}, nil},
		{"float truncates", `{"score": 99.9, "message": "ok"}`, domain.EvaluationResult{Score: 99, Message: "ok"}, nil},
		{"numeric string", `{"score": " 42 ", "message": "ok"}`, domain.EvaluationResult{Score: 42, Message: "ok"}, nil},
		{"upper bound", `{"score": 100, "message": "ok"}`, domain.EvaluationResult{Score: 100, Message: "ok"}, nil},
		{"200 characters", `{"score": 1, "message": "` + exact + `"}`, domain.EvaluationResult{Score: 1, Message: exact}, nil},
		{"extra fields ignored", `{"score": 7, "message": "ok", "note": "x"}`, domain.EvaluationResult{Score: 7, Message: "ok"}, nil},

		{"negative", `{"score": -1, "message": "ok"}`, domain.EvaluationResult{}, rubric.ErrScoreOutOfRange},
		{"too high", `{"score": 101, "message": "ok"}`, domain.EvaluationResult{}, rubric.ErrScoreOutOfRange},
		{"huge", `{"score": 1e300, "message": "ok"}`, domain.EvaluationResult{}, rubric.ErrScoreOutOfRange},
		{"message too long", `{"score": 50, "message": "` + long + `"}`, domain.EvaluationResult{}, rubric.ErrMessageTooLong},
		{"missing message", `{"score": 50}`, domain.EvaluationResult{}, rubric.ErrMissingField},
		{"missing score", `{"message": "ok"}`, domain.EvaluationResult{}, rubric.ErrMissingField},
		{"not an object", `[85, "ok"]`, domain.EvaluationResult{}, rubric.ErrInvalidResponse},
		{"not json", `score: 85`, domain.EvaluationResult{}, rubric.ErrInvalidResponse},
		{"bool score", `{"score": true, "message": "ok"}`, domain.EvaluationResult{}, rubric.ErrInvalidResponse},
		{"word score", `{"score": "high", "message": "ok"}`, domain.EvaluationResult{}, rubric.ErrInvalidResponse},
		{"message not string", `{"score": 5, "message": 12}`, domain.EvaluationResult{}, rubric.ErrInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rubric.ParseResult(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
