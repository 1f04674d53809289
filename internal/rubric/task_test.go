package rubric_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ahrav/go-gaucho/internal/domain"
	"github.com/ahrav/go-gaucho/internal/rubric"
)

func intPtr(v int) *int { return &v }

func TestPenaltyPercent(t *testing.T) {
	tests := []struct{ q, want int }{
		{0, 50},
		{20, 30},
		{30, 20},
		{40, 10},
		{49, 1},
		{50, 0},
		{100, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rubric.PenaltyPercent(tt.q), "quality %d", tt.q)
	}
	assert.Greater(t, rubric.PenaltyPercent(20), rubric.PenaltyPercent(40), "lower quality is penalized more")
}

func TestQualityAdvisory(t *testing.T) {
	assert.Empty(t, rubric.QualityAdvisory(nil))
	assert.Equal(t, "Image Quality: 0.20 (LOW QUALITY - will reduce score by approximately 30%)", rubric.QualityAdvisory(intPtr(20)))
	assert.Equal(t, "Image Quality: 0.40 (LOW QUALITY - will reduce score by approximately 10%)", rubric.QualityAdvisory(intPtr(40)))
	assert.Equal(t, "Image Quality: 0.50 (acceptable)", rubric.QualityAdvisory(intPtr(50)))
	assert.Equal(t, "Image Quality: 1.00 (acceptable)", rubric.QualityAdvisory(intPtr(100)))
}

func TestBuildTask(t *testing.T) {
	task := rubric.BuildTask(domain.EvaluationRequest{
		Description:  "Asado en La Boca con mate",
		Tags:         []string{"food", "sports"},
		ImageQuality: intPtr(20),
	})
	assert.Contains(t, task, "Description: Asado en La Boca con mate\n")
	assert.Contains(t, task, "Tags: food, sports\n")
	assert.Contains(t, task, "Number of tags: 2\nImage Quality: 0.20 (LOW QUALITY - will reduce score by approximately 30%)\n")
	assert.Contains(t, task, "20% below 0.5")
	assert.NotContains(t, task, "%!")

	bare := rubric.BuildTask(domain.EvaluationRequest{Description: "Una milanesa"})
	assert.Contains(t, bare, "Tags: none\n")
	assert.Contains(t, bare, "Number of tags: 0\n\nInstructions:")
	assert.NotContains(t, bare, "Image Quality:")
}

func TestBuildTaskDeterministic(t *testing.T) {
	req := domain.EvaluationRequest{Description: "Tango en San Telmo 100%", Tags: []string{"culture"}, ImageQuality: intPtr(75)}
	a, b := rubric.BuildTask(req), rubric.BuildTask(req)
	assert.Equal(t, a, b)
	assert.True(t, strings.Contains(a, "Tango en San Telmo 100%"))
}
