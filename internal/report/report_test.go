package report

import (
	"testing"

	"cogscreen/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(language.English)
	require.NoError(t, err)
	return r
}

func TestAttentionReport(t *testing.T) {
	r := newRenderer(t)

	doc, err := r.Attention(&models.AttentionResult{
		HitRate:               50,
		Hits:                  5,
		TotalTargets:          10,
		Misses:                5,
		AverageReactionTimeMs: 600,
		Indicator:             45,
	})
	require.NoError(t, err)
	assert.Equal(t, models.KindAttention, doc.Kind)
	assert.Equal(t, "Attention Assessment", doc.Title)

	md := doc.Markdown
	assert.Contains(t, md, "- Hit Rate: 5/10 (50.0%)")
	assert.Contains(t, md, "- Misses: 5")
	assert.Contains(t, md, "- Average Reaction Time: 600ms")
	assert.Contains(t, md, "Exhibited challenges with sustained attention tasks")
	assert.Contains(t, md, "Reaction time is within the average range")
	assert.Contains(t, md, "Moderate error rate suggests developing attention control")
	assert.Contains(t, md, "Consider attention training exercises")
	assert.Contains(t, md, "Activities to improve processing speed may be beneficial")
	assert.Contains(t, md, "- Value: 45.0 (moderate)")
}

func TestAttentionReportStrongResult(t *testing.T) {
	r := newRenderer(t)

	doc, err := r.Attention(&models.AttentionResult{
		HitRate:               100,
		Hits:                  10,
		TotalTargets:          10,
		AverageReactionTimeMs: 200,
		Indicator:             10,
	})
	require.NoError(t, err)
	md := doc.Markdown
	assert.Contains(t, md, "Demonstrated excellent sustained attention")
	assert.Contains(t, md, "Reaction time is faster than the average range")
	assert.Contains(t, md, "Low error rate suggests good attention control")
	assert.Contains(t, md, "Processing speed appears adequate")
	assert.Contains(t, md, "- Value: 10.0 (low)")
}

func TestMemoryReportBands(t *testing.T) {
	r := newRenderer(t)

	cases := []struct {
		accuracy int
		want     string
	}{
		{100, "Strong short-term memory performance"},
		{80, "Strong short-term memory performance"},
		{60, "Average short-term memory performance"},
		{40, "Below average short-term memory performance"},
	}
	for _, tc := range cases {
		doc, err := r.Memory(&models.MemoryResult{Correct: tc.accuracy / 20, Total: 5, Accuracy: tc.accuracy, Indicator: 10})
		require.NoError(t, err)
		assert.Contains(t, doc.Markdown, tc.want, "accuracy %d", tc.accuracy)
	}
}

func TestProblemSolvingReport(t *testing.T) {
	r := newRenderer(t)

	doc, err := r.ProblemSolving(&models.ProblemSolvingResult{
		CorrectPatterns: 3,
		TotalPatterns:   5,
		SuccessRate:     60,
		AverageTimeSec:  19.5,
		ErrorRate:       0.4,
		Indicator:       36,
	})
	require.NoError(t, err)
	md := doc.Markdown
	assert.Contains(t, md, "- Success Rate: 3/5 (60.0%)")
	assert.Contains(t, md, "- Average Time Per Problem: 19.5 seconds")
	assert.Contains(t, md, "- Error Rate: 40.0%")
	assert.Contains(t, md, "Exhibited challenges with complex problem solving tasks")
	assert.Contains(t, md, "Focus on developing processing speed for complex problems")
	assert.Contains(t, md, "Practice with step-by-step problem solving strategies recommended")
	assert.Contains(t, md, "(moderate)")
}

func TestHandwritingAndSpeechReports(t *testing.T) {
	r := newRenderer(t)

	doc, err := r.Handwriting(&models.HandwritingResult{Percent: 57, Detected: true})
	require.NoError(t, err)
	assert.Contains(t, doc.Markdown, "- Indicator: 57%")
	assert.Contains(t, doc.Markdown, "Possible dyslexia detected")

	doc, err = r.Speech(&models.SpeechResult{FluencyScore: 9})
	require.NoError(t, err)
	assert.Contains(t, doc.Markdown, "Overall fluency score: 9/10")
	assert.Contains(t, doc.Markdown, "Speech rate: Appropriate")
	assert.Contains(t, doc.Markdown, "No specific phonological interventions needed")

	doc, err = r.Speech(&models.SpeechResult{FluencyScore: 7})
	require.NoError(t, err)
	assert.Contains(t, doc.Markdown, "Several hesitations detected")
	assert.Contains(t, doc.Markdown, "Further assessment by a speech-language professional recommended")
}

func TestNilResult(t *testing.T) {
	r := newRenderer(t)
	_, err := r.Memory(nil)
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestForKind(t *testing.T) {
	r := newRenderer(t)
	res := models.Results{Speech: &models.SpeechResult{FluencyScore: 8}}

	doc, err := r.For(models.KindSpeech, res)
	require.NoError(t, err)
	assert.Equal(t, "Speech Evaluation", doc.Title)

	_, err = r.For(models.KindMemory, res)
	assert.ErrorIs(t, err, ErrNoResult)

	_, err = r.For("typing", res)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestHTMLAndTerminal(t *testing.T) {
	r := newRenderer(t)
	doc, err := r.Speech(&models.SpeechResult{FluencyScore: 8})
	require.NoError(t, err)

	html, err := HTML(doc)
	require.NoError(t, err)
	assert.Contains(t, html, "<h2>Speech Evaluation Results</h2>")
	assert.Contains(t, html, "<li>Overall fluency score: 8/10</li>")

	out, err := Terminal(doc, 60)
	require.NoError(t, err)
	assert.Contains(t, out, "Speech Evaluation Results")
}
