package essay

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"
	"github.com/stretchr/testify/assert"
)

const sampleFeedback = "This essay shows an authentic voice and a compelling story with excellent details and no grammar issues."

func TestScoreSampleFeedback(t *testing.T) {
	s := Score(sampleFeedback, "<350-word essay>", 350)

	assert.GreaterOrEqual(t, s.Content, 80)
	assert.GreaterOrEqual(t, s.Voice, 80)
	assert.GreaterOrEqual(t, s.Plagiarism, 85)
	// "grammar" is counted as an issue even when negated.
	assert.Equal(t, 40, s.Grammar)
	assert.Equal(t, 50, s.Structure)
	assert.Equal(t, 72, s.Overall)
	assert.Equal(t, 70, s.WordCountScore)
}

func TestScoreDeterministic(t *testing.T) {
	a := Score(sampleFeedback, "essay", 500)
	b := Score(sampleFeedback, "essay", 500)
	assert.Equal(t, a, b)
}

func TestScoreBaselines(t *testing.T) {
	s := Score("", "", 520)
	assert.Equal(t, record.HealthScore{
		Overall:        (30*50 + 20*50 + 15*50 + 15*50 + 20*85 + 50) / 100,
		Content:        50,
		Structure:      50,
		Grammar:        50,
		Voice:          50,
		Plagiarism:     85,
		WordCountScore: 100,
	}, s)
}

func TestScoreClamps(t *testing.T) {
	feedback := "Grammar, spelling, punctuation, typo, error, grammar, spelling and many errors. Needs editing."
	s := Score(feedback, "", 100)
	assert.Equal(t, 0, s.Grammar)

	glowing := "Compelling, answers the prompt well, well-organized with a strong opening, polished, authentic with a unique perspective."
	s = Score(glowing, "", 600)
	for _, v := range []int{s.Content, s.Structure, s.Grammar, s.Voice, s.Plagiarism, s.Overall} {
		assert.GreaterOrEqual(t, v, 0)
		assert.LessOrEqual(t, v, 100)
	}
	assert.Equal(t, 100, s.Content)
	assert.Equal(t, 100, s.Structure)
	assert.Equal(t, 80, s.Grammar)
	assert.Equal(t, 100, s.Voice)
	assert.Equal(t, 100, s.Plagiarism)
}

func TestScoreNegativeMarkers(t *testing.T) {
	s := Score("The story is vague, strays from prompt, disorganized, weak opening, generic.", "", 300)
	assert.Equal(t, 0, s.Content)
	assert.Equal(t, 15, s.Structure)
	assert.Equal(t, 30, s.Voice)
	assert.Equal(t, 75, s.Plagiarism)
}

func TestScoreCopiedOverridesOriginal(t *testing.T) {
	s := Score("Parts look copied although some lines feel original.", "", 500)
	assert.Equal(t, 20, s.Plagiarism)

	s = Score("Parts look copied, but the personal story helps.", "", 500)
	assert.Equal(t, 35, s.Plagiarism)
}

// Negation is not understood; this documents the limitation.
func TestScoreNegationStillMatches(t *testing.T) {
	s := Score("This is not compelling.", "", 500)
	assert.Equal(t, 80, s.Content)
}

func TestOverallIsWeightedSum(t *testing.T) {
	inputs := []string{
		sampleFeedback,
		"disorganized and vague with many errors",
		"polished, flows well, distinct voice, personal story",
		"",
	}
	for _, in := range inputs {
		s := Score(in, "", 450)
		exact := 0.30*float64(s.Content) + 0.20*float64(s.Structure) + 0.15*float64(s.Grammar) + 0.15*float64(s.Voice) + 0.20*float64(s.Plagiarism)
		assert.InDelta(t, exact, float64(s.Overall), 0.5, in)
	}
}

func TestWordCountScore(t *testing.T) {
	cases := map[int]int{0: 40, 249: 40, 250: 70, 399: 70, 400: 100, 650: 100, 651: 80}
	for words, want := range cases {
		assert.Equal(t, want, WordCountScore(words), words)
	}
}

func TestCountAll(t *testing.T) {
	assert.Equal(t, 3, countAll("errors and more error plus typo", DefaultPhraseTable.GrammarIssues))
	assert.Zero(t, countAll("clean", DefaultPhraseTable.GrammarIssues))
}

func TestPromptByNumber(t *testing.T) {
	p, ok := PromptByNumber(7)
	assert.True(t, ok)
	assert.Equal(t, "Topic of your choice", p.Short)

	_, ok = PromptByNumber(0)
	assert.False(t, ok)
	_, ok = PromptByNumber(8)
	assert.False(t, ok)
	assert.Len(t, Prompts(), 7)
}

func TestReviewMessages(t *testing.T) {
	p, _ := PromptByNumber(2)
	msgs := ReviewMessages(p, "My essay body.", 312)

	assert.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Content, "expert college admissions essay reviewer")
	assert.Contains(t, msgs[1].Content, "**Word Count:** 312/650 words")
	assert.Contains(t, msgs[1].Content, p.Text)
	assert.Contains(t, msgs[1].Content, "My essay body.")
	assert.Contains(t, msgs[1].Content, "Revised Opening Sentence")
}
