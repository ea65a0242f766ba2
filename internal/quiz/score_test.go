package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atlasedu/quizforge/internal/pipeline"
)

func fourOptions() []string {
	return []string{"A", "B", "C", "D"}
}

func TestScore_AllCorrect(t *testing.T) {
	questions := []pipeline.Question{
		{Prompt: "q1", Options: fourOptions(), CorrectAnswer: 0},
		{Prompt: "q2", Options: fourOptions(), CorrectAnswer: 3},
	}

	result := Score(questions, []Answer{0, 3})

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Scoreable)
	assert.Equal(t, 2, result.Correct)
	assert.Equal(t, 0, result.Incorrect)
	assert.InDelta(t, 100.0, result.Percent, 0.001)
}

func TestScore_MixedOutcomes(t *testing.T) {
	questions := []pipeline.Question{
		{Prompt: "q1", Options: fourOptions(), CorrectAnswer: 1},
		{Prompt: "q2", Options: fourOptions(), CorrectAnswer: 2},
		{Prompt: "q3", Options: fourOptions(), CorrectAnswer: 0},
	}

	result := Score(questions, []Answer{1, 0, Skipped})

	assert.Equal(t, 1, result.Correct)
	assert.Equal(t, 1, result.Incorrect)
	assert.Equal(t, 1, result.Unanswered)
	assert.InDelta(t, 100.0/3, result.Percent, 0.001)

	assert.True(t, result.PerQuestion[0].Correct)
	assert.True(t, result.PerQuestion[1].Answered)
	assert.False(t, result.PerQuestion[1].Correct)
	assert.False(t, result.PerQuestion[2].Answered)
}

func TestScore_OutOfRangeCorrectAnswerIsUnscoreable(t *testing.T) {
	questions := []pipeline.Question{
		{Prompt: "q1", Options: fourOptions(), CorrectAnswer: 7},
		{Prompt: "q2", Options: fourOptions(), CorrectAnswer: -1},
		{Prompt: "q3", Options: fourOptions(), CorrectAnswer: 2},
	}

	result := Score(questions, []Answer{7, 1, 2})

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Scoreable)
	assert.Equal(t, 2, result.Unscoreable)
	assert.Equal(t, 1, result.Correct)
	assert.InDelta(t, 100.0, result.Percent, 0.001)
	assert.False(t, result.PerQuestion[0].Scoreable)
	assert.False(t, result.PerQuestion[1].Scoreable)
}

func TestScore_MissingAnswersCountAsUnanswered(t *testing.T) {
	questions := []pipeline.Question{
		{Prompt: "q1", Options: fourOptions(), CorrectAnswer: 0},
		{Prompt: "q2", Options: fourOptions(), CorrectAnswer: 1},
	}

	result := Score(questions, []Answer{0})

	assert.Equal(t, 1, result.Correct)
	assert.Equal(t, 1, result.Unanswered)
}

func TestScore_ExtraAnswersIgnored(t *testing.T) {
	questions := []pipeline.Question{
		{Prompt: "q1", Options: fourOptions(), CorrectAnswer: 0},
	}

	result := Score(questions, []Answer{0, 1, 2})

	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Correct)
}

func TestScore_NoScoreableQuestionsHasZeroPercent(t *testing.T) {
	questions := []pipeline.Question{
		{Prompt: "q1", Options: fourOptions(), CorrectAnswer: 9},
	}

	result := Score(questions, []Answer{0})

	assert.Equal(t, 0, result.Scoreable)
	assert.Zero(t, result.Percent)
}

func TestScore_EmptyQuiz(t *testing.T) {
	result := Score(nil, nil)
	assert.Zero(t, result.Total)
	assert.Zero(t, result.Percent)
	assert.Empty(t, result.PerQuestion)
}
