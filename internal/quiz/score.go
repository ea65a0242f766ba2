// Package quiz holds quiz-level domain logic that is independent of
// generation and persistence.
package quiz

import (
	"github.com/atlasedu/quizforge/internal/pipeline"
)

// Answer is a student's chosen option index for one question, or -1
// when the question was skipped.
type Answer int

// Skipped marks a question the student did not answer.
const Skipped Answer = -1

// ScoreResult summarizes a graded attempt. Questions whose stored
// correct answer index is out of range are unscoreable and excluded
// from the denominator.
type ScoreResult struct {
	Total       int               `json:"total"`
	Scoreable   int               `json:"scoreable"`
	Correct     int               `json:"correct"`
	Incorrect   int               `json:"incorrect"`
	Unanswered  int               `json:"unanswered"`
	Unscoreable int               `json:"unscoreable"`
	Percent     float64           `json:"percent"`
	PerQuestion []QuestionOutcome `json:"perQuestion"`
}

// QuestionOutcome is the graded result of one question.
type QuestionOutcome struct {
	Index     int  `json:"index"`
	Correct   bool `json:"correct"`
	Answered  bool `json:"answered"`
	Scoreable bool `json:"scoreable"`
}

// Score grades a set of answers against the quiz questions. Answers
// beyond the question count are ignored; missing answers count as
// unanswered.
func Score(questions []pipeline.Question, answers []Answer) ScoreResult {
	result := ScoreResult{
		Total:       len(questions),
		PerQuestion: make([]QuestionOutcome, len(questions)),
	}

	for i, q := range questions {
		outcome := QuestionOutcome{Index: i}

		scoreable := q.CorrectAnswer >= 0 && q.CorrectAnswer < len(q.Options)
		outcome.Scoreable = scoreable
		if !scoreable {
			result.Unscoreable++
			result.PerQuestion[i] = outcome
			continue
		}
		result.Scoreable++

		answer := Skipped
		if i < len(answers) {
			answer = answers[i]
		}
		if answer == Skipped {
			result.Unanswered++
			result.PerQuestion[i] = outcome
			continue
		}
		outcome.Answered = true

		if int(answer) == q.CorrectAnswer {
			outcome.Correct = true
			result.Correct++
		} else {
			result.Incorrect++
		}
		result.PerQuestion[i] = outcome
	}

	if result.Scoreable > 0 {
		result.Percent = 100 * float64(result.Correct) / float64(result.Scoreable)
	}
	return result
}
