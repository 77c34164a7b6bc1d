package services

import (
	"math"

	"github.com/examsoft/exam_portal/models"
	"github.com/google/uuid"
)

type GradedAnswer struct {
	QuestionID       uuid.UUID
	SelectedOptionID *uuid.UUID
	CorrectOptionID  uuid.UUID
	IsCorrect        bool
	MarksEarned      int
}

type GradeResult struct {
	Score             int
	QuestionsTotal    int
	QuestionsAnswered int
	QuestionsCorrect  int
	Answers           []GradedAnswer
}

// GradeAttempt scores a set of selections against the exam's questions.
// An absent selection is a non-answer worth zero marks, never an error.
// Marks are all-or-nothing per question; there is no partial credit.
func GradeAttempt(questions []models.Question, selections map[uuid.UUID]uuid.UUID) GradeResult {
	result := GradeResult{
		QuestionsTotal: len(questions),
		Answers:        make([]GradedAnswer, 0, len(questions)),
	}

	for _, q := range questions {
		graded := GradedAnswer{QuestionID: q.ID}
		for _, o := range q.Options {
			if o.IsCorrect {
				graded.CorrectOptionID = o.ID
				break
			}
		}

		if selected, ok := selections[q.ID]; ok {
			sel := selected
			graded.SelectedOptionID = &sel
			result.QuestionsAnswered++
			if selected == graded.CorrectOptionID {
				graded.IsCorrect = true
				graded.MarksEarned = q.Marks
				result.QuestionsCorrect++
			}
		}

		result.Score += graded.MarksEarned
		result.Answers = append(result.Answers, graded)
	}

	return result
}

// PassMark converts the exam's percentage threshold into absolute marks,
// rounding up so a fractional threshold is never passable from below.
func PassMark(passMarkPercent, totalMarks int) int {
	return int(math.Ceil(float64(passMarkPercent) / 100 * float64(totalMarks)))
}

func Percentage(score, totalMarks int) int {
	if totalMarks == 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(totalMarks) * 100))
}
