package services

import (
	"testing"

	"github.com/examsoft/exam_portal/models"
	"github.com/google/uuid"
)

type questionSpec struct {
	marks       int
	optionCount int
	correctIdx  int
}

func buildQuestions(specs []questionSpec) []models.Question {
	questions := make([]models.Question, len(specs))
	for i, spec := range specs {
		q := models.Question{ID: uuid.New(), QuestionNumber: i + 1, Marks: spec.marks}
		for j := 0; j < spec.optionCount; j++ {
			q.Options = append(q.Options, models.Option{
				ID:         uuid.New(),
				QuestionID: q.ID,
				IsCorrect:  j == spec.correctIdx,
			})
		}
		questions[i] = q
	}
	return questions
}

func correctOption(q models.Question) uuid.UUID {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o.ID
		}
	}
	return uuid.Nil
}

func wrongOption(q models.Question) uuid.UUID {
	for _, o := range q.Options {
		if !o.IsCorrect {
			return o.ID
		}
	}
	return uuid.Nil
}

func TestGradeAttemptAllOrNothingMarks(t *testing.T) {
	questions := buildQuestions([]questionSpec{
		{marks: 2, optionCount: 4, correctIdx: 0},
		{marks: 3, optionCount: 4, correctIdx: 1},
		{marks: 5, optionCount: 4, correctIdx: 2},
	})

	selections := map[uuid.UUID]uuid.UUID{
		questions[0].ID: correctOption(questions[0]),
		questions[1].ID: wrongOption(questions[1]),
		// question 3 left unanswered
	}

	result := GradeAttempt(questions, selections)

	if result.Score != 2 {
		t.Fatalf("score = %d, want 2", result.Score)
	}
	if result.QuestionsTotal != 3 {
		t.Errorf("questions_total = %d, want 3", result.QuestionsTotal)
	}
	if result.QuestionsAnswered != 2 {
		t.Errorf("questions_answered = %d, want 2", result.QuestionsAnswered)
	}
	if result.QuestionsCorrect != 1 {
		t.Errorf("questions_correct = %d, want 1", result.QuestionsCorrect)
	}

	for i, graded := range result.Answers {
		if graded.MarksEarned != 0 && graded.MarksEarned != questions[i].Marks {
			t.Errorf("question %d: marks_earned = %d, want 0 or %d", i+1, graded.MarksEarned, questions[i].Marks)
		}
	}

	// Wrong selection earns nothing but records the choice.
	wrong := result.Answers[1]
	if wrong.IsCorrect || wrong.MarksEarned != 0 {
		t.Errorf("wrong answer graded as is_correct=%v marks=%d", wrong.IsCorrect, wrong.MarksEarned)
	}
	if wrong.SelectedOptionID == nil {
		t.Error("wrong answer lost its selected option")
	}

	// No selection is a non-answer, never an error.
	blank := result.Answers[2]
	if blank.SelectedOptionID != nil {
		t.Errorf("unanswered question has selected_option_id %v", blank.SelectedOptionID)
	}
	if blank.IsCorrect || blank.MarksEarned != 0 {
		t.Errorf("unanswered question graded as is_correct=%v marks=%d", blank.IsCorrect, blank.MarksEarned)
	}
}

func TestGradeAttemptScoreNeverExceedsTotal(t *testing.T) {
	questions := buildQuestions([]questionSpec{
		{marks: 40, optionCount: 2, correctIdx: 0},
		{marks: 60, optionCount: 2, correctIdx: 1},
	})

	selections := map[uuid.UUID]uuid.UUID{
		questions[0].ID: correctOption(questions[0]),
		questions[1].ID: correctOption(questions[1]),
	}

	result := GradeAttempt(questions, selections)
	if result.Score != 100 {
		t.Fatalf("score = %d, want 100", result.Score)
	}
	if result.QuestionsCorrect != 2 {
		t.Errorf("questions_correct = %d, want 2", result.QuestionsCorrect)
	}
}

func TestGradeAttemptIgnoresUnknownQuestionIDs(t *testing.T) {
	questions := buildQuestions([]questionSpec{{marks: 1, optionCount: 2, correctIdx: 0}})

	selections := map[uuid.UUID]uuid.UUID{
		uuid.New(): uuid.New(), // not part of the exam
	}

	result := GradeAttempt(questions, selections)
	if result.Score != 0 || result.QuestionsAnswered != 0 {
		t.Fatalf("score = %d answered = %d, want 0 and 0", result.Score, result.QuestionsAnswered)
	}
}

func TestPassMark(t *testing.T) {
	tests := []struct {
		percent int
		total   int
		want    int
	}{
		{60, 100, 60},
		{50, 10, 5},
		{33, 10, 4},  // ceil(3.3)
		{67, 3, 3},   // ceil(2.01)
		{100, 7, 7},
		{0, 100, 0},
	}
	for _, tt := range tests {
		if got := PassMark(tt.percent, tt.total); got != tt.want {
			t.Errorf("PassMark(%d, %d) = %d, want %d", tt.percent, tt.total, got, tt.want)
		}
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		score int
		total int
		want  int
	}{
		{59, 100, 59},
		{60, 100, 60},
		{1, 3, 33},  // round(33.3)
		{2, 3, 67},  // round(66.7)
		{0, 100, 0},
		{5, 0, 0}, // degenerate exam without marks
	}
	for _, tt := range tests {
		if got := Percentage(tt.score, tt.total); got != tt.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tt.score, tt.total, got, tt.want)
		}
	}
}

// Worked example: total 100, pass mark 60%. 59 fails, 60 passes.
func TestPassBoundary(t *testing.T) {
	passMark := PassMark(60, 100)
	if passMark != 60 {
		t.Fatalf("pass mark = %d, want 60", passMark)
	}
	if 59 >= passMark {
		t.Error("59 should not pass")
	}
	if !(60 >= passMark) {
		t.Error("60 should pass")
	}
	if Percentage(59, 100) != 59 || Percentage(60, 100) != 60 {
		t.Error("percentages at the boundary are off")
	}
}
