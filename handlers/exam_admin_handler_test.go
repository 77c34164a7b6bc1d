package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/examsoft/exam_portal/database"
	"github.com/examsoft/exam_portal/models"
	"github.com/google/uuid"
)

func seedAdmin(t *testing.T, email string) models.User {
	t.Helper()
	admin := models.User{FullName: "Admin", Email: email, Password: "hashed", Role: "admin", IsActive: true}
	if err := database.DB.Create(&admin).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return admin
}

func TestCreateExamRequiresAdmin(t *testing.T) {
	app := setupApp(t)
	student := seedStudent(t, "Student", "student@example.com")

	body := map[string]interface{}{
		"title": "Go Basics", "duration_minutes": 30, "total_marks": 10, "pass_mark_percent": 50,
	}
	status, envelope := doJSON(t, app, http.MethodPost, "/api/v1/admin/exams", tokenFor(t, student), body)
	if status != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", status)
	}
	if envelope["code"] != "FORBIDDEN" {
		t.Errorf("code = %v", envelope["code"])
	}
}

func TestCreateExam(t *testing.T) {
	app := setupApp(t)
	admin := seedAdmin(t, "admin@example.com")

	body := map[string]interface{}{
		"title":             "Go Basics",
		"description":       "Introductory quiz",
		"duration_minutes":  45,
		"total_marks":       20,
		"pass_mark_percent": 60,
		"max_attempts":      3,
		"allow_review":      true,
	}
	status, envelope := doJSON(t, app, http.MethodPost, "/api/v1/admin/exams", tokenFor(t, admin), body)
	if status != http.StatusCreated {
		t.Fatalf("status = %d, body %v", status, envelope)
	}
	data := dataOf(t, envelope)
	if data["title"] != "Go Basics" {
		t.Errorf("title = %v", data["title"])
	}
	if data["is_active"] != false {
		t.Error("new exam should default to inactive")
	}
	if data["created_by"] != admin.ID.String() {
		t.Errorf("created_by = %v, want %v", data["created_by"], admin.ID)
	}

	// Validation: zero duration is rejected.
	bad := map[string]interface{}{"title": "Broken", "duration_minutes": 0, "total_marks": 10}
	if status, _ := doJSON(t, app, http.MethodPost, "/api/v1/admin/exams", tokenFor(t, admin), bad); status != http.StatusBadRequest {
		t.Errorf("invalid exam accepted, status = %d", status)
	}
}

func TestCreateExamStoresDisabledFlags(t *testing.T) {
	app := setupApp(t)
	admin := seedAdmin(t, "flags@example.com")

	body := map[string]interface{}{
		"title":             "No Review",
		"duration_minutes":  10,
		"total_marks":       5,
		"pass_mark_percent": 50,
		"allow_review":      false,
	}
	status, envelope := doJSON(t, app, http.MethodPost, "/api/v1/admin/exams", tokenFor(t, admin), body)
	if status != http.StatusCreated {
		t.Fatalf("status = %d, body %v", status, envelope)
	}
	examID := dataOf(t, envelope)["id"].(string)

	var stored models.Exam
	if err := database.DB.First(&stored, "id = ?", examID).Error; err != nil {
		t.Fatalf("load exam: %v", err)
	}
	if stored.AllowReview {
		t.Error("allow_review=false stored as true")
	}
	if stored.IsActive {
		t.Error("is_active=false stored as true")
	}
}

func TestCreateQuestionStoresInactive(t *testing.T) {
	app := setupApp(t)
	admin := seedAdmin(t, "drafts@example.com")
	exam := seedExam(t, nil)

	body := map[string]interface{}{
		"question_number": 1,
		"prompt":          "Draft question",
		"marks":           1,
		"is_active":       false,
		"options": []map[string]interface{}{
			{"label": "A", "text": "x", "is_correct": true},
			{"label": "B", "text": "y"},
		},
	}
	status, envelope := doJSON(t, app, http.MethodPost, "/api/v1/admin/exams/"+exam.ID.String()+"/questions", tokenFor(t, admin), body)
	if status != http.StatusCreated {
		t.Fatalf("status = %d, body %v", status, envelope)
	}
	questionID := dataOf(t, envelope)["id"].(string)

	var stored models.Question
	if err := database.DB.First(&stored, "id = ?", questionID).Error; err != nil {
		t.Fatalf("load question: %v", err)
	}
	if stored.IsActive {
		t.Error("is_active=false stored as true")
	}
}

func TestCreateQuestionInvariants(t *testing.T) {
	app := setupApp(t)
	admin := seedAdmin(t, "author@example.com")
	token := tokenFor(t, admin)
	exam := seedExam(t, nil)
	path := "/api/v1/admin/exams/" + exam.ID.String() + "/questions"

	valid := map[string]interface{}{
		"question_number": 1,
		"prompt":          "What does TCP stand for?",
		"marks":           2,
		"is_active":       true,
		"options": []map[string]interface{}{
			{"label": "A", "text": "Transmission Control Protocol", "is_correct": true, "display_order": 1},
			{"label": "B", "text": "Transfer Control Program", "display_order": 2},
		},
	}

	status, envelope := doJSON(t, app, http.MethodPost, path, token, valid)
	if status != http.StatusCreated {
		t.Fatalf("status = %d, body %v", status, envelope)
	}
	options := dataOf(t, envelope)["options"].([]interface{})
	if len(options) != 2 {
		t.Fatalf("got %d options, want 2", len(options))
	}
	// The admin view does expose correctness.
	if options[0].(map[string]interface{})["is_correct"] != true {
		t.Error("admin view hides is_correct")
	}

	t.Run("duplicate question number", func(t *testing.T) {
		status, envelope := doJSON(t, app, http.MethodPost, path, token, valid)
		if status != http.StatusBadRequest {
			t.Fatalf("status = %d", status)
		}
		if envelope["error"] != "Question number already used in this exam" {
			t.Errorf("error = %v", envelope["error"])
		}
	})

	t.Run("no correct option", func(t *testing.T) {
		body := map[string]interface{}{
			"question_number": 2, "prompt": "Broken", "marks": 1,
			"options": []map[string]interface{}{
				{"label": "A", "text": "x"}, {"label": "B", "text": "y"},
			},
		}
		status, envelope := doJSON(t, app, http.MethodPost, path, token, body)
		if status != http.StatusBadRequest {
			t.Fatalf("status = %d", status)
		}
		if envelope["error"] != "Exactly one option must be marked correct" {
			t.Errorf("error = %v", envelope["error"])
		}
	})

	t.Run("two correct options", func(t *testing.T) {
		body := map[string]interface{}{
			"question_number": 2, "prompt": "Broken", "marks": 1,
			"options": []map[string]interface{}{
				{"label": "A", "text": "x", "is_correct": true},
				{"label": "B", "text": "y", "is_correct": true},
			},
		}
		if status, _ := doJSON(t, app, http.MethodPost, path, token, body); status != http.StatusBadRequest {
			t.Errorf("status = %d", status)
		}
	})

	t.Run("single option", func(t *testing.T) {
		body := map[string]interface{}{
			"question_number": 2, "prompt": "Broken", "marks": 1,
			"options": []map[string]interface{}{{"label": "A", "text": "x", "is_correct": true}},
		}
		if status, _ := doJSON(t, app, http.MethodPost, path, token, body); status != http.StatusBadRequest {
			t.Errorf("status = %d", status)
		}
	})
}

func TestUpdateQuestionReplacesOptions(t *testing.T) {
	app := setupApp(t)
	admin := seedAdmin(t, "editor@example.com")
	token := tokenFor(t, admin)
	exam := seedExam(t, nil)
	q, _, _ := seedQuestion(t, exam.ID, 1, 1)

	body := map[string]interface{}{
		"question_number": 1,
		"prompt":          "Rewritten prompt",
		"marks":           5,
		"is_active":       true,
		"options": []map[string]interface{}{
			{"label": "A", "text": "New right", "is_correct": true, "display_order": 1},
			{"label": "B", "text": "New wrong 1", "display_order": 2},
			{"label": "C", "text": "New wrong 2", "display_order": 3},
		},
	}
	status, envelope := doJSON(t, app, http.MethodPut, "/api/v1/admin/questions/"+q.ID.String(), token, body)
	if status != http.StatusOK {
		t.Fatalf("status = %d, body %v", status, envelope)
	}
	data := dataOf(t, envelope)
	if data["prompt"] != "Rewritten prompt" || data["marks"].(float64) != 5 {
		t.Errorf("question not updated: %v", data)
	}

	var count int64
	if err := database.DB.Model(&models.Option{}).Where("question_id = ?", q.ID).Count(&count).Error; err != nil {
		t.Fatalf("count options: %v", err)
	}
	if count != 3 {
		t.Errorf("option rows = %d, want 3 (old set replaced)", count)
	}
}

func TestDeleteExamRefusedWithAttempts(t *testing.T) {
	app := setupApp(t)
	admin := seedAdmin(t, "cleaner@example.com")
	user := seedStudent(t, "Taken", "taken@example.com")
	exam := seedExam(t, nil)

	attempt := models.Attempt{
		ExamID: exam.ID, UserID: user.ID, Status: models.AttemptCompleted,
		StartedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := database.DB.Create(&attempt).Error; err != nil {
		t.Fatalf("seed attempt: %v", err)
	}

	status, envelope := doJSON(t, app, http.MethodDelete, "/api/v1/admin/exams/"+exam.ID.String(), tokenFor(t, admin), nil)
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if envelope["error"] != "Cannot delete an exam that has attempts; deactivate it instead" {
		t.Errorf("error = %v", envelope["error"])
	}
}

func TestDeleteExamCascades(t *testing.T) {
	app := setupApp(t)
	admin := seedAdmin(t, "gc@example.com")
	exam := seedExam(t, nil)
	q, _, _ := seedQuestion(t, exam.ID, 1, 1)

	req, err := http.NewRequest(http.MethodDelete, "/api/v1/admin/exams/"+exam.ID.String(), nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, admin))
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}

	for _, check := range []struct {
		name  string
		model interface{}
		where string
		arg   uuid.UUID
	}{
		{"exam", &models.Exam{}, "id = ?", exam.ID},
		{"questions", &models.Question{}, "exam_id = ?", exam.ID},
		{"options", &models.Option{}, "question_id = ?", q.ID},
	} {
		var count int64
		if err := database.DB.Model(check.model).Where(check.where, check.arg).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", check.name, err)
		}
		if count != 0 {
			t.Errorf("%s rows left after delete: %d", check.name, count)
		}
	}
}

func TestListActiveExamsHidesInactive(t *testing.T) {
	app := setupApp(t)
	user := seedStudent(t, "Browser", "browser@example.com")
	seedExam(t, nil)
	seedExam(t, func(e *models.Exam) { e.IsActive = false })

	status, envelope := doJSON(t, app, http.MethodGet, "/api/v1/exams", tokenFor(t, user), nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	exams := envelope["data"].([]interface{})
	if len(exams) != 1 {
		t.Errorf("catalogue lists %d exams, want 1", len(exams))
	}
}
