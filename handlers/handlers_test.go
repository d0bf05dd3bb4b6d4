package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lanehall/celebbackend/models"
	"github.com/lanehall/celebbackend/repository"
	"github.com/lanehall/celebbackend/session"
	"github.com/lanehall/celebbackend/utils"
)

var testDBSeq atomic.Int64

func minorDOB() string {
	return time.Now().AddDate(-10, 0, 0).Format(utils.DOBLayout)
}

func newTestRouter(t *testing.T) (*chi.Mux, *repository.RecordRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:handlertest%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Record{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	records := []models.Record{
		{ID: 1, First: "Jo", Last: "Smith", DOB: "1990-01-01", Gender: "Male", Country: "USA", Description: "A public figure.", Position: 1},
		{ID: 2, First: "Ann", Last: "Jones", DOB: "1985-05-20", Gender: "Female", Country: "Canada", Description: "A famous novelist.", Position: 2},
		{ID: 3, First: "Max", Last: "Lee", DOB: minorDOB(), Gender: "Male", Country: "Korea", Description: "A young prodigy.", Position: 3},
	}
	if err := db.Create(&records).Error; err != nil {
		t.Fatalf("failed to seed test records: %v", err)
	}

	repo := repository.NewRecordRepository(db)
	sessions := session.NewManager(repo, nil, session.DefaultAdultAge)
	deletions := session.NewDeletionWorkflow(repo, nil)

	recordHandler := &RecordHandler{Repo: repo, Sessions: sessions}
	sessionHandler := &SessionHandler{Sessions: sessions}
	deletionHandler := &DeletionHandler{Deletions: deletions}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/genders", recordHandler.ListGenders)
		r.Route("/records", func(r chi.Router) {
			r.Get("/", recordHandler.ListRecords)
			r.Route("/{record_id}", func(r chi.Router) {
				r.Get("/", recordHandler.GetRecord)
				r.Post("/edit", sessionHandler.StartEdit)
				r.Get("/edit", sessionHandler.GetSession)
				r.Put("/fields/{field_name}", sessionHandler.StageField)
				r.Post("/commit", sessionHandler.Commit)
				r.Post("/cancel", sessionHandler.Cancel)
				r.Post("/delete-request", deletionHandler.RequestDelete)
			})
		})
		r.Route("/deletion", func(r chi.Router) {
			r.Get("/", deletionHandler.GetDeletion)
			r.Post("/confirm", deletionHandler.ConfirmDelete)
			r.Post("/cancel", deletionHandler.CancelDelete)
		})
	})
	return r, repo
}

func doRequest(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListRecords(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, "GET", "/api/records", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var got []RecordResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 || got[2].ID != 3 {
		t.Errorf("expected seed order, got %v", got)
	}
	if got[0].Status != session.StatusViewing {
		t.Errorf("expected viewing status, got %q", got[0].Status)
	}
	if got[0].Age < 35 {
		t.Errorf("expected computed age for record 1, got %d", got[0].Age)
	}
}

func TestListRecordsSearch(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, "GET", "/api/records?q=jo", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got []RecordResponse
	json.Unmarshal(w.Body.Bytes(), &got)
	// "Jo Smith" and "Ann Jones" both contain "jo"
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("expected records 1 and 2 in order, got %v", got)
	}
}

func TestListRecordsNameSort(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, "GET", "/api/records?sort=name", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got []RecordResponse
	json.Unmarshal(w.Body.Bytes(), &got)
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	// Ann Jones, Jo Smith, Max Lee
	if got[0].ID != 2 || got[1].ID != 1 || got[2].ID != 3 {
		t.Errorf("expected name order [2 1 3], got [%d %d %d]", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestGetRecordNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, "GET", "/api/records/99", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}

	w = doRequest(t, r, "GET", "/api/records/not-a-number", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestEditLifecycleOverHTTP(t *testing.T) {
	r, repo := newTestRouter(t)

	// start
	w := doRequest(t, r, "POST", "/api/records/1/edit", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var started SessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &started); err != nil {
		t.Fatalf("failed to decode session: %v", err)
	}
	if started.RecordID != 1 || started.ID == "" {
		t.Errorf("unexpected session payload: %+v", started)
	}
	if len(started.ChangedFields) != 0 {
		t.Errorf("fresh session should have no changed fields, got %v", started.ChangedFields)
	}

	// second session is rejected
	w = doRequest(t, r, "POST", "/api/records/2/edit", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 for a second session, got %d", w.Code)
	}

	// stage an invalid value and commit
	w = doRequest(t, r, "PUT", "/api/records/1/fields/last", map[string]string{"value": ""})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 staging, got %d: %s", w.Code, w.Body.String())
	}
	w = doRequest(t, r, "POST", "/api/records/1/commit", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	var failure struct {
		InvalidFields []string `json:"invalid_fields"`
	}
	json.Unmarshal(w.Body.Bytes(), &failure)
	if len(failure.InvalidFields) != 1 || failure.InvalidFields[0] != "last" {
		t.Errorf("expected invalid_fields [last], got %v", failure.InvalidFields)
	}
	if rec, _ := repo.GetByID(1); rec.Last != "Smith" {
		t.Errorf("store must be unchanged after a rejected commit, got %q", rec.Last)
	}

	// correct it and commit for real
	w = doRequest(t, r, "PUT", "/api/records/1/fields/last", map[string]string{"value": "Smythe"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 staging, got %d", w.Code)
	}
	w = doRequest(t, r, "POST", "/api/records/1/commit", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 commit, got %d: %s", w.Code, w.Body.String())
	}
	if rec, _ := repo.GetByID(1); rec.Last != "Smythe" {
		t.Errorf("expected committed value, got %q", rec.Last)
	}

	// session is closed now
	w = doRequest(t, r, "GET", "/api/records/1/edit", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after commit, got %d", w.Code)
	}
}

func TestStartEditMinorForbidden(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, "POST", "/api/records/3/edit", nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for a minor, got %d", w.Code)
	}
}

func TestStageReadOnlyFieldRejected(t *testing.T) {
	r, _ := newTestRouter(t)

	doRequest(t, r, "POST", "/api/records/1/edit", nil)
	w := doRequest(t, r, "PUT", "/api/records/1/fields/email", map[string]string{"value": "x@example.com"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a read-only field, got %d", w.Code)
	}
}

func TestCancelIsAlwaysSafe(t *testing.T) {
	r, _ := newTestRouter(t)

	// cancel with no session at all
	w := doRequest(t, r, "POST", "/api/records/1/cancel", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}

	doRequest(t, r, "POST", "/api/records/1/edit", nil)
	doRequest(t, r, "PUT", "/api/records/1/fields/first", map[string]string{"value": "Joe"})
	w = doRequest(t, r, "POST", "/api/records/1/cancel", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	w = doRequest(t, r, "POST", "/api/records/1/cancel", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("repeated cancel must stay 204, got %d", w.Code)
	}
}

func TestDeletionFlowOverHTTP(t *testing.T) {
	r, repo := newTestRouter(t)

	// request then cancel keeps the record
	w := doRequest(t, r, "POST", "/api/records/1/delete-request", nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	w = doRequest(t, r, "GET", "/api/deletion", nil)
	var state map[string]bool
	json.Unmarshal(w.Body.Bytes(), &state)
	if !state["pending"] {
		t.Errorf("expected pending deletion")
	}
	doRequest(t, r, "POST", "/api/deletion/cancel", nil)
	if _, err := repo.GetByID(1); err != nil {
		t.Errorf("record 1 must survive a cancelled deletion: %v", err)
	}

	// request then confirm removes it
	doRequest(t, r, "POST", "/api/records/1/delete-request", nil)
	w = doRequest(t, r, "POST", "/api/deletion/confirm", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if _, err := repo.GetByID(1); err == nil {
		t.Errorf("record 1 should be gone")
	}

	// confirm with nothing pending is a no-op
	w = doRequest(t, r, "POST", "/api/deletion/confirm", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 no-op, got %d", w.Code)
	}
}

func TestListGenders(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, "GET", "/api/genders", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var genders []string
	json.Unmarshal(w.Body.Bytes(), &genders)
	if len(genders) == 0 {
		t.Errorf("expected gender options, got none")
	}
}
