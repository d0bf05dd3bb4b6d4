package session

import (
	"errors"
	"testing"

	"gorm.io/gorm"
)

func TestDeletionRequestThenCancel(t *testing.T) {
	repo := newTestRepo(t)
	wf := NewDeletionWorkflow(repo, nil)

	if err := wf.Request(1); err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if !wf.Pending() {
		t.Errorf("prompt should be armed after a request")
	}

	wf.Cancel()
	if wf.Pending() {
		t.Errorf("prompt should be disarmed after cancel")
	}
	if _, err := repo.GetByID(1); err != nil {
		t.Errorf("record 1 must survive a cancelled deletion: %v", err)
	}
}

func TestDeletionRequestThenConfirm(t *testing.T) {
	repo := newTestRepo(t)
	wf := NewDeletionWorkflow(repo, nil)

	if err := wf.Request(1); err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if err := wf.Confirm(); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if wf.Pending() {
		t.Errorf("prompt should be disarmed after confirm")
	}
	if _, err := repo.GetByID(1); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("record 1 should be gone, got %v", err)
	}

	records, err := repo.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	for _, rec := range records {
		if rec.ID == 1 {
			t.Errorf("record 1 still present in list")
		}
	}
}

func TestDeletionConfirmWithoutRequestIsNoOp(t *testing.T) {
	repo := newTestRepo(t)
	wf := NewDeletionWorkflow(repo, nil)

	if err := wf.Confirm(); err != nil {
		t.Errorf("confirm with nothing pending must be a no-op, got %v", err)
	}
	records, err := repo.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(records) != 4 {
		t.Errorf("store must be untouched, got %d records", len(records))
	}
}

func TestDeletionRequestUnknownRecord(t *testing.T) {
	repo := newTestRepo(t)
	wf := NewDeletionWorkflow(repo, nil)

	if err := wf.Request(99); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected gorm.ErrRecordNotFound, got %v", err)
	}
	if wf.Pending() {
		t.Errorf("prompt must not arm for an unknown record")
	}
}

func TestDeletionRetarget(t *testing.T) {
	repo := newTestRepo(t)
	wf := NewDeletionWorkflow(repo, nil)

	if err := wf.Request(1); err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if err := wf.Request(2); err != nil {
		t.Fatalf("second Request failed: %v", err)
	}
	if err := wf.Confirm(); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	if _, err := repo.GetByID(1); err != nil {
		t.Errorf("record 1 must survive, deletion was retargeted: %v", err)
	}
	if _, err := repo.GetByID(2); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("record 2 should be gone, got %v", err)
	}
}
