package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/lanehall/celebbackend/session"
)

type SessionHandler struct {
	Sessions *session.Manager
}

// SessionResponse is the open edit session plus its current diff against
// the canonical record.
type SessionResponse struct {
	*session.Edit
	ChangedFields []string `json:"changed_fields"`
}

func (sh *SessionHandler) sessionResponse(id uint, edit *session.Edit) SessionResponse {
	changed, err := sh.Sessions.ChangedFields(id)
	if err != nil {
		// the session just existed; a lost race here only costs the diff
		changed = []string{}
	}
	if changed == nil {
		changed = []string{}
	}
	return SessionResponse{Edit: edit, ChangedFields: changed}
}

// StartEdit opens the edit session for a record.
func (sh *SessionHandler) StartEdit(w http.ResponseWriter, r *http.Request) {
	id, err := parseRecordID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid record ID format"})
		return
	}

	edit, err := sh.Sessions.StartEdit(id)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSessionActive):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "Another record is already being edited"})
		case errors.Is(err, session.ErrUnderage):
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "Minors cannot be edited"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Record not found"})
		default:
			log.Printf("Error starting edit for record %d: %v", id, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to start edit session"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, sh.sessionResponse(id, edit))
}

// GetSession returns the staged state for the record being edited.
func (sh *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, err := parseRecordID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid record ID format"})
		return
	}

	edit := sh.Sessions.Active()
	if edit == nil || edit.RecordID != id {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "No edit session for this record"})
		return
	}

	writeJSON(w, http.StatusOK, sh.sessionResponse(id, edit))
}

// StageField stores one typed value in the session. Nothing is validated
// here; validation happens on commit.
func (sh *SessionHandler) StageField(w http.ResponseWriter, r *http.Request) {
	id, err := parseRecordID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid record ID format"})
		return
	}
	field := chi.URLParam(r, "field_name")

	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}

	if err := sh.Sessions.StageChange(id, field, req.Value); err != nil {
		switch {
		case errors.Is(err, session.ErrNotEditing):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "Record is not being edited"})
		case errors.Is(err, session.ErrReadOnlyField):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Field is not editable: " + field})
		default:
			log.Printf("Error staging %s for record %d: %v", field, id, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to stage change"})
		}
		return
	}

	edit := sh.Sessions.Active()
	writeJSON(w, http.StatusOK, sh.sessionResponse(id, edit))
}

// Commit validates the changed fields and merges them into the store.
func (sh *SessionHandler) Commit(w http.ResponseWriter, r *http.Request) {
	id, err := parseRecordID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid record ID format"})
		return
	}

	updated, err := sh.Sessions.Commit(id)
	if err != nil {
		var vErr *session.ValidationError
		switch {
		case errors.As(err, &vErr):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":          "Validation failed",
				"invalid_fields": vErr.Fields,
			})
		case errors.Is(err, session.ErrNotEditing):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "Record is not being edited"})
		default:
			log.Printf("Error committing record %d: %v", id, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to commit changes"})
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Cancel discards the session. Always succeeds, even when nothing is
// being edited.
func (sh *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := parseRecordID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid record ID format"})
		return
	}

	sh.Sessions.Cancel(id)
	writeJSON(w, http.StatusNoContent, nil)
}
