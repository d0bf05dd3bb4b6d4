package handlers

import (
	"errors"
	"log"
	"net/http"

	"gorm.io/gorm"

	"github.com/lanehall/celebbackend/session"
)

type DeletionHandler struct {
	Deletions *session.DeletionWorkflow
}

// RequestDelete arms the confirmation prompt for a record.
func (dh *DeletionHandler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseRecordID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid record ID format"})
		return
	}

	if err := dh.Deletions.Request(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Record not found"})
		} else {
			log.Printf("Error requesting deletion of record %d: %v", id, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to request deletion"})
		}
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]bool{"pending": true})
}

// GetDeletion tells the prompt collaborator whether to display. It never
// reveals which record is targeted.
func (dh *DeletionHandler) GetDeletion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"pending": dh.Deletions.Pending()})
}

// ConfirmDelete removes the pending target and dismisses the prompt.
func (dh *DeletionHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	if err := dh.Deletions.Confirm(); err != nil {
		log.Printf("Error confirming deletion: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete record"})
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// CancelDelete dismisses the prompt without deleting anything.
func (dh *DeletionHandler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	dh.Deletions.Cancel()
	writeJSON(w, http.StatusNoContent, nil)
}
