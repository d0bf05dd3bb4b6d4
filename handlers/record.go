package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/facette/natsort"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/lanehall/celebbackend/models"
	"github.com/lanehall/celebbackend/repository"
	"github.com/lanehall/celebbackend/search"
	"github.com/lanehall/celebbackend/session"
	"github.com/lanehall/celebbackend/utils"
	"github.com/lanehall/celebbackend/validation"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}

func parseRecordID(r *http.Request) (uint, error) {
	idStr := chi.URLParam(r, "record_id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// RecordResponse is the Record model plus the derived fields the list
// screen renders directly.
type RecordResponse struct {
	models.Record
	Age    int    `json:"age"`
	Status string `json:"status"`
}

type RecordHandler struct {
	Repo     repository.RecordRepositoryInterface
	Sessions *session.Manager
}

func (rh *RecordHandler) toResponse(rec models.Record) RecordResponse {
	return RecordResponse{
		Record: rec,
		Age:    utils.CalculateAge(rec.DOB, time.Now()),
		Status: rh.Sessions.Status(rec.ID),
	}
}

// ListRecords returns the roster in seed order, narrowed by ?q= name
// search and optionally reordered by ?sort=name (natural order).
func (rh *RecordHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := rh.Repo.ListAll()
	if err != nil {
		log.Printf("Error listing records: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve records"})
		return
	}

	records = search.Filter(records, r.URL.Query().Get("q"))

	if r.URL.Query().Get("sort") == "name" {
		sort.SliceStable(records, func(i, j int) bool {
			a := records[i].First + " " + records[i].Last
			b := records[j].First + " " + records[j].Last
			return natsort.Compare(a, b)
		})
	}

	responses := make([]RecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, rh.toResponse(rec))
	}
	writeJSON(w, http.StatusOK, responses)
}

// GetRecord returns a single record for the expanded row view.
func (rh *RecordHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := parseRecordID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid record ID format"})
		return
	}

	record, err := rh.Repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Record not found"})
		} else {
			log.Printf("Error getting record %d: %v", id, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve record"})
		}
		return
	}

	writeJSON(w, http.StatusOK, rh.toResponse(*record))
}

// ListGenders returns the accepted gender values so the client can render
// its picker without duplicating the enum.
func (rh *RecordHandler) ListGenders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, validation.GenderOptions)
}
