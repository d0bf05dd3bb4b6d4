package search

import (
	"strings"

	"github.com/lanehall/celebbackend/models"
)

// Filter returns the records whose full name contains query as a
// case-insensitive substring, preserving the original order. An empty
// query matches everything.
func Filter(records []models.Record, query string) []models.Record {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return records
	}

	matched := make([]models.Record, 0, len(records))
	for _, rec := range records {
		fullName := strings.ToLower(rec.First + " " + rec.Last)
		if strings.Contains(fullName, needle) {
			matched = append(matched, rec)
		}
	}
	return matched
}
