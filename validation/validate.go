package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/lanehall/celebbackend/utils"
)

// GenderOptions is the fixed set of accepted gender values. Matching is
// case-insensitive.
var GenderOptions = []string{"Male", "Female", "Transgender", "Rather not say", "Other"}

var countryPattern = regexp.MustCompile(`^[A-Za-z\s]*$`)

// Validate reports whether value is acceptable for the named field.
// Every known field requires a non-empty value after trimming; fields
// without a rule of their own are always valid.
func Validate(field, value string) bool {
	return validateAt(field, value, time.Now())
}

func validateAt(field, value string, now time.Time) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}

	switch field {
	case "first", "last":
		return len(strings.TrimSpace(value)) >= 2
	case "country":
		return countryPattern.MatchString(value)
	case "gender":
		for _, opt := range GenderOptions {
			if strings.EqualFold(opt, value) {
				return true
			}
		}
		return false
	case "dob":
		born, err := time.Parse(utils.DOBLayout, value)
		return err == nil && !born.After(now)
	case "description":
		return len(strings.TrimSpace(value)) >= 10
	default:
		return true
	}
}
