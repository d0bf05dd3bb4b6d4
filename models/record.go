package models

// Record represents one celebrity entry using GORM.
// It corresponds to the 'celebrities' table.
type Record struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	First       string `gorm:"not null" json:"first"`
	Last        string `gorm:"not null" json:"last"`
	DOB         string `gorm:"column:dob" json:"dob"` // YYYY-MM-DD
	Gender      string `json:"gender"`
	Email       string `json:"email"`
	Picture     string `json:"picture"`
	Country     string `json:"country"`
	Description string `json:"description"`
	Position    int    `gorm:"not null;index" json:"-"` // seed file order, drives list order
}

// TableName explicitly sets the table name for GORM.
func (Record) TableName() string {
	return "celebrities"
}

// EditableFields lists the fields an edit session may stage.
// Email and picture are read-only in this system and id is identity,
// so none of them appear here.
var EditableFields = []string{"first", "last", "dob", "gender", "country", "description"}

// IsEditable reports whether field can be staged in an edit session.
func IsEditable(field string) bool {
	for _, f := range EditableFields {
		if f == field {
			return true
		}
	}
	return false
}

// FieldValue returns the current value of a named editable field.
func (r *Record) FieldValue(field string) (string, bool) {
	switch field {
	case "first":
		return r.First, true
	case "last":
		return r.Last, true
	case "dob":
		return r.DOB, true
	case "gender":
		return r.Gender, true
	case "country":
		return r.Country, true
	case "description":
		return r.Description, true
	default:
		return "", false
	}
}

// Snapshot copies every editable field into a map. Edit sessions stage
// against this copy so the canonical record is never aliased.
func (r *Record) Snapshot() map[string]string {
	snap := make(map[string]string, len(EditableFields))
	for _, f := range EditableFields {
		v, _ := r.FieldValue(f)
		snap[f] = v
	}
	return snap
}
