package session

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lanehall/celebbackend/models"
	"github.com/lanehall/celebbackend/realtime"
	"github.com/lanehall/celebbackend/repository"
	"github.com/lanehall/celebbackend/utils"
	"github.com/lanehall/celebbackend/validation"
)

// Record statuses as seen by the list screen.
const (
	StatusViewing = "viewing"
	StatusEditing = "editing"
)

// DefaultAdultAge is the minimum computed age required to edit a record.
const DefaultAdultAge = 18

var (
	// ErrSessionActive is returned when a second edit session is requested
	// while one is still open. Only one record is editable at a time.
	ErrSessionActive = errors.New("another record is already being edited")
	// ErrNotEditing is returned when an edit operation targets a record
	// that has no open session.
	ErrNotEditing = errors.New("record is not being edited")
	// ErrUnderage is returned when the record's computed age is below the
	// adult threshold. Minors cannot be edited.
	ErrUnderage = errors.New("record is under the adult age")
	// ErrReadOnlyField is returned when staging targets a field outside
	// the editable set.
	ErrReadOnlyField = errors.New("field is not editable")
)

// ValidationError carries the changed fields that failed their rules on a
// commit attempt. The staged values are kept so the user can correct them.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed for fields: " + strings.Join(e.Fields, ", ")
}

// Notifier pushes roster change events to connected clients.
type Notifier interface {
	Broadcast(eventType string, recordID uint, fields []string)
}

// Edit holds the staged state of the single active edit session. Staged
// starts as a full copy of the canonical record, so "changed" comparisons
// are well-defined for fields the user never touched.
type Edit struct {
	ID       string            `json:"id"`
	RecordID uint              `json:"record_id"`
	Staged   map[string]string `json:"staged"`
}

func (e *Edit) clone() *Edit {
	staged := make(map[string]string, len(e.Staged))
	for k, v := range e.Staged {
		staged[k] = v
	}
	return &Edit{ID: e.ID, RecordID: e.RecordID, Staged: staged}
}

// Manager owns the edit session lifecycle. At most one session exists at
// a time across the whole roster; every mutation of the canonical store
// goes through Commit.
type Manager struct {
	mu       sync.Mutex
	repo     repository.RecordRepositoryInterface
	notifier Notifier
	adultAge int
	now      func() time.Time
	active   *Edit
}

// NewManager creates a session manager over the given record repository.
// notifier may be nil when no realtime hub is attached.
func NewManager(repo repository.RecordRepositoryInterface, notifier Notifier, adultAge int) *Manager {
	if adultAge <= 0 {
		adultAge = DefaultAdultAge
	}
	return &Manager{
		repo:     repo,
		notifier: notifier,
		adultAge: adultAge,
		now:      time.Now,
	}
}

func (m *Manager) broadcast(eventType string, recordID uint, fields []string) {
	if m.notifier != nil {
		m.notifier.Broadcast(eventType, recordID, fields)
	}
}

// StartEdit opens an edit session for the record matching id. It is
// rejected while another session is open, when the record does not exist,
// or when the record's computed age is below the adult threshold.
func (m *Manager) StartEdit(id uint) (*Edit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		return nil, ErrSessionActive
	}

	record, err := m.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if utils.CalculateAge(record.DOB, m.now()) < m.adultAge {
		return nil, ErrUnderage
	}

	m.active = &Edit{
		ID:       uuid.NewString(),
		RecordID: id,
		Staged:   record.Snapshot(),
	}
	m.broadcast(realtime.EventSessionStarted, id, nil)
	return m.active.clone(), nil
}

// StageChange overwrites the staged value for one field. No validation
// happens here; staging always succeeds for editable fields so the client
// can mirror live typing.
func (m *Manager) StageChange(id uint, field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil || m.active.RecordID != id {
		return ErrNotEditing
	}
	if !models.IsEditable(field) {
		return ErrReadOnlyField
	}
	m.active.Staged[field] = value
	return nil
}

// ChangedFields returns the sorted set of fields whose staged value
// differs from the canonical record's current value.
func (m *Manager) ChangedFields(id uint) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil || m.active.RecordID != id {
		return nil, ErrNotEditing
	}
	record, err := m.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return diffStaged(m.active.Staged, record), nil
}

func diffStaged(staged map[string]string, record *models.Record) []string {
	var changed []string
	for field, value := range staged {
		current, ok := record.FieldValue(field)
		if ok && value != current {
			changed = append(changed, field)
		}
	}
	sort.Strings(changed)
	return changed
}

// Commit validates exactly the changed fields and, when all pass, merges
// them into the store and closes the session. A *ValidationError keeps
// the session (and its staged values) open. An empty changed set closes
// the session without touching the store.
func (m *Manager) Commit(id uint) (*models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil || m.active.RecordID != id {
		return nil, ErrNotEditing
	}

	record, err := m.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	changed := diffStaged(m.active.Staged, record)
	if len(changed) == 0 {
		m.active = nil
		m.broadcast(realtime.EventSessionEnded, id, nil)
		return record, nil
	}

	var invalid []string
	for _, field := range changed {
		if !validation.Validate(field, m.active.Staged[field]) {
			invalid = append(invalid, field)
		}
	}
	if len(invalid) > 0 {
		return nil, &ValidationError{Fields: invalid}
	}

	updates := make(map[string]string, len(changed))
	for _, field := range changed {
		updates[field] = m.active.Staged[field]
	}
	updated, err := m.repo.Replace(id, updates)
	if err != nil {
		return nil, err
	}

	m.active = nil
	m.broadcast(realtime.EventRecordUpdated, id, changed)
	m.broadcast(realtime.EventSessionEnded, id, nil)
	return updated, nil
}

// Cancel discards any staged values for the record and returns it to
// viewing. Cancelling a record that is not being edited is a no-op, so
// repeated cancels are safe.
func (m *Manager) Cancel(id uint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil || m.active.RecordID != id {
		return
	}
	m.active = nil
	m.broadcast(realtime.EventSessionEnded, id, nil)
}

// Status reports whether the record matching id is being edited.
func (m *Manager) Status(id uint) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil && m.active.RecordID == id {
		return StatusEditing
	}
	return StatusViewing
}

// Active returns a copy of the open session, or nil when every record is
// in viewing state.
func (m *Manager) Active() *Edit {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return nil
	}
	return m.active.clone()
}
