package session

import (
	"sync"

	"github.com/lanehall/celebbackend/realtime"
	"github.com/lanehall/celebbackend/repository"
)

// DeletionWorkflow is the two-step confirm-then-delete gate. Requesting a
// deletion arms the confirmation prompt; only Confirm touches the store.
type DeletionWorkflow struct {
	mu       sync.Mutex
	repo     repository.RecordRepositoryInterface
	notifier Notifier
	target   uint
	armed    bool
}

// NewDeletionWorkflow creates a deletion workflow over the given record
// repository. notifier may be nil when no realtime hub is attached.
func NewDeletionWorkflow(repo repository.RecordRepositoryInterface, notifier Notifier) *DeletionWorkflow {
	return &DeletionWorkflow{repo: repo, notifier: notifier}
}

// Request arms the deletion prompt for the record matching id. A second
// request before the first is resolved retargets the prompt, mirroring
// the user tapping delete on a different row.
func (d *DeletionWorkflow) Request(id uint) error {
	if _, err := d.repo.GetByID(id); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.target = id
	d.armed = true
	return nil
}

// Pending reports whether a deletion is awaiting confirmation. The prompt
// collaborator only needs the flag, never the target.
func (d *DeletionWorkflow) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed
}

// Confirm removes the pending target from the store and disarms the
// prompt. Confirming with nothing pending is a no-op.
func (d *DeletionWorkflow) Confirm() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.armed {
		return nil
	}
	id := d.target
	d.target = 0
	d.armed = false

	if err := d.repo.Remove(id); err != nil {
		return err
	}
	if d.notifier != nil {
		d.notifier.Broadcast(realtime.EventRecordDeleted, id, nil)
	}
	return nil
}

// Cancel disarms the prompt without touching the store.
func (d *DeletionWorkflow) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.target = 0
	d.armed = false
}
