/*
lifecycle.go - Holiday request create/update/delete and status changes

PURPOSE:
  Owns every mutation of the request collection. The collection belongs to
  the caller: each operation takes it, returns a new slice, and never
  modifies the one passed in.

STATUS MACHINE:
  Pending <──▶ Approved

  Both directions are allowed, there is no terminal state, and nothing
  transitions on its own. Who may approve is the caller's decision; this
  package performs no role checks.

CLOCK AND IDS:
  Lifecycle.Now stamps CreatedAt and Lifecycle.NewID assigns ids. Both are
  injected so tests are deterministic.

ERRORS:
  Create  -> *generic.ValidationError (staff, start or end date missing)
  Update  -> *generic.NotFoundError  (unknown id)
  Delete  -> never fails; deleting an unknown id is a no-op

SEE ALSO:
  - allowance.go: DurationDays, shared with the calendar views
  - planner/planner.go: persists the collection after each operation
*/
package holiday

import (
	"time"

	"github.com/google/uuid"
	"github.com/warp/holiday-planner/generic"
)

// Lifecycle creates and mutates holiday requests.
type Lifecycle struct {
	Now   func() time.Time
	NewID func() string
}

// NewLifecycle returns a Lifecycle on the wall clock with random ids.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{Now: time.Now, NewID: NewRequestID}
}

// NewRequestID returns a fresh "req-" prefixed id.
func NewRequestID() string {
	return "req-" + uuid.NewString()
}

// Draft is the caller-supplied part of a new request.
type Draft struct {
	StaffID   StaffID
	BranchID  BranchID
	StartDate generic.Date
	EndDate   generic.Date
	Status    Status // "" means Pending
	Notes     string
}

// Patch changes the request with the given ID. Nil fields are left alone.
// BranchID and CreatedAt are fixed at creation.
type Patch struct {
	ID        RequestID
	StaffID   *StaffID
	StartDate *generic.Date
	EndDate   *generic.Date
	Status    *Status
	Notes     *string
}

// Create validates the draft, stamps it, and appends it.
func (l *Lifecycle) Create(requests []HolidayRequest, d Draft) ([]HolidayRequest, HolidayRequest, error) {
	if d.StaffID == "" {
		return requests, HolidayRequest{}, generic.NewValidationError("staffId", "is required")
	}
	if d.StartDate.IsZero() {
		return requests, HolidayRequest{}, generic.NewValidationError("startDate", "is required")
	}
	if d.EndDate.IsZero() {
		return requests, HolidayRequest{}, generic.NewValidationError("endDate", "is required")
	}
	status := d.Status
	if status == "" {
		status = StatusPending
	}
	if !status.Valid() {
		return requests, HolidayRequest{}, generic.NewValidationError("status", "must be Pending or Approved")
	}

	created := HolidayRequest{
		ID:        RequestID(l.newID()),
		StaffID:   d.StaffID,
		BranchID:  d.BranchID,
		StartDate: d.StartDate,
		EndDate:   d.EndDate,
		Status:    status,
		Notes:     d.Notes,
		CreatedAt: l.now(),
	}

	result := make([]HolidayRequest, len(requests), len(requests)+1)
	copy(result, requests)
	return append(result, created), created, nil
}

// Update merges the patch onto the request with patch.ID.
func (l *Lifecycle) Update(requests []HolidayRequest, p Patch) ([]HolidayRequest, HolidayRequest, error) {
	idx := IndexOf(requests, p.ID)
	if idx < 0 {
		return requests, HolidayRequest{}, generic.NewNotFoundError("request", string(p.ID))
	}
	if p.Status != nil && !p.Status.Valid() {
		return requests, HolidayRequest{}, generic.NewValidationError("status", "must be Pending or Approved")
	}

	updated := requests[idx]
	if p.StaffID != nil {
		updated.StaffID = *p.StaffID
	}
	if p.StartDate != nil {
		updated.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		updated.EndDate = *p.EndDate
	}
	if p.Status != nil {
		updated.Status = *p.Status
	}
	if p.Notes != nil {
		updated.Notes = *p.Notes
	}

	result := make([]HolidayRequest, len(requests))
	copy(result, requests)
	result[idx] = updated
	return result, updated, nil
}

// SetStatus moves the request to status.
func (l *Lifecycle) SetStatus(requests []HolidayRequest, id RequestID, status Status) ([]HolidayRequest, HolidayRequest, error) {
	return l.Update(requests, Patch{ID: id, Status: &status})
}

// Delete removes the request with id, if present.
func Delete(requests []HolidayRequest, id RequestID) []HolidayRequest {
	result := make([]HolidayRequest, 0, len(requests))
	for _, r := range requests {
		if r.ID != id {
			result = append(result, r)
		}
	}
	return result
}

// Find returns the request with id.
func Find(requests []HolidayRequest, id RequestID) (HolidayRequest, bool) {
	idx := IndexOf(requests, id)
	if idx < 0 {
		return HolidayRequest{}, false
	}
	return requests[idx], true
}

// IndexOf returns the position of the request with id, or -1.
func IndexOf(requests []HolidayRequest, id RequestID) int {
	for i, r := range requests {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// ForStaff returns the staff member's requests, in collection order.
func ForStaff(requests []HolidayRequest, staffID StaffID) []HolidayRequest {
	var result []HolidayRequest
	for _, r := range requests {
		if r.StaffID == staffID {
			result = append(result, r)
		}
	}
	return result
}

func (l *Lifecycle) now() time.Time {
	if l.Now == nil {
		return time.Now()
	}
	return l.Now()
}

func (l *Lifecycle) newID() string {
	if l.NewID == nil {
		return NewRequestID()
	}
	return l.NewID()
}
