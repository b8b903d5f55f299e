// Package holiday implements the holiday planner's domain core: staff,
// branches, holiday requests, the allowance ledger, the rotation advisor and
// the request lifecycle. Every function works on collections supplied by the
// caller and returns new ones; the package holds no state.
package holiday

import (
	"time"

	"github.com/warp/holiday-planner/generic"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type StaffID string
type BranchID string
type RequestID string
type UserID string

// AllBranches is the branch filter value meaning "every branch".
const AllBranches BranchID = "all"

// =============================================================================
// STAFF
// =============================================================================

// Category is the staff member's job family.
type Category string

const (
	CategoryKitchen Category = "Kitchen"
	CategoryCounter Category = "Counter"
	CategoryDriver  Category = "Driver"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryKitchen, CategoryCounter, CategoryDriver}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Staff is an employee who books holidays against an annual allowance.
type Staff struct {
	ID             StaffID  `json:"id"`
	Name           string   `json:"name"`
	Category       Category `json:"category"`
	BranchID       BranchID `json:"branchId"`
	TotalAllowance int      `json:"totalAllowance"` // days per year
}

// Branch is an organisational location.
type Branch struct {
	ID       BranchID `json:"id"`
	Name     string   `json:"name"`
	Location string   `json:"location"`
}

// =============================================================================
// HOLIDAY REQUEST
// =============================================================================

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved
}

// HolidayRequest is a booked range of days off. BranchID is copied from the
// staff member at creation and does not follow later reassignments.
type HolidayRequest struct {
	ID        RequestID    `json:"id"`
	StaffID   StaffID      `json:"staffId"`
	BranchID  BranchID     `json:"branchId"`
	StartDate generic.Date `json:"startDate"`
	EndDate   generic.Date `json:"endDate"` // inclusive
	Status    Status       `json:"status"`
	Notes     string       `json:"notes,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Period returns the inclusive date range of the request.
func (r HolidayRequest) Period() generic.Period {
	return generic.Period{Start: r.StartDate, End: r.EndDate}
}

// Days returns the request's duration in days.
func (r HolidayRequest) Days() int {
	return DurationDays(r.StartDate, r.EndDate)
}

func (r HolidayRequest) IsApproved() bool { return r.Status == StatusApproved }

// =============================================================================
// SYSTEM CONFIG
// =============================================================================

// SystemConfig holds the process-wide planner settings.
type SystemConfig struct {
	PrimeTimeMonths  []int `json:"primeTimeMonths"` // 0 = January
	DefaultAllowance int   `json:"defaultAllowance"`
}

// DefaultSystemConfig is July, August and December prime time with 28 days.
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		PrimeTimeMonths:  []int{6, 7, 11},
		DefaultAllowance: 28,
	}
}

// =============================================================================
// USERS
// =============================================================================

type Role string

const (
	RoleManager    Role = "Manager"
	RoleHeadOffice Role = "HeadOffice"
)

func (r Role) Valid() bool {
	return r == RoleManager || r == RoleHeadOffice
}

// User is a login. Managers are bound to one branch.
type User struct {
	ID       UserID   `json:"id"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	Role     Role     `json:"role"`
	BranchID BranchID `json:"branchId,omitempty"`
	Name     string   `json:"name"`
}

func (u User) IsHeadOffice() bool { return u.Role == RoleHeadOffice }
