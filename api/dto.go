/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Request bodies carry
  go-playground/validator tags; the handlers run the validator before
  calling the planner. Domain rules (date ranges, password confirmation,
  unique usernames) stay in the holiday package.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Auth:      LoginRequest, LoginResponse, ChangePasswordRequest, UserDTO
  Roster:    BranchRequest, StaffRequest, UserRequest
  Requests:  CreateHolidayRequest, UpdateHolidayRequest, StatusRequest, RequestDTO
  Calendar:  DayViewDTO, OverlapDTO
  Config:    ConfigRequest

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/holiday-planner/generic"
	"github.com/warp/holiday-planner/holiday"
)

// =============================================================================
// AUTH
// =============================================================================

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserDTO   `json:"user"`
}

type ChangePasswordRequest struct {
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// UserDTO is a user without the password.
type UserDTO struct {
	ID       holiday.UserID   `json:"id"`
	Username string           `json:"username"`
	Role     holiday.Role     `json:"role"`
	BranchID holiday.BranchID `json:"branchId,omitempty"`
	Name     string           `json:"name"`
}

func toUserDTO(u holiday.User) UserDTO {
	return UserDTO{ID: u.ID, Username: u.Username, Role: u.Role, BranchID: u.BranchID, Name: u.Name}
}

// =============================================================================
// ROSTER
// =============================================================================

type BranchRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Location string `json:"location" validate:"max=200"`
}

type StaffRequest struct {
	Name           string           `json:"name" validate:"required,max=100"`
	Category       holiday.Category `json:"category" validate:"required,oneof=Kitchen Counter Driver"`
	BranchID       holiday.BranchID `json:"branchId" validate:"required"`
	TotalAllowance *int             `json:"totalAllowance" validate:"omitempty,min=0,max=366"`
}

func (r StaffRequest) draft() holiday.StaffDraft {
	return holiday.StaffDraft{
		Name:           r.Name,
		Category:       r.Category,
		BranchID:       r.BranchID,
		TotalAllowance: r.TotalAllowance,
	}
}

// UserRequest creates or edits a login. On edit an empty password keeps
// the current one.
type UserRequest struct {
	Username string           `json:"username" validate:"required,max=50"`
	Password string           `json:"password"`
	Role     holiday.Role     `json:"role" validate:"required,oneof=Manager HeadOffice"`
	BranchID holiday.BranchID `json:"branchId" validate:"required_if=Role Manager"`
	Name     string           `json:"name" validate:"required,max=100"`
}

// =============================================================================
// HOLIDAY REQUESTS
// =============================================================================

// CreateHolidayRequest books a holiday. The branch is always copied from
// the staff member.
type CreateHolidayRequest struct {
	StaffID   holiday.StaffID `json:"staffId" validate:"required"`
	StartDate generic.Date    `json:"startDate"`
	EndDate   generic.Date    `json:"endDate"`
	Status    holiday.Status  `json:"status" validate:"omitempty,oneof=Pending Approved"`
	Notes     string          `json:"notes" validate:"max=2000"`
}

// UpdateHolidayRequest is a partial update; absent fields are unchanged.
// The branch is fixed at creation and cannot be patched.
type UpdateHolidayRequest struct {
	StaffID   *holiday.StaffID `json:"staffId" validate:"omitempty,min=1"`
	StartDate *generic.Date    `json:"startDate"`
	EndDate   *generic.Date    `json:"endDate"`
	Status    *holiday.Status  `json:"status" validate:"omitempty,oneof=Pending Approved"`
	Notes     *string          `json:"notes" validate:"omitempty,max=2000"`
}

type StatusRequest struct {
	Status holiday.Status `json:"status" validate:"required,oneof=Pending Approved"`
}

// RequestDTO is a holiday request as the calendar shows it.
type RequestDTO struct {
	holiday.HolidayRequest
	Days      int              `json:"days"`
	StaffName string           `json:"staffName,omitempty"`
	Category  holiday.Category `json:"category,omitempty"`
	Editable  bool             `json:"editable"`
}

// =============================================================================
// CALENDAR
// =============================================================================

type DayViewDTO struct {
	Date     generic.Date `json:"date"`
	Requests []RequestDTO `json:"requests"`
}

type OverlapDTO struct {
	Year  int                  `json:"year"`
	Month int                  `json:"month"` // 1-12
	Days  int                  `json:"days"`
	Rows  []holiday.OverlapRow `json:"rows"`
}

// =============================================================================
// CONFIG
// =============================================================================

type ConfigRequest struct {
	PrimeTimeMonths  []int `json:"primeTimeMonths" validate:"dive,min=0,max=11"`
	DefaultAllowance *int  `json:"defaultAllowance" validate:"required,min=0"`
}

// =============================================================================
// MISC
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type HealthDTO struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
