package holiday

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/warp/holiday-planner/generic"
)

// MinPasswordLength is the shortest password ChangePassword accepts.
const MinPasswordLength = 4

// NewID returns a fresh id with the given prefix ("staff", "br", "user").
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// =============================================================================
// STAFF
// =============================================================================

// StaffDraft is the input for creating or editing a staff member.
// A nil TotalAllowance takes the configured default.
type StaffDraft struct {
	Name           string
	Category       Category
	BranchID       BranchID
	TotalAllowance *int
}

func (d StaffDraft) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return generic.NewValidationError("name", "is required")
	}
	if d.BranchID == "" {
		return generic.NewValidationError("branchId", "is required")
	}
	if !d.Category.Valid() {
		return generic.NewValidationError("category", "must be Kitchen, Counter or Driver")
	}
	if d.TotalAllowance != nil && *d.TotalAllowance < 0 {
		return generic.NewValidationError("totalAllowance", "must not be negative")
	}
	return nil
}

// NewStaff builds a staff member from the draft.
func NewStaff(d StaffDraft, cfg SystemConfig, id StaffID) (Staff, error) {
	if err := d.validate(); err != nil {
		return Staff{}, err
	}
	allowance := cfg.DefaultAllowance
	if d.TotalAllowance != nil {
		allowance = *d.TotalAllowance
	}
	return Staff{
		ID:             id,
		Name:           strings.TrimSpace(d.Name),
		Category:       d.Category,
		BranchID:       d.BranchID,
		TotalAllowance: allowance,
	}, nil
}

// UpdateStaff replaces the staff member's fields. A nil allowance keeps the
// current one.
func UpdateStaff(staff []Staff, id StaffID, d StaffDraft) ([]Staff, Staff, error) {
	idx := staffIndex(staff, id)
	if idx < 0 {
		return staff, Staff{}, generic.NewNotFoundError("staff", string(id))
	}
	if err := d.validate(); err != nil {
		return staff, Staff{}, err
	}
	updated := staff[idx]
	updated.Name = strings.TrimSpace(d.Name)
	updated.Category = d.Category
	updated.BranchID = d.BranchID
	if d.TotalAllowance != nil {
		updated.TotalAllowance = *d.TotalAllowance
	}

	result := make([]Staff, len(staff))
	copy(result, staff)
	result[idx] = updated
	return result, updated, nil
}

// DeleteStaff removes the staff member, if present. Their requests stay.
func DeleteStaff(staff []Staff, id StaffID) []Staff {
	result := make([]Staff, 0, len(staff))
	for _, s := range staff {
		if s.ID != id {
			result = append(result, s)
		}
	}
	return result
}

// FindStaff returns the staff member with id.
func FindStaff(staff []Staff, id StaffID) (Staff, bool) {
	idx := staffIndex(staff, id)
	if idx < 0 {
		return Staff{}, false
	}
	return staff[idx], true
}

// StaffInBranch returns the branch's staff; AllBranches or "" returns everyone.
func StaffInBranch(staff []Staff, branchID BranchID) []Staff {
	if branchID == "" || branchID == AllBranches {
		return append([]Staff(nil), staff...)
	}
	var result []Staff
	for _, s := range staff {
		if s.BranchID == branchID {
			result = append(result, s)
		}
	}
	return result
}

func staffIndex(staff []Staff, id StaffID) int {
	for i, s := range staff {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// BRANCHES
// =============================================================================

// NewBranch builds a branch; name is required.
func NewBranch(name, location string, id BranchID) (Branch, error) {
	if strings.TrimSpace(name) == "" {
		return Branch{}, generic.NewValidationError("name", "is required")
	}
	return Branch{ID: id, Name: strings.TrimSpace(name), Location: strings.TrimSpace(location)}, nil
}

// UpdateBranch renames or relocates a branch.
func UpdateBranch(branches []Branch, id BranchID, name, location string) ([]Branch, Branch, error) {
	idx := -1
	for i, b := range branches {
		if b.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return branches, Branch{}, generic.NewNotFoundError("branch", string(id))
	}
	updated, err := NewBranch(name, location, id)
	if err != nil {
		return branches, Branch{}, err
	}
	result := make([]Branch, len(branches))
	copy(result, branches)
	result[idx] = updated
	return result, updated, nil
}

// DeleteBranch removes the branch and every staff member assigned to it.
// Requests are kept: their BranchID is a historical copy.
func DeleteBranch(branches []Branch, staff []Staff, id BranchID) ([]Branch, []Staff) {
	keptBranches := make([]Branch, 0, len(branches))
	for _, b := range branches {
		if b.ID != id {
			keptBranches = append(keptBranches, b)
		}
	}
	keptStaff := make([]Staff, 0, len(staff))
	for _, s := range staff {
		if s.BranchID != id {
			keptStaff = append(keptStaff, s)
		}
	}
	return keptBranches, keptStaff
}

// FindBranch returns the branch with id.
func FindBranch(branches []Branch, id BranchID) (Branch, bool) {
	for _, b := range branches {
		if b.ID == id {
			return b, true
		}
	}
	return Branch{}, false
}

// =============================================================================
// USERS
// =============================================================================

// ValidateUser checks the fields every login needs.
func ValidateUser(u User) error {
	switch {
	case strings.TrimSpace(u.Username) == "":
		return generic.NewValidationError("username", "is required")
	case u.Password == "":
		return generic.NewValidationError("password", "is required")
	case strings.TrimSpace(u.Name) == "":
		return generic.NewValidationError("name", "is required")
	case !u.Role.Valid():
		return generic.NewValidationError("role", "must be Manager or HeadOffice")
	case u.Role == RoleManager && u.BranchID == "":
		return generic.NewValidationError("branchId", "is required for managers")
	}
	return nil
}

// SaveUser adds the user, or replaces the one with the same ID.
// Usernames are unique.
func SaveUser(users []User, u User) ([]User, error) {
	if err := ValidateUser(u); err != nil {
		return users, err
	}
	if u.Role == RoleHeadOffice {
		u.BranchID = ""
	}
	idx := -1
	for i, existing := range users {
		if existing.ID == u.ID {
			idx = i
			continue
		}
		if strings.EqualFold(existing.Username, u.Username) {
			return users, generic.NewValidationError("username", fmt.Sprintf("%q is already taken", u.Username))
		}
	}

	result := make([]User, len(users), len(users)+1)
	copy(result, users)
	if idx < 0 {
		return append(result, u), nil
	}
	result[idx] = u
	return result, nil
}

// DeleteUser removes a user. Actors cannot delete themselves.
func DeleteUser(users []User, id, actorID UserID) ([]User, error) {
	if id == actorID {
		return users, generic.NewValidationError("id", "you cannot delete your own account")
	}
	result := make([]User, 0, len(users))
	for _, u := range users {
		if u.ID != id {
			result = append(result, u)
		}
	}
	return result, nil
}

// ChangePassword sets a new password after checking confirmation and length.
func ChangePassword(users []User, id UserID, password, confirm string) ([]User, error) {
	if password != confirm {
		return users, generic.NewValidationError("confirmPassword", "passwords do not match")
	}
	if len(password) < MinPasswordLength {
		return users, generic.NewValidationError("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	result := make([]User, len(users))
	copy(result, users)
	for i := range result {
		if result[i].ID == id {
			result[i].Password = password
			return result, nil
		}
	}
	return users, generic.NewNotFoundError("user", string(id))
}

// Authenticate finds the user with matching username and password.
// Passwords are compared as stored.
func Authenticate(users []User, username, password string) (User, error) {
	for _, u := range users {
		if u.Username == username && u.Password == password {
			return u, nil
		}
	}
	return User{}, generic.ErrInvalidCredentials
}

// FindUser returns the user with id.
func FindUser(users []User, id UserID) (User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// =============================================================================
// SYSTEM CONFIG
// =============================================================================

// Validate checks month indexes and the default allowance.
func (c SystemConfig) Validate() error {
	for _, m := range c.PrimeTimeMonths {
		if m < 0 || m > 11 {
			return generic.NewValidationError("primeTimeMonths", fmt.Sprintf("month %d is outside 0-11", m))
		}
	}
	if c.DefaultAllowance < 0 {
		return generic.NewValidationError("defaultAllowance", "must not be negative")
	}
	return nil
}

// TogglePrimeMonth adds month if absent, removes it if present.
func (c SystemConfig) TogglePrimeMonth(month int) SystemConfig {
	months := make([]int, 0, len(c.PrimeTimeMonths)+1)
	found := false
	for _, m := range c.PrimeTimeMonths {
		if m == month {
			found = true
			continue
		}
		months = append(months, m)
	}
	if !found {
		months = append(months, month)
	}
	c.PrimeTimeMonths = months
	return c
}

// IsPrimeMonth reports whether the zero-based month is prime time.
func (c SystemConfig) IsPrimeMonth(month int) bool {
	return containsMonth(c.PrimeTimeMonths, month)
}
