/*
seed.go - Initial data for an empty store

PURPOSE:
  Populates a fresh installation with five branches, two staff members per
  category in each branch, one head-office login and the default system
  config. Also used by Reset.

HOW SEEDING WORKS:
  Service.load seeds each key independently: a store that already holds
  branches but no users gets the admin login and keeps its branches.

NOTE:
  The admin password is the well-known demo value. Change it after first
  login.

SEE ALSO:
  - planner.go: load and Reset
*/
package planner

import (
	"fmt"

	"github.com/warp/holiday-planner/holiday"
)

// =============================================================================
// SEED DEFINITIONS
// =============================================================================

var seedBranches = []holiday.Branch{
	{ID: "br-1", Name: "London Central", Location: "Oxford Street"},
	{ID: "br-2", Name: "Manchester North", Location: "Victoria Station"},
	{ID: "br-3", Name: "Birmingham East", Location: "Bullring"},
	{ID: "br-4", Name: "Glasgow West", Location: "Byres Road"},
	{ID: "br-5", Name: "Bristol South", Location: "Temple Meads"},
}

var seedNames = []string{
	"James Smith", "Maria Garcia", "Robert Johnson", "Patricia Williams", "Michael Brown",
	"Linda Jones", "Elizabeth Miller", "David Davis", "Barbara Rodriguez", "William Martinez",
	"Richard Hernandez", "Joseph Lopez", "Thomas Gonzalez", "Charles Wilson", "Christopher Anderson",
	"Daniel Taylor", "Matthew Thomas", "Anthony Moore", "Mark Martin", "Donald Jackson",
}

const staffPerCategory = 2

// SeedAdmin is the head-office login created on an empty store.
var SeedAdmin = holiday.User{
	ID:       "admin-1",
	Username: "admin",
	Password: "password123",
	Role:     holiday.RoleHeadOffice,
	Name:     "Head Office Admin",
}

// =============================================================================
// SEED BUILDERS
// =============================================================================

// SeedBranches returns the demo branches.
func SeedBranches() []holiday.Branch {
	return append([]holiday.Branch(nil), seedBranches...)
}

// SeedStaff returns two staff members per category for each branch, all on
// the configured default allowance.
func SeedStaff(branches []holiday.Branch, cfg holiday.SystemConfig) []holiday.Staff {
	staff := make([]holiday.Staff, 0, len(branches)*len(holiday.Categories)*staffPerCategory)
	for b, branch := range branches {
		for c, category := range holiday.Categories {
			for i := 0; i < staffPerCategory; i++ {
				staff = append(staff, holiday.Staff{
					ID:             holiday.StaffID(fmt.Sprintf("staff-%s-%s-%d", branch.ID, category, i)),
					Name:           seedNames[(b*6+c*2+i)%len(seedNames)],
					Category:       category,
					BranchID:       branch.ID,
					TotalAllowance: cfg.DefaultAllowance,
				})
			}
		}
	}
	return staff
}

// SeedUsers returns the single head-office login.
func SeedUsers() []holiday.User {
	return []holiday.User{SeedAdmin}
}
