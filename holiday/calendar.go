package holiday

import (
	"sort"
	"time"

	"github.com/warp/holiday-planner/generic"
)

// =============================================================================
// CALENDAR VIEWS - Read models for the rendering layer
// =============================================================================

// Filter narrows calendar views. Empty BranchID or AllBranches means every
// branch; no Categories means every category.
type Filter struct {
	BranchID   BranchID
	Categories []Category
}

func (f Filter) matches(r HolidayRequest, staffByID map[StaffID]Staff) bool {
	if f.BranchID != "" && f.BranchID != AllBranches && r.BranchID != f.BranchID {
		return false
	}
	member, ok := staffByID[r.StaffID]
	if !ok {
		return false
	}
	if len(f.Categories) == 0 {
		return true
	}
	for _, c := range f.Categories {
		if member.Category == c {
			return true
		}
	}
	return false
}

// RequestsOn returns the requests covering day that pass the filter, oldest
// first. Requests whose staff member no longer exists are left out.
func RequestsOn(requests []HolidayRequest, staff []Staff, day generic.Date, f Filter) []HolidayRequest {
	staffByID := indexStaff(staff)
	var result []HolidayRequest
	for _, r := range requests {
		if r.Period().Contains(day) && f.matches(r, staffByID) {
			result = append(result, r)
		}
	}
	sortByCreated(result)
	return result
}

// InPeriod returns the requests overlapping p that pass the filter, oldest first.
func InPeriod(requests []HolidayRequest, staff []Staff, p generic.Period, f Filter) []HolidayRequest {
	staffByID := indexStaff(staff)
	var result []HolidayRequest
	for _, r := range requests {
		if r.Period().Overlaps(p) && f.matches(r, staffByID) {
			result = append(result, r)
		}
	}
	sortByCreated(result)
	return result
}

// OverlapRow counts how many staff of one category are off on each day.
// Counts[0] is the first of the month.
type OverlapRow struct {
	Category Category `json:"category"`
	Counts   []int    `json:"counts"`
}

// OverlapMap builds one row per category for the month. The filter's
// category list is ignored; its branch applies.
func OverlapMap(requests []HolidayRequest, staff []Staff, year int, month time.Month, f Filter) []OverlapRow {
	staffByID := indexStaff(staff)
	branchOnly := Filter{BranchID: f.BranchID}
	days := generic.MonthPeriod(year, month).Days()

	rows := make([]OverlapRow, len(Categories))
	rowFor := make(map[Category]int, len(Categories))
	for i, c := range Categories {
		rows[i] = OverlapRow{Category: c, Counts: make([]int, len(days))}
		rowFor[c] = i
	}

	for _, r := range requests {
		if !branchOnly.matches(r, staffByID) {
			continue
		}
		row, ok := rowFor[staffByID[r.StaffID].Category]
		if !ok {
			continue
		}
		period := r.Period()
		for i, day := range days {
			if period.Contains(day) {
				rows[row].Counts[i]++
			}
		}
	}
	return rows
}

func indexStaff(staff []Staff) map[StaffID]Staff {
	m := make(map[StaffID]Staff, len(staff))
	for _, s := range staff {
		m[s.ID] = s
	}
	return m
}

func sortByCreated(requests []HolidayRequest) {
	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].CreatedAt.Before(requests[j].CreatedAt)
	})
}
