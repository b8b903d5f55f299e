package holiday

import (
	"github.com/shopspring/decimal"
	"github.com/warp/holiday-planner/generic"
)

// =============================================================================
// ALLOWANCE LEDGER - Days consumed against the annual allowance
// =============================================================================

// DurationDays is the inclusive number of days from start to end. A range
// that ends before it starts, or is missing a date, counts as zero days.
// Every duration shown or summed anywhere goes through this function.
func DurationDays(start, end generic.Date) int {
	return generic.Period{Start: start, End: end}.Len()
}

// ConsumedDays sums the durations of the staff member's approved requests,
// skipping excludeID. Pass the id of the request being edited so it is not
// counted twice; pass "" to count everything.
func ConsumedDays(requests []HolidayRequest, staffID StaffID, excludeID RequestID) int {
	total := 0
	for _, r := range requests {
		if r.StaffID != staffID || !r.IsApproved() {
			continue
		}
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		total += r.Days()
	}
	return total
}

// RemainingDays may be negative. Over-allocation is a warning for the caller
// to show, not an error.
func RemainingDays(staff Staff, consumed int) int {
	return staff.TotalAllowance - consumed
}

// AllowanceSummary is the allowance badge for one staff member.
type AllowanceSummary struct {
	StaffID     StaffID         `json:"staffId"`
	Total       int             `json:"total"`
	Used        int             `json:"used"`
	Remaining   int             `json:"remaining"`
	Requested   int             `json:"requested"`
	Exceeds     bool            `json:"exceeds"`     // remaining < requested
	Utilisation decimal.Decimal `json:"utilisation"` // used as % of total, 1 dp
}

var hundred = decimal.NewFromInt(100)

// SummarizeAllowance computes the allowance badge for a prospective request
// of requestedDays days.
func SummarizeAllowance(requests []HolidayRequest, staff Staff, excludeID RequestID, requestedDays int) AllowanceSummary {
	used := ConsumedDays(requests, staff.ID, excludeID)
	remaining := RemainingDays(staff, used)

	utilisation := decimal.Zero
	if staff.TotalAllowance > 0 {
		utilisation = decimal.NewFromInt(int64(used)).
			Mul(hundred).
			Div(decimal.NewFromInt(int64(staff.TotalAllowance))).
			Round(1)
	}

	return AllowanceSummary{
		StaffID:     staff.ID,
		Total:       staff.TotalAllowance,
		Used:        used,
		Remaining:   remaining,
		Requested:   requestedDays,
		Exceeds:     remaining < requestedDays,
		Utilisation: utilisation,
	}
}
