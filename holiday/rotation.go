package holiday

// =============================================================================
// ROTATION ADVISOR - Prime-time fairness across years
// =============================================================================

// HadPrimeTimeLastYear reports whether the staff member had an approved
// holiday starting in one of primeMonths (0 = January) during
// referenceYear-1.
//
// Only the start date counts: a request that starts in June and runs into
// July is not a July holiday here.
func HadPrimeTimeLastYear(requests []HolidayRequest, staffID StaffID, primeMonths []int, referenceYear int) bool {
	if len(primeMonths) == 0 {
		return false
	}
	lastYear := referenceYear - 1
	for _, r := range requests {
		if r.StaffID != staffID || !r.IsApproved() || r.StartDate.IsZero() {
			continue
		}
		if r.StartDate.Year() != lastYear {
			continue
		}
		if containsMonth(primeMonths, r.StartDate.MonthIndex()) {
			return true
		}
	}
	return false
}

func containsMonth(months []int, month int) bool {
	for _, m := range months {
		if m == month {
			return true
		}
	}
	return false
}
