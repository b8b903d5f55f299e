/*
export.go - Monthly holiday sheet as an Excel workbook

LAYOUT:
  Row 1      title (month, branch)
  Row 2      Staff | Branch | Category | 1 | 2 | ... | N | Days
  Row 3..    one row per staff member: "A" approved, "P" pending
  Footer     one row per category with the overlap counts

SEE ALSO:
  - handlers.go: Export handler
  - holiday/calendar.go: OverlapMap
*/
package api

import (
	"bytes"
	"fmt"
	"time"

	"github.com/warp/holiday-planner/generic"
	"github.com/warp/holiday-planner/holiday"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MonthSheet is the input of one exported month.
type MonthSheet struct {
	Year     int
	Month    time.Month
	Filter   holiday.Filter
	Branches []holiday.Branch
	Staff    []holiday.Staff
	Requests []holiday.HolidayRequest
}

func buildMonthWorkbook(m MonthSheet) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := fmt.Sprintf("%s %d", m.Month, m.Year)
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	period := generic.MonthPeriod(m.Year, m.Month)
	days := period.Days()
	firstDayCol := 4
	totalCol := firstDayCol + len(days)

	branchNames := make(map[holiday.BranchID]string, len(m.Branches))
	for _, b := range m.Branches {
		branchNames[b.ID] = b.Name
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	approvedStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	pendingStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#FFEB9C"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	// Title
	scope := "All branches"
	if name, ok := branchNames[m.Filter.BranchID]; ok {
		scope = name
	}
	f.SetCellValue(sheet, cellName(1, 1), fmt.Sprintf("Holidays %s %d (%s)", m.Month, m.Year, scope))

	// Header
	f.SetColWidth(sheet, "A", "A", 24)
	f.SetColWidth(sheet, "B", "C", 18)
	f.SetCellValue(sheet, cellName(1, 2), "Staff")
	f.SetCellValue(sheet, cellName(2, 2), "Branch")
	f.SetCellValue(sheet, cellName(3, 2), "Category")
	for i, day := range days {
		col := firstDayCol + i
		f.SetCellValue(sheet, cellName(col, 2), day.Day())
		name, _ := excelize.ColumnNumberToName(col)
		f.SetColWidth(sheet, name, name, 4)
	}
	f.SetCellValue(sheet, cellName(totalCol, 2), "Days")
	f.SetCellStyle(sheet, cellName(1, 2), cellName(totalCol, 2), headerStyle)

	// Staff rows
	monthRequests := holiday.InPeriod(m.Requests, m.Staff, period, holiday.Filter{BranchID: m.Filter.BranchID})
	row := 3
	for _, member := range holiday.StaffInBranch(m.Staff, m.Filter.BranchID) {
		if !inCategories(member.Category, m.Filter.Categories) {
			continue
		}
		f.SetCellValue(sheet, cellName(1, row), member.Name)
		f.SetCellValue(sheet, cellName(2, row), branchNames[member.BranchID])
		f.SetCellValue(sheet, cellName(3, row), string(member.Category))

		// Day index -> approved. Overlapping requests count once; approved wins.
		covered := make(map[int]bool)
		for _, req := range holiday.ForStaff(monthRequests, member.ID) {
			p := req.Period()
			for i, day := range days {
				if p.Contains(day) {
					covered[i] = covered[i] || req.IsApproved()
				}
			}
		}
		for i, approved := range covered {
			cell := cellName(firstDayCol+i, row)
			if approved {
				f.SetCellValue(sheet, cell, "A")
				f.SetCellStyle(sheet, cell, cell, approvedStyle)
			} else {
				f.SetCellValue(sheet, cell, "P")
				f.SetCellStyle(sheet, cell, cell, pendingStyle)
			}
		}
		f.SetCellValue(sheet, cellName(totalCol, row), len(covered))
		row++
	}

	// Overlap footer
	row++
	for _, overlap := range holiday.OverlapMap(m.Requests, m.Staff, m.Year, m.Month, m.Filter) {
		f.SetCellValue(sheet, cellName(1, row), fmt.Sprintf("%s off", overlap.Category))
		for i, n := range overlap.Counts {
			if n > 0 {
				f.SetCellValue(sheet, cellName(firstDayCol+i, row), n)
			}
		}
		f.SetCellStyle(sheet, cellName(1, row), cellName(1, row), headerStyle)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func inCategories(c holiday.Category, categories []holiday.Category) bool {
	if len(categories) == 0 {
		return true
	}
	for _, want := range categories {
		if c == want {
			return true
		}
	}
	return false
}
