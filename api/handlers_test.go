/*
handlers_test.go - HTTP tests for the planner API

Tests for:
- Session login/logout and the 401 paths
- Branch scoping and head-office-only routes (403)
- Request booking, partial update and approval
- Calendar day view, overlap map and spreadsheet export
- Config, users and reset
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/holiday-planner/generic"
	"github.com/warp/holiday-planner/generic/store"
	"github.com/warp/holiday-planner/holiday"
	"github.com/warp/holiday-planner/planner"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const (
	kitchenBr1 = "staff-br-1-Kitchen-0" // James Smith
	counterBr1 = "staff-br-1-Counter-0"
	kitchenBr2 = "staff-br-2-Kitchen-0"
)

type testServer struct {
	t       *testing.T
	svc     *planner.Service
	handler http.Handler
	now     time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{t: t, now: time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)}
	svc, err := planner.New(context.Background(), planner.Options{
		Store: store.NewMemory(),
		Now:   func() time.Time { return ts.now },
	})
	require.NoError(t, err)
	ts.svc = svc
	ts.handler = NewRouter(NewHandler(svc, nil), []string{"*"})
	return ts
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) login(username, password string) string {
	ts.t.Helper()
	rec := ts.do(http.MethodPost, "/api/auth/login", "", LoginRequest{Username: username, Password: password})
	require.Equal(ts.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LoginResponse
	decodeBody(ts.t, rec, &resp)
	return resp.Token
}

func (ts *testServer) admin() string {
	return ts.login(planner.SeedAdmin.Username, planner.SeedAdmin.Password)
}

// manager creates a manager for br-1 and logs in.
func (ts *testServer) manager() string {
	ts.t.Helper()
	_, err := ts.svc.SaveUser(context.Background(), holiday.User{
		Username: "kate",
		Password: "secret",
		Role:     holiday.RoleManager,
		BranchID: "br-1",
		Name:     "Kate Manager",
	})
	require.NoError(ts.t, err)
	return ts.login("kate", "secret")
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func book(staffID, start, end string, status holiday.Status) map[string]any {
	return map[string]any{"staffId": staffID, "startDate": start, "endDate": end, "status": status}
}

// =============================================================================
// AUTH
// =============================================================================

func TestHealth_IsPublic(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestAuth_MissingOrBadToken(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/api/requests", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/api/requests", "not-a-session", nil).Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/auth/login", "", LoginRequest{Username: "admin", Password: "nope"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_MissingFieldsIsValidationError(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp.Details, "password")
}

func TestLogout_EndsSession(t *testing.T) {
	// GIVEN: A signed-in admin
	ts := newTestServer(t)
	token := ts.admin()
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/auth/me", token, nil).Code)

	// WHEN: They log out
	rec := ts.do(http.MethodPost, "/api/auth/logout", token, nil)

	// THEN: The token no longer works
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/api/auth/me", token, nil).Code)
}

func TestSession_Expires(t *testing.T) {
	ts := newTestServer(t)
	token := ts.admin()

	ts.now = ts.now.Add(planner.DefaultSessionTTL + time.Minute)

	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/api/auth/me", token, nil).Code)
}

func TestMe_HidesPassword(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/auth/me", ts.admin(), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.Contains(t, rec.Body.String(), `"HeadOffice"`)
}

func TestChangePassword(t *testing.T) {
	ts := newTestServer(t)
	token := ts.admin()

	rec := ts.do(http.MethodPost, "/api/auth/password", token, ChangePasswordRequest{Password: "abc", ConfirmPassword: "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "too short")

	rec = ts.do(http.MethodPost, "/api/auth/password", token, ChangePasswordRequest{Password: "newpass", ConfirmPassword: "other"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "mismatch")

	rec = ts.do(http.MethodPost, "/api/auth/password", token, ChangePasswordRequest{Password: "newpass", ConfirmPassword: "newpass"})
	require.Equal(t, http.StatusNoContent, rec.Code)
	ts.login("admin", "newpass")
}

// =============================================================================
// HOLIDAY REQUESTS
// =============================================================================

func TestCreateRequest_HeadOffice(t *testing.T) {
	ts := newTestServer(t)
	token := ts.admin()

	rec := ts.do(http.MethodPost, "/api/requests", token, book(kitchenBr1, "2024-07-01", "2024-07-03", holiday.StatusApproved))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var dto RequestDTO
	decodeBody(t, rec, &dto)
	assert.NotEmpty(t, dto.ID)
	assert.Equal(t, holiday.StatusApproved, dto.Status)
	assert.Equal(t, holiday.BranchID("br-1"), dto.BranchID)
	assert.Equal(t, 3, dto.Days)
	assert.Equal(t, "James Smith", dto.StaffName)
	assert.Equal(t, holiday.CategoryKitchen, dto.Category)
	assert.True(t, dto.Editable)
}

func TestCreateRequest_MissingDates(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/requests", ts.admin(), map[string]any{"staffId": kitchenBr1})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRequest_UnknownStaff(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/requests", ts.admin(), book("ghost", "2024-07-01", "2024-07-03", ""))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateRequest_ManagerIsForcedPending(t *testing.T) {
	// GIVEN: A br-1 manager
	ts := newTestServer(t)
	token := ts.manager()

	// WHEN: They book an approved holiday for their own staff
	rec := ts.do(http.MethodPost, "/api/requests", token, book(kitchenBr1, "2024-07-01", "2024-07-03", holiday.StatusApproved))

	// THEN: It is created as Pending
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var dto RequestDTO
	decodeBody(t, rec, &dto)
	assert.Equal(t, holiday.StatusPending, dto.Status)
}

func TestCreateRequest_ManagerOtherBranchForbidden(t *testing.T) {
	ts := newTestServer(t)
	token := ts.manager()

	rec := ts.do(http.MethodPost, "/api/requests", token, book(kitchenBr2, "2024-07-01", "2024-07-03", ""))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, ts.svc.Requests())
}

func TestCreateRequest_BranchComesFromStaff(t *testing.T) {
	// GIVEN: A br-1 manager
	ts := newTestServer(t)
	token := ts.manager()

	// WHEN: They book their own staff but name br-2 in the body
	body := book(kitchenBr1, "2024-07-01", "2024-07-03", "")
	body["branchId"] = "br-2"
	rec := ts.do(http.MethodPost, "/api/requests", token, body)

	// THEN: The request lands in br-1 and stays within their reach
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var dto RequestDTO
	decodeBody(t, rec, &dto)
	assert.Equal(t, holiday.BranchID("br-1"), dto.BranchID)
	assert.True(t, dto.Editable)

	list := ts.do(http.MethodGet, "/api/requests?branchId=br-2", ts.admin(), nil)
	require.Equal(t, http.StatusOK, list.Code)
	var inBr2 []RequestDTO
	decodeBody(t, list, &inBr2)
	assert.Empty(t, inBr2)

	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, "/api/requests/"+string(dto.ID), token, nil).Code)
}

func TestSetRequestStatus(t *testing.T) {
	// GIVEN: A pending request
	ts := newTestServer(t)
	admin := ts.admin()
	created, err := ts.svc.CreateRequest(context.Background(), holiday.Draft{
		StaffID:   kitchenBr1,
		StartDate: mustDate("2024-07-01"),
		EndDate:   mustDate("2024-07-03"),
	})
	require.NoError(t, err)
	path := "/api/requests/" + string(created.ID) + "/status"

	// WHEN: A manager tries to approve it
	rec := ts.do(http.MethodPut, path, ts.manager(), StatusRequest{Status: holiday.StatusApproved})

	// THEN: Forbidden
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// WHEN: Head office approves it, then un-approves it
	rec = ts.do(http.MethodPut, path, admin, StatusRequest{Status: holiday.StatusApproved})
	require.Equal(t, http.StatusOK, rec.Code)
	got, _ := ts.svc.Request(created.ID)
	assert.Equal(t, holiday.StatusApproved, got.Status)

	rec = ts.do(http.MethodPut, path, admin, StatusRequest{Status: holiday.StatusPending})
	require.Equal(t, http.StatusOK, rec.Code)
	got, _ = ts.svc.Request(created.ID)
	assert.Equal(t, holiday.StatusPending, got.Status)
}

func TestSetRequestStatus_InvalidStatus(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPut, "/api/requests/req-1/status", ts.admin(), map[string]string{"status": "Rejected"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateRequest(t *testing.T) {
	ts := newTestServer(t)
	created, err := ts.svc.CreateRequest(context.Background(), holiday.Draft{
		StaffID:   kitchenBr1,
		StartDate: mustDate("2024-07-01"),
		EndDate:   mustDate("2024-07-03"),
		Notes:     "beach",
	})
	require.NoError(t, err)
	path := "/api/requests/" + string(created.ID)
	manager := ts.manager()

	t.Run("manager edits dates of own branch", func(t *testing.T) {
		rec := ts.do(http.MethodPut, path, manager, map[string]any{"endDate": "2024-07-05"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var dto RequestDTO
		decodeBody(t, rec, &dto)
		assert.Equal(t, 5, dto.Days)
		assert.Equal(t, "beach", dto.Notes)
	})

	t.Run("manager cannot change status", func(t *testing.T) {
		rec := ts.do(http.MethodPut, path, manager, map[string]any{"status": "Approved"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("manager may resend the unchanged status", func(t *testing.T) {
		rec := ts.do(http.MethodPut, path, manager, map[string]any{"status": "Pending", "notes": "city"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("branch cannot be patched", func(t *testing.T) {
		rec := ts.do(http.MethodPut, path, manager, map[string]any{"branchId": "br-2"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var dto RequestDTO
		decodeBody(t, rec, &dto)
		assert.Equal(t, holiday.BranchID("br-1"), dto.BranchID)
		stored, err := ts.svc.Request(created.ID)
		require.NoError(t, err)
		assert.Equal(t, holiday.BranchID("br-1"), stored.BranchID)
	})

	t.Run("manager cannot move it to another branch's staff", func(t *testing.T) {
		rec := ts.do(http.MethodPut, path, manager, map[string]any{"staffId": kitchenBr2})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("empty date is rejected", func(t *testing.T) {
		rec := ts.do(http.MethodPut, path, manager, map[string]any{"startDate": ""})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown request", func(t *testing.T) {
		rec := ts.do(http.MethodPut, "/api/requests/nope", manager, map[string]any{"notes": "x"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDeleteRequest(t *testing.T) {
	ts := newTestServer(t)
	other, err := ts.svc.CreateRequest(context.Background(), holiday.Draft{
		StaffID:   kitchenBr2,
		StartDate: mustDate("2024-07-01"),
		EndDate:   mustDate("2024-07-01"),
	})
	require.NoError(t, err)
	manager := ts.manager()

	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodDelete, "/api/requests/"+string(other.ID), manager, nil).Code)
	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, "/api/requests/"+string(other.ID), ts.admin(), nil).Code)
	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, "/api/requests/"+string(other.ID), ts.admin(), nil).Code)
	assert.Empty(t, ts.svc.Requests())
}

func TestListRequests_Filters(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	for _, d := range []holiday.Draft{
		{StaffID: kitchenBr1, StartDate: mustDate("2024-07-01"), EndDate: mustDate("2024-07-01"), Status: holiday.StatusApproved},
		{StaffID: counterBr1, StartDate: mustDate("2024-07-02"), EndDate: mustDate("2024-07-02")},
		{StaffID: kitchenBr2, StartDate: mustDate("2024-07-03"), EndDate: mustDate("2024-07-03")},
	} {
		_, err := ts.svc.CreateRequest(ctx, d)
		require.NoError(t, err)
	}
	manager := ts.manager()

	var all []RequestDTO
	decodeBody(t, ts.do(http.MethodGet, "/api/requests", manager, nil), &all)
	assert.Len(t, all, 3)
	assert.True(t, all[0].Editable)
	assert.False(t, all[2].Editable, "managers read other branches but cannot edit them")

	var pending []RequestDTO
	decodeBody(t, ts.do(http.MethodGet, "/api/requests?branchId=br-1&status=Pending", manager, nil), &pending)
	require.Len(t, pending, 1)
	assert.Equal(t, holiday.StaffID(counterBr1), pending[0].StaffID)
}

// =============================================================================
// STAFF AND ADVICE
// =============================================================================

func TestCreateStaff_Validation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/staff", ts.admin(), map[string]any{"name": "Ann", "category": "Chef", "branchId": "br-1"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp.Details, "category")
}

func TestCreateStaff_ManagerScope(t *testing.T) {
	ts := newTestServer(t)
	manager := ts.manager()

	rec := ts.do(http.MethodPost, "/api/staff", manager, map[string]any{"name": "Ann", "category": "Kitchen", "branchId": "br-2"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(http.MethodPost, "/api/staff", manager, map[string]any{"name": "Ann", "category": "Kitchen", "branchId": "br-1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var member holiday.Staff
	decodeBody(t, rec, &member)
	assert.Equal(t, 28, member.TotalAllowance)
}

func TestAdvice(t *testing.T) {
	// GIVEN: 10 approved days last summer
	ts := newTestServer(t)
	_, err := ts.svc.CreateRequest(context.Background(), holiday.Draft{
		StaffID:   kitchenBr1,
		StartDate: mustDate("2023-08-01"),
		EndDate:   mustDate("2023-08-10"),
		Status:    holiday.StatusApproved,
	})
	require.NoError(t, err)

	// WHEN: Asking about a 20 day booking in July
	rec := ts.do(http.MethodGet, "/api/staff/"+kitchenBr1+"/advice?startDate=2024-07-01&endDate=2024-07-20", ts.admin(), nil)

	// THEN: The allowance is exceeded and the rotation warning is raised
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var advice planner.Advice
	decodeBody(t, rec, &advice)
	assert.Equal(t, 20, advice.Days)
	assert.Equal(t, 18, advice.Allowance.Remaining)
	assert.True(t, advice.Allowance.Exceeds)
	assert.True(t, advice.PrimeTimeLastYear)
	assert.True(t, advice.StartsInPrimeTime)
}

func TestAdvice_BadDate(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/staff/"+kitchenBr1+"/advice?startDate=01/07/2024", ts.admin(), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// CALENDAR
// =============================================================================

func seedJuly(t *testing.T, ts *testServer) {
	t.Helper()
	ctx := context.Background()
	for _, d := range []holiday.Draft{
		{StaffID: kitchenBr1, StartDate: mustDate("2024-07-01"), EndDate: mustDate("2024-07-03"), Status: holiday.StatusApproved},
		{StaffID: counterBr1, StartDate: mustDate("2024-07-02"), EndDate: mustDate("2024-07-02")},
		{StaffID: kitchenBr2, StartDate: mustDate("2024-07-02"), EndDate: mustDate("2024-07-04")},
	} {
		_, err := ts.svc.CreateRequest(ctx, d)
		require.NoError(t, err)
	}
}

func TestDayView(t *testing.T) {
	ts := newTestServer(t)
	seedJuly(t, ts)
	token := ts.admin()

	var view DayViewDTO
	decodeBody(t, ts.do(http.MethodGet, "/api/calendar/day?date=2024-07-02", token, nil), &view)
	assert.Len(t, view.Requests, 3)

	decodeBody(t, ts.do(http.MethodGet, "/api/calendar/day?date=2024-07-02&branchId=br-1&category=Kitchen,Driver", token, nil), &view)
	require.Len(t, view.Requests, 1)
	assert.Equal(t, holiday.StaffID(kitchenBr1), view.Requests[0].StaffID)

	rec := ts.do(http.MethodGet, "/api/calendar/day?date=2024-07-02&category=Chef", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOverlap(t *testing.T) {
	ts := newTestServer(t)
	seedJuly(t, ts)

	rec := ts.do(http.MethodGet, "/api/calendar/overlap?year=2024&month=7&branchId=all", ts.admin(), nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var dto OverlapDTO
	decodeBody(t, rec, &dto)
	assert.Equal(t, 7, dto.Month)
	assert.Equal(t, 31, dto.Days)
	require.Len(t, dto.Rows, 3)
	assert.Equal(t, holiday.CategoryKitchen, dto.Rows[0].Category)
	assert.Equal(t, []int{1, 2, 2, 1, 0}, dto.Rows[0].Counts[:5])
	assert.Equal(t, []int{0, 1, 0}, dto.Rows[1].Counts[:3])
}

func TestOverlap_BadMonth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/calendar/overlap?year=2024&month=13", ts.admin(), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport(t *testing.T) {
	// GIVEN: July bookings in two branches
	ts := newTestServer(t)
	seedJuly(t, ts)

	// WHEN: Exporting br-1
	rec := ts.do(http.MethodGet, "/api/calendar/export?year=2024&month=7&branchId=br-1", ts.admin(), nil)

	// THEN: A workbook with one row per br-1 staff member
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "holidays_2024-07.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	sheet := "July 2024"
	cell := func(c string) string {
		v, err := f.GetCellValue(sheet, c)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "Staff", cell("A2"))
	assert.Equal(t, "James Smith", cell("A3"))
	assert.Equal(t, "London Central", cell("B3"))
	assert.Equal(t, "A", cell("D3"))
	assert.Equal(t, "A", cell("F3"))
	assert.Equal(t, "", cell("G3"))
	assert.Equal(t, "3", cell("AI3"))
	assert.Equal(t, "P", cell("E5"), "Counter-0 is the third br-1 row")

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	assert.Len(t, rows, 2+6+1+3)
}

func TestBuildMonthWorkbook_OverlappingRequestsCountOnce(t *testing.T) {
	// GIVEN: A pending 1-5 July and an approved 4-6 July for one staff member
	staff := []holiday.Staff{{ID: "s1", Name: "Ann Lee", Category: holiday.CategoryKitchen, BranchID: "br-1"}}
	requests := []holiday.HolidayRequest{
		{ID: "r1", StaffID: "s1", BranchID: "br-1", StartDate: mustDate("2024-07-01"), EndDate: mustDate("2024-07-05"), Status: holiday.StatusPending},
		{ID: "r2", StaffID: "s1", BranchID: "br-1", StartDate: mustDate("2024-07-04"), EndDate: mustDate("2024-07-06"), Status: holiday.StatusApproved},
	}

	// WHEN: Building the July sheet
	buf, err := buildMonthWorkbook(MonthSheet{
		Year:     2024,
		Month:    time.July,
		Branches: []holiday.Branch{{ID: "br-1", Name: "London Central"}},
		Staff:    staff,
		Requests: requests,
	})
	require.NoError(t, err)

	// THEN: Six distinct days are counted and approved wins on the overlap
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()
	cell := func(c string) string {
		v, err := f.GetCellValue("July 2024", c)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "P", cell("F3"), "3 July is pending only")
	assert.Equal(t, "A", cell("G3"), "4 July is covered by both")
	assert.Equal(t, "A", cell("I3"))
	assert.Equal(t, "", cell("J3"))
	assert.Equal(t, "6", cell("AI3"))
}

// =============================================================================
// ADMIN
// =============================================================================

func TestBranches_HeadOfficeOnly(t *testing.T) {
	ts := newTestServer(t)
	manager := ts.manager()

	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/branches", manager, nil).Code)
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodPost, "/api/branches", manager, BranchRequest{Name: "Leeds"}).Code)

	rec := ts.do(http.MethodPost, "/api/branches", ts.admin(), BranchRequest{Name: "Leeds", Location: "Briggate"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, ts.svc.Branches(), 6)
}

func TestDeleteBranch_CascadesStaff(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodDelete, "/api/branches/br-2", ts.admin(), nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, ts.svc.Branches(), 4)
	assert.Empty(t, holiday.StaffInBranch(ts.svc.Staff(), "br-2"))
}

func TestConfig(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.admin()
	manager := ts.manager()

	var cfg holiday.SystemConfig
	decodeBody(t, ts.do(http.MethodGet, "/api/config", manager, nil), &cfg)
	assert.Equal(t, []int{6, 7, 11}, cfg.PrimeTimeMonths)

	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodPost, "/api/config/prime-months/0/toggle", manager, nil).Code)

	rec := ts.do(http.MethodPost, "/api/config/prime-months/0/toggle", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &cfg)
	assert.ElementsMatch(t, []int{0, 6, 7, 11}, cfg.PrimeTimeMonths)

	rec = ts.do(http.MethodPut, "/api/config", admin, map[string]any{"primeTimeMonths": []int{12}, "defaultAllowance": 20})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPut, "/api/config", admin, map[string]any{"primeTimeMonths": []int{5}, "defaultAllowance": 20})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, ts.svc.Config().DefaultAllowance)
}

func TestUsers(t *testing.T) {
	// GIVEN: Head office
	ts := newTestServer(t)
	admin := ts.admin()

	// WHEN: Creating a manager without a branch
	rec := ts.do(http.MethodPost, "/api/users", admin, UserRequest{Username: "bob", Password: "pass1", Role: holiday.RoleManager, Name: "Bob"})

	// THEN: Rejected
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// WHEN: Creating one properly
	rec = ts.do(http.MethodPost, "/api/users", admin, UserRequest{Username: "bob", Password: "pass1", Role: holiday.RoleManager, BranchID: "br-3", Name: "Bob"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created UserDTO
	decodeBody(t, rec, &created)
	assert.NotContains(t, rec.Body.String(), "pass1")

	// THEN: Editing without a password keeps the old one
	rec = ts.do(http.MethodPut, "/api/users/"+string(created.ID), admin, UserRequest{Username: "bob", Role: holiday.RoleManager, BranchID: "br-3", Name: "Robert"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	bob := ts.login("bob", "pass1")

	// AND: Managers cannot list users
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodGet, "/api/users", bob, nil).Code)

	// AND: Head office cannot delete itself
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodDelete, "/api/users/"+string(planner.SeedAdmin.ID), admin, nil).Code)

	// AND: Deleting bob ends their session
	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, "/api/users/"+string(created.ID), admin, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/api/auth/me", bob, nil).Code)
}

func TestReset(t *testing.T) {
	ts := newTestServer(t)
	seedJuly(t, ts)
	admin := ts.admin()

	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodPost, "/api/admin/reset", ts.manager(), nil).Code)

	rec := ts.do(http.MethodPost, "/api/admin/reset", admin, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, ts.svc.Requests())
	assert.Len(t, ts.svc.Users(), 1)
	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/api/auth/me", admin, nil).Code)
}

func mustDate(s string) generic.Date {
	return generic.MustParseDate(s)
}
