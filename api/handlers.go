/*
handlers.go - HTTP API handlers for the holiday planner

PURPOSE:
  Exposes the planner over REST. Handles HTTP request/response, JSON
  serialization and authorization, and delegates to planner.Service.

ENDPOINTS:
  Auth:
    POST   /api/auth/login             Open a session
    POST   /api/auth/logout            End the session
    GET    /api/auth/me                Current user
    POST   /api/auth/password          Change own password

  Roster:
    GET    /api/branches               List branches
    POST   /api/branches               Create branch (head office)
    PUT    /api/branches/{id}          Edit branch (head office)
    DELETE /api/branches/{id}          Delete branch and its staff (head office)
    GET    /api/staff                  List staff (?branchId=)
    POST   /api/staff                  Create staff member
    PUT    /api/staff/{id}             Edit staff member
    DELETE /api/staff/{id}             Delete staff member
    GET    /api/staff/{id}/advice      Allowance badge + rotation warning

  Requests:
    GET    /api/requests               List (?branchId=&staffId=&status=)
    POST   /api/requests               Book a holiday
    GET    /api/requests/{id}          One request
    PUT    /api/requests/{id}          Partial update
    DELETE /api/requests/{id}          Delete
    PUT    /api/requests/{id}/status   Approve / un-approve (head office)

  Calendar:
    GET    /api/calendar/day           Requests covering a day
    GET    /api/calendar/overlap       Staff off per category per day
    GET    /api/calendar/export        Month sheet as .xlsx

  Admin:
    GET    /api/config                 System config
    PUT    /api/config                 Replace config (head office)
    POST   /api/config/prime-months/{month}/toggle
    GET|POST|PUT|DELETE /api/users     User management (head office)
    POST   /api/admin/reset            Reseed all data (head office)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: No session, expired session, bad credentials
  - 403: Role or branch does not allow the action
  - 404: Resource not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - authz.go: Session middleware and role checks
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/warp/holiday-planner/generic"
	"github.com/warp/holiday-planner/holiday"
	"github.com/warp/holiday-planner/planner"
	"go.uber.org/zap"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Planner *planner.Service
	Log     *zap.Logger
	Version string

	validate *validator.Validate
}

// NewHandler creates a new handler over the planner.
func NewHandler(p *planner.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{Planner: p, Log: log, validate: v}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthDTO{Status: "ok", Version: h.Version})
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Login opens a session.
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	sess, u, err := h.Planner.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: toUserDTO(u)})
}

// Logout ends the current session.
// POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Planner.Logout(r.Context(), currentToken(r)); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the session user.
// GET /api/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toUserDTO(currentUser(r)))
}

// ChangePassword changes the session user's own password.
// POST /api/auth/password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := h.decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	if err := h.Planner.ChangePassword(r.Context(), currentUser(r).ID, req.Password, req.ConfirmPassword); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// BRANCH HANDLERS
// =============================================================================

// ListBranches returns all branches.
func (h *Handler) ListBranches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(h.Planner.Branches()))
}

// CreateBranch adds a branch.
func (h *Handler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	var req BranchRequest
	if err := h.decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	b, err := h.Planner.CreateBranch(r.Context(), req.Name, req.Location)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// UpdateBranch renames or relocates a branch.
func (h *Handler) UpdateBranch(w http.ResponseWriter, r *http.Request) {
	var req BranchRequest
	if err := h.decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	b, err := h.Planner.UpdateBranch(r.Context(), holiday.BranchID(chi.URLParam(r, "id")), req.Name, req.Location)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// DeleteBranch removes a branch together with its staff.
func (h *Handler) DeleteBranch(w http.ResponseWriter, r *http.Request) {
	if err := h.Planner.DeleteBranch(r.Context(), holiday.BranchID(chi.URLParam(r, "id"))); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// STAFF HANDLERS
// =============================================================================

// ListStaff returns staff, optionally for one branch.
// GET /api/staff?branchId=br-1
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	branchID := holiday.BranchID(r.URL.Query().Get("branchId"))
	writeJSON(w, http.StatusOK, nonNil(holiday.StaffInBranch(h.Planner.Staff(), branchID)))
}

// CreateStaff adds a staff member. Managers may only add to their branch.
func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req StaffRequest
	if err := h.decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := authorizeBranch(currentUser(r), req.BranchID); err != nil {
		h.handleError(w, r, err)
		return
	}

	member, err := h.Planner.CreateStaff(r.Context(), req.draft())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

// UpdateStaff edits a staff member. Managers may neither edit staff of
// another branch nor move staff out of their own.
func (h *Handler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	id := holiday.StaffID(chi.URLParam(r, "id"))
	var req StaffRequest
	if err := h.decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	existing, err := h.Planner.StaffMember(id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	u := currentUser(r)
	if err := authorizeBranch(u, existing.BranchID); err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := authorizeBranch(u, req.BranchID); err != nil {
		h.handleError(w, r, err)
		return
	}

	member, err := h.Planner.UpdateStaff(r.Context(), id, req.draft())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

// DeleteStaff removes a staff member. Their requests are kept.
func (h *Handler) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	id := holiday.StaffID(chi.URLParam(r, "id"))

	existing, err := h.Planner.StaffMember(id)
	if generic.IsNotFound(err) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := authorizeBranch(currentUser(r), existing.BranchID); err != nil {
		h.handleError(w, r, err)
		return
	}

	if err := h.Planner.DeleteStaff(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Advice returns the allowance badge and rotation warning for a
// prospective booking.
// GET /api/staff/{id}/advice?startDate=2024-08-01&endDate=2024-08-05&excludeId=req-1
func (h *Handler) Advice(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := parseDateParam(q.Get("startDate"), "startDate")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	end, err := parseDateParam(q.Get("endDate"), "endDate")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	advice, err := h.Planner.Advise(holiday.StaffID(chi.URLParam(r, "id")), start, end, holiday.RequestID(q.Get("excludeId")))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, advice)
}

// =============================================================================
// HOLIDAY REQUEST HANDLERS
// =============================================================================

// ListRequests returns requests, newest booking last.
// GET /api/requests?branchId=br-1&staffId=...&status=Pending
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	branchID := holiday.BranchID(q.Get("branchId"))
	staffID := holiday.StaffID(q.Get("staffId"))
	status := holiday.Status(q.Get("status"))

	var selected []holiday.HolidayRequest
	for _, req := range h.Planner.Requests() {
		if branchID != "" && branchID != holiday.AllBranches && req.BranchID != branchID {
			continue
		}
		if staffID != "" && req.StaffID != staffID {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		selected = append(selected, req)
	}
	writeJSON(w, http.StatusOK, h.toRequestDTOs(currentUser(r), selected))
}

// GetRequest returns one request.
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.Planner.Request(holiday.RequestID(chi.URLParam(r, "id")))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toRequestDTOs(currentUser(r), []holiday.HolidayRequest{req})[0])
}

// CreateRequest books a holiday. Managers book for their own branch only,
// and their bookings always start Pending.
// POST /api/requests
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var body CreateHolidayRequest
	if err := h.decode(r, &body); err != nil {
		h.handleError(w, r, err)
		return
	}

	u := currentUser(r)
	member, err := h.Planner.StaffMember(body.StaffID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := authorizeBranch(u, member.BranchID); err != nil {
		h.handleError(w, r, err)
		return
	}
	if !u.IsHeadOffice() {
		body.Status = holiday.StatusPending
	}

	created, err := h.Planner.CreateRequest(r.Context(), holiday.Draft{
		StaffID:   body.StaffID,
		StartDate: body.StartDate,
		EndDate:   body.EndDate,
		Status:    body.Status,
		Notes:     body.Notes,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toRequestDTOs(u, []holiday.HolidayRequest{created})[0])
}

// UpdateRequest applies a partial update.
// PUT /api/requests/{id}
func (h *Handler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	id := holiday.RequestID(chi.URLParam(r, "id"))
	var body UpdateHolidayRequest
	if err := h.decode(r, &body); err != nil {
		h.handleError(w, r, err)
		return
	}
	if body.StartDate != nil && body.StartDate.IsZero() {
		h.handleError(w, r, generic.NewValidationError("startDate", "must not be empty"))
		return
	}
	if body.EndDate != nil && body.EndDate.IsZero() {
		h.handleError(w, r, generic.NewValidationError("endDate", "must not be empty"))
		return
	}

	u := currentUser(r)
	existing, err := h.Planner.Request(id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := authorizeBranch(u, existing.BranchID); err != nil {
		h.handleError(w, r, err)
		return
	}
	if body.Status != nil && *body.Status != existing.Status {
		if err := authorizeStatusChange(u); err != nil {
			h.handleError(w, r, err)
			return
		}
	}
	if body.StaffID != nil {
		member, err := h.Planner.StaffMember(*body.StaffID)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		if err := authorizeBranch(u, member.BranchID); err != nil {
			h.handleError(w, r, err)
			return
		}
	}

	updated, err := h.Planner.UpdateRequest(r.Context(), holiday.Patch{
		ID:        id,
		StaffID:   body.StaffID,
		StartDate: body.StartDate,
		EndDate:   body.EndDate,
		Status:    body.Status,
		Notes:     body.Notes,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toRequestDTOs(u, []holiday.HolidayRequest{updated})[0])
}

// SetRequestStatus approves or un-approves a request.
// PUT /api/requests/{id}/status
func (h *Handler) SetRequestStatus(w http.ResponseWriter, r *http.Request) {
	var body StatusRequest
	if err := h.decode(r, &body); err != nil {
		h.handleError(w, r, err)
		return
	}
	u := currentUser(r)
	if err := authorizeStatusChange(u); err != nil {
		h.handleError(w, r, err)
		return
	}

	updated, err := h.Planner.SetRequestStatus(r.Context(), holiday.RequestID(chi.URLParam(r, "id")), body.Status)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toRequestDTOs(u, []holiday.HolidayRequest{updated})[0])
}

// DeleteRequest removes a request. Deleting an unknown id succeeds.
// DELETE /api/requests/{id}
func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	id := holiday.RequestID(chi.URLParam(r, "id"))

	existing, err := h.Planner.Request(id)
	if generic.IsNotFound(err) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := authorizeBranch(currentUser(r), existing.BranchID); err != nil {
		h.handleError(w, r, err)
		return
	}

	if err := h.Planner.DeleteRequest(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// DayView lists the requests covering one day, oldest booking first.
// GET /api/calendar/day?date=2024-07-02&branchId=br-1&category=Kitchen,Driver
func (h *Handler) DayView(w http.ResponseWriter, r *http.Request) {
	day, err := parseDateParam(r.URL.Query().Get("date"), "date")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if day.IsZero() {
		day = h.Planner.Today()
	}
	filter, err := parseFilter(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	requests := holiday.RequestsOn(h.Planner.Requests(), h.Planner.Staff(), day, filter)
	writeJSON(w, http.StatusOK, DayViewDTO{Date: day, Requests: h.toRequestDTOs(currentUser(r), requests)})
}

// Overlap returns, per category, how many staff are off on each day of the month.
// GET /api/calendar/overlap?year=2024&month=7&branchId=all
func (h *Handler) Overlap(w http.ResponseWriter, r *http.Request) {
	year, month, err := h.parseMonth(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	rows := holiday.OverlapMap(h.Planner.Requests(), h.Planner.Staff(), year, month, filter)
	writeJSON(w, http.StatusOK, OverlapDTO{
		Year:  year,
		Month: int(month),
		Days:  generic.DaysInMonth(year, month),
		Rows:  rows,
	})
}

// Export downloads the month as a spreadsheet.
// GET /api/calendar/export?year=2024&month=7&branchId=br-1
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	year, month, err := h.parseMonth(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	buf, err := buildMonthWorkbook(MonthSheet{
		Year:     year,
		Month:    month,
		Filter:   filter,
		Branches: h.Planner.Branches(),
		Staff:    h.Planner.Staff(),
		Requests: h.Planner.Requests(),
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	filename := fmt.Sprintf("holidays_%04d-%02d.xlsx", year, int(month))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.Log.Warn("export write failed", zap.Error(err))
	}
}

// =============================================================================
// CONFIG HANDLERS
// =============================================================================

// GetConfig returns the system config.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Planner.Config())
}

// UpdateConfig replaces the system config.
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req ConfigRequest
	if err := h.decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	cfg, err := h.Planner.UpdateConfig(r.Context(), holiday.SystemConfig{
		PrimeTimeMonths:  req.PrimeTimeMonths,
		DefaultAllowance: *req.DefaultAllowance,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// TogglePrimeMonth flips one month (0 = January) in or out of prime time.
func (h *Handler) TogglePrimeMonth(w http.ResponseWriter, r *http.Request) {
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		h.handleError(w, r, generic.NewValidationError("month", "must be a number 0-11"))
		return
	}

	cfg, err := h.Planner.TogglePrimeMonth(r.Context(), month)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// ListUsers returns all logins without passwords.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.Planner.Users()
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateUser adds a login.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := h.decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	saved, err := h.Planner.SaveUser(r.Context(), holiday.User{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
		BranchID: req.BranchID,
		Name:     req.Name,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(saved))
}

// UpdateUser edits a login. An empty password keeps the current one.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := holiday.UserID(chi.URLParam(r, "id"))
	var req UserRequest
	if err := h.decode(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	password := req.Password
	if password == "" {
		existing, ok := holiday.FindUser(h.Planner.Users(), id)
		if !ok {
			h.handleError(w, r, generic.NewNotFoundError("user", string(id)))
			return
		}
		password = existing.Password
	}

	saved, err := h.Planner.SaveUser(r.Context(), holiday.User{
		ID:       id,
		Username: req.Username,
		Password: password,
		Role:     req.Role,
		BranchID: req.BranchID,
		Name:     req.Name,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(saved))
}

// DeleteUser removes a login. Users cannot delete themselves.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := holiday.UserID(chi.URLParam(r, "id"))
	if err := h.Planner.DeleteUser(r.Context(), id, currentUser(r).ID); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// Reset discards all data and reseeds. Every session ends, including the caller's.
// POST /api/admin/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.Planner.Reset(r.Context()); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.Log.Warn("data reset", zap.String("by", string(currentUser(r).ID)))
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// handleError maps domain errors to HTTP status codes.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, generic.ErrValidation):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	case errors.Is(err, generic.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid username or password", nil)
	case errors.Is(err, generic.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "Not authenticated", nil)
	case errors.Is(err, generic.ErrForbidden):
		writeError(w, http.StatusForbidden, "Forbidden", err)
	case errors.Is(err, generic.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	default:
		h.Log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "Internal error", nil)
	}
}

// decode reads the JSON body into dst and validates it.
func (h *Handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return generic.NewValidationError("", "invalid JSON body: "+err.Error())
	}
	if err := h.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return generic.NewValidationError(fe.Field(), describeFieldError(fe))
		}
		return generic.NewValidationError("", err.Error())
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}

func parseDateParam(value, name string) (generic.Date, error) {
	d, err := generic.ParseDate(value)
	if err != nil {
		return generic.Date{}, generic.NewValidationError(name, err.Error())
	}
	return d, nil
}

// parseMonth reads ?year=&month= (1-12); missing values default to the current month.
func (h *Handler) parseMonth(r *http.Request) (int, time.Month, error) {
	today := h.Planner.Today()
	year, month := today.Year(), today.Month()
	q := r.URL.Query()
	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			return 0, 0, generic.NewValidationError("year", "must be a year like 2024")
		}
		year = y
	}
	if v := q.Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, generic.NewValidationError("month", "must be 1-12")
		}
		month = time.Month(m)
	}
	return year, month, nil
}

// parseFilter reads ?branchId= and ?category= (repeated or comma separated).
func parseFilter(r *http.Request) (holiday.Filter, error) {
	q := r.URL.Query()
	f := holiday.Filter{BranchID: holiday.BranchID(q.Get("branchId"))}
	for _, raw := range q["category"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			c := holiday.Category(part)
			if !c.Valid() {
				return holiday.Filter{}, generic.NewValidationError("category", fmt.Sprintf("unknown category %q", part))
			}
			f.Categories = append(f.Categories, c)
		}
	}
	return f, nil
}

func (h *Handler) toRequestDTOs(u holiday.User, requests []holiday.HolidayRequest) []RequestDTO {
	staffByID := make(map[holiday.StaffID]holiday.Staff)
	for _, s := range h.Planner.Staff() {
		staffByID[s.ID] = s
	}
	dtos := make([]RequestDTO, len(requests))
	for i, req := range requests {
		member := staffByID[req.StaffID]
		dtos[i] = RequestDTO{
			HolidayRequest: req,
			Days:           req.Days(),
			StaffName:      member.Name,
			Category:       member.Category,
			Editable:       canEditBranch(u, req.BranchID),
		}
	}
	return dtos
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
