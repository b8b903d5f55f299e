/*
planner.go - Application state for the holiday planner

PURPOSE:
  Owns the collections the domain core operates on (requests, branches,
  staff, users, config, sessions), loads them from a generic.Store at
  start-up and writes the affected document back after every mutation.

STATE FLOW:
  1. Take the lock
  2. Compute the new collection with a pure holiday.* function
  3. Persist it
  4. Only then swap it into memory

  A failed save leaves the in-memory state as it was, so memory and store
  never disagree.

CONCURRENCY:
  One sync.Mutex guards everything. Edits are rare and small; there is no
  merge of concurrent edits, the last write wins.

AUTHORIZATION:
  None here. The api package decides who may call what.

SEE ALSO:
  - holiday/lifecycle.go: request mutations
  - holiday/roster.go: staff, branch, user and config rules
  - seed.go: data for an empty store
  - api/handlers.go: HTTP surface over this service
*/
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/holiday-planner/generic"
	"github.com/warp/holiday-planner/holiday"
	"go.uber.org/zap"
)

// DefaultSessionTTL is used when Options.SessionTTL is zero.
const DefaultSessionTTL = 12 * time.Hour

// Options configures a Service.
type Options struct {
	Store      generic.Store
	Logger     *zap.Logger
	Now        func() time.Time
	SessionTTL time.Duration

	// SeedConfig is written to an empty store. Nil means holiday.DefaultSystemConfig.
	SeedConfig *holiday.SystemConfig
}

// Session is an authenticated login.
type Session struct {
	Token     string         `json:"token"`
	UserID    holiday.UserID `json:"userId"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// Expired reports whether the session has lapsed at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Advice is what the request form shows next to a prospective booking.
type Advice struct {
	StaffID           holiday.StaffID          `json:"staffId"`
	Days              int                      `json:"days"`
	Allowance         holiday.AllowanceSummary `json:"allowance"`
	PrimeTimeLastYear bool                     `json:"primeTimeLastYear"`
	StartsInPrimeTime bool                     `json:"startsInPrimeTime"`
}

// Service is the planner's application state.
type Service struct {
	store      generic.Store
	log        *zap.Logger
	now        func() time.Time
	ttl        time.Duration
	seedConfig holiday.SystemConfig
	lifecycle  *holiday.Lifecycle

	mu       sync.Mutex
	requests []holiday.HolidayRequest
	branches []holiday.Branch
	staff    []holiday.Staff
	users    []holiday.User
	config   holiday.SystemConfig
	sessions map[string]Session
}

// New loads the planner state from opts.Store, seeding any missing document.
func New(ctx context.Context, opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("planner: store is required")
	}
	s := &Service{
		store:      opts.Store,
		log:        opts.Logger,
		now:        opts.Now,
		ttl:        opts.SessionTTL,
		seedConfig: holiday.DefaultSystemConfig(),
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.ttl <= 0 {
		s.ttl = DefaultSessionTTL
	}
	if opts.SeedConfig != nil {
		if err := opts.SeedConfig.Validate(); err != nil {
			return nil, err
		}
		s.seedConfig = *opts.SeedConfig
	}
	s.lifecycle = &holiday.Lifecycle{Now: s.now, NewID: holiday.NewRequestID}

	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// =============================================================================
// PERSISTENCE
// =============================================================================

func (s *Service) load(ctx context.Context) error {
	if err := loadOrSeed(ctx, s, generic.KeyConfig, &s.config, func() holiday.SystemConfig { return s.seedConfig }); err != nil {
		return err
	}
	if err := loadOrSeed(ctx, s, generic.KeyBranches, &s.branches, SeedBranches); err != nil {
		return err
	}
	if err := loadOrSeed(ctx, s, generic.KeyStaff, &s.staff, func() []holiday.Staff {
		return SeedStaff(s.branches, s.config)
	}); err != nil {
		return err
	}
	if err := loadOrSeed(ctx, s, generic.KeyUsers, &s.users, SeedUsers); err != nil {
		return err
	}
	if err := loadOrSeed(ctx, s, generic.KeyRequests, &s.requests, func() []holiday.HolidayRequest {
		return []holiday.HolidayRequest{}
	}); err != nil {
		return err
	}
	if err := loadOrSeed(ctx, s, generic.KeySession, &s.sessions, func() map[string]Session {
		return map[string]Session{}
	}); err != nil {
		return err
	}
	if s.sessions == nil {
		s.sessions = map[string]Session{}
	}

	s.log.Info("planner state loaded",
		zap.Int("branches", len(s.branches)),
		zap.Int("staff", len(s.staff)),
		zap.Int("requests", len(s.requests)),
		zap.Int("users", len(s.users)),
	)
	return nil
}

func loadOrSeed[T any](ctx context.Context, s *Service, key generic.Key, dst *T, seed func() T) error {
	data, ok, err := s.store.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", key, err)
	}
	if ok {
		if err := json.Unmarshal(data, dst); err != nil {
			return fmt.Errorf("failed to decode %s: %w", key, err)
		}
		return nil
	}
	*dst = seed()
	s.log.Info("seeding empty document", zap.String("key", string(key)))
	return s.persist(ctx, key, *dst)
}

func (s *Service) persist(ctx context.Context, key generic.Key, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.store.Save(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// =============================================================================
// READS
// =============================================================================

func (s *Service) Requests() []holiday.HolidayRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]holiday.HolidayRequest(nil), s.requests...)
}

func (s *Service) Branches() []holiday.Branch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]holiday.Branch(nil), s.branches...)
}

func (s *Service) Staff() []holiday.Staff {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]holiday.Staff(nil), s.staff...)
}

func (s *Service) Users() []holiday.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]holiday.User(nil), s.users...)
}

func (s *Service) Config() holiday.SystemConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.config
	cfg.PrimeTimeMonths = append([]int(nil), s.config.PrimeTimeMonths...)
	return cfg
}

// Request returns the request with id.
func (s *Service) Request(id holiday.RequestID) (holiday.HolidayRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := holiday.Find(s.requests, id)
	if !ok {
		return holiday.HolidayRequest{}, generic.NewNotFoundError("request", string(id))
	}
	return r, nil
}

// StaffMember returns the staff member with id.
func (s *Service) StaffMember(id holiday.StaffID) (holiday.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := holiday.FindStaff(s.staff, id)
	if !ok {
		return holiday.Staff{}, generic.NewNotFoundError("staff", string(id))
	}
	return m, nil
}

// Today is the current calendar day on the service clock.
func (s *Service) Today() generic.Date {
	return generic.Today(s.now)
}

// =============================================================================
// HOLIDAY REQUESTS
// =============================================================================

// CreateRequest books a holiday. The staff member must exist; the request's
// BranchID is always copied from their record.
func (s *Service) CreateRequest(ctx context.Context, d holiday.Draft) (holiday.HolidayRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.StaffID != "" {
		member, ok := holiday.FindStaff(s.staff, d.StaffID)
		if !ok {
			return holiday.HolidayRequest{}, generic.NewNotFoundError("staff", string(d.StaffID))
		}
		d.BranchID = member.BranchID
	}

	requests, created, err := s.lifecycle.Create(s.requests, d)
	if err != nil {
		return holiday.HolidayRequest{}, err
	}
	if err := s.persist(ctx, generic.KeyRequests, requests); err != nil {
		return holiday.HolidayRequest{}, err
	}
	s.requests = requests

	s.log.Info("holiday request created",
		zap.String("id", string(created.ID)),
		zap.String("staff_id", string(created.StaffID)),
		zap.Stringer("period", created.Period()),
		zap.Int("days", created.Days()),
	)
	return created, nil
}

// UpdateRequest applies the patch. Moving the request to another staff
// member requires that member to exist.
func (s *Service) UpdateRequest(ctx context.Context, p holiday.Patch) (holiday.HolidayRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.StaffID != nil {
		if _, ok := holiday.FindStaff(s.staff, *p.StaffID); !ok {
			return holiday.HolidayRequest{}, generic.NewNotFoundError("staff", string(*p.StaffID))
		}
	}

	requests, updated, err := s.lifecycle.Update(s.requests, p)
	if err != nil {
		return holiday.HolidayRequest{}, err
	}
	if err := s.persist(ctx, generic.KeyRequests, requests); err != nil {
		return holiday.HolidayRequest{}, err
	}
	s.requests = requests

	s.log.Info("holiday request updated", zap.String("id", string(updated.ID)))
	return updated, nil
}

// SetRequestStatus approves or un-approves a request.
func (s *Service) SetRequestStatus(ctx context.Context, id holiday.RequestID, status holiday.Status) (holiday.HolidayRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	requests, updated, err := s.lifecycle.SetStatus(s.requests, id, status)
	if err != nil {
		return holiday.HolidayRequest{}, err
	}
	if err := s.persist(ctx, generic.KeyRequests, requests); err != nil {
		return holiday.HolidayRequest{}, err
	}
	s.requests = requests

	s.log.Info("holiday request status changed",
		zap.String("id", string(id)),
		zap.String("status", string(status)),
	)
	return updated, nil
}

// DeleteRequest removes a request. Unknown ids are not an error.
func (s *Service) DeleteRequest(ctx context.Context, id holiday.RequestID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	requests := holiday.Delete(s.requests, id)
	if len(requests) == len(s.requests) {
		return nil
	}
	if err := s.persist(ctx, generic.KeyRequests, requests); err != nil {
		return err
	}
	s.requests = requests

	s.log.Info("holiday request deleted", zap.String("id", string(id)))
	return nil
}

// Advise computes the allowance badge and rotation warning for a
// prospective booking. excludeID is the request being edited, if any.
func (s *Service) Advise(staffID holiday.StaffID, start, end generic.Date, excludeID holiday.RequestID) (Advice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := holiday.FindStaff(s.staff, staffID)
	if !ok {
		return Advice{}, generic.NewNotFoundError("staff", string(staffID))
	}
	days := holiday.DurationDays(start, end)
	referenceYear := generic.Today(s.now).Year()

	return Advice{
		StaffID:           staffID,
		Days:              days,
		Allowance:         holiday.SummarizeAllowance(s.requests, member, excludeID, days),
		PrimeTimeLastYear: holiday.HadPrimeTimeLastYear(s.requests, staffID, s.config.PrimeTimeMonths, referenceYear),
		StartsInPrimeTime: !start.IsZero() && s.config.IsPrimeMonth(start.MonthIndex()),
	}, nil
}

// =============================================================================
// BRANCHES
// =============================================================================

func (s *Service) CreateBranch(ctx context.Context, name, location string) (holiday.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := holiday.NewBranch(name, location, holiday.BranchID(holiday.NewID("br")))
	if err != nil {
		return holiday.Branch{}, err
	}
	branches := append(append([]holiday.Branch(nil), s.branches...), b)
	if err := s.persist(ctx, generic.KeyBranches, branches); err != nil {
		return holiday.Branch{}, err
	}
	s.branches = branches

	s.log.Info("branch created", zap.String("id", string(b.ID)), zap.String("name", b.Name))
	return b, nil
}

func (s *Service) UpdateBranch(ctx context.Context, id holiday.BranchID, name, location string) (holiday.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	branches, updated, err := holiday.UpdateBranch(s.branches, id, name, location)
	if err != nil {
		return holiday.Branch{}, err
	}
	if err := s.persist(ctx, generic.KeyBranches, branches); err != nil {
		return holiday.Branch{}, err
	}
	s.branches = branches
	return updated, nil
}

// DeleteBranch removes the branch and its staff.
func (s *Service) DeleteBranch(ctx context.Context, id holiday.BranchID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	branches, staff := holiday.DeleteBranch(s.branches, s.staff, id)
	if len(branches) == len(s.branches) {
		return nil
	}
	if err := s.persist(ctx, generic.KeyStaff, staff); err != nil {
		return err
	}
	if err := s.persist(ctx, generic.KeyBranches, branches); err != nil {
		return err
	}
	removed := len(s.staff) - len(staff)
	s.branches, s.staff = branches, staff

	s.log.Info("branch deleted", zap.String("id", string(id)), zap.Int("staff_removed", removed))
	return nil
}

// =============================================================================
// STAFF
// =============================================================================

func (s *Service) CreateStaff(ctx context.Context, d holiday.StaffDraft) (holiday.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkBranch(d.BranchID); err != nil {
		return holiday.Staff{}, err
	}
	member, err := holiday.NewStaff(d, s.config, holiday.StaffID(holiday.NewID("staff")))
	if err != nil {
		return holiday.Staff{}, err
	}
	staff := append(append([]holiday.Staff(nil), s.staff...), member)
	if err := s.persist(ctx, generic.KeyStaff, staff); err != nil {
		return holiday.Staff{}, err
	}
	s.staff = staff

	s.log.Info("staff created", zap.String("id", string(member.ID)), zap.String("branch_id", string(member.BranchID)))
	return member, nil
}

func (s *Service) UpdateStaff(ctx context.Context, id holiday.StaffID, d holiday.StaffDraft) (holiday.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkBranch(d.BranchID); err != nil {
		return holiday.Staff{}, err
	}
	staff, updated, err := holiday.UpdateStaff(s.staff, id, d)
	if err != nil {
		return holiday.Staff{}, err
	}
	if err := s.persist(ctx, generic.KeyStaff, staff); err != nil {
		return holiday.Staff{}, err
	}
	s.staff = staff
	return updated, nil
}

// DeleteStaff removes a staff member. Their requests are kept.
func (s *Service) DeleteStaff(ctx context.Context, id holiday.StaffID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staff := holiday.DeleteStaff(s.staff, id)
	if len(staff) == len(s.staff) {
		return nil
	}
	if err := s.persist(ctx, generic.KeyStaff, staff); err != nil {
		return err
	}
	s.staff = staff

	s.log.Info("staff deleted", zap.String("id", string(id)))
	return nil
}

func (s *Service) checkBranch(id holiday.BranchID) error {
	if id == "" {
		return nil // reported by the staff validation
	}
	if _, ok := holiday.FindBranch(s.branches, id); !ok {
		return generic.NewValidationError("branchId", fmt.Sprintf("unknown branch %q", id))
	}
	return nil
}

// =============================================================================
// USERS
// =============================================================================

// SaveUser creates the user when ID is empty, otherwise replaces it.
func (s *Service) SaveUser(ctx context.Context, u holiday.User) (holiday.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = holiday.UserID(holiday.NewID("user"))
	} else if _, ok := holiday.FindUser(s.users, u.ID); !ok {
		return holiday.User{}, generic.NewNotFoundError("user", string(u.ID))
	}
	if u.Role == holiday.RoleManager {
		if err := s.checkBranch(u.BranchID); err != nil {
			return holiday.User{}, err
		}
	}

	users, err := holiday.SaveUser(s.users, u)
	if err != nil {
		return holiday.User{}, err
	}
	if err := s.persist(ctx, generic.KeyUsers, users); err != nil {
		return holiday.User{}, err
	}
	s.users = users

	saved, _ := holiday.FindUser(users, u.ID)
	s.log.Info("user saved", zap.String("id", string(saved.ID)), zap.String("role", string(saved.Role)))
	return saved, nil
}

// DeleteUser removes a user and their sessions. actorID may not delete itself.
func (s *Service) DeleteUser(ctx context.Context, id, actorID holiday.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := holiday.DeleteUser(s.users, id, actorID)
	if err != nil {
		return err
	}
	if len(users) == len(s.users) {
		return nil
	}
	if err := s.persist(ctx, generic.KeyUsers, users); err != nil {
		return err
	}
	s.users = users
	s.log.Info("user deleted", zap.String("id", string(id)))

	if _, err := s.dropSessions(ctx, func(sess Session) bool { return sess.UserID == id }); err != nil {
		return fmt.Errorf("user deleted but sessions not cleared: %w", err)
	}
	return nil
}

// ChangePassword sets a new password for the user.
func (s *Service) ChangePassword(ctx context.Context, id holiday.UserID, password, confirm string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := holiday.ChangePassword(s.users, id, password, confirm)
	if err != nil {
		return err
	}
	if err := s.persist(ctx, generic.KeyUsers, users); err != nil {
		return err
	}
	s.users = users
	return nil
}

// =============================================================================
// SYSTEM CONFIG
// =============================================================================

// UpdateConfig replaces the system config. Existing staff allowances are not
// touched; the new default applies to staff created afterwards.
func (s *Service) UpdateConfig(ctx context.Context, cfg holiday.SystemConfig) (holiday.SystemConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveConfig(ctx, cfg)
}

// TogglePrimeMonth flips one zero-based month in or out of prime time.
func (s *Service) TogglePrimeMonth(ctx context.Context, month int) (holiday.SystemConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveConfig(ctx, s.config.TogglePrimeMonth(month))
}

// saveConfig validates, persists and swaps in cfg. Caller holds the lock.
func (s *Service) saveConfig(ctx context.Context, cfg holiday.SystemConfig) (holiday.SystemConfig, error) {
	if err := cfg.Validate(); err != nil {
		return holiday.SystemConfig{}, err
	}
	if cfg.PrimeTimeMonths == nil {
		cfg.PrimeTimeMonths = []int{}
	}
	if err := s.persist(ctx, generic.KeyConfig, cfg); err != nil {
		return holiday.SystemConfig{}, err
	}
	s.config = cfg

	s.log.Info("system config updated",
		zap.Ints("prime_time_months", cfg.PrimeTimeMonths),
		zap.Int("default_allowance", cfg.DefaultAllowance),
	)
	return cfg, nil
}

// =============================================================================
// SESSIONS
// =============================================================================

// Login checks the credentials and opens a session.
func (s *Service) Login(ctx context.Context, username, password string) (Session, holiday.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := holiday.Authenticate(s.users, username, password)
	if err != nil {
		s.log.Warn("login failed", zap.String("username", username))
		return Session{}, holiday.User{}, err
	}

	sess := Session{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		ExpiresAt: s.now().Add(s.ttl),
	}
	sessions := s.copySessions()
	sessions[sess.Token] = sess
	if err := s.persist(ctx, generic.KeySession, sessions); err != nil {
		return Session{}, holiday.User{}, err
	}
	s.sessions = sessions

	s.log.Info("login", zap.String("user_id", string(u.ID)), zap.String("role", string(u.Role)))
	return sess, u, nil
}

// Logout ends the session. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[token]; !ok {
		return nil
	}
	sessions := s.copySessions()
	delete(sessions, token)
	if err := s.persist(ctx, generic.KeySession, sessions); err != nil {
		return err
	}
	s.sessions = sessions
	return nil
}

// SessionUser resolves a token to its user. Missing, expired, or orphaned
// sessions return generic.ErrUnauthenticated.
func (s *Service) SessionUser(token string) (holiday.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok || sess.Expired(s.now()) {
		return holiday.User{}, generic.ErrUnauthenticated
	}
	u, ok := holiday.FindUser(s.users, sess.UserID)
	if !ok {
		return holiday.User{}, generic.ErrUnauthenticated
	}
	return u, nil
}

// SweepSessions removes expired sessions and returns how many were removed.
func (s *Service) SweepSessions(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	return s.dropSessions(ctx, func(sess Session) bool { return sess.Expired(now) })
}

// dropSessions removes matching sessions. Caller holds the lock.
func (s *Service) dropSessions(ctx context.Context, match func(Session) bool) (int, error) {
	sessions := make(map[string]Session, len(s.sessions))
	for token, sess := range s.sessions {
		if !match(sess) {
			sessions[token] = sess
		}
	}
	removed := len(s.sessions) - len(sessions)
	if removed == 0 {
		return 0, nil
	}
	if err := s.persist(ctx, generic.KeySession, sessions); err != nil {
		s.log.Error("failed to persist sessions", zap.Error(err))
		return 0, err
	}
	s.sessions = sessions
	return removed, nil
}

func (s *Service) copySessions() map[string]Session {
	sessions := make(map[string]Session, len(s.sessions)+1)
	for k, v := range s.sessions {
		sessions[k] = v
	}
	return sessions
}

// =============================================================================
// RESET
// =============================================================================

// Reset discards all data, reseeds every document and ends every session.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range generic.Keys {
		if err := s.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}

	fresh := &Service{
		store:      s.store,
		log:        s.log,
		now:        s.now,
		ttl:        s.ttl,
		seedConfig: s.seedConfig,
		lifecycle:  s.lifecycle,
	}
	if err := fresh.load(ctx); err != nil {
		return err
	}
	s.requests, s.branches, s.staff, s.users = fresh.requests, fresh.branches, fresh.staff, fresh.users
	s.config, s.sessions = fresh.config, fresh.sessions

	s.log.Warn("planner data reset")
	return nil
}
