/*
authz.go - Session authentication and role checks

PURPOSE:
  Resolves the bearer token to a user and decides what that user may do.
  The domain packages perform no role checks; every rule lives here.

RULES:
  HeadOffice  everything
  Manager     read everything;
              create, edit and delete requests and staff of their own branch;
              never change a request's status (their new requests are Pending);
              no branch, user, config or reset management

SEE ALSO:
  - server.go: where the middleware is mounted
  - planner/planner.go: SessionUser
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/warp/holiday-planner/generic"
	"github.com/warp/holiday-planner/holiday"
)

type ctxKey int

const (
	userKey ctxKey = iota
	tokenKey
)

// Authenticate rejects requests without a live session and stores the
// session user in the request context.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			h.handleError(w, r, generic.ErrUnauthenticated)
			return
		}
		u, err := h.Planner.SessionUser(token)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), userKey, u)
		ctx = context.WithValue(ctx, tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireHeadOffice allows only head-office users through.
func (h *Handler) RequireHeadOffice(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !currentUser(r).IsHeadOffice() {
			h.handleError(w, r, &generic.ForbiddenError{Reason: "head office only"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return ""
}

func currentUser(r *http.Request) holiday.User {
	u, _ := r.Context().Value(userKey).(holiday.User)
	return u
}

func currentToken(r *http.Request) string {
	t, _ := r.Context().Value(tokenKey).(string)
	return t
}

// =============================================================================
// BRANCH SCOPE
// =============================================================================

// canEditBranch reports whether u may change records of branch b.
func canEditBranch(u holiday.User, b holiday.BranchID) bool {
	return u.IsHeadOffice() || (u.BranchID != "" && u.BranchID == b)
}

func authorizeBranch(u holiday.User, b holiday.BranchID) error {
	if canEditBranch(u, b) {
		return nil
	}
	return &generic.ForbiddenError{Reason: fmt.Sprintf("branch %q is read-only for this user", b)}
}

func authorizeStatusChange(u holiday.User) error {
	if u.IsHeadOffice() {
		return nil
	}
	return &generic.ForbiddenError{Reason: "only head office can approve requests"}
}
