// Package auth holds the single role/route/ownership policy for the portal
// and both of its enforcement points: the page gate (redirect-based, for
// browser navigation) and the API middleware (structured 401/403, for
// programmatic calls). Keeping the rules in one table prevents the two
// paths from drifting apart.
package auth

import (
	"strings"

	"github.com/google/uuid"

	"github.com/intake/intake/internal/platform/apperr"
)

const (
	RolePatient  = "PATIENT"
	RoleReviewer = "REVIEWER"
)

// ValidRole reports whether r is one of the two fixed roles.
func ValidRole(r string) bool {
	return r == RolePatient || r == RoleReviewer
}

// Route partition. Disjoint and static: patient-only, reviewer-only, and
// public page paths. Any page path not listed as protected is public.
var (
	patientPaths  = []string{"/dashboard", "/intake"}
	reviewerPaths = []string{"/queue"}
	publicPaths   = []string{"/", "/signup"}
)

func matchesAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// IsProtectedPath reports whether a page path requires a session.
func IsProtectedPath(path string) bool {
	return matchesAny(path, patientPaths) || matchesAny(path, reviewerPaths)
}

// IsPublicPath reports whether a page path is an unauthenticated entry path.
func IsPublicPath(path string) bool {
	return matchesAny(path, publicPaths)
}

// RoleAllowsPath reports whether the role may visit the page path.
func RoleAllowsPath(role, path string) bool {
	if matchesAny(path, reviewerPaths) {
		return role == RoleReviewer
	}
	if matchesAny(path, patientPaths) {
		return role == RolePatient
	}
	return true
}

// HomePath is where an authenticated user lands: patients on the dashboard,
// reviewers on the queue.
func HomePath(role string) string {
	if role == RoleReviewer {
		return "/queue"
	}
	return "/dashboard"
}

// RequireReviewer rejects callers without the REVIEWER role. The message
// names the attempted operation so end users understand the refusal.
func RequireReviewer(caller *Identity, operation string) error {
	if caller.Role != RoleReviewer {
		return apperr.New(apperr.Forbidden, "Only reviewers can "+operation)
	}
	return nil
}

// RequirePatient rejects callers without the PATIENT role.
func RequirePatient(caller *Identity, operation string) error {
	if caller.Role != RolePatient {
		return apperr.New(apperr.Forbidden, "Only patients can "+operation)
	}
	return nil
}

// RequireOwnerOrReviewer enforces the ownership rule layered on top of
// roles: reviewers may touch any intake, patients only their own.
func RequireOwnerOrReviewer(caller *Identity, ownerID uuid.UUID) error {
	if caller.Role == RoleReviewer {
		return nil
	}
	if caller.UserID != ownerID {
		return apperr.New(apperr.Forbidden, "You don't have permission to access this intake")
	}
	return nil
}
