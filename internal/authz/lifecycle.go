package authz

import "github.com/vvvvvivekkk/health/internal/types"

// Lifecycle of an appointment:
//
//	pending ──approve──▶ approved
//	pending ──reject───▶ rejected
//	pending ──student delete──▶ (row removed; the cancelled path)
//
// approved, rejected, completed and cancelled are terminal: no
// role-driven transition leaves them. The only way out is a direct
// admin edit, which CanOverrideStatus treats as an override rather
// than a transition, and admin delete, which is allowed at any state.

// InitialStatus is the status every appointment is created with,
// regardless of anything the client supplied.
func InitialStatus() types.AppointmentStatus {
	return types.StatusPending
}

// CanTransition reports whether moving an appointment from one status
// to another is a legal lifecycle step. Only pending appointments can
// be decided; re-approving an already-approved appointment is NOT a
// transition and is rejected here (the caller surfaces it as a
// conflict).
func CanTransition(from, to types.AppointmentStatus) bool {
	if from != types.StatusPending {
		return false
	}
	switch to {
	case types.StatusApproved, types.StatusRejected:
		return true
	}
	return false
}
