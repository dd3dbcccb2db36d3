// Package authz is the authorization gate: pure functions mapping
// (caller, action, target) → allow/deny, consulted by every handler
// before it touches the store for a write and before it widens a read.
//
// The gate never performs I/O. Handlers resolve the target entity
// first (so "not found" stays distinct from "forbidden") and then ask
// the gate. A deny always surfaces to the client as forbidden.
//
// Role × action matrix:
//
//	action                  admin   doctor        student
//	list appointments       all     own (doctor)  own (student)
//	create appointment      —       —             self only
//	approve/reject          any     own only      —
//	update appointment      any     own only      own, pending only
//	delete appointment      any     —             own, pending only
//	list records            all     all           own only
//	create/update record    yes     yes           —
//	delete record           yes     —             —
//	list students roster    yes     yes           —
//
// Every switch below covers all three roles explicitly and denies
// anything unknown, so adding a fourth role forces a decision at each
// rule instead of silently allowing or denying it.
package authz

import "github.com/vvvvvivekkk/health/internal/types"

// Scope is the visibility window a caller gets on a list endpoint.
// Free-text search filters are applied inside the scope, never across
// it.
type Scope int

const (
	// ScopeNone means the caller may not list this resource at all.
	ScopeNone Scope = iota
	// ScopeAll means no row filter.
	ScopeAll
	// ScopeAsStudent restricts rows to those referencing the caller as
	// the student.
	ScopeAsStudent
	// ScopeAsDoctor restricts rows to those referencing the caller as
	// the doctor.
	ScopeAsDoctor
)

// AppointmentScope returns the caller's visibility window for
// GET /api/appointments.
func AppointmentScope(caller types.User) Scope {
	switch caller.Role {
	case types.RoleAdmin:
		return ScopeAll
	case types.RoleDoctor:
		return ScopeAsDoctor
	case types.RoleStudent:
		return ScopeAsStudent
	}
	return ScopeNone
}

// RecordScope returns the caller's visibility window for
// GET /api/records. Doctors see every record (they treat any student);
// students see only their own.
func RecordScope(caller types.User) Scope {
	switch caller.Role {
	case types.RoleAdmin, types.RoleDoctor:
		return ScopeAll
	case types.RoleStudent:
		return ScopeAsStudent
	}
	return ScopeNone
}

// CanCreateAppointment: students book for themselves; staff never
// create bookings on a student's behalf.
func CanCreateAppointment(caller types.User) bool {
	return caller.Role == types.RoleStudent
}

// CanDecideAppointment covers both approve and reject: admins decide
// any appointment, doctors only their own, students never.
// Whether the appointment is still in a decidable state is the
// lifecycle controller's question, not the gate's.
func CanDecideAppointment(caller types.User, a types.Appointment) bool {
	switch caller.Role {
	case types.RoleAdmin:
		return true
	case types.RoleDoctor:
		return a.DoctorID == caller.ID
	case types.RoleStudent:
		return false
	}
	return false
}

// CanUpdateAppointment: admins edit anything (override), doctors edit
// their own, students edit their own only while it is still pending.
func CanUpdateAppointment(caller types.User, a types.Appointment) bool {
	switch caller.Role {
	case types.RoleAdmin:
		return true
	case types.RoleDoctor:
		return a.DoctorID == caller.ID
	case types.RoleStudent:
		return a.StudentID == caller.ID && a.Status == types.StatusPending
	}
	return false
}

// CanDeleteAppointment: admins delete at any state; students may
// withdraw their own booking while it is pending; doctors never
// delete.
func CanDeleteAppointment(caller types.User, a types.Appointment) bool {
	switch caller.Role {
	case types.RoleAdmin:
		return true
	case types.RoleDoctor:
		return false
	case types.RoleStudent:
		return a.StudentID == caller.ID && a.Status == types.StatusPending
	}
	return false
}

// CanWriteRecord covers create and update of medical records: staff
// only.
func CanWriteRecord(caller types.User) bool {
	switch caller.Role {
	case types.RoleAdmin, types.RoleDoctor:
		return true
	case types.RoleStudent:
		return false
	}
	return false
}

// CanDeleteRecord: admins only. A doctor can author and amend a record
// but never remove one.
func CanDeleteRecord(caller types.User) bool {
	return caller.Role == types.RoleAdmin
}

// CanListStudents guards the student roster (GET /api/users/students):
// staff only. The doctor roster is public and has no gate.
func CanListStudents(caller types.User) bool {
	switch caller.Role {
	case types.RoleAdmin, types.RoleDoctor:
		return true
	case types.RoleStudent:
		return false
	}
	return false
}

// CanOverrideStatus reports whether the caller may set an arbitrary
// status through a direct edit, bypassing the pending-only transition
// rules. Admin edits are treated as an override, not a normal
// transition.
func CanOverrideStatus(caller types.User) bool {
	return caller.Role == types.RoleAdmin
}
