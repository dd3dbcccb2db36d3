package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vvvvvivekkk/health/internal/types"
)

var (
	admin   = types.User{ID: 1, Role: types.RoleAdmin}
	doctor  = types.User{ID: 2, Role: types.RoleDoctor}
	student = types.User{ID: 3, Role: types.RoleStudent}
	nobody  = types.User{ID: 4, Role: types.Role("nurse")} // unknown role
)

// appt builds an appointment between student (id 3) and doctor (id 2).
func appt(status types.AppointmentStatus) types.Appointment {
	return types.Appointment{ID: 10, StudentID: 3, DoctorID: 2, Status: status}
}

func TestAppointmentScope(t *testing.T) {
	assert.Equal(t, ScopeAll, AppointmentScope(admin))
	assert.Equal(t, ScopeAsDoctor, AppointmentScope(doctor))
	assert.Equal(t, ScopeAsStudent, AppointmentScope(student))
	assert.Equal(t, ScopeNone, AppointmentScope(nobody))
}

func TestRecordScope(t *testing.T) {
	assert.Equal(t, ScopeAll, RecordScope(admin))
	assert.Equal(t, ScopeAll, RecordScope(doctor))
	assert.Equal(t, ScopeAsStudent, RecordScope(student))
	assert.Equal(t, ScopeNone, RecordScope(nobody))
}

func TestCanCreateAppointment(t *testing.T) {
	assert.True(t, CanCreateAppointment(student))
	assert.False(t, CanCreateAppointment(doctor))
	assert.False(t, CanCreateAppointment(admin))
	assert.False(t, CanCreateAppointment(nobody))
}

func TestCanDecideAppointment(t *testing.T) {
	a := appt(types.StatusPending)

	assert.True(t, CanDecideAppointment(admin, a))
	assert.True(t, CanDecideAppointment(doctor, a))
	assert.False(t, CanDecideAppointment(student, a))
	assert.False(t, CanDecideAppointment(nobody, a))

	// A doctor acting on an appointment that is not theirs is denied
	// regardless of status.
	otherDoctor := types.User{ID: 99, Role: types.RoleDoctor}
	assert.False(t, CanDecideAppointment(otherDoctor, a))
	assert.False(t, CanDecideAppointment(otherDoctor, appt(types.StatusApproved)))
}

func TestCanUpdateAppointment(t *testing.T) {
	pending := appt(types.StatusPending)
	approved := appt(types.StatusApproved)

	// Admin: any appointment, any state.
	assert.True(t, CanUpdateAppointment(admin, pending))
	assert.True(t, CanUpdateAppointment(admin, approved))

	// Doctor: own appointments only, no state restriction.
	assert.True(t, CanUpdateAppointment(doctor, pending))
	assert.True(t, CanUpdateAppointment(doctor, approved))
	otherDoctor := types.User{ID: 99, Role: types.RoleDoctor}
	assert.False(t, CanUpdateAppointment(otherDoctor, pending))

	// Student: own appointments, but only while still pending.
	assert.True(t, CanUpdateAppointment(student, pending))
	assert.False(t, CanUpdateAppointment(student, approved))
	otherStudent := types.User{ID: 98, Role: types.RoleStudent}
	assert.False(t, CanUpdateAppointment(otherStudent, pending))
}

func TestCanDeleteAppointment(t *testing.T) {
	pending := appt(types.StatusPending)
	approved := appt(types.StatusApproved)

	// Admin deletes at any state; doctors never delete.
	assert.True(t, CanDeleteAppointment(admin, pending))
	assert.True(t, CanDeleteAppointment(admin, approved))
	assert.False(t, CanDeleteAppointment(doctor, pending))

	// Student may withdraw their own booking only while pending.
	assert.True(t, CanDeleteAppointment(student, pending))
	assert.False(t, CanDeleteAppointment(student, approved))
	otherStudent := types.User{ID: 98, Role: types.RoleStudent}
	assert.False(t, CanDeleteAppointment(otherStudent, pending))
}

func TestRecordPermissions(t *testing.T) {
	assert.True(t, CanWriteRecord(admin))
	assert.True(t, CanWriteRecord(doctor))
	assert.False(t, CanWriteRecord(student))
	assert.False(t, CanWriteRecord(nobody))

	// A doctor can never delete a record.
	assert.True(t, CanDeleteRecord(admin))
	assert.False(t, CanDeleteRecord(doctor))
	assert.False(t, CanDeleteRecord(student))
}

func TestCanListStudents(t *testing.T) {
	assert.True(t, CanListStudents(admin))
	assert.True(t, CanListStudents(doctor))
	assert.False(t, CanListStudents(student))
	assert.False(t, CanListStudents(nobody))
}

func TestCanOverrideStatus(t *testing.T) {
	assert.True(t, CanOverrideStatus(admin))
	assert.False(t, CanOverrideStatus(doctor))
	assert.False(t, CanOverrideStatus(student))
}
