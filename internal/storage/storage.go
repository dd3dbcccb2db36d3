// Package storage defines the Storage interface — a contract that any
// database backend must satisfy to work with this application.
//
// WHY AN INTERFACE?
// ─────────────────
// Handlers (HTTP layer) should not know or care which database they
// are talking to. By depending only on this interface:
//
//   - Switching databases = implement the interface for the new DB,
//     change one line in main.go. Zero handler changes.
//
//   - Writing tests = pass a fake/mock that satisfies the interface.
//     No real database needed for unit tests.
package storage

import (
	"errors"
	"time"

	"github.com/vvvvvivekkk/health/internal/types"
)

// Sentinel errors every implementation must return for the two
// conditions the handlers need to tell apart from a generic store
// failure. Handlers match with errors.Is and map them to 404 and 409.
var (
	// ErrNotFound means the requested id (or token, or email) does not
	// resolve to a row.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail means an insert violated the unique email
	// constraint on users.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Storage is the database contract.
// Any concrete type that implements ALL of these methods automatically
// satisfies this interface — Go does this implicitly (no "implements"
// keyword required).
type Storage interface {
	// ── users ─────────────────────────────────────────────────────

	// CreateUser inserts a new account with an already-hashed
	// credential and returns the auto-generated id. Returns
	// ErrDuplicateEmail if the email is taken.
	CreateUser(name, email, passwordHash string, role types.Role) (int64, error)

	// GetUserByEmail fetches one account by its unique email.
	// Returns ErrNotFound when no account matches.
	GetUserByEmail(email string) (types.User, error)

	// GetUserByID fetches one account by primary key.
	GetUserByID(id int64) (types.User, error)

	// GetUsersByRole returns every account with the given role,
	// e.g. the doctor roster. Empty slice (not nil) when none exist.
	GetUsersByRole(role types.Role) ([]types.User, error)

	// ── sessions ──────────────────────────────────────────────────

	// CreateSession persists an issued bearer token.
	CreateSession(token string, userID int64, expiresAt time.Time) error

	// GetUserByToken resolves a bearer token to its account. Returns
	// ErrNotFound for unknown or expired tokens.
	GetUserByToken(token string, now time.Time) (types.User, error)

	// ── appointments ──────────────────────────────────────────────

	// CreateAppointment inserts a booking and returns its id. Status
	// is stored exactly as given (the handler forces pending).
	CreateAppointment(studentID, doctorID int64, date, timeSlot string, status types.AppointmentStatus) (int64, error)

	// GetAppointmentByID fetches one appointment with the student and
	// doctor names joined in. Returns ErrNotFound when missing.
	GetAppointmentByID(id int64) (types.Appointment, error)

	// GetAppointments returns every appointment, names joined in.
	GetAppointments() ([]types.Appointment, error)

	// GetAppointmentsByStudent / GetAppointmentsByDoctor return the
	// caller-scoped slices used by the list endpoint.
	GetAppointmentsByStudent(studentID int64) ([]types.Appointment, error)
	GetAppointmentsByDoctor(doctorID int64) ([]types.Appointment, error)

	// UpdateAppointment replaces date, time and status of an existing
	// appointment and returns the updated row.
	UpdateAppointment(id int64, date, timeSlot string, status types.AppointmentStatus) (types.Appointment, error)

	// DeleteAppointment removes an appointment row.
	DeleteAppointment(id int64) error

	// ── medical records ───────────────────────────────────────────

	// CreateRecord inserts a clinical note for a student and returns
	// its id.
	CreateRecord(studentID int64, bloodGroup, allergies, prescription string) (int64, error)

	// GetRecordByID fetches one record, student name joined in.
	GetRecordByID(id int64) (types.MedicalRecord, error)

	// GetRecords returns every record; GetRecordsByStudent returns the
	// student-scoped slice.
	GetRecords() ([]types.MedicalRecord, error)
	GetRecordsByStudent(studentID int64) ([]types.MedicalRecord, error)

	// UpdateRecord replaces the clinical fields of a record and
	// returns the updated row.
	UpdateRecord(id int64, bloodGroup, allergies, prescription string) (types.MedicalRecord, error)

	// DeleteRecord removes a record row.
	DeleteRecord(id int64) error
}
