// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, authz, and utils can all import types without
// depending on each other.
package types

import "time"

// Role is a closed set of account roles.
//
// Using a named string type instead of raw string literals means the
// compiler catches a misspelled role anywhere a Role is expected, and
// the authorization gate can switch over it exhaustively.
type Role string

const (
	RoleStudent Role = "student"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the three known roles.
// Anything else (including the empty string) is rejected at the
// boundary before it can reach the gate.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// AppointmentStatus is the closed set of appointment lifecycle states.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusApproved  AppointmentStatus = "approved"
	StatusRejected  AppointmentStatus = "rejected"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Valid reports whether s is a known appointment status.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// User represents an account in the system.
//
// PasswordHash is tagged json:"-" so it can never leak into a response
// body, no matter which handler serializes the struct.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session is one issued bearer token. The token value is opaque to the
// client; the server resolves it back to a user on every request.
type Session struct {
	Token     string    `json:"-"`
	UserID    int64     `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Appointment is a booking request between a student and a doctor.
//
// StudentName and DoctorName are not stored — they are resolved by
// joining to the users table at read time, so a rename can never leave
// a stale copy behind. The JSON keys match what the existing client
// expects.
type Appointment struct {
	ID          int64             `json:"id"`
	StudentID   int64             `json:"studentId"`
	DoctorID    int64             `json:"doctorId"`
	StudentName string            `json:"studentName"`
	DoctorName  string            `json:"doctorName"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	Status      AppointmentStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// MedicalRecord is a per-student clinical note created by staff.
// StudentName is resolved by join at read time, like on Appointment.
type MedicalRecord struct {
	ID           int64     `json:"id"`
	StudentID    int64     `json:"studentId"`
	StudentName  string    `json:"studentName"`
	BloodGroup   string    `json:"bloodGroup"`
	Allergies    string    `json:"allergies"`
	Prescription string    `json:"prescription"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Request payloads. The validate:"..." tags are checked by
// go-playground/validator in the handlers; json tags match the client.
// ─────────────────────────────────────────────────────────────────────────────

// RegisterRequest is the body of POST /api/users/register.
// Role is optional and defaults to student, matching the sign-up form.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role"`
}

// LoginRequest is the body of POST /api/users/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by both register and login: the account
// plus an opaque bearer token the client sends back in the
// Authorization header on every subsequent request.
type AuthResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Token string `json:"token"`
}

// CreateAppointmentRequest is the body of POST /api/appointments.
// The student side comes from the authenticated caller, never from the
// body; any client-supplied status is ignored (status is forced to
// pending on creation).
type CreateAppointmentRequest struct {
	DoctorID int64  `json:"doctorId" validate:"required"`
	Date     string `json:"date" validate:"required"`
	Time     string `json:"time" validate:"required"`
}

// UpdateAppointmentRequest is the body of PUT /api/appointments/{id}.
// Status is honoured only for admin callers (a direct override);
// students and doctors may only reschedule date/time.
type UpdateAppointmentRequest struct {
	Date   string            `json:"date" validate:"required"`
	Time   string            `json:"time" validate:"required"`
	Status AppointmentStatus `json:"status"`
}

// CreateRecordRequest is the body of POST /api/records.
// Allergies and Prescription default to "None" when left empty.
type CreateRecordRequest struct {
	StudentID    int64  `json:"studentId" validate:"required"`
	BloodGroup   string `json:"bloodGroup" validate:"required"`
	Allergies    string `json:"allergies"`
	Prescription string `json:"prescription"`
}

// UpdateRecordRequest is the body of PUT /api/records/{id}.
type UpdateRecordRequest struct {
	BloodGroup   string `json:"bloodGroup" validate:"required"`
	Allergies    string `json:"allergies"`
	Prescription string `json:"prescription"`
}
