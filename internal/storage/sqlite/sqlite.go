// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process, and no installation beyond the
// driver. Every mutation here is a single-row statement, atomic at
// the store level, which is all this domain needs — no invariant
// spans two tables at write time.
//
// Display names are deliberately NOT copied onto appointments or
// records. They live only on users and are joined in at read time, so
// renaming an account can never leave a stale name behind.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vvvvvivekkk/health/internal/config"
	"github.com/vvvvvivekkk/health/internal/storage"
	"github.com/vvvvvivekkk/health/internal/types"

	"github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by
// database/sql; a single *sql.DB is safe for concurrent use by
// multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

// Compile-time check that *SQLite satisfies the contract.
var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at the path specified in
// cfg.StoragePath, creates the schema if it does not already exist,
// and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open("sqlite3", cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent — safe on every boot.
	//
	// users.email carries the UNIQUE constraint that backs the
	// duplicate-registration check; the violation is translated to
	// storage.ErrDuplicateEmail in CreateUser.
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			name          TEXT     NOT NULL,
			email         TEXT     NOT NULL UNIQUE,
			password_hash TEXT     NOT NULL,
			role          TEXT     NOT NULL,
			created_at    DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token      TEXT     PRIMARY KEY,
			user_id    INTEGER  NOT NULL REFERENCES users(id),
			expires_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS appointments (
			id         INTEGER  PRIMARY KEY AUTOINCREMENT,
			student_id INTEGER  NOT NULL REFERENCES users(id),
			doctor_id  INTEGER  NOT NULL REFERENCES users(id),
			date       TEXT     NOT NULL,
			time       TEXT     NOT NULL,
			status     TEXT     NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			id           INTEGER  PRIMARY KEY AUTOINCREMENT,
			student_id   INTEGER  NOT NULL REFERENCES users(id),
			blood_group  TEXT     NOT NULL,
			allergies    TEXT     NOT NULL DEFAULT 'None',
			prescription TEXT     NOT NULL DEFAULT 'None',
			created_at   DATETIME NOT NULL,
			updated_at   DATETIME NOT NULL
		)`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("sqlite.New: create schema: %w", err)
		}
	}

	return &SQLite{Db: db}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Users
// ─────────────────────────────────────────────────────────────────────────────

// CreateUser inserts a new account. The UNIQUE index on email is the
// single source of truth for duplicate detection — no pre-check query,
// so two concurrent registrations cannot both slip through.
func (s *SQLite) CreateUser(name, email, passwordHash string, role types.Role) (int64, error) {
	stmt, err := s.Db.Prepare(
		"INSERT INTO users (name, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("CreateUser: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(name, email, passwordHash, string(role), time.Now().UTC())
	if err != nil {
		// The driver reports constraint violations as sqlite3.Error.
		// A unique violation on this table can only be the email.
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) &&
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return 0, storage.ErrDuplicateEmail
		}
		return 0, fmt.Errorf("CreateUser: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateUser: last insert id: %w", err)
	}

	return lastID, nil
}

func (s *SQLite) GetUserByEmail(email string) (types.User, error) {
	return s.getUser("email = ?", email)
}

func (s *SQLite) GetUserByID(id int64) (types.User, error) {
	return s.getUser("id = ?", id)
}

// getUser fetches exactly one user row matched by the given predicate.
// sql.ErrNoRows is translated to the storage.ErrNotFound sentinel so
// handlers never see driver-level errors.
func (s *SQLite) getUser(where string, arg any) (types.User, error) {
	var u types.User
	var role string

	err := s.Db.QueryRow(
		"SELECT id, name, email, password_hash, role, created_at FROM users WHERE "+where+" LIMIT 1",
		arg,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, storage.ErrNotFound
		}
		return types.User{}, fmt.Errorf("getUser: scan: %w", err)
	}

	u.Role = types.Role(role)
	return u, nil
}

func (s *SQLite) GetUsersByRole(role types.Role) ([]types.User, error) {
	rows, err := s.Db.Query(
		"SELECT id, name, email, password_hash, role, created_at FROM users WHERE role = ? ORDER BY id",
		string(role),
	)
	if err != nil {
		return nil, fmt.Errorf("GetUsersByRole: query: %w", err)
	}
	defer rows.Close()

	// Pre-allocate an empty (non-nil) slice so the list endpoints
	// serialize [] instead of null when the roster is empty.
	users := make([]types.User, 0)

	for rows.Next() {
		var u types.User
		var r string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &r, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("GetUsersByRole: scan row: %w", err)
		}
		u.Role = types.Role(r)
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetUsersByRole: rows iteration: %w", err)
	}

	return users, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Sessions
// ─────────────────────────────────────────────────────────────────────────────

func (s *SQLite) CreateSession(token string, userID int64, expiresAt time.Time) error {
	_, err := s.Db.Exec(
		"INSERT INTO sessions (token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)",
		token, userID, expiresAt.UTC(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("CreateSession: exec: %w", err)
	}
	return nil
}

// GetUserByToken resolves a bearer token to its account in one query.
// An expired token behaves exactly like an unknown one: ErrNotFound.
func (s *SQLite) GetUserByToken(token string, now time.Time) (types.User, error) {
	var u types.User
	var role string

	err := s.Db.QueryRow(`
		SELECT u.id, u.name, u.email, u.password_hash, u.role, u.created_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = ? AND s.expires_at > ?
		LIMIT 1`,
		token, now.UTC(),
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, storage.ErrNotFound
		}
		return types.User{}, fmt.Errorf("GetUserByToken: scan: %w", err)
	}

	u.Role = types.Role(role)
	return u, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Appointments
//
// Every SELECT joins the users table twice (as st / dr) to resolve the
// display names the client renders. The columns are listed explicitly
// so Scan ordering can never silently break.
// ─────────────────────────────────────────────────────────────────────────────

const appointmentColumns = `
	a.id, a.student_id, a.doctor_id, st.name, dr.name,
	a.date, a.time, a.status, a.created_at, a.updated_at
	FROM appointments a
	JOIN users st ON st.id = a.student_id
	JOIN users dr ON dr.id = a.doctor_id`

func (s *SQLite) CreateAppointment(studentID, doctorID int64, date, timeSlot string, status types.AppointmentStatus) (int64, error) {
	stmt, err := s.Db.Prepare(
		"INSERT INTO appointments (student_id, doctor_id, date, time, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("CreateAppointment: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	result, err := stmt.Exec(studentID, doctorID, date, timeSlot, string(status), now, now)
	if err != nil {
		return 0, fmt.Errorf("CreateAppointment: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateAppointment: last insert id: %w", err)
	}

	return lastID, nil
}

func (s *SQLite) GetAppointmentByID(id int64) (types.Appointment, error) {
	var a types.Appointment
	var status string

	err := s.Db.QueryRow(
		"SELECT "+appointmentColumns+" WHERE a.id = ? LIMIT 1", id,
	).Scan(
		&a.ID, &a.StudentID, &a.DoctorID, &a.StudentName, &a.DoctorName,
		&a.Date, &a.Time, &status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Appointment{}, storage.ErrNotFound
		}
		return types.Appointment{}, fmt.Errorf("GetAppointmentByID: scan: %w", err)
	}

	a.Status = types.AppointmentStatus(status)
	return a, nil
}

func (s *SQLite) GetAppointments() ([]types.Appointment, error) {
	return s.queryAppointments("SELECT " + appointmentColumns + " ORDER BY a.id")
}

func (s *SQLite) GetAppointmentsByStudent(studentID int64) ([]types.Appointment, error) {
	return s.queryAppointments(
		"SELECT "+appointmentColumns+" WHERE a.student_id = ? ORDER BY a.id", studentID)
}

func (s *SQLite) GetAppointmentsByDoctor(doctorID int64) ([]types.Appointment, error) {
	return s.queryAppointments(
		"SELECT "+appointmentColumns+" WHERE a.doctor_id = ? ORDER BY a.id", doctorID)
}

func (s *SQLite) queryAppointments(query string, args ...any) ([]types.Appointment, error) {
	rows, err := s.Db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("queryAppointments: query: %w", err)
	}
	defer rows.Close()

	appointments := make([]types.Appointment, 0)

	for rows.Next() {
		var a types.Appointment
		var status string
		if err := rows.Scan(
			&a.ID, &a.StudentID, &a.DoctorID, &a.StudentName, &a.DoctorName,
			&a.Date, &a.Time, &status, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("queryAppointments: scan row: %w", err)
		}
		a.Status = types.AppointmentStatus(status)
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("queryAppointments: rows iteration: %w", err)
	}

	return appointments, nil
}

// UpdateAppointment replaces date, time and status, bumps updated_at,
// and re-fetches the row so the caller echoes back exactly what is
// stored.
func (s *SQLite) UpdateAppointment(id int64, date, timeSlot string, status types.AppointmentStatus) (types.Appointment, error) {
	result, err := s.Db.Exec(
		"UPDATE appointments SET date = ?, time = ?, status = ?, updated_at = ? WHERE id = ?",
		date, timeSlot, string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return types.Appointment{}, fmt.Errorf("UpdateAppointment: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.Appointment{}, fmt.Errorf("UpdateAppointment: rows affected: %w", err)
	}
	if affected == 0 {
		return types.Appointment{}, storage.ErrNotFound
	}

	return s.GetAppointmentByID(id)
}

func (s *SQLite) DeleteAppointment(id int64) error {
	result, err := s.Db.Exec("DELETE FROM appointments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("DeleteAppointment: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteAppointment: rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Medical records
// ─────────────────────────────────────────────────────────────────────────────

const recordColumns = `
	r.id, r.student_id, st.name, r.blood_group, r.allergies,
	r.prescription, r.created_at, r.updated_at
	FROM records r
	JOIN users st ON st.id = r.student_id`

func (s *SQLite) CreateRecord(studentID int64, bloodGroup, allergies, prescription string) (int64, error) {
	stmt, err := s.Db.Prepare(
		"INSERT INTO records (student_id, blood_group, allergies, prescription, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("CreateRecord: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	result, err := stmt.Exec(studentID, bloodGroup, allergies, prescription, now, now)
	if err != nil {
		return 0, fmt.Errorf("CreateRecord: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateRecord: last insert id: %w", err)
	}

	return lastID, nil
}

func (s *SQLite) GetRecordByID(id int64) (types.MedicalRecord, error) {
	var r types.MedicalRecord

	err := s.Db.QueryRow(
		"SELECT "+recordColumns+" WHERE r.id = ? LIMIT 1", id,
	).Scan(
		&r.ID, &r.StudentID, &r.StudentName, &r.BloodGroup, &r.Allergies,
		&r.Prescription, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.MedicalRecord{}, storage.ErrNotFound
		}
		return types.MedicalRecord{}, fmt.Errorf("GetRecordByID: scan: %w", err)
	}

	return r, nil
}

func (s *SQLite) GetRecords() ([]types.MedicalRecord, error) {
	return s.queryRecords("SELECT " + recordColumns + " ORDER BY r.id")
}

func (s *SQLite) GetRecordsByStudent(studentID int64) ([]types.MedicalRecord, error) {
	return s.queryRecords(
		"SELECT "+recordColumns+" WHERE r.student_id = ? ORDER BY r.id", studentID)
}

func (s *SQLite) queryRecords(query string, args ...any) ([]types.MedicalRecord, error) {
	rows, err := s.Db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("queryRecords: query: %w", err)
	}
	defer rows.Close()

	records := make([]types.MedicalRecord, 0)

	for rows.Next() {
		var r types.MedicalRecord
		if err := rows.Scan(
			&r.ID, &r.StudentID, &r.StudentName, &r.BloodGroup, &r.Allergies,
			&r.Prescription, &r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("queryRecords: scan row: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("queryRecords: rows iteration: %w", err)
	}

	return records, nil
}

func (s *SQLite) UpdateRecord(id int64, bloodGroup, allergies, prescription string) (types.MedicalRecord, error) {
	result, err := s.Db.Exec(
		"UPDATE records SET blood_group = ?, allergies = ?, prescription = ?, updated_at = ? WHERE id = ?",
		bloodGroup, allergies, prescription, time.Now().UTC(), id,
	)
	if err != nil {
		return types.MedicalRecord{}, fmt.Errorf("UpdateRecord: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.MedicalRecord{}, fmt.Errorf("UpdateRecord: rows affected: %w", err)
	}
	if affected == 0 {
		return types.MedicalRecord{}, storage.ErrNotFound
	}

	return s.GetRecordByID(id)
}

func (s *SQLite) DeleteRecord(id int64) error {
	result, err := s.Db.Exec("DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("DeleteRecord: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteRecord: rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}
