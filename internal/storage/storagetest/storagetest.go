// Package storagetest provides a function-field mock of the
// storage.Storage interface for handler and middleware tests.
//
// Each method delegates to the corresponding XxxFunc field when set
// and fails loudly otherwise, so a test only stubs the calls it
// expects and any unexpected storage access surfaces as an error.
package storagetest

import (
	"errors"
	"time"

	"github.com/vvvvvivekkk/health/internal/storage"
	"github.com/vvvvvivekkk/health/internal/types"
)

// Compile-time check that the mock satisfies the contract.
var _ storage.Storage = (*Store)(nil)

// Store is a mock implementation of storage.Storage.
type Store struct {
	CreateUserFunc     func(name, email, passwordHash string, role types.Role) (int64, error)
	GetUserByEmailFunc func(email string) (types.User, error)
	GetUserByIDFunc    func(id int64) (types.User, error)
	GetUsersByRoleFunc func(role types.Role) ([]types.User, error)

	CreateSessionFunc  func(token string, userID int64, expiresAt time.Time) error
	GetUserByTokenFunc func(token string, now time.Time) (types.User, error)

	CreateAppointmentFunc        func(studentID, doctorID int64, date, timeSlot string, status types.AppointmentStatus) (int64, error)
	GetAppointmentByIDFunc       func(id int64) (types.Appointment, error)
	GetAppointmentsFunc          func() ([]types.Appointment, error)
	GetAppointmentsByStudentFunc func(studentID int64) ([]types.Appointment, error)
	GetAppointmentsByDoctorFunc  func(doctorID int64) ([]types.Appointment, error)
	UpdateAppointmentFunc        func(id int64, date, timeSlot string, status types.AppointmentStatus) (types.Appointment, error)
	DeleteAppointmentFunc        func(id int64) error

	CreateRecordFunc        func(studentID int64, bloodGroup, allergies, prescription string) (int64, error)
	GetRecordByIDFunc       func(id int64) (types.MedicalRecord, error)
	GetRecordsFunc          func() ([]types.MedicalRecord, error)
	GetRecordsByStudentFunc func(studentID int64) ([]types.MedicalRecord, error)
	UpdateRecordFunc        func(id int64, bloodGroup, allergies, prescription string) (types.MedicalRecord, error)
	DeleteRecordFunc        func(id int64) error
}

var errNotStubbed = errors.New("storagetest: method not stubbed")

func (s *Store) CreateUser(name, email, passwordHash string, role types.Role) (int64, error) {
	if s.CreateUserFunc != nil {
		return s.CreateUserFunc(name, email, passwordHash, role)
	}
	return 0, errNotStubbed
}

func (s *Store) GetUserByEmail(email string) (types.User, error) {
	if s.GetUserByEmailFunc != nil {
		return s.GetUserByEmailFunc(email)
	}
	return types.User{}, errNotStubbed
}

func (s *Store) GetUserByID(id int64) (types.User, error) {
	if s.GetUserByIDFunc != nil {
		return s.GetUserByIDFunc(id)
	}
	return types.User{}, errNotStubbed
}

func (s *Store) GetUsersByRole(role types.Role) ([]types.User, error) {
	if s.GetUsersByRoleFunc != nil {
		return s.GetUsersByRoleFunc(role)
	}
	return nil, errNotStubbed
}

func (s *Store) CreateSession(token string, userID int64, expiresAt time.Time) error {
	if s.CreateSessionFunc != nil {
		return s.CreateSessionFunc(token, userID, expiresAt)
	}
	return errNotStubbed
}

func (s *Store) GetUserByToken(token string, now time.Time) (types.User, error) {
	if s.GetUserByTokenFunc != nil {
		return s.GetUserByTokenFunc(token, now)
	}
	return types.User{}, errNotStubbed
}

func (s *Store) CreateAppointment(studentID, doctorID int64, date, timeSlot string, status types.AppointmentStatus) (int64, error) {
	if s.CreateAppointmentFunc != nil {
		return s.CreateAppointmentFunc(studentID, doctorID, date, timeSlot, status)
	}
	return 0, errNotStubbed
}

func (s *Store) GetAppointmentByID(id int64) (types.Appointment, error) {
	if s.GetAppointmentByIDFunc != nil {
		return s.GetAppointmentByIDFunc(id)
	}
	return types.Appointment{}, errNotStubbed
}

func (s *Store) GetAppointments() ([]types.Appointment, error) {
	if s.GetAppointmentsFunc != nil {
		return s.GetAppointmentsFunc()
	}
	return nil, errNotStubbed
}

func (s *Store) GetAppointmentsByStudent(studentID int64) ([]types.Appointment, error) {
	if s.GetAppointmentsByStudentFunc != nil {
		return s.GetAppointmentsByStudentFunc(studentID)
	}
	return nil, errNotStubbed
}

func (s *Store) GetAppointmentsByDoctor(doctorID int64) ([]types.Appointment, error) {
	if s.GetAppointmentsByDoctorFunc != nil {
		return s.GetAppointmentsByDoctorFunc(doctorID)
	}
	return nil, errNotStubbed
}

func (s *Store) UpdateAppointment(id int64, date, timeSlot string, status types.AppointmentStatus) (types.Appointment, error) {
	if s.UpdateAppointmentFunc != nil {
		return s.UpdateAppointmentFunc(id, date, timeSlot, status)
	}
	return types.Appointment{}, errNotStubbed
}

func (s *Store) DeleteAppointment(id int64) error {
	if s.DeleteAppointmentFunc != nil {
		return s.DeleteAppointmentFunc(id)
	}
	return errNotStubbed
}

func (s *Store) CreateRecord(studentID int64, bloodGroup, allergies, prescription string) (int64, error) {
	if s.CreateRecordFunc != nil {
		return s.CreateRecordFunc(studentID, bloodGroup, allergies, prescription)
	}
	return 0, errNotStubbed
}

func (s *Store) GetRecordByID(id int64) (types.MedicalRecord, error) {
	if s.GetRecordByIDFunc != nil {
		return s.GetRecordByIDFunc(id)
	}
	return types.MedicalRecord{}, errNotStubbed
}

func (s *Store) GetRecords() ([]types.MedicalRecord, error) {
	if s.GetRecordsFunc != nil {
		return s.GetRecordsFunc()
	}
	return nil, errNotStubbed
}

func (s *Store) GetRecordsByStudent(studentID int64) ([]types.MedicalRecord, error) {
	if s.GetRecordsByStudentFunc != nil {
		return s.GetRecordsByStudentFunc(studentID)
	}
	return nil, errNotStubbed
}

func (s *Store) UpdateRecord(id int64, bloodGroup, allergies, prescription string) (types.MedicalRecord, error) {
	if s.UpdateRecordFunc != nil {
		return s.UpdateRecordFunc(id, bloodGroup, allergies, prescription)
	}
	return types.MedicalRecord{}, errNotStubbed
}

func (s *Store) DeleteRecord(id int64) error {
	if s.DeleteRecordFunc != nil {
		return s.DeleteRecordFunc(id)
	}
	return errNotStubbed
}
