package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvvvvivekkk/health/internal/config"
	"github.com/vvvvvivekkk/health/internal/storage"
	"github.com/vvvvvivekkk/health/internal/types"
)

// newTestStore opens a fresh database in a per-test temp dir.
func newTestStore(t *testing.T) *SQLite {
	t.Helper()

	cfg := &config.Config{
		StoragePath: filepath.Join(t.TempDir(), "health-test.db"),
	}
	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Db.Close() })

	return s
}

func seedUser(t *testing.T, s *SQLite, name, email string, role types.Role) int64 {
	t.Helper()
	id, err := s.CreateUser(name, email, "hash", role)
	require.NoError(t, err)
	return id
}

func TestUserRoundtrip(t *testing.T) {
	s := newTestStore(t)

	id := seedUser(t, s, "Ravi", "ravi@anurag.edu.in", types.RoleStudent)

	byID, err := s.GetUserByID(id)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", byID.Name)
	assert.Equal(t, types.RoleStudent, byID.Role)

	byEmail, err := s.GetUserByEmail("ravi@anurag.edu.in")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)

	_, err = s.GetUserByID(999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDuplicateEmail(t *testing.T) {
	s := newTestStore(t)

	seedUser(t, s, "Ravi", "ravi@anurag.edu.in", types.RoleStudent)

	_, err := s.CreateUser("Imposter", "ravi@anurag.edu.in", "hash2", types.RoleStudent)
	assert.ErrorIs(t, err, storage.ErrDuplicateEmail)
}

func TestGetUsersByRole(t *testing.T) {
	s := newTestStore(t)

	seedUser(t, s, "Dr. Rao", "rao@clinic.example", types.RoleDoctor)
	seedUser(t, s, "Dr. Singh", "singh@clinic.example", types.RoleDoctor)
	seedUser(t, s, "Ravi", "ravi@anurag.edu.in", types.RoleStudent)

	doctors, err := s.GetUsersByRole(types.RoleDoctor)
	require.NoError(t, err)
	assert.Len(t, doctors, 2)

	admins, err := s.GetUsersByRole(types.RoleAdmin)
	require.NoError(t, err)
	assert.NotNil(t, admins) // empty slice, not nil, for clean JSON
	assert.Len(t, admins, 0)
}

func TestSessions(t *testing.T) {
	s := newTestStore(t)
	id := seedUser(t, s, "Ravi", "ravi@anurag.edu.in", types.RoleStudent)

	now := time.Now()
	require.NoError(t, s.CreateSession("live-token", id, now.Add(time.Hour)))
	require.NoError(t, s.CreateSession("dead-token", id, now.Add(-time.Minute)))

	u, err := s.GetUserByToken("live-token", now)
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)

	// Expired and unknown tokens behave identically.
	_, err = s.GetUserByToken("dead-token", now)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetUserByToken("never-issued", now)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAppointmentJoinsNames(t *testing.T) {
	s := newTestStore(t)
	studentID := seedUser(t, s, "Ravi", "ravi@anurag.edu.in", types.RoleStudent)
	doctorID := seedUser(t, s, "Dr. Rao", "rao@clinic.example", types.RoleDoctor)

	id, err := s.CreateAppointment(studentID, doctorID, "2024-01-10", "10:00", types.StatusPending)
	require.NoError(t, err)

	a, err := s.GetAppointmentByID(id)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", a.StudentName)
	assert.Equal(t, "Dr. Rao", a.DoctorName)
	assert.Equal(t, types.StatusPending, a.Status)
	assert.Equal(t, "2024-01-10", a.Date)
}

func TestAppointmentScopedQueries(t *testing.T) {
	s := newTestStore(t)
	ravi := seedUser(t, s, "Ravi", "ravi@anurag.edu.in", types.RoleStudent)
	priya := seedUser(t, s, "Priya", "priya@anurag.edu.in", types.RoleStudent)
	rao := seedUser(t, s, "Dr. Rao", "rao@clinic.example", types.RoleDoctor)

	_, err := s.CreateAppointment(ravi, rao, "2024-01-10", "10:00", types.StatusPending)
	require.NoError(t, err)
	_, err = s.CreateAppointment(priya, rao, "2024-01-11", "11:00", types.StatusPending)
	require.NoError(t, err)

	all, err := s.GetAppointments()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// A student's slice never contains another student's booking.
	mine, err := s.GetAppointmentsByStudent(ravi)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, ravi, mine[0].StudentID)

	schedule, err := s.GetAppointmentsByDoctor(rao)
	require.NoError(t, err)
	assert.Len(t, schedule, 2)
}

func TestAppointmentUpdateAndDelete(t *testing.T) {
	s := newTestStore(t)
	studentID := seedUser(t, s, "Ravi", "ravi@anurag.edu.in", types.RoleStudent)
	doctorID := seedUser(t, s, "Dr. Rao", "rao@clinic.example", types.RoleDoctor)

	id, err := s.CreateAppointment(studentID, doctorID, "2024-01-10", "10:00", types.StatusPending)
	require.NoError(t, err)

	updated, err := s.UpdateAppointment(id, "2024-01-12", "11:00", types.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-12", updated.Date)
	assert.Equal(t, types.StatusApproved, updated.Status)

	_, err = s.UpdateAppointment(999, "2024-01-12", "11:00", types.StatusApproved)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.DeleteAppointment(id))
	_, err = s.GetAppointmentByID(id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, s.DeleteAppointment(id), storage.ErrNotFound)
}

func TestRecordRoundtrip(t *testing.T) {
	s := newTestStore(t)
	studentID := seedUser(t, s, "Ravi", "ravi@anurag.edu.in", types.RoleStudent)

	id, err := s.CreateRecord(studentID, "O+", "None", "None")
	require.NoError(t, err)

	r, err := s.GetRecordByID(id)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", r.StudentName)
	assert.Equal(t, "O+", r.BloodGroup)
	assert.Equal(t, "None", r.Allergies)

	updated, err := s.UpdateRecord(id, "O+", "Peanuts", "Antihistamine")
	require.NoError(t, err)
	assert.Equal(t, "Peanuts", updated.Allergies)

	require.NoError(t, s.DeleteRecord(id))
	_, err = s.GetRecordByID(id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRecordScopedQueries(t *testing.T) {
	s := newTestStore(t)
	ravi := seedUser(t, s, "Ravi", "ravi@anurag.edu.in", types.RoleStudent)
	priya := seedUser(t, s, "Priya", "priya@anurag.edu.in", types.RoleStudent)

	_, err := s.CreateRecord(ravi, "O+", "None", "None")
	require.NoError(t, err)
	_, err = s.CreateRecord(priya, "AB-", "None", "None")
	require.NoError(t, err)

	all, err := s.GetRecords()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := s.GetRecordsByStudent(ravi)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, ravi, mine[0].StudentID)
}
