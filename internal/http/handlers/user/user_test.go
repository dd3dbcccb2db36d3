package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/vvvvvivekkk/health/internal/config"
	"github.com/vvvvvivekkk/health/internal/http/middleware"
	"github.com/vvvvvivekkk/health/internal/storage"
	"github.com/vvvvvivekkk/health/internal/storage/storagetest"
	"github.com/vvvvvivekkk/health/internal/types"
)

func testConfig() *config.Config {
	return &config.Config{
		StudentEmailDomain: "anurag.edu.in",
		TokenTTL:           time.Hour,
		BcryptCost:         bcrypt.MinCost, // keep tests fast
	}
}

func TestRegisterStudent(t *testing.T) {
	var storedHash string
	store := &storagetest.Store{
		CreateUserFunc: func(name, email, passwordHash string, role types.Role) (int64, error) {
			assert.Equal(t, "Ravi", name)
			assert.Equal(t, "ravi@anurag.edu.in", email)
			assert.Equal(t, types.RoleStudent, role)
			storedHash = passwordHash
			return 1, nil
		},
		CreateSessionFunc: func(token string, userID int64, expiresAt time.Time) error {
			assert.NotEmpty(t, token)
			assert.EqualValues(t, 1, userID)
			return nil
		},
	}

	body := `{"name":"Ravi","email":"ravi@anurag.edu.in","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(body))
	rec := httptest.NewRecorder()

	Register(store, testConfig())(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	// The credential must be hashed before it reaches the store.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("secret1")))

	var resp types.AuthResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 1, resp.ID)
	assert.Equal(t, types.RoleStudent, resp.Role) // defaulted
	assert.NotEmpty(t, resp.Token)

	// Neither the plaintext nor the hash may appear in the body.
	assert.NotContains(t, rec.Body.String(), "secret1")
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRegisterStudentBadDomain(t *testing.T) {
	body := `{"name":"Ravi","email":"ravi@gmail.com","password":"secret1","role":"student"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(body))
	rec := httptest.NewRecorder()

	Register(&storagetest.Store{}, testConfig())(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "anurag.edu.in")
}

func TestRegisterDoctorAnyDomain(t *testing.T) {
	store := &storagetest.Store{
		CreateUserFunc: func(name, email, passwordHash string, role types.Role) (int64, error) {
			return 2, nil
		},
		CreateSessionFunc: func(token string, userID int64, expiresAt time.Time) error {
			return nil
		},
	}

	body := `{"name":"Dr. Rao","email":"rao@clinic.example","password":"secret1","role":"doctor"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(body))
	rec := httptest.NewRecorder()

	Register(store, testConfig())(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := &storagetest.Store{
		CreateUserFunc: func(name, email, passwordHash string, role types.Role) (int64, error) {
			return 0, storage.ErrDuplicateEmail
		},
	}

	body := `{"name":"Ravi","email":"ravi@anurag.edu.in","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(body))
	rec := httptest.NewRecorder()

	Register(store, testConfig())(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "email already registered")
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"missing name", `{"email":"a@anurag.edu.in","password":"secret1"}`},
		{"short password", `{"name":"A","email":"a@anurag.edu.in","password":"abc"}`},
		{"bad email", `{"name":"A","email":"not-an-email","password":"secret1"}`},
		{"unknown role", `{"name":"A","email":"a@b.c","password":"secret1","role":"nurse"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/users/register",
				strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			Register(&storagetest.Store{}, testConfig())(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLoginSuccess(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	account := types.User{
		ID: 5, Name: "Ravi", Email: "ravi@anurag.edu.in",
		PasswordHash: string(hash), Role: types.RoleStudent,
	}

	store := &storagetest.Store{
		GetUserByEmailFunc: func(email string) (types.User, error) {
			assert.Equal(t, "ravi@anurag.edu.in", email)
			return account, nil
		},
		CreateSessionFunc: func(token string, userID int64, expiresAt time.Time) error {
			assert.EqualValues(t, 5, userID)
			return nil
		},
	}

	body := `{"email":"ravi@anurag.edu.in","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", strings.NewReader(body))
	rec := httptest.NewRecorder()

	Login(store, testConfig())(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp types.AuthResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 5, resp.ID)
	assert.NotEmpty(t, resp.Token)
}

// Wrong password and unknown email must be indistinguishable.
func TestLoginGenericFailure(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)

	wrongPassword := &storagetest.Store{
		GetUserByEmailFunc: func(email string) (types.User, error) {
			return types.User{ID: 5, PasswordHash: string(hash)}, nil
		},
	}
	unknownEmail := &storagetest.Store{
		GetUserByEmailFunc: func(email string) (types.User, error) {
			return types.User{}, storage.ErrNotFound
		},
	}

	bodies := map[*storagetest.Store]string{
		wrongPassword: `{"email":"ravi@anurag.edu.in","password":"wrong-1"}`,
		unknownEmail:  `{"email":"ghost@anurag.edu.in","password":"secret1"}`,
	}

	var messages []string
	for store, body := range bodies {
		req := httptest.NewRequest(http.MethodPost, "/api/users/login", strings.NewReader(body))
		rec := httptest.NewRecorder()

		Login(store, testConfig())(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		messages = append(messages, rec.Body.String())
	}
	assert.Equal(t, messages[0], messages[1])
}

func TestGetDoctorsPublic(t *testing.T) {
	store := &storagetest.Store{
		GetUsersByRoleFunc: func(role types.Role) ([]types.User, error) {
			assert.Equal(t, types.RoleDoctor, role)
			return []types.User{
				{ID: 2, Name: "Dr. Rao", Role: types.RoleDoctor, PasswordHash: "hash"},
			}, nil
		},
	}

	// No auth context at all — the endpoint is public.
	req := httptest.NewRequest(http.MethodGet, "/api/users/doctors", nil)
	rec := httptest.NewRecorder()

	GetDoctors(store)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dr. Rao")
	// json:"-" keeps the hash out of the roster.
	assert.NotContains(t, rec.Body.String(), "hash")
}

func TestGetStudentsRoles(t *testing.T) {
	store := &storagetest.Store{
		GetUsersByRoleFunc: func(role types.Role) ([]types.User, error) {
			return []types.User{{ID: 3, Name: "Ravi", Role: types.RoleStudent}}, nil
		},
	}

	cases := []struct {
		caller types.User
		want   int
	}{
		{types.User{ID: 1, Role: types.RoleAdmin}, http.StatusOK},
		{types.User{ID: 2, Role: types.RoleDoctor}, http.StatusOK},
		{types.User{ID: 3, Role: types.RoleStudent}, http.StatusForbidden},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/users/students", nil)
		req = req.WithContext(middleware.WithCaller(req.Context(), tc.caller))
		rec := httptest.NewRecorder()

		GetStudents(store)(rec, req)

		assert.Equal(t, tc.want, rec.Code, "role %s", tc.caller.Role)
	}
}
