// Package user contains the HTTP handlers for accounts: registration,
// login, and the doctor/student rosters.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Go's router expects handler functions with the signature
//
//	func(http.ResponseWriter, *http.Request)
//
// That signature has no room for extra parameters like a database.
// Each exported function here is a factory: it accepts dependencies
// (storage, config) once at startup and returns a handler that closes
// over them for every request.
package user

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vvvvvivekkk/health/internal/authz"
	"github.com/vvvvvivekkk/health/internal/config"
	"github.com/vvvvvivekkk/health/internal/http/middleware"
	"github.com/vvvvvivekkk/health/internal/storage"
	"github.com/vvvvvivekkk/health/internal/types"
	"github.com/vvvvvivekkk/health/internal/utils/response"
)

// Register handles POST /api/users/register
// Creates an account, hashes the credential, and signs the caller in.
//
// Request body (JSON):
//
//	{ "name": "Ravi", "email": "ravi@anurag.edu.in", "password": "secret1", "role": "student" }
//
// Role defaults to "student" when omitted. Student emails must end
// with the configured institutional domain.
//
// Success response (201 Created):
//
//	{ "id": 1, "name": "Ravi", "email": "...", "role": "student", "token": "..." }
//
// Error responses:
//
//	400 Bad Request — empty body, malformed JSON, failed validation,
//	                  unknown role, or non-institutional student email
//	409 Conflict    — email already registered
//	500 Internal    — database error
func Register(store storage.Storage, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("registering a user")

		var req types.RegisterRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.Error("request body is empty"))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validator.New().Struct(req); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		// The sign-up form leaves role empty for students.
		if req.Role == "" {
			req.Role = types.RoleStudent
		}
		if !req.Role.Valid() {
			response.WriteJSON(w, http.StatusBadRequest,
				response.Error("role must be one of student, doctor, admin"))
			return
		}

		// Students register with their institutional address only.
		// Staff accounts may use any email.
		if req.Role == types.RoleStudent &&
			!strings.HasSuffix(req.Email, "@"+cfg.StudentEmailDomain) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.Error(fmt.Sprintf(
					"student emails must end with @%s", cfg.StudentEmailDomain)))
			return
		}

		// Hash before persisting — the plaintext credential never
		// reaches the store.
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), cfg.BcryptCost)
		if err != nil {
			slog.Error("error hashing password", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		id, err := store.CreateUser(req.Name, req.Email, string(hash), req.Role)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicateEmail) {
				response.WriteJSON(w, http.StatusConflict,
					response.Error("email already registered"))
				return
			}
			slog.Error("error creating user", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		token, err := issueToken(store, id, cfg.TokenTTL)
		if err != nil {
			slog.Error("error issuing token", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		slog.Info("user registered",
			slog.Int64("id", id), slog.String("role", string(req.Role)))

		response.WriteJSON(w, http.StatusCreated, types.AuthResponse{
			ID:    id,
			Name:  req.Name,
			Email: req.Email,
			Role:  req.Role,
			Token: token,
		})
	}
}

// Login handles POST /api/users/login
// Verifies the credential and returns the account plus a fresh bearer
// token.
//
// Error responses:
//
//	400 Bad Request  — empty/malformed body or failed validation
//	401 Unauthorized — wrong email OR wrong password; the message is
//	                   identical for both so the endpoint never reveals
//	                   which part failed
func Login(store storage.Storage, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("logging in a user")

		var req types.LoginRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.Error("request body is empty"))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validator.New().Struct(req); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		account, err := store.GetUserByEmail(req.Email)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusUnauthorized,
					response.Error("invalid email or password"))
				return
			}
			slog.Error("error fetching user", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		// bcrypt.CompareHashAndPassword is constant time with respect
		// to the supplied credential.
		if err := bcrypt.CompareHashAndPassword(
			[]byte(account.PasswordHash), []byte(req.Password)); err != nil {
			response.WriteJSON(w, http.StatusUnauthorized,
				response.Error("invalid email or password"))
			return
		}

		token, err := issueToken(store, account.ID, cfg.TokenTTL)
		if err != nil {
			slog.Error("error issuing token", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		slog.Info("user logged in", slog.Int64("id", account.ID))

		response.WriteJSON(w, http.StatusOK, types.AuthResponse{
			ID:    account.ID,
			Name:  account.Name,
			Email: account.Email,
			Role:  account.Role,
			Token: token,
		})
	}
}

// GetDoctors handles GET /api/users/doctors
// Public endpoint — the booking form needs the roster before login.
func GetDoctors(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting doctor roster")

		doctors, err := store.GetUsersByRole(types.RoleDoctor)
		if err != nil {
			slog.Error("error getting doctors", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		response.WriteJSON(w, http.StatusOK, doctors)
	}
}

// GetStudents handles GET /api/users/students
// Staff only (admin or doctor). Requires the auth middleware.
func GetStudents(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := middleware.Caller(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized,
				response.Error("not authorized"))
			return
		}

		if !authz.CanListStudents(caller) {
			response.WriteJSON(w, http.StatusForbidden,
				response.Error("not authorized to view students"))
			return
		}

		slog.Info("getting student roster", slog.Int64("caller", caller.ID))

		students, err := store.GetUsersByRole(types.RoleStudent)
		if err != nil {
			slog.Error("error getting students", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// issueToken mints an opaque bearer token and persists it with its
// expiry. The token carries no claims — it is just a key into the
// sessions table.
func issueToken(store storage.Storage, userID int64, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	if err := store.CreateSession(token, userID, time.Now().Add(ttl)); err != nil {
		return "", err
	}
	return token, nil
}
