// Package record contains the HTTP handlers for medical records.
// Records are authored by staff (doctor or admin), listed within the
// caller's visibility scope, and removed only by admins.
package record

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vvvvvivekkk/health/internal/authz"
	"github.com/vvvvvivekkk/health/internal/http/middleware"
	"github.com/vvvvvivekkk/health/internal/storage"
	"github.com/vvvvvivekkk/health/internal/types"
	"github.com/vvvvvivekkk/health/internal/utils/response"
)

// noneDefault fills the optional free-text fields the same way the
// store schema does: an empty value is stored as "None".
func noneDefault(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

// GetList handles GET /api/records?search=
// Staff see every record; students see only their own. The search
// parameter is a case-insensitive substring match on student name and
// blood group, applied after scoping.
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := middleware.Caller(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized,
				response.Error("not authorized"))
			return
		}

		slog.Info("listing records",
			slog.Int64("caller", caller.ID), slog.String("role", string(caller.Role)))

		var (
			records []types.MedicalRecord
			err     error
		)
		switch authz.RecordScope(caller) {
		case authz.ScopeAll:
			records, err = store.GetRecords()
		case authz.ScopeAsStudent:
			records, err = store.GetRecordsByStudent(caller.ID)
		default:
			response.WriteJSON(w, http.StatusForbidden,
				response.Error("not authorized to view records"))
			return
		}
		if err != nil {
			slog.Error("error getting records", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		if search := r.URL.Query().Get("search"); search != "" {
			records = filterRecords(records, search)
		}

		response.WriteJSON(w, http.StatusOK, records)
	}
}

// New handles POST /api/records
// Staff only. The student reference must resolve to a student-role
// account; allergies and prescription default to "None" when omitted.
//
// Request body (JSON):
//
//	{ "studentId": 2, "bloodGroup": "O+", "allergies": "", "prescription": "" }
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := middleware.Caller(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized,
				response.Error("not authorized"))
			return
		}

		if !authz.CanWriteRecord(caller) {
			response.WriteJSON(w, http.StatusForbidden,
				response.Error("not authorized to create records"))
			return
		}

		slog.Info("creating a record", slog.Int64("caller", caller.ID))

		var req types.CreateRecordRequest

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

		student, err := store.GetUserByID(req.StudentID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusBadRequest,
					response.Error("student not found"))
				return
			}
			slog.Error("error fetching student", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}
		if student.Role != types.RoleStudent {
			response.WriteJSON(w, http.StatusBadRequest,
				response.Error("studentId does not refer to a student account"))
			return
		}

		id, err := store.CreateRecord(student.ID, req.BloodGroup,
			noneDefault(req.Allergies), noneDefault(req.Prescription))
		if err != nil {
			slog.Error("error creating record", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		created, err := store.GetRecordByID(id)
		if err != nil {
			slog.Error("error fetching created record", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		slog.Info("record created", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// Update handles PUT /api/records/{id}
// Staff only. The student reference of an existing record is fixed;
// only the clinical fields change.
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := middleware.Caller(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized,
				response.Error("not authorized"))
			return
		}

		id := r.PathValue("id")
		slog.Info("updating a record",
			slog.String("id", id), slog.Int64("caller", caller.ID))

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.Error("invalid id: must be an integer"))
			return
		}

		if _, err := store.GetRecordByID(intID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound,
					response.Error("Medical record not found"))
				return
			}
			slog.Error("error fetching record", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		if !authz.CanWriteRecord(caller) {
			response.WriteJSON(w, http.StatusForbidden,
				response.Error("not authorized to update records"))
			return
		}

		var req types.UpdateRecordRequest
		err = json.NewDecoder(r.Body).Decode(&req)
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

		updated, err := store.UpdateRecord(intID, req.BloodGroup,
			noneDefault(req.Allergies), noneDefault(req.Prescription))
		if err != nil {
			slog.Error("error updating record",
				slog.String("id", id), slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		slog.Info("record updated", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /api/records/{id}
// Admins only — a doctor can author and amend a record but never
// remove one.
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := middleware.Caller(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized,
				response.Error("not authorized"))
			return
		}

		id := r.PathValue("id")
		slog.Info("deleting a record",
			slog.String("id", id), slog.Int64("caller", caller.ID))

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.Error("invalid id: must be an integer"))
			return
		}

		if _, err := store.GetRecordByID(intID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound,
					response.Error("Medical record not found"))
				return
			}
			slog.Error("error fetching record", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		if !authz.CanDeleteRecord(caller) {
			response.WriteJSON(w, http.StatusForbidden,
				response.Error("not authorized to delete records"))
			return
		}

		if err := store.DeleteRecord(intID); err != nil {
			slog.Error("error deleting record",
				slog.String("id", id), slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		slog.Info("record deleted", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK,
			map[string]string{"message": "Medical record removed"})
	}
}

// filterRecords keeps the rows where the query matches the student
// name or blood group, case-insensitively.
func filterRecords(records []types.MedicalRecord, query string) []types.MedicalRecord {
	q := strings.ToLower(query)
	filtered := make([]types.MedicalRecord, 0)
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.StudentName), q) ||
			strings.Contains(strings.ToLower(rec.BloodGroup), q) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}
