// Package appointment contains the HTTP handlers for the appointment
// resource. Every handler runs behind the auth middleware: the caller
// account arrives through the request context, the authorization gate
// is consulted after the target is resolved (so "not found" and
// "forbidden" stay distinct outcomes), and only then is the store
// touched for a write.
package appointment

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

// GetList handles GET /api/appointments?search=
// Returns the caller's visible slice of appointments: admins see all,
// doctors see their own schedule, students see their own bookings.
//
// The optional search parameter is a case-insensitive substring match
// on student name, doctor name, and status — applied AFTER scoping,
// so it can narrow the caller's view but never widen it.
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := middleware.Caller(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized,
				response.Error("not authorized"))
			return
		}

		slog.Info("listing appointments",
			slog.Int64("caller", caller.ID), slog.String("role", string(caller.Role)))

		var (
			appointments []types.Appointment
			err          error
		)
		switch authz.AppointmentScope(caller) {
		case authz.ScopeAll:
			appointments, err = store.GetAppointments()
		case authz.ScopeAsDoctor:
			appointments, err = store.GetAppointmentsByDoctor(caller.ID)
		case authz.ScopeAsStudent:
			appointments, err = store.GetAppointmentsByStudent(caller.ID)
		default:
			response.WriteJSON(w, http.StatusForbidden,
				response.Error("not authorized to view appointments"))
			return
		}
		if err != nil {
			slog.Error("error getting appointments", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		if search := r.URL.Query().Get("search"); search != "" {
			appointments = filterAppointments(appointments, search)
		}

		response.WriteJSON(w, http.StatusOK, appointments)
	}
}

// New handles POST /api/appointments
// Students book for themselves; the student side of the appointment is
// always the authenticated caller. Status is forced to pending no
// matter what the client sent.
//
// Request body (JSON):
//
//	{ "doctorId": 3, "date": "2024-01-10", "time": "10:00" }
//
// Error responses:
//
//	400 Bad Request — empty/malformed body, failed validation, or a
//	                  doctorId that does not resolve to a doctor account
//	403 Forbidden   — caller is not a student
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := middleware.Caller(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized,
				response.Error("not authorized"))
			return
		}

		if !authz.CanCreateAppointment(caller) {
			response.WriteJSON(w, http.StatusForbidden,
				response.Error("only students can book appointments"))
			return
		}

		slog.Info("creating an appointment", slog.Int64("student", caller.ID))

		var req types.CreateAppointmentRequest

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

		// The doctor reference must resolve to a doctor-role account.
		doctor, err := store.GetUserByID(req.DoctorID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusBadRequest,
					response.Error("doctor not found"))
				return
			}
			slog.Error("error fetching doctor", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}
		if doctor.Role != types.RoleDoctor {
			response.WriteJSON(w, http.StatusBadRequest,
				response.Error("doctorId does not refer to a doctor account"))
			return
		}

		id, err := store.CreateAppointment(
			caller.ID, doctor.ID, req.Date, req.Time, authz.InitialStatus())
		if err != nil {
			slog.Error("error creating appointment", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		created, err := store.GetAppointmentByID(id)
		if err != nil {
			slog.Error("error fetching created appointment", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		slog.Info("appointment created", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// Update handles PUT /api/appointments/{id}
// Students reschedule their own pending bookings; doctors reschedule
// their own appointments at any state; admins may edit anything,
// including a direct status override on a decided appointment.
// A status supplied by a non-admin caller is ignored.
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := middleware.Caller(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized,
				response.Error("not authorized"))
			return
		}

		id := r.PathValue("id")
		slog.Info("updating an appointment",
			slog.String("id", id), slog.Int64("caller", caller.ID))

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.Error("invalid id: must be an integer"))
			return
		}

		appt, err := store.GetAppointmentByID(intID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound,
					response.Error("Appointment not found"))
				return
			}
			slog.Error("error fetching appointment", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		if !authz.CanUpdateAppointment(caller, appt) {
			response.WriteJSON(w, http.StatusForbidden,
				response.Error("not authorized to update this appointment"))
			return
		}

		var req types.UpdateAppointmentRequest
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

		// Only an admin edit may carry a status change (the override
		// path). Everyone else keeps the stored status.
		status := appt.Status
		if req.Status != "" && authz.CanOverrideStatus(caller) {
			if !req.Status.Valid() {
				response.WriteJSON(w, http.StatusBadRequest,
					response.Error("invalid status"))
				return
			}
			status = req.Status
		}

		updated, err := store.UpdateAppointment(intID, req.Date, req.Time, status)
		if err != nil {
			slog.Error("error updating appointment",
				slog.String("id", id), slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		slog.Info("appointment updated", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Approve handles PUT /api/appointments/{id}/approve
func Approve(store storage.Storage) http.HandlerFunc {
	return decide(store, types.StatusApproved)
}

// Reject handles PUT /api/appointments/{id}/reject
func Reject(store storage.Storage) http.HandlerFunc {
	return decide(store, types.StatusRejected)
}

// decide implements both decision endpoints. Admins decide any
// appointment, doctors only their own. Deciding an appointment that
// has already left pending is a conflict, not a silent re-write.
func decide(store storage.Storage, to types.AppointmentStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := middleware.Caller(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized,
				response.Error("not authorized"))
			return
		}

		id := r.PathValue("id")
		slog.Info("deciding an appointment",
			slog.String("id", id), slog.String("to", string(to)),
			slog.Int64("caller", caller.ID))

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.Error("invalid id: must be an integer"))
			return
		}

		appt, err := store.GetAppointmentByID(intID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound,
					response.Error("Appointment not found"))
				return
			}
			slog.Error("error fetching appointment", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		if !authz.CanDecideAppointment(caller, appt) {
			response.WriteJSON(w, http.StatusForbidden,
				response.Error("not authorized to decide this appointment"))
			return
		}

		if !authz.CanTransition(appt.Status, to) {
			response.WriteJSON(w, http.StatusConflict,
				response.Error("only pending appointments can be "+string(to)))
			return
		}

		updated, err := store.UpdateAppointment(intID, appt.Date, appt.Time, to)
		if err != nil {
			slog.Error("error updating appointment status",
				slog.String("id", id), slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		slog.Info("appointment decided",
			slog.String("id", id), slog.String("status", string(to)))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /api/appointments/{id}
// Admins delete at any state; students withdraw their own booking
// while it is still pending; doctors never delete.
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := middleware.Caller(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized,
				response.Error("not authorized"))
			return
		}

		id := r.PathValue("id")
		slog.Info("deleting an appointment",
			slog.String("id", id), slog.Int64("caller", caller.ID))

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.Error("invalid id: must be an integer"))
			return
		}

		appt, err := store.GetAppointmentByID(intID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound,
					response.Error("Appointment not found"))
				return
			}
			slog.Error("error fetching appointment", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		if !authz.CanDeleteAppointment(caller, appt) {
			response.WriteJSON(w, http.StatusForbidden,
				response.Error("not authorized to delete this appointment"))
			return
		}

		if err := store.DeleteAppointment(intID); err != nil {
			slog.Error("error deleting appointment",
				slog.String("id", id), slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		slog.Info("appointment deleted", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK,
			map[string]string{"message": "Appointment removed"})
	}
}

// filterAppointments keeps the rows where the query matches the
// student name, doctor name, or status, case-insensitively.
func filterAppointments(appointments []types.Appointment, query string) []types.Appointment {
	q := strings.ToLower(query)
	filtered := make([]types.Appointment, 0)
	for _, a := range appointments {
		if strings.Contains(strings.ToLower(a.StudentName), q) ||
			strings.Contains(strings.ToLower(a.DoctorName), q) ||
			strings.Contains(strings.ToLower(string(a.Status)), q) {
			filtered = append(filtered, a)
		}
	}
	return filtered
}
