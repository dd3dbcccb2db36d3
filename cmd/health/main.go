// main is the entry point of the clinic-management API.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file (plus optional .env)
//  2. Initialise the logger
//  3. Connect to (and set up) the SQLite database
//  4. Register all HTTP routes
//  5. Start the HTTP server in a separate goroutine
//  6. Block the main goroutine until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, then exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/health --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/health
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vvvvvivekkk/health/internal/config"
	"github.com/vvvvvivekkk/health/internal/http/handlers/appointment"
	"github.com/vvvvvivekkk/health/internal/http/handlers/record"
	"github.com/vvvvvivekkk/health/internal/http/handlers/user"
	"github.com/vvvvvivekkk/health/internal/http/middleware"
	"github.com/vvvvvivekkk/health/internal/storage"
	"github.com/vvvvvivekkk/health/internal/storage/sqlite"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	// MustLoad reads the YAML config and panics if anything is wrong.
	// If this returns, config is guaranteed valid.
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := setupLogger(cfg.Env)
	// Handlers log through the package-level slog functions, so the
	// configured logger must become the process default.
	slog.SetDefault(log)

	log.Info("starting health api",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	// The rest of the code only knows the storage.Storage interface —
	// swapping the backend later only requires changing this one line.
	store, err := sqlite.New(cfg)
	if err != nil {
		log.Error("failed to initialise storage",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("storage initialised", slog.String("path", cfg.StoragePath))

	// ── 4. Register HTTP Routes ───────────────────────────────────────────
	// Register, login and the doctors roster are the only routes that do
	// not pass through the bearer-token middleware; everything else gets
	// the authenticated caller injected into its request context.
	router := routes(store, cfg)

	// ── 5. Create the HTTP Server ─────────────────────────────────────────
	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: router,

		// Timeouts guard against slow-client attacks.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ── 6. Start Server in a Goroutine ────────────────────────────────────
	// ListenAndServe blocks forever; running it in its own goroutine
	// leaves main free to wait for the shutdown signal below.
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// ListenAndServe returns http.ErrServerClosed when Shutdown()
		// is called. That's expected — not an error.
		if err := server.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 7. Wait for Shutdown Signal ───────────────────────────────────────
	// Buffered so we don't miss the signal if main is briefly busy.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	// In-flight requests get 5 seconds to complete before the context
	// cancels and Shutdown returns an error.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// routes builds the full route table.
//
// Route table:
//
//	POST   /api/users/register           → create account + token (public)
//	POST   /api/users/login              → authenticate (public)
//	GET    /api/users/doctors            → doctor roster (public)
//	GET    /api/users/students           → student roster (staff)
//	GET    /api/appointments             → role-scoped list (?search=)
//	POST   /api/appointments             → book (student)
//	PUT    /api/appointments/{id}        → edit / admin override
//	PUT    /api/appointments/{id}/approve
//	PUT    /api/appointments/{id}/reject
//	DELETE /api/appointments/{id}
//	GET    /api/records                  → role-scoped list (?search=)
//	POST   /api/records                  → create (staff)
//	PUT    /api/records/{id}             → update (staff)
//	DELETE /api/records/{id}             → delete (admin)
func routes(store storage.Storage, cfg *config.Config) *http.ServeMux {
	router := http.NewServeMux()

	auth := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.Auth(store, h)
	}

	router.HandleFunc("POST /api/users/register", user.Register(store, cfg))
	router.HandleFunc("POST /api/users/login", user.Login(store, cfg))
	router.HandleFunc("GET /api/users/doctors", user.GetDoctors(store))
	router.HandleFunc("GET /api/users/students", auth(user.GetStudents(store)))

	router.HandleFunc("GET /api/appointments", auth(appointment.GetList(store)))
	router.HandleFunc("POST /api/appointments", auth(appointment.New(store)))
	router.HandleFunc("PUT /api/appointments/{id}", auth(appointment.Update(store)))
	router.HandleFunc("PUT /api/appointments/{id}/approve", auth(appointment.Approve(store)))
	router.HandleFunc("PUT /api/appointments/{id}/reject", auth(appointment.Reject(store)))
	router.HandleFunc("DELETE /api/appointments/{id}", auth(appointment.Delete(store)))

	router.HandleFunc("GET /api/records", auth(record.GetList(store)))
	router.HandleFunc("POST /api/records", auth(record.New(store)))
	router.HandleFunc("PUT /api/records/{id}", auth(record.Update(store)))
	router.HandleFunc("DELETE /api/records/{id}", auth(record.Delete(store)))

	return router
}

// setupLogger returns a *slog.Logger configured for the given
// environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
