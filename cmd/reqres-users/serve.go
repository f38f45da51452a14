package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/reqres-client/pkg/client"
	"github.com/Sternrassler/reqres-client/pkg/logging"
	"github.com/Sternrassler/reqres-client/pkg/metrics"
	"github.com/Sternrassler/reqres-client/pkg/user"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve users over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				if addr == "" {
					addr = a.cfg.HTTPAddr
				}
				return serve(cmd.Context(), addr, newRouter(a.users, a.logger), a.logger)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default HTTP_ADDR)")
	return cmd
}

// serve runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, addr string, handler http.Handler, logger zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRouter exposes the user service as a read-only JSON API.
func newRouter(users userService, logger zerolog.Logger) *chi.Mux {
	h := &handlers{users: users, logger: logger}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.logRequests)

	router.Get("/health", h.health)
	router.Handle("/metrics", metrics.Handler())
	router.Get("/users", h.listUsers)
	router.Get("/users/{id}", h.getUser)

	return router
}

type handlers struct {
	users  userService
	logger zerolog.Logger
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "user id must be an integer"})
		return
	}

	u, found, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	if !found {
		h.writeJSON(w, http.StatusNotFound, errorBody{Error: "user not found"})
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

func (h *handlers) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.GetAllUsers(r.Context())
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, users)
}

// writeFailure maps service errors to 502, or 503 when the lookup was cancelled.
func (h *handlers) writeFailure(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, client.ErrContextCancelled) || errors.Is(err, context.Canceled) {
		status = http.StatusServiceUnavailable
	}

	var reqErr *user.RequestError
	event := h.logger.Error().Err(err)
	if errors.As(err, &reqErr) {
		event = event.Int(logging.FieldStatusCode, reqErr.StatusCode)
	}
	event.Msg("User lookup failed")

	h.writeJSON(w, status, errorBody{Error: err.Error()})
}

func (h *handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to write response")
	}
}

func (h *handlers) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		h.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int(logging.FieldStatusCode, ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}
