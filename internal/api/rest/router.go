package rest

import (
	"fmt"
	"net/http"

	"github.com/taskdeck/taskdeck/internal/platform/httpx"
	authapp "github.com/taskdeck/taskdeck/internal/services/auth/app"
	"github.com/taskdeck/taskdeck/internal/services/auth/token"
	tasksapp "github.com/taskdeck/taskdeck/internal/services/tasks/app"
)

// Config defines the services the router exposes.
type Config struct {
	Auth   *authapp.Service
	Tokens *token.Service
	Tasks  *tasksapp.Service
}

// NewRouter builds the HTTP routing table.
//
// Routes under /tasks and the identity routes run behind the bearer-token
// middleware; registration, login, and the health probe stay open.
func NewRouter(cfg Config) (http.Handler, error) {
	if cfg.Auth == nil {
		return nil, fmt.Errorf("auth service is required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("token service is required")
	}
	if cfg.Tasks == nil {
		return nil, fmt.Errorf("task service is required")
	}

	auth := &authHandler{auth: cfg.Auth}
	tasks := &tasksHandler{tasks: cfg.Tasks}
	authed := requireAuth(cfg.Tokens)
	protect := func(handler http.HandlerFunc) http.Handler {
		return authed(handler)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /auth/register", auth.register)
	mux.HandleFunc("POST /auth/login", auth.login)
	mux.Handle("GET /auth/me", protect(auth.me))
	mux.Handle("DELETE /auth/me", protect(auth.deleteAccount))

	mux.Handle("GET /tasks", protect(tasks.list))
	mux.Handle("POST /tasks", protect(tasks.create))
	mux.Handle("GET /tasks/{id}", protect(tasks.get))
	mux.Handle("PATCH /tasks/{id}", protect(tasks.patch))
	mux.Handle("DELETE /tasks/{id}", protect(tasks.delete))

	return mux, nil
}
