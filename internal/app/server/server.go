// Package server wires storage, services, and the HTTP API into one process.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/taskdeck/taskdeck/internal/api/rest"
	"github.com/taskdeck/taskdeck/internal/platform/config"
	"github.com/taskdeck/taskdeck/internal/platform/httpx"
	authapp "github.com/taskdeck/taskdeck/internal/services/auth/app"
	authstorage "github.com/taskdeck/taskdeck/internal/services/auth/storage"
	authsqlite "github.com/taskdeck/taskdeck/internal/services/auth/storage/sqlite"
	"github.com/taskdeck/taskdeck/internal/services/auth/token"
	tasksapp "github.com/taskdeck/taskdeck/internal/services/tasks/app"
	tasksstorage "github.com/taskdeck/taskdeck/internal/services/tasks/storage"
	tasksqlite "github.com/taskdeck/taskdeck/internal/services/tasks/storage/sqlite"
	appsqlite "github.com/taskdeck/taskdeck/internal/storage/sqlite"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Config defines the server inputs, loaded from the environment by default.
type Config struct {
	HTTPAddr    string        `env:"TASKDECK_HTTP_ADDR" envDefault:":8080"`
	DBPath      string        `env:"TASKDECK_DB_PATH" envDefault:"taskdeck.db"`
	TokenSecret string        `env:"TASKDECK_TOKEN_SECRET"`
	TokenTTL    time.Duration `env:"TASKDECK_TOKEN_TTL"`
	BcryptCost  int           `env:"TASKDECK_BCRYPT_COST"`
}

// LoadConfig reads server configuration from TASKDECK_* environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Server hosts the task management HTTP API.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	sqlDB      *sql.DB
	userStore  authstorage.UserStore
	taskStore  tasksstorage.TaskStore
}

// New opens storage, builds the services, and assembles the HTTP server.
//
// The returned server owns the database handle; call Close when done.
func New(cfg Config) (*Server, error) {
	sqlDB, err := appsqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	userStore := authsqlite.New(sqlDB)
	taskStore := tasksqlite.New(sqlDB)

	tokens, err := token.New(token.Config{
		Secret: cfg.TokenSecret,
		TTL:    cfg.TokenTTL,
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("build token service: %w", err)
	}
	auth, err := authapp.New(authapp.Config{
		Store:      userStore,
		Tokens:     tokens,
		BcryptCost: cfg.BcryptCost,
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("build auth service: %w", err)
	}
	tasks, err := tasksapp.New(tasksapp.Config{Store: taskStore})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("build task service: %w", err)
	}

	router, err := rest.NewRouter(rest.Config{
		Auth:   auth,
		Tokens: tokens,
		Tasks:  tasks,
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("build router: %w", err)
	}

	handler := httpx.Chain(router,
		httpx.RecoverPanic(),
		httpx.RequestID(),
		httpx.Trace("taskdeck"),
	)
	return &Server{
		httpAddr: cfg.HTTPAddr,
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		sqlDB:     sqlDB,
		userStore: userStore,
		taskStore: taskStore,
	}, nil
}

// Handler exposes the assembled HTTP handler for in-process tests.
func (s *Server) Handler() http.Handler {
	if s == nil || s.httpServer == nil {
		return nil
	}
	return s.httpServer.Handler
}

// ListenAndServe blocks until the context ends or serving fails, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	s.logStartupStats(ctx)

	serveErr := make(chan error, 1)
	log.Printf("api listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// logStartupStats reports stored record counts once at boot.
func (s *Server) logStartupStats(ctx context.Context) {
	users, err := s.userStore.CountUsers(ctx)
	if err != nil {
		log.Printf("count users: %v", err)
		return
	}
	tasks, err := s.taskStore.CountTasks(ctx)
	if err != nil {
		log.Printf("count tasks: %v", err)
		return
	}
	log.Printf("storage ready users=%d tasks=%d", users, tasks)
}

// Close releases the database handle.
func (s *Server) Close() {
	if s == nil || s.sqlDB == nil {
		return
	}
	if err := s.sqlDB.Close(); err != nil {
		log.Printf("close database: %v", err)
	}
}
