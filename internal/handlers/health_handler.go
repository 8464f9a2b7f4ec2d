package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Startup steps reported by /health while the server initializes
const (
	StepDatabase   = "Database connection"
	StepMigrations = "Running migrations"
	StepServices   = "Initializing services"
	StepJobs       = "Scheduling jobs"
)

// StartupStatus tracks the initialization progress
type StartupStatus struct {
	mu       sync.RWMutex
	ready    bool
	current  string
	progress int
	steps    []startupStep
}

type startupStep struct {
	name      string
	completed bool
}

// NewStartupStatus creates a status tracker for the given steps
func NewStartupStatus(steps ...string) *StartupStatus {
	s := &StartupStatus{current: "Initializing..."}
	for _, name := range steps {
		s.steps = append(s.steps, startupStep{name: name})
	}
	return s
}

// SetCurrentStep updates the current initialization step
func (s *StartupStatus) SetCurrentStep(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = step
}

// CompleteStep marks a step as completed and updates progress
func (s *StartupStatus) CompleteStep(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := 0
	for i := range s.steps {
		if s.steps[i].name == name {
			s.steps[i].completed = true
		}
		if s.steps[i].completed {
			completed++
		}
	}
	if len(s.steps) > 0 {
		s.progress = completed * 100 / len(s.steps)
	}
}

// MarkReady marks the server as fully initialized
func (s *StartupStatus) MarkReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	s.current = "Server ready"
	s.progress = 100
}

// IsReady returns whether the server is fully initialized
func (s *StartupStatus) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Pinger checks that the database is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves the liveness endpoint
type HealthHandler struct {
	db      Pinger
	startup *StartupStatus
	logger  *zap.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger, startup *StartupStatus, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, startup: startup, logger: logger}
}

type healthResponse struct {
	Status   string `json:"status"`
	Ready    bool   `json:"ready"`
	Progress int    `json:"progress"`
	Current  string `json:"current"`
	Database string `json:"database"`
}

// Health reports startup progress and database reachability. It answers 503
// until startup finished and the database responds.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.startup.mu.RLock()
	resp := healthResponse{
		Status:   "ok",
		Ready:    h.startup.ready,
		Progress: h.startup.progress,
		Current:  h.startup.current,
		Database: "ok",
	}
	h.startup.mu.RUnlock()

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("health check database ping failed", zap.Error(err))
		resp.Database = "unreachable"
	}

	status := http.StatusOK
	if !resp.Ready || resp.Database != "ok" {
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
