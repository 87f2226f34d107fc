// Package server implements a small read-only HTTP monitor over a
// running job: health, current state, and the active breakpoint set.
// It has no control endpoints (no procedure upload, no start/pause/
// halt routes) — that front-end surface is out of scope, matching
// spec.md §1; this is an operational sidecar, not the CLI/daemon
// itself.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/lyzr/sequencer/common/logger"
	"github.com/lyzr/sequencer/internal/instruction"
	"github.com/lyzr/sequencer/internal/job"
	"github.com/lyzr/sequencer/internal/procedure"
)

// Registry tracks one job's latest observed state and breakpoint set.
// It implements observer.JobStateMonitor structurally (no import of
// that package needed here, keeping server a leaf dependency) so it
// can be handed straight to observer.NewMonitor as the delegate.
type Registry struct {
	jobID string

	mu          sync.RWMutex
	state       job.State
	breakpoints map[string]bool
	ticks       int64
}

// NewRegistry builds a Registry for jobID.
func NewRegistry(jobID string) *Registry {
	return &Registry{jobID: jobID, state: job.StateInitial, breakpoints: make(map[string]bool)}
}

func (r *Registry) OnStateChange(state job.State) {
	r.mu.Lock()
	r.state = state
	r.mu.Unlock()
}

func (r *Registry) OnBreakpointChange(i instruction.Instruction, set bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if set {
		r.breakpoints[i.ID()] = true
	} else {
		delete(r.breakpoints, i.ID())
	}
}

func (r *Registry) OnProcedureTick(p *procedure.Procedure) {
	r.mu.Lock()
	r.ticks++
	r.mu.Unlock()
}

func (r *Registry) snapshot() (job.State, []string, int64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.breakpoints))
	for id := range r.breakpoints {
		ids = append(ids, id)
	}
	return r.state, ids, r.ticks
}

// Server wraps an Echo instance exposing Registry's state as JSON,
// with the teacher's graceful-shutdown-on-signal Start loop.
type Server struct {
	echo *echo.Echo
	log  *logger.Logger
	name string
	addr string
}

// New builds a Server listening on port, serving reg at
// /jobs/:id and /jobs/:id/breakpoints, plus /healthz.
func New(name string, port int, reg *Registry, log *logger.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/jobs/:id", func(c echo.Context) error {
		if c.Param("id") != reg.jobID {
			return echo.NewHTTPError(http.StatusNotFound, "unknown job")
		}
		state, _, ticks := reg.snapshot()
		return c.JSON(http.StatusOK, map[string]any{
			"job_id": reg.jobID,
			"state":  state.String(),
			"ticks":  ticks,
		})
	})
	e.GET("/jobs/:id/breakpoints", func(c echo.Context) error {
		if c.Param("id") != reg.jobID {
			return echo.NewHTTPError(http.StatusNotFound, "unknown job")
		}
		_, ids, _ := reg.snapshot()
		return c.JSON(http.StatusOK, map[string]any{"instruction_ids": ids})
	})

	return &Server{echo: e, log: log, name: name, addr: fmt.Sprintf(":%d", port)}
}

// Start runs the HTTP monitor until a shutdown signal arrives,
// draining outstanding requests with a bounded grace period.
func (s *Server) Start() error {
	serverErrors := make(chan error, 1)
	go func() {
		s.log.Info(s.name+" monitor starting", "addr", s.addr)
		serverErrors <- s.echo.Start(s.addr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case sig := <-shutdown:
		s.log.Info("monitor shutdown signal received", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.echo.Shutdown(ctx)
	}
}
