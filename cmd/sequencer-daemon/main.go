// Command sequencer-daemon loads a procedure file and runs it under a
// background job controller, optionally exposing a read-only HTTP
// monitor and recording every state transition to the audit database —
// the long-running counterpart to sequencer-cli's run-and-exit.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/lyzr/sequencer/common/bootstrap"
	"github.com/lyzr/sequencer/common/logger"
	"github.com/lyzr/sequencer/common/repository"
	"github.com/lyzr/sequencer/common/server"
	"github.com/lyzr/sequencer/internal/instruction"
	"github.com/lyzr/sequencer/internal/job"
	"github.com/lyzr/sequencer/internal/observer"
	"github.com/lyzr/sequencer/internal/parser"
	"github.com/lyzr/sequencer/internal/procedure"
	"github.com/lyzr/sequencer/internal/runner"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("sequencer-daemon", flag.ContinueOnError)

	var file string
	var verbose string
	fs.StringVar(&file, "f", "", "procedure file to load and run (required)")
	fs.StringVar(&file, "file", "", "procedure file to load and run (required)")
	fs.StringVar(&verbose, "v", "WARNING", "log severity: EMERG|ALERT|CRIT|ERR|WARNING|NOTICE|INFO|DEBUG|TRACE")
	fs.StringVar(&verbose, "verbose", "WARNING", "log severity: EMERG|ALERT|CRIT|ERR|WARNING|NOTICE|INFO|DEBUG|TRACE")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}
	if file == "" {
		fmt.Fprintln(os.Stderr, "sequencer-daemon: -f/--file is required")
		return 1
	}

	ctx := context.Background()
	components, err := bootstrap.Setup(ctx, "sequencer-daemon")
	if err != nil {
		fmt.Fprintf(os.Stderr, "sequencer-daemon: setup failed: %v\n", err)
		return 1
	}
	defer components.Shutdown(ctx)
	components.Logger = logger.New(severityToLogLevel(verbose), components.Config.Service.LogFormat)

	loader := parser.NewFileLoader("")
	raw, err := loader.Load(file)
	if err != nil {
		components.Logger.Error("failed to read procedure file", "file", file, "error", err)
		return 1
	}
	doc, err := loader.Decode(raw)
	if err != nil {
		components.Logger.Error("failed to parse procedure file", "file", file, "error", err)
		return 1
	}

	store := procedure.NewStore(loader)
	proc, err := procedure.Build(doc, store)
	if err != nil {
		components.Logger.Error("failed to build procedure", "error", err)
		return 1
	}
	if err := proc.Setup(); err != nil {
		components.Logger.Error("procedure setup failed", "error", err)
		return 1
	}

	jobID := uuid.New().String()
	components.Logger.Info("job assigned", "job_id", jobID, "file", file)

	r := runner.New()
	obs := observer.NewLogging(components.Logger)
	if err := r.SetProcedure(proc, obs); err != nil {
		components.Logger.Error("runner setup failed", "error", err)
		return 1
	}

	registry := server.NewRegistry(jobID)
	delegate := &auditingMonitor{jobID: jobID, registry: registry, audit: components.Audit, log: components.Logger}

	controller := job.NewController(r)
	monitor := observer.NewMonitor(delegate)
	monitor.Attach(controller, r.Breakpoints())

	var httpServer *server.Server
	if components.Config.Monitor.Enabled {
		httpServer = server.New("sequencer-daemon", components.Config.Monitor.Port, registry, components.Logger)
		go func() {
			if err := httpServer.Start(); err != nil {
				components.Logger.Error("http monitor exited with error", "error", err)
			}
		}()
	}

	controller.Start()
	controller.RequestStart()

	state, waitErr := monitor.WaitForFinished(ctx)
	controller.RequestTerminate()
	controller.Wait()

	if waitErr != nil {
		components.Logger.Error("wait for completion failed", "error", waitErr)
		return 1
	}
	components.Logger.Info("procedure ended", "job_id", jobID, "state", state.String())

	if httpServer == nil {
		if state != job.StateSucceeded {
			return 1
		}
		return 0
	}

	components.Logger.Info("job finished, monitor remains up until signaled")
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	<-shutdown
	return 0
}

// auditingMonitor forwards job-state-monitor events to both the HTTP
// registry and (when an audit database is configured) the append-only
// audit log, so a crash-restarted daemon can answer "what happened to
// job X" even after its in-memory Registry is gone.
type auditingMonitor struct {
	jobID    string
	registry *server.Registry
	audit    *repository.JobAuditRepository
	log      *logger.Logger
}

func (m *auditingMonitor) OnStateChange(state job.State) {
	m.registry.OnStateChange(state)
	if m.audit == nil {
		return
	}
	if err := m.audit.RecordStateChange(context.Background(), m.jobID, state.String()); err != nil {
		m.log.Warn("failed to record audit state change", "error", err)
	}
}

func (m *auditingMonitor) OnBreakpointChange(i instruction.Instruction, set bool) {
	m.registry.OnBreakpointChange(i, set)
	if m.audit == nil {
		return
	}
	if err := m.audit.RecordBreakpointHit(context.Background(), m.jobID, i.ID(), set); err != nil {
		m.log.Warn("failed to record audit breakpoint hit", "error", err)
	}
}

func (m *auditingMonitor) OnProcedureTick(p *procedure.Procedure) {
	m.registry.OnProcedureTick(p)
}

// severityToLogLevel collapses the engine's 9-level syslog-style
// severity scale down to the 4 levels common/logger understands, the
// same collapsing observer.severityToSlog does for the engine's own
// log() callback.
func severityToLogLevel(severity string) string {
	switch strings.ToUpper(strings.TrimSpace(severity)) {
	case "EMERG", "ALERT", "CRIT", "ERR":
		return "error"
	case "WARNING":
		return "warn"
	case "NOTICE", "INFO":
		return "info"
	case "DEBUG", "TRACE":
		return "debug"
	default:
		return "warn"
	}
}
