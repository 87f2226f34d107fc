// Command sequencer-cli runs a single procedure file to completion and
// exits, the batch-oriented front end spec.md §6 describes: no HTTP
// monitor, no audit database, just a file in and a
// terminal state out.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/lyzr/sequencer/common/bootstrap"
	"github.com/lyzr/sequencer/common/logger"
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
	fs := flag.NewFlagSet("sequencer-cli", flag.ContinueOnError)

	var file string
	var verbose string
	var validateOnly bool
	fs.StringVar(&file, "f", "", "procedure file to execute (required)")
	fs.StringVar(&file, "file", "", "procedure file to execute (required)")
	fs.StringVar(&verbose, "v", "WARNING", "log severity: EMERG|ALERT|CRIT|ERR|WARNING|NOTICE|INFO|DEBUG|TRACE")
	fs.StringVar(&verbose, "verbose", "WARNING", "log severity: EMERG|ALERT|CRIT|ERR|WARNING|NOTICE|INFO|DEBUG|TRACE")
	fs.BoolVar(&validateOnly, "V", false, "parse and set up the procedure, then exit without running it")
	fs.BoolVar(&validateOnly, "validate", false, "parse and set up the procedure, then exit without running it")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}
	if file == "" {
		fmt.Fprintln(os.Stderr, "sequencer-cli: -f/--file is required")
		return 1
	}

	components, err := bootstrap.Setup(context.Background(), "sequencer-cli", bootstrap.WithoutDB())
	if err != nil {
		fmt.Fprintf(os.Stderr, "sequencer-cli: setup failed: %v\n", err)
		return 1
	}
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

	if validateOnly {
		fmt.Println("Procedure validated successfully")
		return 0
	}

	r := runner.New()
	obs := observer.NewLogging(components.Logger)
	if err := r.SetProcedure(proc, obs); err != nil {
		components.Logger.Error("runner setup failed", "error", err)
		return 1
	}

	controller := job.NewController(r)
	monitor := observer.NewMonitor(nil)
	monitor.Attach(controller, r.Breakpoints())

	controller.Start()
	controller.RequestStart()

	state, waitErr := monitor.WaitForFinished(context.Background())
	controller.RequestTerminate()
	controller.Wait()

	if waitErr != nil {
		components.Logger.Error("wait for completion failed", "error", waitErr)
		return 1
	}

	fmt.Printf("Procedure ended with state: %s\n", state.String())
	if state != job.StateSucceeded {
		return 1
	}
	return 0
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
