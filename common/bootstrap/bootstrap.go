// Package bootstrap is the single entry point both front ends
// (cmd/sequencer-cli, cmd/sequencer-daemon) call to stand up logging,
// configuration, and (optionally) the audit database, mirroring the
// teacher's one-Setup-call-per-service pattern.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/lyzr/sequencer/common/config"
	"github.com/lyzr/sequencer/common/db"
	"github.com/lyzr/sequencer/common/logger"
	"github.com/lyzr/sequencer/common/repository"
)

// Setup initializes every ambient component a front end needs.
func Setup(ctx context.Context, serviceName string, opts ...Option) (*Components, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	components := &Components{cleanupFuncs: make([]func() error, 0)}

	var err error
	if options.customConfig != nil {
		components.Config = options.customConfig
	} else {
		components.Config, err = config.Load(serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if options.customLogger != nil {
		components.Logger = options.customLogger
	} else {
		components.Logger = logger.New(
			components.Config.Service.LogLevel,
			components.Config.Service.LogFormat,
		)
	}

	components.Logger.Info("initializing service", "service", serviceName)

	if !options.skipDB && components.Config.Database.Enabled {
		components.Logger.Info("connecting to audit database")
		components.DB, err = db.New(ctx, components.Config, components.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to audit database: %w", err)
		}
		components.addCleanup(func() error {
			components.Logger.Info("closing audit database connection")
			components.DB.Close()
			return nil
		})

		if options.dbInitHook != nil {
			components.Logger.Info("running database init hook")
			if err := options.dbInitHook(components.DB); err != nil {
				components.Shutdown(ctx)
				return nil, fmt.Errorf("database init hook failed: %w", err)
			}
		}

		components.Audit = repository.NewJobAuditRepository(components.DB)
	}

	components.Logger.Info("service initialization complete",
		"service", serviceName,
		"audit_enabled", components.Audit != nil,
	)

	return components, nil
}

// MustSetup is like Setup but panics on error.
func MustSetup(ctx context.Context, serviceName string, opts ...Option) *Components {
	components, err := Setup(ctx, serviceName, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to setup service %s: %v", serviceName, err))
	}
	return components
}
