package bootstrap

import (
	"context"
	"fmt"

	"github.com/lyzr/sequencer/common/config"
	"github.com/lyzr/sequencer/common/db"
	"github.com/lyzr/sequencer/common/logger"
	"github.com/lyzr/sequencer/common/repository"
)

// Components holds every initialized ambient dependency a sequencer
// front end (CLI or daemon) needs, the way the teacher's bootstrap
// package hands its services one fully-wired Components value.
type Components struct {
	Config *config.Config
	Logger *logger.Logger
	DB     *db.DB
	Audit  *repository.JobAuditRepository

	cleanupFuncs []func() error
}

// Shutdown runs every registered cleanup function in LIFO order.
func (c *Components) Shutdown(ctx context.Context) error {
	c.Logger.Info("shutting down components")

	var errs []error
	for i := len(c.cleanupFuncs) - 1; i >= 0; i-- {
		if err := c.cleanupFuncs[i](); err != nil {
			errs = append(errs, err)
			c.Logger.Error("cleanup error", "error", err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	c.Logger.Info("shutdown complete")
	return nil
}

// Health reports whether every component with a health check is
// reachable.
func (c *Components) Health(ctx context.Context) error {
	if c.DB != nil {
		if err := c.DB.Health(ctx); err != nil {
			return fmt.Errorf("audit database unhealthy: %w", err)
		}
	}
	return nil
}

func (c *Components) addCleanup(fn func() error) {
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
}
