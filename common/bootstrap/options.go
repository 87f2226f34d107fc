package bootstrap

import (
	"github.com/lyzr/sequencer/common/config"
	"github.com/lyzr/sequencer/common/db"
	"github.com/lyzr/sequencer/common/logger"
)

// Option configures the bootstrap process.
type Option func(*options)

type options struct {
	skipDB       bool
	customLogger *logger.Logger
	customConfig *config.Config
	dbInitHook   func(*db.DB) error
}

// WithoutDB skips the audit database connection entirely, independent
// of Config.Database.Enabled — useful for tests that want no network
// I/O at all.
func WithoutDB() Option {
	return func(o *options) { o.skipDB = true }
}

// WithCustomLogger uses log instead of building one from Config.
func WithCustomLogger(log *logger.Logger) Option {
	return func(o *options) { o.customLogger = log }
}

// WithCustomConfig uses cfg instead of loading one from the
// environment.
func WithCustomConfig(cfg *config.Config) Option {
	return func(o *options) { o.customConfig = cfg }
}

// WithDBInitHook runs hook once the audit database connects, e.g. to
// apply the job_audit_event schema.
func WithDBInitHook(hook func(*db.DB) error) Option {
	return func(o *options) { o.dbInitHook = hook }
}

func defaultOptions() *options {
	return &options{}
}
