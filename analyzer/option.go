package analyzer

import (
	"io"
	"log/slog"
	"runtime"

	"github.com/apidrift/apidrift/cache"
	"github.com/apidrift/apidrift/inspector/model"
)

// Analyzer drives extraction and validation for one run.
type Analyzer struct {
	config  *model.Config
	store   *cache.Store
	workers int
	logger  *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithConfig sets the extraction and policy configuration.
func WithConfig(config *model.Config) Option {
	return func(a *Analyzer) {
		if config != nil {
			a.config = config
		}
	}
}

// WithCache attaches a content-addressed store so repeated runs skip
// extraction of unchanged files.
func WithCache(store *cache.Store) Option {
	return func(a *Analyzer) {
		a.store = store
	}
}

// WithWorkers bounds the extraction worker pool.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithLogger sets the logger for non-fatal pipeline notices.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an Analyzer with the default configuration, a worker pool
// sized to available cores, and no cache.
func New(options ...Option) *Analyzer {
	analyzer := &Analyzer{
		config:  model.DefaultConfig(),
		workers: runtime.NumCPU(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(analyzer)
	}
	return analyzer
}
