package loader

import (
	"context"

	"github.com/GriffinCanCode/modloader/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/modloader/internal/logging"
)

// Provider supplies source text for identifiers required without an
// explicit source. Unknown ids must be reported with an error matching
// sandbox.ErrNotFound; any other error surfaces as sandbox.KindProvider.
// Implementations live outside the registry, see internal/source.
type Provider interface {
	Source(ctx context.Context, id string) (string, error)
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records require outcomes on metrics.
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(r *Registry) {
		r.metrics = metrics
	}
}

// WithProvider resolves source-less requires through provider.
func WithProvider(provider Provider) Option {
	return func(r *Registry) {
		r.provider = provider
	}
}
