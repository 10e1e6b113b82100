// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/jackzampolin/postgen/internal/config"
	"github.com/jackzampolin/postgen/internal/generator"
	"github.com/jackzampolin/postgen/internal/home"
	"github.com/jackzampolin/postgen/internal/metrics"
	"github.com/jackzampolin/postgen/internal/processor"
	"github.com/jackzampolin/postgen/internal/prompts"
	"github.com/jackzampolin/postgen/internal/providers"
	"github.com/jackzampolin/postgen/internal/registry"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Config    *config.Manager
	Providers *providers.Registry
	Datasets  *registry.Registry
	Processor *processor.Processor
	Generator *generator.Generator
	Templates *prompts.Store
	Resolver  *prompts.Resolver
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	Home      *home.Dir
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// ConfigFrom extracts the configuration manager from context.
func ConfigFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.Config
	}
	return nil
}

// ProvidersFrom extracts the provider registry from context.
func ProvidersFrom(ctx context.Context) *providers.Registry {
	if s := ServicesFrom(ctx); s != nil {
		return s.Providers
	}
	return nil
}

// DatasetsFrom extracts the dataset registry from context.
func DatasetsFrom(ctx context.Context) *registry.Registry {
	if s := ServicesFrom(ctx); s != nil {
		return s.Datasets
	}
	return nil
}

// ProcessorFrom extracts the raw dataset processor from context.
func ProcessorFrom(ctx context.Context) *processor.Processor {
	if s := ServicesFrom(ctx); s != nil {
		return s.Processor
	}
	return nil
}

// GeneratorFrom extracts the post generator from context.
func GeneratorFrom(ctx context.Context) *generator.Generator {
	if s := ServicesFrom(ctx); s != nil {
		return s.Generator
	}
	return nil
}

// TemplatesFrom extracts the saved template store from context.
func TemplatesFrom(ctx context.Context) *prompts.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.Templates
	}
	return nil
}

// PromptResolverFrom extracts the prompt resolver from context.
func PromptResolverFrom(ctx context.Context) *prompts.Resolver {
	if s := ServicesFrom(ctx); s != nil {
		return s.Resolver
	}
	return nil
}

// MetricsFrom extracts the metrics collectors from context.
func MetricsFrom(ctx context.Context) *metrics.Metrics {
	if s := ServicesFrom(ctx); s != nil {
		return s.Metrics
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil && s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}
