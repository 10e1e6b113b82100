package server

import (
	"fmt"
	"log/slog"

	"github.com/jackzampolin/postgen/internal/annotate"
	"github.com/jackzampolin/postgen/internal/config"
	"github.com/jackzampolin/postgen/internal/generator"
	"github.com/jackzampolin/postgen/internal/home"
	"github.com/jackzampolin/postgen/internal/metrics"
	"github.com/jackzampolin/postgen/internal/processor"
	"github.com/jackzampolin/postgen/internal/prompts"
	annotateprompts "github.com/jackzampolin/postgen/internal/prompts/annotate"
	"github.com/jackzampolin/postgen/internal/prompts/generate"
	"github.com/jackzampolin/postgen/internal/providers"
	"github.com/jackzampolin/postgen/internal/registry"
	"github.com/jackzampolin/postgen/internal/svcctx"
)

// ServicesConfig holds the collaborators BuildServices wires together.
type ServicesConfig struct {
	Home          *home.Dir
	ConfigManager *config.Manager
	Providers     *providers.Registry
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
}

// BuildServices wires the dataset, processing and generation services from
// the current configuration. The server calls it on Start; the CLI calls it
// directly for commands that work on the data directory without a server.
func BuildServices(sc ServicesConfig) (*svcctx.Services, error) {
	if sc.Logger == nil {
		sc.Logger = slog.Default()
	}
	if sc.Providers == nil {
		sc.Providers = providers.NewRegistry()
		sc.Providers.SetLogger(sc.Logger)
	}
	if sc.Home == nil {
		h, err := home.New("")
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		sc.Home = h
	}

	cfg := config.DefaultConfig()
	if sc.ConfigManager != nil {
		cfg = sc.ConfigManager.Get()
	}

	sc.Home.SetDataPath(cfg.Data.Dir)
	if err := sc.Home.EnsureExists(); err != nil {
		return nil, err
	}

	datasets := registry.New(sc.Home.DataPath(), sc.Logger)
	datasets.SetDefaultDataset(cfg.Data.DefaultDataset)

	store := prompts.NewStore(datasets.Path(prompts.TemplatesFileName), sc.Logger)
	resolver := prompts.NewResolver(store, sc.Logger)
	generate.RegisterPrompts(resolver)
	annotateprompts.RegisterPrompts(resolver)

	generationProvider := cfg.Defaults.LLMProvider
	annotationProvider := cfg.AnnotationProvider()
	if !sc.Providers.Has(generationProvider) {
		sc.Logger.Warn("generation provider not available; generation requests will fail until it is configured", "provider", generationProvider)
	}

	classifier := annotate.NewLLMClassifier(annotate.LLMClassifierConfig{
		Client:   sc.Metrics.Instrument(sc.Providers.Lookup(annotationProvider), "classify"),
		Attempts: cfg.Generation.RetryAttempts,
		Delay:    cfg.Generation.RetryDelay(),
		Logger:   sc.Logger,
	})
	proc := processor.New(processor.Config{
		Classifier: classifier,
		Registry:   datasets,
		Metrics:    sc.Metrics,
		Logger:     sc.Logger,
	})

	genCfg := generator.Config{
		Client:      sc.Metrics.Instrument(sc.Providers.Lookup(generationProvider), "generate"),
		Resolver:    resolver,
		MaxExamples: cfg.Generation.MaxExamples,
		Attempts:    cfg.Generation.RetryAttempts,
		Delay:       cfg.Generation.RetryDelay(),
		Metrics:     sc.Metrics,
		Logger:      sc.Logger,
	}
	if p, ok := cfg.GetLLMProvider(generationProvider); ok {
		genCfg.Temperature = p.Temperature
		genCfg.MaxTokens = p.MaxTokens
	}

	return &svcctx.Services{
		Config:    sc.ConfigManager,
		Providers: sc.Providers,
		Datasets:  datasets,
		Processor: proc,
		Generator: generator.New(genCfg),
		Templates: store,
		Resolver:  resolver,
		Metrics:   sc.Metrics,
		Logger:    sc.Logger,
		Home:      sc.Home,
	}, nil
}
