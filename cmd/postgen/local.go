package main

import (
	"os"

	"github.com/jackzampolin/postgen/internal/config"
	"github.com/jackzampolin/postgen/internal/home"
	"github.com/jackzampolin/postgen/internal/providers"
	"github.com/jackzampolin/postgen/internal/server"
	"github.com/jackzampolin/postgen/internal/svcctx"
)

// loadHomeAndConfig resolves the home directory and loads configuration.
// An explicit --home makes its config.yaml the config file unless --config
// is also given.
func loadHomeAndConfig() (*home.Dir, *config.Manager, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, nil, err
	}
	file := cfgFile
	if file == "" && homeDir != "" && h.ConfigExists() {
		file = h.ConfigPath()
	}
	mgr, err := config.NewManager(file)
	if err != nil {
		return nil, nil, err
	}
	return h, mgr, nil
}

// localServices wires the services for commands that work on the data
// directory without a server. Logs go to stderr so structured output on
// stdout stays parseable.
func localServices() (*svcctx.Services, error) {
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return nil, err
	}
	h, mgr, err := loadHomeAndConfig()
	if err != nil {
		return nil, err
	}
	reg := providers.NewRegistryFromConfig(mgr.Get().ToProviderRegistryConfig())
	reg.SetLogger(logger)
	return server.BuildServices(server.ServicesConfig{
		Home:          h,
		ConfigManager: mgr,
		Providers:     reg,
		Logger:        logger,
	})
}
