// Package cmd provides the psyche CLI: case authoring, interview runs,
// construct extraction, evaluation, expert validation, search, and
// reporting.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/adalundhe/psyche/core/blobstore"
	"github.com/adalundhe/psyche/core/config"
	"github.com/adalundhe/psyche/core/gateway"
	"github.com/adalundhe/psyche/core/providers"
	"github.com/adalundhe/psyche/core/psyche"
	"github.com/adalundhe/psyche/core/templates"
)

var (
	configPath string
	verbose    bool
	cfgManager *config.Manager
)

var rootCmd = &cobra.Command{
	Use:   "psyche",
	Short: "PSYCHE - psychiatric interview simulation and evaluation",
	Long: `PSYCHE authors simulated patients, runs clinician-patient interviews
between two LLM agents, extracts structured clinical constructs from both
sides, and scores the interviewer against a weighted rubric.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		manager, err := initConfig(configPath)
		if err != nil {
			return err
		}
		cfgManager = manager
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cfgManager != nil {
			cfgManager.Close()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "psyche.yaml", "configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// initConfig loads the config file and keeps watching it, so edits made
// while a long interview runs are picked up on the next read.
func initConfig(path string) (*config.Manager, error) {
	manager := config.NewManager(path)
	if err := manager.Load(); err != nil {
		return nil, err
	}
	manager.OnChange(func(cfg *config.Config) {
		slog.Info("configuration reloaded", "path", path, "store", cfg.Store.Backend, "max_turns", cfg.Dialogue.MaxTurns)
	})
	if err := manager.Watch(); err != nil {
		slog.Warn("config watch unavailable", "error", err)
	}
	return manager, nil
}

// loadConfig returns the current configuration snapshot.
func loadConfig() (*config.Config, error) {
	if cfgManager == nil {
		manager, err := initConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfgManager = manager
	}
	return cfgManager.Get(), nil
}

// openStore opens the configured blob store backend.
func openStore(ctx context.Context, cfg *config.Config) (*blobstore.Adapter, error) {
	var (
		store blobstore.Store
		err   error
	)
	switch cfg.Store.Backend {
	case "sqlite":
		store, err = blobstore.NewSQLiteStore(blobstore.SQLiteConfig{Path: cfg.Store.Path})
	case "redis":
		store, err = blobstore.NewRedisStore(ctx, blobstore.RedisConfig{
			URL:    cfg.Store.RedisURL,
			Prefix: cfg.Store.Prefix,
		})
	case "memory":
		store = blobstore.NewMemoryStore()
	default:
		err = fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if err != nil {
		return nil, err
	}
	return blobstore.NewAdapter(store), nil
}

// openTemplates opens the template store.
func openTemplates(cfg *config.Config) (*templates.Store, error) {
	return templates.NewStore(cfg.Templates.Dir)
}

// newGateway registers the configured provider with resolved credentials
// and returns a gateway routed to it.
func newGateway(ctx context.Context, cfg *config.Config, model string) (*gateway.Client, error) {
	provider := providers.ProviderType(cfg.LLM.DefaultProvider)
	apiKey, err := gateway.ResolveAPIKey(cfg.LLM.DefaultProvider)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = cfg.LLM.Model
	}

	registry := providers.NewRegistry()
	switch provider {
	case providers.ProviderTypeAnthropic:
		pc := providers.DefaultAnthropicConfig()
		pc.APIKey = apiKey
		applyLLMConfig(&pc.BaseConfig, cfg, model)
		err = registry.RegisterAnthropic(pc)
	case providers.ProviderTypeOpenAI:
		pc := providers.DefaultOpenAIConfig()
		pc.APIKey = apiKey
		applyLLMConfig(&pc.BaseConfig, cfg, model)
		err = registry.RegisterOpenAI(pc)
	case providers.ProviderTypeGoogle:
		pc := providers.DefaultGoogleConfig()
		pc.APIKey = apiKey
		applyLLMConfig(&pc.BaseConfig, cfg, model)
		err = registry.RegisterGemini(ctx, pc)
	default:
		err = fmt.Errorf("unknown provider %q", cfg.LLM.DefaultProvider)
	}
	if err != nil {
		return nil, err
	}
	return gateway.NewClient(registry, provider), nil
}

func applyLLMConfig(base *providers.BaseConfig, cfg *config.Config, model string) {
	if model != "" {
		base.Model = model
	}
	if cfg.LLM.MaxTokens > 0 {
		base.MaxTokens = cfg.LLM.MaxTokens
	}
	if cfg.LLM.Timeout > 0 {
		base.Timeout = cfg.LLM.Timeout
	}
}

// loadRubric loads and parses the configured rubric version.
func loadRubric(ts *templates.Store, cfg *config.Config) (*psyche.Rubric, error) {
	raw, err := ts.Rubric(cfg.Evaluation.RubricVersion)
	if err != nil {
		return nil, err
	}
	return psyche.ParseRubric([]byte(raw))
}
