// Command vaultqa answers questions from a folder of notes and drafts new ones.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/vaultqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/vaultqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/vaultqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/vaultqa/internal/adapters/driven/vault/filesystem"
	"github.com/custodia-labs/vaultqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/vaultqa/internal/core/domain"
	"github.com/custodia-labs/vaultqa/internal/core/services"
	"github.com/custodia-labs/vaultqa/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// baseURLEnv overrides the API origin of a hosted provider.
var baseURLEnv = map[domain.AIProvider]string{
	domain.AIProviderOpenAI: "VAULTQA_OPENAI_BASE_URL",
	domain.AIProviderGemini: "VAULTQA_GEMINI_BASE_URL",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBuilder(build)

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// build wires the adapters into the services the commands drive.
func build(opts cli.Options) (*cli.Services, error) {
	configDir := opts.ConfigDir
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	config, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	secrets := file.NewSecretStore(config)
	settings := services.NewSettingsService(config)

	vault, err := filesystem.New(opts.VaultDir)
	if err != nil {
		return nil, fmt.Errorf("opening vault: %w", err)
	}

	factory := ai.NewFactory(secrets)
	for provider, env := range baseURLEnv {
		if u := os.Getenv(env); u != "" {
			factory.SetBaseURL(provider, u)
		}
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"), services.DefaultPrompts())
	if err != nil {
		return nil, fmt.Errorf("opening prompts: %w", err)
	}

	assistant := services.NewAssistant(settings, vault, factory, filesystem.NewNoteWriter(vault))
	assistant.SetPromptStore(prompts)

	svc := &cli.Services{
		Settings:  settings,
		Assistant: assistant,
		Vault:     vault,
		Secrets:   secrets,
		Validator: ai.NewCatalogValidator(factory, ai.DefaultRateLimit),
		Checker:   factory,
		Watch:     watcher(vault),
	}

	// History is optional; the assistant works without it.
	db, err := sqlite.NewStore(filepath.Join(configDir, "data"))
	if err != nil {
		logger.Warn("History disabled: %v", err)
		return svc, nil
	}
	history := db.HistoryStore()
	assistant.SetHistoryStore(history)
	svc.History = history
	svc.Close = db.Close

	return svc, nil
}

// watcher keeps the vault catalog fresh and logs document changes.
func watcher(vault *filesystem.Store) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		changes, err := vault.Watch(ctx)
		if err != nil {
			return err
		}
		go func() {
			for c := range changes {
				logger.Debug("Vault %s: %s", c.Type, c.Path)
			}
		}()
		return nil
	}
}
