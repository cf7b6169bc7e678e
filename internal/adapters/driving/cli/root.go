// Package cli provides the vaultqa command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driven"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driving"
	"github.com/custodia-labs/vaultqa/internal/logger"
)

// VaultEnv names the vault directory when --vault is not given.
const VaultEnv = "VAULTQA_VAULT"

// skipServices marks commands that run without building services.
const skipServices = "skip-services"

var version = "dev"

// CatalogValidator smoke-tests catalog models, accepting per-run credentials.
type CatalogValidator interface {
	driven.CatalogValidator
	SetKey(provider domain.AIProvider, key string)
}

// ConnectionChecker pings the backend selected by a settings record.
type ConnectionChecker interface {
	Validate(ctx context.Context, settings domain.Settings) error
}

// Services bundles everything the commands drive. Only Settings and
// Assistant are required; commands report the others as not configured.
type Services struct {
	Settings  driving.SettingsService
	Assistant driving.AssistantService
	Vault     driving.VaultBrowser
	History   driven.HistoryStore
	Secrets   driven.SecretStore
	Validator CatalogValidator
	Checker   ConnectionChecker

	// Watch starts keeping the vault catalog fresh until ctx is done.
	Watch func(ctx context.Context) error

	// Close releases resources held by the services.
	Close func() error
}

// Options are the global flags a Builder needs.
type Options struct {
	VaultDir  string
	ConfigDir string
}

// Builder constructs the services once flags are parsed.
type Builder func(opts Options) (*Services, error)

var (
	settingsService   driving.SettingsService
	assistantService  driving.AssistantService
	vaultBrowser      driving.VaultBrowser
	historyStore      driven.HistoryStore
	secretStore       driven.SecretStore
	catalogValidator  CatalogValidator
	connectionChecker ConnectionChecker
	watchVault        func(ctx context.Context) error
	closeServices     func() error

	buildServices Builder
)

// errReported marks failures the command already rendered.
var errReported = errors.New("request failed")

var rootCmd = &cobra.Command{
	Use:   "vaultqa",
	Short: "Ask questions about your notes and draft new ones",
	Long: `vaultqa answers questions from a folder of Markdown notes and drafts
new notes on a topic, using OpenAI, Gemini or a local OpenAI-compatible server.

Citations in answers are normalised to [[path#section]] links and checked
against the vault.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.String("log-file", "", "Also write JSON logs to this file")
	flags.String("vault", "", "Vault directory (default: $"+VaultEnv+" or the current directory)")
	flags.String("config-dir", "", "Configuration directory (default: ~/.vaultqa)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBuilder registers the function that wires services after flag parsing.
func SetBuilder(b Builder) {
	buildServices = b
}

// SetServices installs services directly, bypassing the Builder.
func SetServices(s *Services) {
	settingsService = s.Settings
	assistantService = s.Assistant
	vaultBrowser = s.Vault
	historyStore = s.History
	secretStore = s.Secrets
	catalogValidator = s.Validator
	connectionChecker = s.Checker
	watchVault = s.Watch
	closeServices = s.Close
}

// Execute runs the root command and renders any error it returns.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errReported) {
		rootCmd.PrintErrln(renderFailure(err))
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	if verbose, err := flags.GetBool("verbose"); err == nil && verbose {
		logger.SetVerbose(true)
	}
	if logFile, err := flags.GetString("log-file"); err == nil && logFile != "" {
		logger.SetLogFile(logFile)
	}

	if buildServices == nil || cmd.Annotations[skipServices] == "true" || settingsService != nil {
		return nil
	}

	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}
	logger.Debug("Vault: %s", opts.VaultDir)

	services, err := buildServices(opts)
	if err != nil {
		return fmt.Errorf("initialising services: %w", err)
	}
	SetServices(services)
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	defer logger.Sync() //nolint:errcheck // stderr sync fails on some terminals

	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

func resolveOptions(cmd *cobra.Command) (Options, error) {
	vaultDir, _ := cmd.Flags().GetString("vault")
	if vaultDir == "" {
		vaultDir = os.Getenv(VaultEnv)
	}
	if vaultDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Options{}, fmt.Errorf("getting working directory: %w", err)
		}
		vaultDir = wd
	}

	configDir, _ := cmd.Flags().GetString("config-dir")
	return Options{VaultDir: vaultDir, ConfigDir: configDir}, nil
}
