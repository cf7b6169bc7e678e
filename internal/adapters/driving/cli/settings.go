package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
)

var errNoSettings = errors.New("settings service not configured")

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the AI provider, retrieval scope, note output and
other options. Every change is saved immediately.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to choose a provider, model, API key and mode.`,
	RunE:  runSettingsWizard,
}

var settingsProviderCmd = &cobra.Command{
	Use:   "provider [openai|gemini]",
	Short: "Set the hosted AI provider",
	Long: `Set the hosted AI provider. The model is reset to the provider's default
unless the current model already belongs to it.

Without an argument, choose from a list.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsProvider,
}

var settingsModelCmd = &cobra.Command{
	Use:   "model [model-id]",
	Short: "Set the hosted model",
	Long:  `Set the hosted model. It must belong to the current provider. Without an argument, choose from the catalog.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSettingsModel,
}

var settingsModeCmd = &cobra.Command{
	Use:   "mode [query|create]",
	Short: "Set the default mode",
	Long: `Set the default pipeline mode.

Available modes:
  query  - Answer a question from existing notes
  create - Generate a new note on a topic`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsMode,
}

var settingsLocalCmd = &cobra.Command{
	Use:   "local",
	Short: "Configure the local model server",
	Long: `Configure an OpenAI-compatible server such as LM Studio, Ollama or llama.cpp.

Examples:
  vaultqa settings local --enable --url http://localhost:11434/v1 --model llama3
  vaultqa settings local --disable`,
	RunE: runSettingsLocal,
}

var settingsGenerationCmd = &cobra.Command{
	Use:   "generation",
	Short: "Set max tokens and temperature",
	RunE:  runSettingsGeneration,
}

var settingsScopeCmd = &cobra.Command{
	Use:   "scope",
	Short: "Set which documents are used as context",
	Long: `Restrict context to documents under a folder, or to the current document only.

Examples:
  vaultqa settings scope --include Projects/
  vaultqa settings scope --include "" --current-only=false`,
	RunE: runSettingsScope,
}

var settingsExcludeCmd = &cobra.Command{
	Use:   "exclude",
	Short: "Manage excluded folders",
}

var settingsExcludeAddCmd = &cobra.Command{
	Use:   "add [prefix]",
	Short: "Exclude documents under a path prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsExcludeAdd,
}

var settingsExcludeRemoveCmd = &cobra.Command{
	Use:   "remove [prefix]",
	Short: "Stop excluding a path prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsExcludeRemove,
}

var settingsNotesFolderCmd = &cobra.Command{
	Use:   "notes-folder [folder]",
	Short: "Set where generated notes are saved",
	Long:  `Set the vault folder for generated notes. Use "/" to save them at the vault root.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsNotesFolder,
}

var settingsFeaturesCmd = &cobra.Command{
	Use:   "features",
	Short: "Toggle vault context and generated titles",
	RunE:  runSettingsFeatures,
}

var settingsKeyCmd = &cobra.Command{
	Use:   "key [openai|gemini]",
	Short: "Store or delete an API key",
	Long: `Store an API key for a hosted provider. The key is read without echo.

The environment variables VAULTQA_OPENAI_API_KEY and VAULTQA_GEMINI_API_KEY
take precedence over stored keys.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsKey,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the configured provider is reachable",
	RunE:  runSettingsCheck,
}

func init() {
	settingsLocalCmd.Flags().Bool("enable", false, "Route requests to the local server")
	settingsLocalCmd.Flags().Bool("disable", false, "Route requests to the hosted provider")
	settingsLocalCmd.Flags().String("url", "", "Server base URL")
	settingsLocalCmd.Flags().String("model", "", "Model name sent to the server")

	settingsGenerationCmd.Flags().Int("max-tokens", 0, "Maximum output tokens")
	settingsGenerationCmd.Flags().Float64("temperature", 0, "Sampling temperature (0-2)")

	settingsScopeCmd.Flags().String("include", "", "Only use documents under this path prefix")
	settingsScopeCmd.Flags().Bool("current-only", false, "Only use the current document")

	settingsFeaturesCmd.Flags().Bool("context", true, "Include vault context in prompts")
	settingsFeaturesCmd.Flags().Bool("llm-titles", true, "Derive note titles with a second request")

	settingsKeyCmd.Flags().Bool("delete", false, "Delete the stored key")

	settingsExcludeCmd.AddCommand(settingsExcludeAddCmd)
	settingsExcludeCmd.AddCommand(settingsExcludeRemoveCmd)

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsProviderCmd)
	settingsCmd.AddCommand(settingsModelCmd)
	settingsCmd.AddCommand(settingsModeCmd)
	settingsCmd.AddCommand(settingsLocalCmd)
	settingsCmd.AddCommand(settingsGenerationCmd)
	settingsCmd.AddCommand(settingsScopeCmd)
	settingsCmd.AddCommand(settingsExcludeCmd)
	settingsCmd.AddCommand(settingsNotesFolderCmd)
	settingsCmd.AddCommand(settingsFeaturesCmd)
	settingsCmd.AddCommand(settingsKeyCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(titleStyle.Render("Current Settings"))
	cmd.Println()

	cmd.Println(subtitleStyle.Render("[Provider]"))
	cmd.Printf("  Active: %s\n", settings.EffectiveProvider().Description())
	cmd.Printf("  Hosted provider: %s\n", settings.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Model)
	if settings.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", describeKey(settings.Provider))
	}
	cmd.Println()

	cmd.Println(subtitleStyle.Render("[Local Server]"))
	cmd.Printf("  Enabled: %s\n", yesNo(settings.UseLocal))
	cmd.Printf("  Base URL: %s\n", settings.LocalBaseURL)
	cmd.Printf("  Model: %s\n", settings.LocalModel)
	cmd.Println()

	cmd.Println(subtitleStyle.Render("[Generation]"))
	cmd.Printf("  Mode: %s\n", settings.Mode.Description())
	cmd.Printf("  Max tokens: %d\n", settings.MaxTokens)
	cmd.Printf("  Temperature: %.2f\n", settings.Temperature)
	cmd.Printf("  LLM titles: %s\n", yesNo(settings.LLMTitles))
	cmd.Println()

	cmd.Println(subtitleStyle.Render("[Context]"))
	cmd.Printf("  Include vault context: %s\n", yesNo(settings.IncludeContext))
	cmd.Printf("  Current document only: %s\n", yesNo(settings.CurrentDocumentOnly))
	cmd.Printf("  Include folder: %s\n", orNone(settings.IncludeFolder))
	cmd.Printf("  Excluded folders: %s\n", orNone(strings.Join(settings.ExcludeFolders, ", ")))
	cmd.Println()

	cmd.Println(subtitleStyle.Render("[Notes]"))
	cmd.Printf("  Folder: %s\n", settings.NotesFolder)

	return nil
}

func describeKey(provider domain.AIProvider) string {
	if secretStore == nil {
		return "(unknown)"
	}
	key, err := secretStore.Get(provider)
	if err != nil || key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}

	cmd.Println(titleStyle.Render("vaultqa Settings Wizard"))
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	// Step 1: Provider
	cmd.Println("Step 1: Select AI Provider")
	cmd.Println("--------------------------")
	providers := domain.AllProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	selected := providers[parseChoice(readLine(reader), len(providers), 1)-1]

	if selected == domain.AIProviderLocal {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		cmd.Printf("Base URL [%s]: ", settings.LocalBaseURL)
		baseURL := orDefault(readLine(reader), settings.LocalBaseURL)
		cmd.Printf("Model [%s]: ", settings.LocalModel)
		model := orDefault(readLine(reader), settings.LocalModel)
		if err := settingsService.SetLocal(true, baseURL, model); err != nil {
			return fmt.Errorf("failed to configure local server: %w", err)
		}
		cmd.Printf("Using local server at %s\n\n", baseURL)
	} else {
		if err := settingsService.SetProvider(selected); err != nil {
			return fmt.Errorf("failed to set provider: %w", err)
		}
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		if settings.UseLocal {
			if err := settingsService.SetLocal(false, settings.LocalBaseURL, settings.LocalModel); err != nil {
				return fmt.Errorf("failed to disable local server: %w", err)
			}
		}
		cmd.Printf("Provider set to: %s\n\n", selected.Description())

		// Step 2: Model
		cmd.Println("Step 2: Select Model")
		cmd.Println("--------------------")
		model, err := chooseModel(cmd, reader, selected, settings.Model)
		if err != nil {
			return err
		}
		if err := settingsService.SetModel(model); err != nil {
			return fmt.Errorf("failed to set model: %w", err)
		}
		cmd.Printf("Model set to: %s\n\n", model)

		// Step 3: API key
		if secretStore != nil {
			if key, _ := secretStore.Get(selected); key == "" { //nolint:errcheck // Best-effort check
				cmd.Printf("Enter %s API key (leave empty to skip): ", selected.DisplayName())
				key := readSecret(cmd.InOrStdin(), reader)
				cmd.Println()
				if key != "" {
					if err := secretStore.Set(selected, key); err != nil {
						return fmt.Errorf("failed to store API key: %w", err)
					}
					cmd.Println("API key saved.")
				}
			}
		}
	}

	// Step 4: Mode
	cmd.Println("Select Default Mode")
	cmd.Println("-------------------")
	modes := domain.AllModes()
	for i, mode := range modes {
		cmd.Printf("  %d. %s\n", i+1, mode.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	mode := modes[parseChoice(readLine(reader), len(modes), 1)-1]
	if err := settingsService.SetMode(mode); err != nil {
		return fmt.Errorf("failed to set mode: %w", err)
	}

	cmd.Println()
	cmd.Println(successStyle.Render("Configuration complete."))
	return nil
}

// chooseModel lists the catalog for provider and returns the selection,
// keeping current on empty input.
func chooseModel(cmd *cobra.Command, reader *bufio.Reader, provider domain.AIProvider, current string) (string, error) {
	models := domain.ModelsFor(provider)
	defaultIdx := 1
	for i, m := range models {
		marker := " "
		if m.ID == current {
			marker = "*"
			defaultIdx = i + 1
		}
		cmd.Printf(" %s%d. %s (%s)\n", marker, i+1, m.Name, m.ID)
	}
	cmd.Printf("\nEnter choice [%d]: ", defaultIdx)
	idx := parseChoice(readLine(reader), len(models), defaultIdx)
	if idx < 1 || idx > len(models) {
		return "", errors.New("invalid selection")
	}
	return models[idx-1].ID, nil
}

func runSettingsProvider(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNoSettings
	}

	var provider domain.AIProvider
	if len(args) == 1 {
		provider = domain.AIProvider(strings.ToLower(args[0]))
	} else {
		reader := bufio.NewReader(cmd.InOrStdin())
		cmd.Println("Select AI Provider")
		cmd.Println("------------------")
		hosted := []domain.AIProvider{domain.AIProviderOpenAI, domain.AIProviderGemini}
		for i, p := range hosted {
			cmd.Printf("  %d. %s\n", i+1, p.Description())
		}
		cmd.Print("\nEnter choice: ")
		idx := parseChoice(readLine(reader), len(hosted), 0)
		if idx == 0 {
			return errors.New("invalid selection")
		}
		provider = hosted[idx-1]
	}

	if err := settingsService.SetProvider(provider); err != nil {
		return fmt.Errorf("failed to set provider: %w", err)
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Printf("Provider set to: %s (model %s)\n", provider.Description(), settings.Model)
	if settings.UseLocal {
		cmd.Println("\nNote: the local server is enabled and takes precedence.")
		cmd.Println("Run 'vaultqa settings local --disable' to use the hosted provider.")
	}
	return nil
}

func runSettingsModel(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNoSettings
	}

	var model string
	if len(args) == 1 {
		model = args[0]
	} else {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		cmd.Printf("Select %s Model\n", settings.Provider.DisplayName())
		cmd.Println("--------------------")
		model, err = chooseModel(cmd, bufio.NewReader(cmd.InOrStdin()), settings.Provider, settings.Model)
		if err != nil {
			return err
		}
	}

	if err := settingsService.SetModel(model); err != nil {
		return fmt.Errorf("failed to set model: %w", err)
	}
	cmd.Printf("Model set to: %s\n", model)
	return nil
}

func runSettingsMode(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNoSettings
	}

	var mode domain.Mode
	if len(args) == 1 {
		mode = domain.Mode(strings.ToLower(args[0]))
	} else {
		reader := bufio.NewReader(cmd.InOrStdin())
		cmd.Println("Select Default Mode")
		cmd.Println("-------------------")
		modes := domain.AllModes()
		for i, m := range modes {
			cmd.Printf("  %d. %s\n", i+1, m.Description())
		}
		cmd.Print("\nEnter choice: ")
		idx := parseChoice(readLine(reader), len(modes), 0)
		if idx == 0 {
			return errors.New("invalid selection")
		}
		mode = modes[idx-1]
	}

	if err := settingsService.SetMode(mode); err != nil {
		return fmt.Errorf("failed to set mode: %w", err)
	}
	cmd.Printf("Mode set to: %s\n", mode.Description())
	return nil
}

func runSettingsLocal(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}

	flags := cmd.Flags()
	enable, _ := flags.GetBool("enable")
	disable, _ := flags.GetBool("disable")
	if enable && disable {
		return errors.New("--enable and --disable are mutually exclusive")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	useLocal := settings.UseLocal
	switch {
	case enable:
		useLocal = true
	case disable:
		useLocal = false
	}
	baseURL := settings.LocalBaseURL
	if flags.Changed("url") {
		baseURL, _ = flags.GetString("url")
	}
	model := settings.LocalModel
	if flags.Changed("model") {
		model, _ = flags.GetString("model")
	}

	if err := settingsService.SetLocal(useLocal, baseURL, model); err != nil {
		return fmt.Errorf("failed to configure local server: %w", err)
	}
	cmd.Printf("Local server: %s (%s, model %s)\n", enabledLabel(useLocal), baseURL, model)
	return nil
}

func runSettingsGeneration(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	maxTokens := settings.MaxTokens
	if cmd.Flags().Changed("max-tokens") {
		maxTokens, _ = cmd.Flags().GetInt("max-tokens")
	}
	temperature := settings.Temperature
	if cmd.Flags().Changed("temperature") {
		temperature, _ = cmd.Flags().GetFloat64("temperature")
	}

	if err := settingsService.SetGeneration(maxTokens, temperature); err != nil {
		return fmt.Errorf("failed to set generation options: %w", err)
	}
	cmd.Printf("Max tokens: %d, temperature: %.2f\n", maxTokens, temperature)
	return nil
}

func runSettingsScope(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	include := settings.IncludeFolder
	if cmd.Flags().Changed("include") {
		include, _ = cmd.Flags().GetString("include")
	}
	currentOnly := settings.CurrentDocumentOnly
	if cmd.Flags().Changed("current-only") {
		currentOnly, _ = cmd.Flags().GetBool("current-only")
	}

	if err := settingsService.SetScope(include, currentOnly); err != nil {
		return fmt.Errorf("failed to set scope: %w", err)
	}
	cmd.Printf("Include folder: %s, current document only: %s\n", orNone(include), yesNo(currentOnly))
	return nil
}

func runSettingsExcludeAdd(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	if err := settingsService.AddExcludeFolder(args[0]); err != nil {
		return fmt.Errorf("failed to add excluded folder: %w", err)
	}
	cmd.Printf("Excluding: %s\n", args[0])
	return nil
}

func runSettingsExcludeRemove(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	if err := settingsService.RemoveExcludeFolder(args[0]); err != nil {
		return fmt.Errorf("failed to remove excluded folder: %w", err)
	}
	cmd.Printf("No longer excluding: %s\n", args[0])
	return nil
}

func runSettingsNotesFolder(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	if err := settingsService.SetNotesFolder(args[0]); err != nil {
		return fmt.Errorf("failed to set notes folder: %w", err)
	}
	cmd.Printf("Notes folder set to: %s\n", args[0])
	return nil
}

func runSettingsFeatures(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	includeContext := settings.IncludeContext
	if cmd.Flags().Changed("context") {
		includeContext, _ = cmd.Flags().GetBool("context")
	}
	llmTitles := settings.LLMTitles
	if cmd.Flags().Changed("llm-titles") {
		llmTitles, _ = cmd.Flags().GetBool("llm-titles")
	}

	if err := settingsService.SetFeatures(includeContext, llmTitles); err != nil {
		return fmt.Errorf("failed to set features: %w", err)
	}
	cmd.Printf("Vault context: %s, LLM titles: %s\n", enabledLabel(includeContext), enabledLabel(llmTitles))
	return nil
}

func runSettingsKey(cmd *cobra.Command, args []string) error {
	if secretStore == nil {
		return errors.New("secret store not configured")
	}

	provider := domain.AIProvider(strings.ToLower(args[0]))
	if !provider.RequiresAPIKey() {
		return fmt.Errorf("%s does not use an API key", args[0])
	}

	if del, _ := cmd.Flags().GetBool("delete"); del {
		if err := secretStore.Delete(provider); err != nil {
			return fmt.Errorf("failed to delete API key: %w", err)
		}
		cmd.Printf("Deleted %s API key\n", provider.DisplayName())
		return nil
	}

	cmd.Printf("Enter %s API key: ", provider.DisplayName())
	key := readSecret(cmd.InOrStdin(), nil)
	cmd.Println()
	if key == "" {
		return errors.New("no key entered")
	}

	if err := secretStore.Set(provider, key); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}
	cmd.Printf("Stored %s API key %s\n", provider.DisplayName(), maskAPIKey(key))
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	if connectionChecker == nil {
		return errors.New("connection checker not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	provider := settings.EffectiveProvider()
	cmd.Printf("Checking %s (%s)...\n", provider.DisplayName(), settings.EffectiveModel())
	if err := connectionChecker.Validate(cmd.Context(), *settings); err != nil {
		cmd.Println(renderFailure(err))
		return errReported
	}
	cmd.Println(successStyle.Render("OK"))
	return nil
}

func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readSecret reads a line without echo when in is a terminal. reader, when
// non-nil, is an existing buffered reader over in.
func readSecret(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	if reader == nil {
		reader = bufio.NewReader(in)
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func enabledLabel(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
