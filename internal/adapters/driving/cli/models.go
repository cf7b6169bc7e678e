package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List and validate hosted models",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the model catalog",
	RunE:  runModelsList,
}

var modelsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Send a one-token request to every catalog model",
	Long: `Send a minimal request to each catalog model and report PASS or FAIL
with the failure kind. Requests are paced per provider and never retried.

Keys default to the stored credentials. Use --openai-key or --gemini-key to
test other keys without storing them.

Exits non-zero when any model fails.`,
	RunE: runModelsValidate,
}

func init() {
	modelsListCmd.Flags().StringP("provider", "p", "", "Only list this provider's models")

	modelsValidateCmd.Flags().StringSliceP("provider", "p", nil, "Providers to validate (default: openai,gemini)")
	modelsValidateCmd.Flags().String("openai-key", "", "OpenAI key to use instead of the stored one")
	modelsValidateCmd.Flags().String("gemini-key", "", "Gemini key to use instead of the stored one")

	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsValidateCmd)
	rootCmd.AddCommand(modelsCmd)
}

func runModelsList(cmd *cobra.Command, _ []string) error {
	filter, _ := cmd.Flags().GetString("provider")

	current := ""
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			current = settings.Model
		}
	}

	for _, provider := range []domain.AIProvider{domain.AIProviderOpenAI, domain.AIProviderGemini} {
		if filter != "" && !strings.EqualFold(filter, provider.String()) {
			continue
		}
		cmd.Println(subtitleStyle.Render(provider.Description()))
		for _, m := range domain.ModelsFor(provider) {
			marker := " "
			if m.ID == current {
				marker = "*"
			}
			cmd.Printf(" %s %-24s %-24s %s\n", marker, m.ID, m.Name, m.RequestShape())
		}
		cmd.Println()
	}
	return nil
}

func runModelsValidate(cmd *cobra.Command, _ []string) error {
	if catalogValidator == nil {
		return errors.New("model validator not configured")
	}

	names, _ := cmd.Flags().GetStringSlice("provider")
	providers, err := parseHostedProviders(names)
	if err != nil {
		return err
	}

	if key, _ := cmd.Flags().GetString("openai-key"); key != "" {
		catalogValidator.SetKey(domain.AIProviderOpenAI, key)
	}
	if key, _ := cmd.Flags().GetString("gemini-key"); key != "" {
		catalogValidator.SetKey(domain.AIProviderGemini, key)
	}

	results, err := catalogValidator.ValidateCatalog(cmd.Context(), providers, func(check domain.ModelCheck) {
		cmd.Println(renderCheck(check))
	})
	if err != nil {
		return fmt.Errorf("validation interrupted: %w", err)
	}

	failed := 0
	for _, r := range results {
		if !r.Passed {
			failed++
		}
	}
	cmd.Println()
	cmd.Printf("%d passed, %d failed\n", len(results)-failed, failed)
	if failed > 0 {
		return errReported
	}
	return nil
}

func parseHostedProviders(names []string) ([]domain.AIProvider, error) {
	if len(names) == 0 {
		return []domain.AIProvider{domain.AIProviderOpenAI, domain.AIProviderGemini}, nil
	}
	providers := make([]domain.AIProvider, 0, len(names))
	for _, name := range names {
		p := domain.AIProvider(strings.ToLower(strings.TrimSpace(name)))
		if !p.IsHosted() {
			return nil, fmt.Errorf("%q is not a hosted provider", name)
		}
		providers = append(providers, p)
	}
	return providers, nil
}
