package file

import (
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driven"
)

// Ensure SecretStore implements the interface.
var _ driven.SecretStore = (*SecretStore)(nil)

// credentialPrefix namespaces stored credentials in the config file.
const credentialPrefix = "credentials."

// SecretStore keeps provider credentials in the config store, which is
// written with 0600 permissions. An environment variable per provider
// takes precedence over the stored value.
type SecretStore struct {
	config driven.ConfigStore
	getenv func(string) string
}

// NewSecretStore creates a credential store over config.
func NewSecretStore(config driven.ConfigStore) *SecretStore {
	return &SecretStore{config: config, getenv: os.Getenv}
}

// EnvVar returns the environment variable that overrides a provider's
// credential, e.g. VAULTQA_OPENAI_API_KEY.
func EnvVar(provider domain.AIProvider) string {
	return "VAULTQA_" + strings.ToUpper(string(provider)) + "_API_KEY"
}

// Get returns the credential for a provider, or "" if none is configured.
func (s *SecretStore) Get(provider domain.AIProvider) (string, error) {
	if !provider.RequiresAPIKey() {
		return "", nil
	}
	if v := strings.TrimSpace(s.getenv(EnvVar(provider))); v != "" {
		return v, nil
	}
	return strings.TrimSpace(s.config.GetString(credentialPrefix + string(provider))), nil
}

// Set stores the credential for a hosted provider.
func (s *SecretStore) Set(provider domain.AIProvider, secret string) error {
	if !provider.RequiresAPIKey() {
		return fmt.Errorf("%w: %s does not use an API key", domain.ErrInvalidInput, provider)
	}
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return fmt.Errorf("%w: API key is empty", domain.ErrInvalidInput)
	}
	return s.config.Set(credentialPrefix+string(provider), secret)
}

// Delete removes the stored credential. Environment overrides are unaffected.
func (s *SecretStore) Delete(provider domain.AIProvider) error {
	return s.config.Delete(credentialPrefix + string(provider))
}

// Source describes where the effective credential comes from: "env",
// "config" or "" when none is configured.
func (s *SecretStore) Source(provider domain.AIProvider) string {
	if strings.TrimSpace(s.getenv(EnvVar(provider))) != "" {
		return "env"
	}
	if strings.TrimSpace(s.config.GetString(credentialPrefix+string(provider))) != "" {
		return "config"
	}
	return ""
}
