package driven

import "github.com/custodia-labs/vaultqa/internal/core/domain"

// SecretStore maps a provider to its stored credential.
// Implementations decide how credentials are protected at rest.
type SecretStore interface {
	// Get returns the credential for a provider, or "" if none is stored.
	Get(provider domain.AIProvider) (string, error)

	// Set stores the credential for a provider.
	Set(provider domain.AIProvider, secret string) error

	// Delete removes the credential for a provider.
	Delete(provider domain.AIProvider) error
}
