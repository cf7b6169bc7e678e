// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the vaultqa config directory.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - SecretStore: provider credentials in the config file, with
//     environment variable overrides
//   - PromptStore: user-editable prompt files
package file
