// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - VaultStore: Lists and reads vault documents
//   - ConfigStore: Application configuration
//   - GeneratorFactory: Builds the Generator for the configured backend
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - NoteSink: Writes generated notes. Without it, create mode cannot save.
//   - SecretStore: Credential storage. Without it, hosted providers are unavailable.
//   - HistoryStore: Query history. Without it, nothing is recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
