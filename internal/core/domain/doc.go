// Package domain defines the core business entities for vaultqa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Settings: The flat configuration record
//   - ModelDescriptor: A static catalog entry for a hosted model
//   - Document: A readable text file in the vault
//   - Reference: A normalised citation found in generated text
//   - QueryResult: The outcome of one pipeline run
//   - GenerationError: A classified provider failure
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
