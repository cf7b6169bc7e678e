package driven

// PromptStore provides access to user-customisable prompt text.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt for the given name.
	// If the prompt is not found, implementations return their default
	// or an error.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptSystem is the system instruction sent with every generation
	// request. It has no format placeholders.
	PromptSystem = "system"
)

// PromptStoreAware is an optional interface for services that can use
// custom prompts. Without a store, services use their built-in defaults.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	SetPromptStore(store PromptStore)
}
