package domain

// Field constants for mapstructure and JSON standardization.
const (
	// KeyCallID is the JSON field name used to correlate a result with its call.
	KeyCallID = "call_id"

	// DefaultAssistantName is used when creating an assistant without an explicit name.
	DefaultAssistantName = "MyQuickstartAssistant"

	// DefaultInstructions is the system prompt of a freshly created assistant.
	DefaultInstructions = "You are a helpful assistant."

	// DefaultModel is the model of a freshly created assistant.
	DefaultModel = "gpt-3.5-turbo-0125"
)
