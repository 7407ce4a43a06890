package domain

// ToolCall represents a request from the remote run to the host to perform a side-effect.
// Compatible with OpenAI/MCP tool call schemas.
type ToolCall struct {
	ID   string         `json:"id" yaml:"id" mapstructure:"id"`                           // Correlates the result, opaque
	Name string         `json:"name" yaml:"name" mapstructure:"name"`                     // Function name to call
	Args map[string]any `json:"args,omitempty" yaml:"args,omitempty" mapstructure:"args"` // Decoded arguments, not yet validated

	// Raw holds the argument text as received when it could not be decoded upstream.
	Raw string `json:"raw,omitempty" yaml:"raw,omitempty" mapstructure:"raw"`
}

// ToolResult represents the output of a side-effect returned by the host.
type ToolResult struct {
	CallID string `json:"call_id" yaml:"call_id" mapstructure:"call_id"` // Must match the ToolCall.ID
	Output string `json:"output" yaml:"output" mapstructure:"output"`
}

// Tool defines metadata about a tool available to the assistant.
// Parameters is a JSON schema object describing the named arguments.
type Tool struct {
	Name        string         `json:"name" yaml:"name" mapstructure:"name"`
	Description string         `json:"description" yaml:"description" mapstructure:"description"`
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty" mapstructure:"parameters"`
}
