package domain

// Assistant is the handle of a remote assistant configuration.
type Assistant struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Model        string `json:"model"`
	Instructions string `json:"instructions,omitempty"`
}

// AssistantConfig describes the assistant to create, or the one to retrieve when ID is set.
type AssistantConfig struct {
	ID           string `json:"id,omitempty" yaml:"id,omitempty"`
	Name         string `json:"name" yaml:"name"`
	Model        string `json:"model" yaml:"model"`
	Instructions string `json:"instructions" yaml:"instructions"`
	Tools        []Tool `json:"tools,omitempty" yaml:"-"`
}

// WithDefaults fills the empty fields with the quickstart defaults.
func (c AssistantConfig) WithDefaults() AssistantConfig {
	if c.Name == "" {
		c.Name = DefaultAssistantName
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Instructions == "" {
		c.Instructions = DefaultInstructions
	}
	return c
}
