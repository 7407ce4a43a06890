package openai

import (
	"strings"
	"time"

	"github.com/aretw0/relay/pkg/domain"
	backend "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/shared"
)

// mapStatus folds the API run statuses onto the relay lifecycle.
// Statuses this package does not know stay as reported and are treated as non-terminal.
func mapStatus(s string) domain.RunStatus {
	switch s {
	case "requires_action":
		return domain.StatusNeedsAction
	case "cancelling":
		return domain.StatusInProgress
	case "incomplete":
		return domain.StatusFailed
	default:
		return domain.RunStatus(s)
	}
}

func toRun(r *backend.Run) *domain.Run {
	run := &domain.Run{
		ID:          r.ID,
		ThreadID:    r.ThreadID,
		AssistantID: r.AssistantID,
		Status:      mapStatus(string(r.Status)),
	}
	if run.Status == domain.StatusNeedsAction {
		for _, tc := range r.RequiredAction.SubmitToolOutputs.ToolCalls {
			run.RequiredAction = append(run.RequiredAction, domain.ToolCall{
				ID:   tc.ID,
				Name: tc.Function.Name,
				Raw:  tc.Function.Arguments,
			})
		}
	}

	switch {
	case r.LastError.Message != "":
		run.LastError = r.LastError.Message
		if code := string(r.LastError.Code); code != "" {
			run.LastError = code + ": " + run.LastError
		}
	case r.IncompleteDetails.Reason != "":
		run.LastError = string(r.IncompleteDetails.Reason)
	}
	return run
}

func toMessage(m *backend.Message) domain.Message {
	var parts []string
	for _, c := range m.Content {
		if c.Type == "text" {
			parts = append(parts, c.Text.Value)
		}
	}
	role := domain.RoleUser
	if string(m.Role) == string(domain.RoleAssistant) {
		role = domain.RoleAssistant
	}
	return domain.Message{
		ID:        m.ID,
		ThreadID:  m.ThreadID,
		Role:      role,
		Content:   strings.Join(parts, "\n"),
		CreatedAt: time.Unix(m.CreatedAt, 0).UTC(),
	}
}

func toAssistant(a *backend.Assistant) domain.Assistant {
	return domain.Assistant{
		ID:           a.ID,
		Name:         a.Name,
		Model:        a.Model,
		Instructions: a.Instructions,
	}
}

func toToolParam(tool domain.Tool) backend.AssistantToolUnionParam {
	params := tool.Parameters
	if len(params) == 0 {
		params = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return backend.AssistantToolUnionParam{
		OfFunction: &backend.FunctionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        tool.Name,
				Description: backend.String(tool.Description),
				Parameters:  shared.FunctionParameters(params),
			},
		},
	}
}
