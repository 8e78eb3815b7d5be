package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

var ErrNoMessages = errors.New("messages are required")

// UIMessage is a chat message as the web client keeps it: a role plus an
// ordered list of parts.
type UIMessage struct {
	ID      string   `json:"id,omitempty"`
	Role    string   `json:"role"`
	Parts   []UIPart `json:"parts,omitempty"`
	Content string   `json:"content,omitempty"`
}

// UIPart is either a text part or a "tool-<name>" part carrying a tool
// invocation and, once available, its output.
type UIPart struct {
	Type       string          `json:"type"`
	Text       string          `json:"text,omitempty"`
	ToolCallID string          `json:"toolCallId,omitempty"`
	State      string          `json:"state,omitempty"`
	Input      json.RawMessage `json:"input,omitempty"`
	Output     json.RawMessage `json:"output,omitempty"`
}

const toolPartPrefix = "tool-"

// ConvertMessages turns client history into model messages. System messages
// from the client are dropped; the server owns the system prompt. Tool parts
// without an output are dropped too.
func ConvertMessages(in []UIMessage) ([]llms.MessageContent, error) {
	if len(in) == 0 {
		return nil, ErrNoMessages
	}
	var out []llms.MessageContent
	for i, m := range in {
		switch m.Role {
		case "system":
			continue
		case "user":
			texts := messageTexts(m)
			if len(texts) == 0 {
				continue
			}
			out = append(out, llms.TextParts(llms.ChatMessageTypeHuman, texts...))
		case "assistant":
			out = append(out, convertAssistant(m)...)
		default:
			return nil, fmt.Errorf("message %d: unsupported role %q", i, m.Role)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoMessages
	}
	return out, nil
}

func messageTexts(m UIMessage) []string {
	var texts []string
	for _, p := range m.Parts {
		if p.Type == "text" && strings.TrimSpace(p.Text) != "" {
			texts = append(texts, p.Text)
		}
	}
	if len(texts) == 0 && strings.TrimSpace(m.Content) != "" {
		texts = append(texts, m.Content)
	}
	return texts
}

// convertAssistant keeps part order: text that follows a tool result starts
// a new model message after the tool responses.
func convertAssistant(m UIMessage) []llms.MessageContent {
	var (
		out       []llms.MessageContent
		current   []llms.ContentPart
		responses []llms.ContentPart
	)
	flush := func() {
		if len(current) > 0 {
			out = append(out, llms.MessageContent{Role: llms.ChatMessageTypeAI, Parts: current})
		}
		if len(responses) > 0 {
			out = append(out, llms.MessageContent{Role: llms.ChatMessageTypeTool, Parts: responses})
		}
		current, responses = nil, nil
	}

	if len(m.Parts) == 0 && strings.TrimSpace(m.Content) != "" {
		return []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeAI, m.Content)}
	}
	for _, p := range m.Parts {
		switch {
		case p.Type == "text":
			if strings.TrimSpace(p.Text) == "" {
				continue
			}
			if len(responses) > 0 {
				flush()
			}
			current = append(current, llms.TextContent{Text: p.Text})
		case strings.HasPrefix(p.Type, toolPartPrefix):
			if len(p.Output) == 0 || p.ToolCallID == "" {
				continue
			}
			name := strings.TrimPrefix(p.Type, toolPartPrefix)
			args := "{}"
			if len(p.Input) > 0 && json.Valid(p.Input) && strings.HasPrefix(strings.TrimSpace(string(p.Input)), "{") {
				args = string(p.Input)
			}
			current = append(current, llms.ToolCall{
				ID:           p.ToolCallID,
				Type:         "function",
				FunctionCall: &llms.FunctionCall{Name: name, Arguments: args},
			})
			responses = append(responses, llms.ToolCallResponse{
				ToolCallID: p.ToolCallID,
				Name:       name,
				Content:    string(p.Output),
			})
		}
	}
	flush()
	return out
}
