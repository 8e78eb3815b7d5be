package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"wellbalance/internal/services"
)

const (
	DefaultTemperature = 0.4
	DefaultMaxRounds   = 5

	providerErrorText = "The assistant is unavailable right now. Please try again later."
	roundLimitText    = "I could not finish looking that up. Please try asking again in a moment."
)

// Model is the slice of llms.Model the assembler needs; googleai.GoogleAI
// satisfies it.
type Model interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

type Assembler struct {
	model       Model
	clock       services.Clock
	deps        ToolDeps
	logger      *zap.Logger
	temperature float64
	maxRounds   int
}

func NewAssembler(model Model, clock services.Clock, deps ToolDeps, logger *zap.Logger) *Assembler {
	if deps.Logger == nil {
		deps.Logger = logger
	}
	return &Assembler{
		model:       model,
		clock:       clock,
		deps:        deps,
		logger:      logger,
		temperature: DefaultTemperature,
		maxRounds:   DefaultMaxRounds,
	}
}

type TurnRequest struct {
	UserID  string
	Tone    Tone
	History []llms.MessageContent
}

// relay forwards events until the first write error; after that it drops
// everything so the turn can finish its dispatched tool calls quietly.
type relay struct {
	out Emitter
	err error
}

func (r *relay) emit(ev Event) {
	if r.err != nil {
		return
	}
	r.err = r.out.Emit(ev)
}

// Run executes one chat turn and writes its events to out. The returned
// error reports a provider failure or a broken client stream.
func (a *Assembler) Run(ctx context.Context, req TurnRequest, out Emitter) error {
	turn := NewTurn(req.UserID, a.clock())
	toolset := NewToolset(turn, a.deps)
	byName := make(map[string]Tool, len(toolset))
	for _, t := range toolset {
		byName[t.Name()] = t
	}

	messages := make([]llms.MessageContent, 0, len(req.History)+1)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem,
		BuildSystemPrompt(req.Tone, turn.Now, asLangchainTools(toolset))))
	messages = append(messages, req.History...)

	defs := Definitions(toolset)

	r := &relay{out: out}
	r.emit(Event{Type: EventStart, MessageID: uuid.NewString()})

	for round := 0; round < a.maxRounds; round++ {
		if r.err != nil {
			return r.err
		}
		// The last round is offered no tools so the turn always ends in text.
		last := round == a.maxRounds-1
		opts := []llms.CallOption{llms.WithTemperature(a.temperature)}
		if !last {
			opts = append(opts, llms.WithTools(defs))
		}
		r.emit(Event{Type: EventStartStep})

		textID := fmt.Sprintf("text-%d", round)
		streamed := false
		stream := func(_ context.Context, chunk []byte) error {
			if len(chunk) == 0 {
				return nil
			}
			if !streamed {
				streamed = true
				r.emit(Event{Type: EventTextStart, ID: textID})
			}
			r.emit(Event{Type: EventTextDelta, ID: textID, Delta: string(chunk)})
			return r.err
		}

		resp, err := a.model.GenerateContent(ctx, messages, append(opts, llms.WithStreamingFunc(stream))...)
		if err == nil && (resp == nil || len(resp.Choices) == 0) {
			err = errors.New("model returned no choices")
		}
		if err != nil {
			if r.err != nil {
				return r.err
			}
			a.logger.Error("chat model call failed",
				zap.String("user_id", turn.UserID), zap.Int("round", round), zap.Error(err))
			r.emit(Event{Type: EventError, ErrorText: providerErrorText})
			return fmt.Errorf("generate content: %w", err)
		}

		choice := resp.Choices[0]
		calls := validCalls(choice.ToolCalls)
		text := choice.Content
		if last && len(calls) > 0 {
			a.logger.Warn("chat turn hit the round limit",
				zap.String("user_id", turn.UserID), zap.Int("rounds", a.maxRounds))
			calls = nil
		}
		if !streamed && text == "" && len(calls) == 0 && last {
			text = roundLimitText
		}
		if !streamed && text != "" {
			streamed = true
			r.emit(Event{Type: EventTextStart, ID: textID})
			r.emit(Event{Type: EventTextDelta, ID: textID, Delta: text})
		}
		if streamed {
			r.emit(Event{Type: EventTextEnd, ID: textID})
		}

		if len(calls) == 0 {
			r.emit(Event{Type: EventFinishStep})
			break
		}

		assistant := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		if choice.Content != "" {
			assistant.Parts = append(assistant.Parts, llms.TextContent{Text: choice.Content})
		}
		for _, c := range calls {
			assistant.Parts = append(assistant.Parts, c)
		}
		messages = append(messages, assistant)

		// Tools run to completion even if the client has gone away.
		toolCtx := context.WithoutCancel(ctx)
		responses := llms.MessageContent{Role: llms.ChatMessageTypeTool}
		for _, c := range calls {
			name := c.FunctionCall.Name
			r.emit(Event{Type: EventToolInput, ToolCallID: c.ID, ToolName: name, Input: rawJSON(c.FunctionCall.Arguments, "{}")})

			output := a.callTool(toolCtx, byName, name, c.FunctionCall.Arguments)
			r.emit(Event{Type: EventToolOutput, ToolCallID: c.ID, Output: rawJSON(output, `""`)})
			responses.Parts = append(responses.Parts, llms.ToolCallResponse{ToolCallID: c.ID, Name: name, Content: output})
		}
		messages = append(messages, responses)
		r.emit(Event{Type: EventFinishStep})
	}

	r.emit(Event{Type: EventFinish})
	return r.err
}

func (a *Assembler) callTool(ctx context.Context, byName map[string]Tool, name, args string) string {
	t, ok := byName[name]
	if !ok {
		return errorResult("tool", fmt.Sprintf("Unknown tool %q.", name))
	}
	out, err := t.Call(ctx, args)
	if err != nil {
		a.logger.Error("chat tool failed", zap.String("tool", name), zap.Error(err))
		return errorResult("tool", "Tool execution failed.")
	}
	return out
}

func validCalls(calls []llms.ToolCall) []llms.ToolCall {
	out := make([]llms.ToolCall, 0, len(calls))
	for i, c := range calls {
		if c.FunctionCall == nil || c.FunctionCall.Name == "" {
			continue
		}
		fc := *c.FunctionCall
		c.FunctionCall = &fc
		if c.ID == "" {
			c.ID = fmt.Sprintf("call-%d-%s", i, uuid.NewString()[:8])
		}
		if c.FunctionCall.Arguments == "" {
			c.FunctionCall.Arguments = "{}"
		}
		out = append(out, c)
	}
	return out
}

// rawJSON embeds s as-is when it is valid JSON, otherwise as a JSON string.
func rawJSON(s, empty string) json.RawMessage {
	if s == "" {
		return json.RawMessage(empty)
	}
	if json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	b, _ := json.Marshal(s)
	return b
}
