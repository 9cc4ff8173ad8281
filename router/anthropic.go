package router

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/abhiabhi150614/edu-ai-pro/capability"
	"github.com/abhiabhi150614/edu-ai-pro/core"
)

const proposeSystemPrompt = `You are a learning companion for a student working through a study plan.
Decide which of the available tools, if any, would help answer the student's message.
Call every tool that is relevant; call none if the message needs only a direct answer.`

const synthesizeSystemPrompt = `You are a learning companion for a student working through a study plan.
Write a warm, concrete reply to the student's message using the memory context and tool results below.
If a tool failed or timed out, work with what succeeded and do not mention internal errors.`

// AnthropicService implements ReasoningService over the Anthropic Messages
// API. One Propose call and one Synthesize call per turn; no agentic loop.
type AnthropicService struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicService creates a reasoning service for the given model.
func NewAnthropicService(apiKey, model string, maxTokens int64) *AnthropicService {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &AnthropicService{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
	}
}

// Propose sends one tool-choice request and returns the proposed
// invocations in the order the model emitted them.
func (s *AnthropicService) Propose(ctx context.Context, message, contextText string, defs []*capability.Definition) ([]core.Invocation, error) {
	resp, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: proposeSystemPrompt + "\n\n" + contextText},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(message)),
		},
		Tools: convertDefinitions(defs),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrReasoningService, err)
	}

	var invocations []core.Invocation
	for _, block := range resp.Content {
		if block.Type != "tool_use" {
			continue
		}
		args := make(map[string]interface{})
		if len(block.Input) > 0 {
			if err := json.Unmarshal(block.Input, &args); err != nil {
				log.Printf("[ROUTER] Skipping tool_use with malformed input for %s: %v", block.Name, err)
				continue
			}
		}
		invocations = append(invocations, core.Invocation{Name: block.Name, Arguments: args})
	}
	return invocations, nil
}

// Synthesize sends one text request carrying the context and outcome
// digest, and returns the reply text.
func (s *AnthropicService) Synthesize(ctx context.Context, message, contextText string, outcomes []core.Outcome) (string, error) {
	resp, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: synthesizeSystemPrompt + "\n\n" + contextText + "\n\n" + formatOutcomes(outcomes)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(message)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrReasoningService, err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	reply := strings.TrimSpace(b.String())
	if reply == "" {
		return "", fmt.Errorf("%w: empty completion", core.ErrReasoningService)
	}
	return reply, nil
}

func convertDefinitions(defs []*capability.Definition) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, def := range defs {
		properties, _ := def.InputSchema["properties"].(map[string]interface{})
		required, _ := def.InputSchema["required"].([]string)
		tools = append(tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        def.Name,
				Description: anthropic.String(def.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Type:       "object",
					Properties: properties,
					Required:   required,
				},
			},
		})
	}
	return tools
}

// formatOutcomes renders the outcome digest fed to synthesis. Failures are
// reported plainly so the model can acknowledge missing pieces.
func formatOutcomes(outcomes []core.Outcome) string {
	if len(outcomes) == 0 {
		return "No tools were used this turn."
	}
	var b strings.Builder
	b.WriteString("=== TOOL RESULTS ===\n")
	for _, o := range outcomes {
		fmt.Fprintf(&b, "- %s (%s)", o.Invocation.Name, o.Status)
		switch o.Status {
		case core.OutcomeSuccess:
			if raw, err := json.Marshal(o.Result); err == nil {
				b.WriteString(": ")
				b.Write(raw)
			}
		default:
			if o.Err != "" {
				b.WriteString(": ")
				b.WriteString(o.Err)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
