package langchain

import (
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/leofalp/llmrecipes/providers/ai"
)

// requestToContent converts a request into the message list sent to the
// model. The system prompt, if any, becomes the first message.
func requestToContent(request ai.ChatRequest) []llms.MessageContent {
	content := make([]llms.MessageContent, 0, len(request.Messages)+1)
	if request.SystemPrompt != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, request.SystemPrompt))
	}
	for _, m := range request.Messages {
		content = append(content, llms.TextParts(roleToType(m.Role), m.Content))
	}
	return content
}

// requestToOptions maps request settings onto langchaingo call options.
func requestToOptions(request ai.ChatRequest) []llms.CallOption {
	var opts []llms.CallOption
	if request.Model != "" {
		opts = append(opts, llms.WithModel(request.Model))
	}
	if cfg := request.GenerationConfig; cfg != nil {
		if cfg.Temperature > 0 {
			opts = append(opts, llms.WithTemperature(cfg.Temperature))
		}
		if cfg.MaxTokens > 0 {
			opts = append(opts, llms.WithMaxTokens(cfg.MaxTokens))
		}
		if cfg.TopP > 0 {
			opts = append(opts, llms.WithTopP(cfg.TopP))
		}
	}
	if request.WantsJSON() {
		opts = append(opts, llms.WithJSONMode())
	}
	return opts
}

func roleToType(role ai.MessageRole) llms.ChatMessageType {
	switch role {
	case ai.RoleSystem:
		return llms.ChatMessageTypeSystem
	case ai.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

func typeToRole(t llms.ChatMessageType) (ai.MessageRole, error) {
	switch t {
	case llms.ChatMessageTypeSystem:
		return ai.RoleSystem, nil
	case llms.ChatMessageTypeHuman, llms.ChatMessageTypeGeneric:
		return ai.RoleUser, nil
	case llms.ChatMessageTypeAI:
		return ai.RoleAssistant, nil
	default:
		return "", fmt.Errorf("unsupported chat message type %q", t)
	}
}

// ToChatMessages converts ai messages into langchaingo chat messages, e.g. to
// fill a prompts.MessagesPlaceholder.
func ToChatMessages(messages []ai.Message) []llms.ChatMessage {
	out := make([]llms.ChatMessage, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case ai.RoleSystem:
			out = append(out, llms.SystemChatMessage{Content: m.Content})
		case ai.RoleAssistant:
			out = append(out, llms.AIChatMessage{Content: m.Content})
		default:
			out = append(out, llms.HumanChatMessage{Content: m.Content})
		}
	}
	return out
}

// FromChatMessages converts rendered langchaingo chat messages back into ai
// messages. Function and tool messages are rejected.
func FromChatMessages(messages []llms.ChatMessage) ([]ai.Message, error) {
	out := make([]ai.Message, 0, len(messages))
	for _, m := range messages {
		role, err := typeToRole(m.GetType())
		if err != nil {
			return nil, err
		}
		out = append(out, ai.Message{Role: role, Content: m.GetContent()})
	}
	return out, nil
}

// usageFromGenerationInfo reads the token counters langchaingo backends store
// in ContentChoice.GenerationInfo. It returns nil when none are present.
func usageFromGenerationInfo(info map[string]any) *ai.Usage {
	if len(info) == 0 {
		return nil
	}
	prompt, okPrompt := intValue(info["PromptTokens"])
	completion, okCompletion := intValue(info["CompletionTokens"])
	total, okTotal := intValue(info["TotalTokens"])
	if !okPrompt && !okCompletion && !okTotal {
		return nil
	}
	if !okTotal {
		total = prompt + completion
	}
	return &ai.Usage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      total,
	}
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
