package ai

// ChatRequest is a single chat completion request.
type ChatRequest struct {
	Model            string            `json:"model,omitempty"`
	SystemPrompt     string            `json:"system_prompt,omitempty"` // Sent as a leading system message
	Messages         []Message         `json:"messages"`
	GenerationConfig *GenerationConfig `json:"generation_config,omitempty"`
	ResponseFormat   *ResponseFormat   `json:"response_format,omitempty"`
}

// Message is one turn of a conversation.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// GenerationConfig holds sampling settings. Zero fields are left to the
// backend's defaults.
type GenerationConfig struct {
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"` // [0..2]; lower is more deterministic
	TopP        float64 `json:"top_p,omitempty"`
}

// ResponseFormat asks the model for a particular output shape.
type ResponseFormat struct {
	Type string `json:"type,omitempty"` // "text" or "json_object"
}

// Values for ResponseFormat.Type.
const (
	ResponseFormatText       = "text"
	ResponseFormatJSONObject = "json_object"
)

// WantsJSON reports whether the request asks for a JSON object.
func (r ChatRequest) WantsJSON() bool {
	return r.ResponseFormat != nil && r.ResponseFormat.Type == ResponseFormatJSONObject
}

// Usage reports token counts when the backend returns them.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// ChatResponse is the completed answer to a ChatRequest.
type ChatResponse struct {
	Model        string `json:"model,omitempty"`
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`
}

// MessageRole represents the role of a message; compatible with string
type MessageRole string

// Message roles understood by every provider.
const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// NewUserMessage is shorthand for a user turn.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage is shorthand for an assistant turn.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
