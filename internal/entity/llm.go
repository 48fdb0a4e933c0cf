package entity

// Chat roles accepted by the chat completions API
const (
	ChatRoleSystem = "system"
	ChatRoleUser   = "user"
)

// ChatContentPart is one element of a multimodal message body
type ChatContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *ChatImageURL `json:"image_url,omitempty"`
}

type ChatImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// ChatMessage content is either a plain string or a slice of ChatContentPart
type ChatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type LLMChatRequest struct {
	Messages    []ChatMessage `json:"messages"`
	Model       string        `json:"model,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float32      `json:"temperature,omitempty"`
}

type LLMChatReply struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type LLMChatChoice struct {
	Index        int          `json:"index"`
	Message      LLMChatReply `json:"message"`
	FinishReason string       `json:"finish_reason"`
}

type LLMUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type LLMChatResponse struct {
	ID      string          `json:"id"`
	Model   string          `json:"model"`
	Choices []LLMChatChoice `json:"choices"`
	Usage   LLMUsage        `json:"usage"`
}
