package llm

// Message represents a chat message
type Message struct {
	Role    string // "system", "user", "assistant", "tool"
	Content string
}

// FunctionCall represents a tool/function call emitted by the model
type FunctionCall struct {
	Name      string
	Arguments map[string]interface{}
}

// ToolSchema declares a callable tool to the model. Parameters is a
// JSON schema object.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// CompletionRequest is a request for a model completion
type CompletionRequest struct {
	SystemPrompt string
	Messages     []Message
	Tools        []ToolSchema
	MaxTokens    int
	Temperature  float64
}

// CompletionResponse is the response from a provider. Provider and
// Model record which target actually served the request.
type CompletionResponse struct {
	Content       string
	FunctionCalls []FunctionCall
	Usage         TokenUsage
	Provider      string
	Model         string
}

// TokenUsage tracks token usage
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// EstimateTokens estimates the number of tokens in a string.
// Approximate rule: 1 token ≈ 4 characters for English text.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// PromptTokens estimates the input token count of a request
func (r CompletionRequest) PromptTokens() int {
	total := EstimateTokens(r.SystemPrompt)
	for _, msg := range r.Messages {
		total += EstimateTokens(msg.Content)
	}
	return total
}
