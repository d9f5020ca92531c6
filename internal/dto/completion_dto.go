package dto

type QueryRequest struct {
	Message string `json:"message" validate:"required"`
}

type QueryResponse struct {
	Response string `json:"response"`
}

// CompletionLogMessage is published on the completion log topic after every query.
type CompletionLogMessage struct {
	UserId        string   `json:"user_id"`
	Provider      string   `json:"provider"`
	PromptChars   int      `json:"prompt_chars"`
	ResponseChars int      `json:"response_chars"`
	Citations     []string `json:"citations"`
	Status        string   `json:"status"`
	Error         string   `json:"error,omitempty"`
	LatencyMs     int64    `json:"latency_ms"`
}
