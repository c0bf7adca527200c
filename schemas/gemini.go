package schemas

import "time"

// GeminiPart is a single text part of a Gemini content block.
type GeminiPart struct {
	Text string `json:"text"`
}

// GeminiContent groups parts into one turn.
type GeminiContent struct {
	Parts []GeminiPart `json:"parts"`
}

// GeminiGenerateContentRequest is the body sent to models/{model}:generateContent.
type GeminiGenerateContentRequest struct {
	Contents []GeminiContent `json:"contents"`
}

// NewGeminiGenerateContentRequest wraps a prompt into a single-turn, single-part request.
func NewGeminiGenerateContentRequest(prompt string) *GeminiGenerateContentRequest {
	return &GeminiGenerateContentRequest{
		Contents: []GeminiContent{
			{Parts: []GeminiPart{{Text: prompt}}},
		},
	}
}

// GeminiResponse is a successful (2xx) upstream reply.
// Body is kept raw so it can be relayed byte for byte.
type GeminiResponse struct {
	StatusCode int
	StatusText string
	Body       []byte
	Latency    time.Duration
}
