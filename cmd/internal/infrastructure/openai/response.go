package openai

import "strings"

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	ID      string           `json:"id"`
	Model   string           `json:"model"`
	Choices []choiceResponse `json:"choices"`
}

type choiceResponse struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

func (c *completionResponse) Text() (string, error) {
	if len(c.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	text := strings.TrimSpace(c.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
