package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrUnauthorized  = errors.New("openai: invalid api key")
	ErrRateLimited   = errors.New("openai: rate limited")
	ErrEmptyResponse = errors.New("openai: empty response")
)

const (
	RoleSystem = "system"
	RoleUser   = "user"

	defaultTimeout = 90 * time.Second
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is one chat completion call. Model is taken from the client.
type ChatRequest struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Client talks to an OpenAI compatible chat completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Complete sends the conversation and returns the first choice's text.
func (c *Client) Complete(ctx context.Context, chat ChatRequest) (string, error) {
	payload, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    chat.Messages,
		Temperature: chat.Temperature,
		MaxTokens:   chat.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return "", ErrUnauthorized
	case http.StatusTooManyRequests:
		return "", ErrRateLimited
	default:
		return "", fmt.Errorf("openai failed with status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var completion completionResponse
	err = json.Unmarshal(body, &completion)
	if err != nil {
		return "", err
	}
	return completion.Text()
}
