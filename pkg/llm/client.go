package llm

// COMPLETION API CLIENT

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Message is one turn of a conversation, role "user" or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(apiKey, model string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the system prompt, the stored conversation turns and the
// new user message to the completion API and returns the assistant reply.
// Transient failures (network errors, 429, 5xx) are retried with
// exponential backoff within the context deadline.
func (c *Client) Complete(ctx context.Context, system string, history []Message, userText string) (string, error) {
	messages := make([]Message, 0, len(history)+2)
	if system != "" {
		messages = append(messages, Message{Role: "system", Content: system})
	}
	messages = append(messages, history...)
	messages = append(messages, Message{Role: "user", Content: userText})

	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 25 * time.Second
	retryPolicy.MaxInterval = 5 * time.Second

	var reply string
	err = backoff.RetryNotify(
		func() error {
			reply, err = c.complete(ctx, body)
			return err
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, duration time.Duration) {
			c.logger.Warn("Completion request failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
	if err != nil {
		return "", fmt.Errorf("complete after retries: %w", err)
	}
	return reply, nil
}

func (c *Client) complete(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		"POST",
		fmt.Sprintf("%s/chat/completions", c.baseURL),
		bytes.NewReader(body),
	)
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	default:
		return "", backoff.Permanent(fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	if parsed.Error != nil {
		return "", backoff.Permanent(fmt.Errorf("api error: %s", parsed.Error.Message))
	}
	if len(parsed.Choices) == 0 {
		return "", backoff.Permanent(fmt.Errorf("empty choices in response"))
	}
	return parsed.Choices[0].Message.Content, nil
}
