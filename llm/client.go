package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1/chat/completions"

// Client calls the OpenAI chat completions API.
type Client struct {
	// BaseURL may be overridden in tests.
	BaseURL    string
	HTTPClient *http.Client

	apiKey string
	model  string
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		BaseURL:    defaultBaseURL,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		apiKey:     apiKey,
		model:      model,
	}
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream,omitempty"`
}

type choice struct {
	Message Message `json:"message"`
	Delta   Message `json:"delta"`
}

type response struct {
	Choices []choice `json:"choices"`
}

// Complete sends the full conversation and returns the assistant's reply.
// A response with no choices yields an empty string, not an error.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := c.post(ctx, request{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   2000,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	defer body.Close()

	var resp response
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return "", fmt.Errorf("error decoding completion response: %v", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// CompleteStream sends the conversation with streaming enabled, invoking
// onChunk for every delta received, and returns the assembled reply.
func (c *Client) CompleteStream(ctx context.Context, messages []Message, onChunk func(chunk string) error) (string, error) {
	body, err := c.post(ctx, request{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   2000,
		Temperature: 0.7,
		Stream:      true,
	})
	if err != nil {
		return "", err
	}
	defer body.Close()

	var full strings.Builder
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}

		var resp response
		if err := json.Unmarshal([]byte(data), &resp); err != nil {
			return "", fmt.Errorf("error decoding stream chunk: %v", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		chunk := resp.Choices[0].Delta.Content
		if chunk == "" {
			continue
		}
		full.WriteString(chunk)
		if onChunk != nil {
			if err := onChunk(chunk); err != nil {
				return "", err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("error reading completion stream: %v", err)
	}

	return full.String(), nil
}

func (c *Client) post(ctx context.Context, reqBody request) (io.ReadCloser, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(b))
	}
	return resp.Body, nil
}
