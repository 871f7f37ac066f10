package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
)

// GenerateChatTitle asks the model for a short title summarizing the first
// message of a chat. Output is stripped to plain printable characters.
func (c *Client) GenerateChatTitle(ctx context.Context, firstMessage string) (string, error) {
	body, err := c.post(ctx, request{
		Model:       c.model,
		MaxTokens:   20,
		Temperature: 0.5,
		Messages: []Message{
			{Role: "system", Content: "Generate a short, concise title (max 5 words) for a chat that starts with this message. Only return the title, nothing else."},
			{Role: "user", Content: firstMessage},
		},
	})
	if err != nil {
		return "", err
	}
	defer body.Close()

	var resp response
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return "", fmt.Errorf("error decoding title response: %v", err)
	}

	if len(resp.Choices) > 0 && resp.Choices[0].Message.Content != "" {
		return cleanString(resp.Choices[0].Message.Content), nil
	}
	return "New Chat", nil
}

var titleCleaner = regexp.MustCompile(`[^a-zA-Z0-9 ':,;-]+`)

func cleanString(input string) string {
	return titleCleaner.ReplaceAllString(input, "")
}
