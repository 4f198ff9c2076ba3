// Package notify delivers failure reports to an external channel.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Discord caps message content at 2000 characters.
const maxContentLength = 2000

// Discord posts messages to a Discord webhook.
type Discord struct {
	URL    string
	Client *http.Client
}

func NewDiscord(url string) *Discord {
	return &Discord{
		URL: url,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type webhookMessage struct {
	Content string `json:"content"`
}

func (d *Discord) Notify(ctx context.Context, content string) error {
	if r := []rune(content); len(r) > maxContentLength {
		content = string(r[:maxContentLength-3]) + "..."
	}
	body, err := json.Marshal(webhookMessage{Content: content})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("post webhook: unexpected status %s", resp.Status)
	}
	return nil
}

// Nop drops every message; used when no webhook is configured.
type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }
