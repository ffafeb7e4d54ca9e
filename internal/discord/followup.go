package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
)

const defaultAPIBase = "https://discord.com/api/v10"

// FollowupClient edits the deferred interaction message once the real work
// finished. Delivery is best effort: callers log failures and move on, a
// failed follow-up never rolls back the write it reports on.
type FollowupClient struct {
	appID      string
	baseURL    string
	httpClient *http.Client
}

func NewFollowupClient(appID string) *FollowupClient {
	return &FollowupClient{
		appID:      appID,
		baseURL:    defaultAPIBase,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// WithBaseURL points the client at a different API host, used by tests.
func (c *FollowupClient) WithBaseURL(baseURL string) *FollowupClient {
	c.baseURL = baseURL
	return c
}

// EditOriginal patches the original deferred message of the interaction
// identified by its token.
func (c *FollowupClient) EditOriginal(ctx context.Context, interactionToken string, edit *discordgo.WebhookEdit) error {
	body, err := json.Marshal(edit)
	if err != nil {
		return fmt.Errorf("encoding follow-up payload: %w", err)
	}

	url := fmt.Sprintf("%s/webhooks/%s/%s/messages/@original", c.baseURL, c.appID, interactionToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending follow-up: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("follow-up rejected with status %d: %s", resp.StatusCode, detail)
	}
	return nil
}
