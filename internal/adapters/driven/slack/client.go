// Package slack provides the messenger adapter for the Slack Web API.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/custodia-labs/wikibot/internal/core/domain"
	"github.com/custodia-labs/wikibot/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.Messenger = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL  = "https://slack.com/api"
	DefaultTimeout  = 30 * time.Second
	DefaultUsername = "Wiki Bot"
	DefaultIcon     = ":robot_face:"
)

// Config holds Slack client configuration.
type Config struct {
	// Token is the bot token (required).
	Token string

	// BaseURL overrides the API base URL, mainly for tests.
	BaseURL string

	// Username is the display name used when posting (default: Wiki Bot).
	Username string

	// IconEmoji is the avatar emoji used when posting (default: :robot_face:).
	IconEmoji string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration
}

// Client posts messages and reads threads via the Slack Web API.
type Client struct {
	http      *http.Client
	baseURL   string
	token     string
	username  string
	iconEmoji string
}

// New creates a Slack client.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("slack: token is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Username == "" {
		cfg.Username = DefaultUsername
	}
	if cfg.IconEmoji == "" {
		cfg.IconEmoji = DefaultIcon
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		baseURL:   cfg.BaseURL,
		token:     cfg.Token,
		username:  cfg.Username,
		iconEmoji: cfg.IconEmoji,
	}, nil
}

// --- Wire types ---

type postMessageRequest struct {
	Channel   string `json:"channel"`
	Text      string `json:"text"`
	ThreadTS  string `json:"thread_ts,omitempty"`
	Username  string `json:"username,omitempty"`
	IconEmoji string `json:"icon_emoji,omitempty"`
}

type postMessageResponse struct {
	OK    bool   `json:"ok"`
	TS    string `json:"ts"`
	Error string `json:"error"`
}

type repliesResponse struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error"`
	Messages []struct {
		User    string `json:"user"`
		BotID   string `json:"bot_id"`
		Text    string `json:"text"`
		TS      string `json:"ts"`
		Subtype string `json:"subtype"`
	} `json:"messages"`
}

// PostMessage sends a message and returns its timestamp. A thread
// timestamp on the message makes it a threaded reply.
func (c *Client) PostMessage(ctx context.Context, msg domain.OutgoingMessage) (string, error) {
	if msg.Channel == "" {
		return "", fmt.Errorf("slack: %w: channel", domain.ErrInvalidInput)
	}

	reqBody := postMessageRequest{
		Channel:   msg.Channel,
		Text:      msg.Text,
		ThreadTS:  msg.ThreadTS,
		Username:  c.username,
		IconEmoji: c.iconEmoji,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/chat.postMessage",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.token)

	var postResp postMessageResponse
	if err := c.do(req, &postResp); err != nil {
		return "", fmt.Errorf("post message: %w", err)
	}
	if !postResp.OK {
		return "", fmt.Errorf("slack error: %s", postResp.Error)
	}

	return postResp.TS, nil
}

// FetchThread returns all messages of a thread in order. Bot messages
// carry an empty user id.
func (c *Client) FetchThread(ctx context.Context, channel, threadTS string) ([]domain.ThreadMessage, error) {
	if channel == "" || threadTS == "" {
		return nil, fmt.Errorf("slack: %w: channel and thread ts", domain.ErrInvalidInput)
	}

	q := url.Values{}
	q.Set("channel", channel)
	q.Set("ts", threadTS)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.baseURL+"/conversations.replies?"+q.Encode(),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	var resp repliesResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("fetch thread: %w", err)
	}
	if !resp.OK {
		return nil, fmt.Errorf("slack error: %s", resp.Error)
	}

	messages := make([]domain.ThreadMessage, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		messages = append(messages, domain.ThreadMessage{
			User: m.User,
			Text: m.Text,
			TS:   m.TS,
		})
	}
	return messages, nil
}

// do sends the request and decodes the JSON body into out.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack error (status %d): %s", resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
