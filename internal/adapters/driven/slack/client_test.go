package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikibot/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{Token: "xoxb-test", BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresToken(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestPostMessage(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat.postMessage", r.URL.Path)
		assert.Equal(t, "Bearer xoxb-test", r.Header.Get("Authorization"))

		var req postMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "C123", req.Channel)
		assert.Equal(t, "hello", req.Text)
		assert.Equal(t, "1.0", req.ThreadTS)
		assert.Equal(t, DefaultUsername, req.Username)
		assert.Equal(t, DefaultIcon, req.IconEmoji)

		json.NewEncoder(w).Encode(map[string]any{"ok": true, "ts": "2.0"})
	}
	c := newTestClient(t, handler)

	ts, err := c.PostMessage(context.Background(), domain.OutgoingMessage{
		Channel:  "C123",
		ThreadTS: "1.0",
		Text:     "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "2.0", ts)
}

func TestPostMessage_SlackError(t *testing.T) {
	handler := func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "channel_not_found"})
	}
	c := newTestClient(t, handler)

	_, err := c.PostMessage(context.Background(), domain.OutgoingMessage{Channel: "C404", Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}

func TestFetchThread(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/conversations.replies", r.URL.Path)
		assert.Equal(t, "C123", r.URL.Query().Get("channel"))
		assert.Equal(t, "1.0", r.URL.Query().Get("ts"))

		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"messages": []map[string]any{
				{"user": "U1", "text": "what happened?", "ts": "1.0"},
				{"bot_id": "B1", "text": "the deploy failed", "ts": "2.0"},
			},
		})
	}
	c := newTestClient(t, handler)

	messages, err := c.FetchThread(context.Background(), "C123", "1.0")
	require.NoError(t, err)

	require.Len(t, messages, 2)
	assert.Equal(t, domain.ThreadMessage{User: "U1", Text: "what happened?", TS: "1.0"}, messages[0])
	assert.Empty(t, messages[1].User, "bot messages carry no user id")
}

func TestFetchThread_Validation(t *testing.T) {
	c, err := New(Config{Token: "t"})
	require.NoError(t, err)

	_, err = c.FetchThread(context.Background(), "", "1.0")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
