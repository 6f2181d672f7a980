// Package slackevents serves the Slack Events API endpoint that turns
// channel messages into wiki answers and thread summaries.
package slackevents

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/wikibot/internal/core/domain"
	"github.com/custodia-labs/wikibot/internal/core/ports/driven"
	"github.com/custodia-labs/wikibot/internal/core/ports/driving"
	"github.com/custodia-labs/wikibot/internal/logger"
)

// Message prefixes that address the bot.
const (
	triggerPrefix   = "wiki/"
	summarisePrefix = "wiki/summarize"
)

// handleTimeout bounds the background work for one event.
const handleTimeout = 5 * time.Minute

// Config holds server configuration.
type Config struct {
	// Addr is the listen address (default ":8080").
	Addr string
}

// Server handles Slack event callbacks.
//
// Events are acknowledged immediately and handled in the background:
// Slack retries any callback not answered within three seconds, and a
// retrieval-plus-LLM round trip takes far longer than that.
type Server struct {
	answerer  driving.Answerer
	messenger driven.Messenger
	addr      string

	router chi.Router
	wg     sync.WaitGroup
}

// --- Wire types ---

type eventPayload struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	Event     struct {
		Type        string `json:"type"`
		Subtype     string `json:"subtype"`
		ChannelType string `json:"channel_type"`
		Channel     string `json:"channel"`
		User        string `json:"user"`
		BotID       string `json:"bot_id"`
		Text        string `json:"text"`
		TS          string `json:"ts"`
		ThreadTS    string `json:"thread_ts"`
	} `json:"event"`
}

// NewServer creates a Slack events server.
func NewServer(answerer driving.Answerer, messenger driven.Messenger, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	s := &Server{
		answerer:  answerer,
		messenger: messenger,
		addr:      cfg.Addr,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Post("/slack/events", s.handleEvents)
	s.router = r

	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening on %s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.wg.Wait()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleEvents acknowledges the callback and dispatches real work to a
// background goroutine.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	var payload eventPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "decode payload", http.StatusBadRequest)
		return
	}

	// URL verification handshake: echo the challenge back.
	if payload.Type == "url_verification" {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"challenge": payload.Challenge})
		return
	}

	// Acknowledge before handling; the reply arrives as its own message.
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Slack-No-Retry", "1")
	w.Write([]byte(`{"status":"ok"}`))

	if !s.wantsReply(payload) {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
		defer cancel()
		s.handleMessage(ctx, payload)
	}()
}

// wantsReply reports whether the event is a user message addressed to
// the bot. Bot messages are ignored so the bot never answers itself.
func (s *Server) wantsReply(payload eventPayload) bool {
	ev := payload.Event
	if payload.Type != "event_callback" || ev.Type != "message" {
		return false
	}
	if ev.Subtype != "" || ev.BotID != "" {
		return false
	}
	if ev.ChannelType != "im" && ev.ChannelType != "channel" {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(ev.Text), triggerPrefix)
}

// handleMessage produces the reply for one message event.
func (s *Server) handleMessage(ctx context.Context, payload eventPayload) {
	ev := payload.Event
	text := strings.TrimSpace(ev.Text)

	// Replies always land in the thread. For top-level messages the
	// message itself becomes the thread root.
	threadTS := ev.ThreadTS
	if threadTS == "" {
		threadTS = ev.TS
	}

	var (
		reply string
		err   error
	)
	switch {
	case strings.HasPrefix(text, summarisePrefix) && ev.ThreadTS != "":
		reply, err = s.answerer.SummariseThread(ctx, ev.Channel, ev.ThreadTS)
	default:
		question := strings.TrimSpace(strings.TrimPrefix(text, triggerPrefix))
		reply, err = s.answerer.Answer(ctx, question)
	}
	if err != nil {
		logger.Error("Handle message in %s: %v", ev.Channel, err)
		reply = "Sorry, I could not process that request."
	}

	if _, err := s.messenger.PostMessage(ctx, domain.OutgoingMessage{
		Channel:  ev.Channel,
		ThreadTS: threadTS,
		Text:     reply,
	}); err != nil {
		logger.Error("Post reply to %s: %v", ev.Channel, err)
	}
}
