// Package assistant answers conversational queries about movies, shows and
// live sports. The user-facing chat must never show a raw failure, so every
// upstream problem degrades to a canned reply and the HTTP surface always
// answers 200.
package assistant

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"streamverse/internal/upstream"
	"streamverse/models"
)

// maxHistory bounds how many prior exchanges are replayed into the prompt.
const maxHistory = 10

const systemPrompt = `You are the in-app assistant for a movie, TV and live-sports streaming guide. Answer briefly and conversationally. You can recommend titles, explain what a match or show is about, and help the user decide what to watch. Do not invent streaming links.`

// Canned fallback pools keyed by failure kind. Replies rotate so repeated
// failures do not parrot the same sentence.
var fallbackReplies = map[upstream.Kind][]string{
	upstream.KindRateLimit: {
		"I'm getting a lot of questions right now. Give me a moment and ask again.",
		"My brain needs a short breather — try that again in a minute.",
	},
	upstream.KindAuth: {
		"My assistant features aren't fully set up on this server yet, but you can still browse everything.",
		"I can't reach my knowledge source right now. Browsing and watching still work fine.",
	},
	upstream.KindNetwork: {
		"I couldn't reach my knowledge source. Check back shortly.",
		"Connection hiccup on my end — ask me again in a bit.",
	},
	upstream.KindUpstream: {
		"Something went sideways answering that. Mind trying again?",
		"I tripped over that one. Ask me again?",
	},
}

var disabledReplies = []string{
	"I'm running without an AI backend on this server, so I can only suggest you explore the trending and live sections.",
	"The assistant isn't configured here, but everything else works — try the discover pages.",
}

// Service owns all assistant state: the upstream client, the enabled flag and
// the failure counter. Construct once in main and pass by reference.
type Service struct {
	client  *geminiClient
	enabled bool

	// errorCount feeds fallback rotation and the log line cadence.
	errorCount atomic.Uint64
}

func NewService(apiKey, baseURL string, httpc *http.Client) *Service {
	client := newGeminiClient(apiKey, baseURL, httpc)
	if !client.isConfigured() {
		log.Printf("[assistant] no api key configured, serving canned replies only")
	}
	return &Service{client: client, enabled: client.isConfigured()}
}

// Enabled reports whether an upstream model is configured.
func (s *Service) Enabled() bool { return s.enabled }

// Chat produces a reply for message given the recent history. It never
// returns an error: upstream failures are classified and mapped to a canned
// fallback so the caller always has something displayable.
func (s *Service) Chat(ctx context.Context, message string, history []models.ChatMessage) models.ChatReply {
	message = strings.TrimSpace(message)
	if message == "" {
		return s.reply("Ask me about a movie, a show, or a match you want to watch.", true)
	}

	if !s.enabled {
		return s.reply(pick(disabledReplies, s.errorCount.Add(1)), true)
	}

	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	text, err := s.client.generateReply(ctx, systemPrompt, history, message)
	if err != nil {
		n := s.errorCount.Add(1)
		kind := upstream.KindOf(err)
		log.Printf("[assistant] chat failed (%s, #%d): %v", kind, n, err)
		return s.reply(pick(fallbackReplies[kind], n), true)
	}

	return s.reply(text, false)
}

func (s *Service) reply(text string, fallback bool) models.ChatReply {
	return models.ChatReply{
		ID:        uuid.NewString(),
		Reply:     text,
		Fallback:  fallback,
		CreatedAt: time.Now().UTC(),
	}
}

func pick(pool []string, n uint64) string {
	if len(pool) == 0 {
		return "Something went wrong answering that. Try again?"
	}
	return pool[n%uint64(len(pool))]
}
