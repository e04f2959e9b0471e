package models

import "time"

// ChatMessage is one turn of assistant conversation history.
type ChatMessage struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/assistant/chat.
type ChatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history,omitempty"`
}

// ChatReply is always returned with status 200; Fallback marks canned replies
// produced when the upstream model is unavailable.
type ChatReply struct {
	ID        string    `json:"id"`
	Reply     string    `json:"reply"`
	Fallback  bool      `json:"fallback"`
	CreatedAt time.Time `json:"createdAt"`
}
