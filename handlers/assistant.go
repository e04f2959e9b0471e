package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"streamverse/models"
	"streamverse/services/assistant"
)

type assistantService interface {
	Chat(ctx context.Context, message string, history []models.ChatMessage) models.ChatReply
}

var _ assistantService = (*assistant.Service)(nil)

type AssistantHandler struct {
	Service assistantService
}

func NewAssistantHandler(service assistantService) *AssistantHandler {
	return &AssistantHandler{Service: service}
}

// Chat answers a user message. Upstream failures never surface here: the
// service maps them to canned replies, so a well-formed request always gets a
// 200 with a displayable message.
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var body models.ChatRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	reply := h.Service.Chat(r.Context(), body.Message, body.History)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reply)
}
