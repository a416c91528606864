package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/slack-go/slack"

	"palmchat-backend/internal/models"
	"palmchat-backend/pkg/httputil"
)

// ChatProcessor runs the response workflow for one inbound message.
type ChatProcessor interface {
	ProcessMessage(ctx context.Context, msg models.IncomingMessage) error
}

// SlackWebhookHandlers handles incoming Slack webhook events.
type SlackWebhookHandlers struct {
	chat          ChatProcessor
	signingSecret string
	botUserID     string
}

// NewSlackWebhookHandlers creates a new SlackWebhookHandlers instance.
// botUserID is the bot's own Slack user id; events from that user are
// ignored so the bot never replies to itself.
func NewSlackWebhookHandlers(chat ChatProcessor, signingSecret, botUserID string) *SlackWebhookHandlers {
	return &SlackWebhookHandlers{
		chat:          chat,
		signingSecret: signingSecret,
		botUserID:     botUserID,
	}
}

// HandleSlackEvent handles POSTs from the Slack Events API: it verifies the
// request signature, answers url_verification challenges, and runs the chat
// workflow for message and app_mention callbacks.
func (h *SlackWebhookHandlers) HandleSlackEvent(w http.ResponseWriter, r *http.Request) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to read request body")
		return
	}
	defer r.Body.Close()

	if !h.verifySignature(r.Header, bodyBytes) {
		httputil.RespondError(w, http.StatusUnauthorized, "Invalid request signature")
		return
	}

	var typeFinder struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(bodyBytes, &typeFinder); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Could not determine payload type: "+err.Error())
		return
	}

	switch typeFinder.Type {
	case "url_verification":
		var challengeReq models.SlackChallengeRequest
		if err := json.Unmarshal(bodyBytes, &challengeReq); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid Slack challenge request: "+err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challengeReq.Challenge))

	case "event_callback":
		h.handleEventCallback(w, r, bodyBytes)

	default:
		httputil.RespondError(w, http.StatusBadRequest, "Unhandled payload type: "+typeFinder.Type)
	}
}

func (h *SlackWebhookHandlers) handleEventCallback(w http.ResponseWriter, r *http.Request, bodyBytes []byte) {
	var payload models.SlackEventPayload
	if err := json.Unmarshal(bodyBytes, &payload); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid Slack event payload: "+err.Error())
		return
	}

	event := payload.Event
	if event.Type != "message" && event.Type != "app_mention" {
		httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "event type ignored"})
		return
	}

	// Skip messages the bot (or any bot) produced, and message subtypes such
	// as edits and joins; replying to those would loop or spam the channel.
	if event.BotID != "" || event.Subtype != "" || event.User == "" || event.User == h.botUserID {
		httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "event ignored"})
		return
	}

	if event.Channel == "" || event.Timestamp == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Missing channel or ts in event payload")
		return
	}

	msg := event.IncomingMessage()
	if err := h.chat.ProcessMessage(r.Context(), msg); err != nil {
		log.Printf("ERROR: processing message in thread %s failed: %v", msg.ThreadID(), err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to process message")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "event processed"})
}

// verifySignature checks Slack's v0 HMAC request signature against the
// configured signing secret.
func (h *SlackWebhookHandlers) verifySignature(header http.Header, body []byte) bool {
	verifier, err := slack.NewSecretsVerifier(header, h.signingSecret)
	if err != nil {
		return false
	}
	if _, err := verifier.Write(body); err != nil {
		return false
	}
	return verifier.Ensure() == nil
}
