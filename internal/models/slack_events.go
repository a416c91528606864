package models

// SlackEventPayload represents the overall structure of an event callback from Slack.
type SlackEventPayload struct {
	Token     string     `json:"token"`
	TeamID    string     `json:"team_id"`
	APIAppID  string     `json:"api_app_id"`
	Event     SlackEvent `json:"event"`
	Type      string     `json:"type"` // e.g., "event_callback"
	EventID   string     `json:"event_id"`
	EventTime int64      `json:"event_time"`
}

// SlackEvent represents the actual event details within the payload.
type SlackEvent struct {
	User            string `json:"user"`      // User ID of the sender
	Type            string `json:"type"`      // e.g., "message", "app_mention"
	Subtype         string `json:"subtype"`   // e.g., "bot_message"; empty for plain messages
	Text            string `json:"text"`      // Message content
	Timestamp       string `json:"ts"`        // Timestamp of the message
	ThreadTimestamp string `json:"thread_ts"` // Parent thread timestamp; empty if not a threaded reply
	BotID           string `json:"bot_id"`    // Set when the message was sent by a bot
	ClientMsgID     string `json:"client_msg_id"`
	Team            string `json:"team"`    // Team ID where the event occurred
	Channel         string `json:"channel"` // Channel ID where the message was sent
	EventTs         string `json:"event_ts"`
	ChannelType     string `json:"channel_type"`
}

// IncomingMessage converts the raw event into the typed boundary struct
// consumed by the chat workflow.
func (e SlackEvent) IncomingMessage() IncomingMessage {
	return IncomingMessage{
		Channel:         e.Channel,
		UserID:          e.User,
		Text:            e.Text,
		Timestamp:       e.Timestamp,
		ThreadTimestamp: e.ThreadTimestamp,
	}
}

// SlackChallengeRequest is used for Slack's URL verification.
type SlackChallengeRequest struct {
	Token     string `json:"token"`
	Challenge string `json:"challenge"`
	Type      string `json:"type"` // "url_verification"
}
