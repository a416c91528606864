package models

// Roles used in the persisted conversation history. These match the roles the
// hosted model service expects, so history round-trips without translation.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message represents a single turn in a conversation.
type Message struct {
	Role    string `json:"role"`    // "user" or "model"
	Content string `json:"content"` // The text content of the turn
}

// ConversationRecord is the per-thread blob persisted in the conversation
// store. At most one record exists per thread; every save overwrites the
// whole record with the full updated history.
type ConversationRecord struct {
	Metadata string    `json:"metadata"`
	History  []Message `json:"historical_chat"`
}

// Completion is the in-memory result of one chat completion call. It is never
// persisted verbatim; only History (the full conversation including this
// turn) is written back to the store.
type Completion struct {
	Text    string    // Generated reply text, unsanitized
	Blocked bool      // True when the safety policy blocked the output
	History []Message // Full updated history including this turn
}

// IncomingMessage is the validated boundary form of a Slack message event.
// ThreadTimestamp is empty when the message starts a new thread.
type IncomingMessage struct {
	Channel         string
	UserID          string
	Text            string
	Timestamp       string
	ThreadTimestamp string
}

// ThreadID returns the identifier of the conversation thread this message
// belongs to: the parent thread timestamp if the message is a threaded reply,
// otherwise the message's own timestamp (the message starts the thread).
func (m IncomingMessage) ThreadID() string {
	if m.ThreadTimestamp != "" {
		return m.ThreadTimestamp
	}
	return m.Timestamp
}
