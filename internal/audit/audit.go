// Package audit records one structured entry per conversation thread,
// emitted on the thread's first turn.
package audit

import "context"

// Entry is the structured audit record handed to the external log sink.
type Entry struct {
	UserID   string `json:"user_id"`
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
	Keyword  string `json:"keyword"`
}

// Sink receives audit entries. Delivery is fire-and-forget: implementations
// may buffer and flush in the background and make no durability guarantee
// when the sink is unavailable.
type Sink interface {
	Record(ctx context.Context, entry Entry) error
}
