package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"palmchat-backend/internal/audit"
	"palmchat-backend/internal/models"
	"palmchat-backend/internal/store"
)

// BlockedNotice is posted in place of the model's text when the output was
// blocked by the safety policy or came back empty.
const BlockedNotice = "入力または出力が Google のポリシーに違反している可能性があるため、出力がブロックされています。プロンプトの言い換えや、パラメータ設定の調整を試してください。"

// recordMetadata is the opaque metadata string stored alongside every
// conversation record.
const recordMetadata = "dummy_metadata_chat"

// CompletionClient produces one completion for a prompt given prior history.
type CompletionClient interface {
	Converse(ctx context.Context, history []models.Message, prompt string) (*models.Completion, error)
}

// KeywordDeriver summarizes a prompt topic in a short keyword.
type KeywordDeriver interface {
	DeriveKeyword(ctx context.Context, prompt string) (string, error)
}

// Dispatcher posts a reply into the originating conversation thread.
type Dispatcher interface {
	PostReply(ctx context.Context, channelID, threadTS, text string) error
}

// Sanitizer rewrites generated text for the target messaging surface. It must
// be pure and idempotent.
type Sanitizer func(string) string

// ChatService runs the conversation-continuity workflow for inbound messages.
// All collaborators are fixed at construction and shared across events; the
// service itself holds no per-event state.
type ChatService struct {
	store       store.ConversationStore
	completions CompletionClient
	keywords    KeywordDeriver
	dispatcher  Dispatcher
	sanitize    Sanitizer
	auditSink   audit.Sink
}

// NewChatService creates a ChatService.
func NewChatService(
	convStore store.ConversationStore,
	completions CompletionClient,
	keywords KeywordDeriver,
	dispatcher Dispatcher,
	sanitize Sanitizer,
	auditSink audit.Sink,
) *ChatService {
	return &ChatService{
		store:       convStore,
		completions: completions,
		keywords:    keywords,
		dispatcher:  dispatcher,
		sanitize:    sanitize,
		auditSink:   auditSink,
	}
}

// ProcessMessage handles one inbound message end to end: load the thread's
// history, generate a completion, post the (sanitized or substituted) reply
// into the thread, persist the updated record, and on the thread's first turn
// emit an audit entry.
//
// Each step depends on the previous one; any failure aborts the rest of the
// pipeline and is returned to the caller unretried. There is no rollback of
// completed steps: a reply may be visible in Slack even when the subsequent
// save failed.
func (s *ChatService) ProcessMessage(ctx context.Context, msg models.IncomingMessage) error {
	threadID := msg.ThreadID()

	record, err := s.store.Load(ctx, threadID)
	firstTurn := errors.Is(err, store.ErrNotFound)
	if err != nil && !firstTurn {
		return fmt.Errorf("load conversation %s: %w", threadID, err)
	}

	var history []models.Message
	if record != nil {
		history = record.History
	}

	completion, err := s.completions.Converse(ctx, history, msg.Text)
	if err != nil {
		return fmt.Errorf("generate completion for thread %s: %w", threadID, err)
	}

	payload := BlockedNotice
	if !completion.Blocked && strings.TrimSpace(completion.Text) != "" {
		payload = s.sanitize(completion.Text)
	}

	if err := s.dispatcher.PostReply(ctx, msg.Channel, threadID, payload); err != nil {
		return fmt.Errorf("post reply to channel %s: %w", msg.Channel, err)
	}

	// The real model history is persisted even when the user saw the
	// substituted notice.
	if err := s.store.Save(ctx, threadID, &models.ConversationRecord{
		Metadata: recordMetadata,
		History:  completion.History,
	}); err != nil {
		return fmt.Errorf("save conversation %s: %w", threadID, err)
	}

	if firstTurn {
		s.recordAudit(ctx, msg, payload)
	}
	return nil
}

// recordAudit derives a topic keyword for the prompt and writes one audit
// entry. Failures are logged and dropped so that a keyword-model or
// logging-sink outage cannot fail an already-delivered response.
func (s *ChatService) recordAudit(ctx context.Context, msg models.IncomingMessage, response string) {
	if s.auditSink == nil {
		return
	}

	var keyword string
	if s.keywords != nil {
		var err error
		if keyword, err = s.keywords.DeriveKeyword(ctx, msg.Text); err != nil {
			log.Printf("WARN: keyword derivation failed for thread %s: %v", msg.ThreadID(), err)
			keyword = ""
		}
	}

	entry := audit.Entry{
		UserID:   msg.UserID,
		Prompt:   msg.Text,
		Response: response,
		Keyword:  keyword,
	}
	if err := s.auditSink.Record(ctx, entry); err != nil {
		log.Printf("WARN: audit record failed for thread %s: %v", msg.ThreadID(), err)
	}
}
