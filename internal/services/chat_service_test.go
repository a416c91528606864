package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"palmchat-backend/internal/audit"
	"palmchat-backend/internal/models"
	"palmchat-backend/internal/slackfmt"
	"palmchat-backend/internal/store/memory"
)

// fakeCompletions echoes the prompt back, appending one user and one model
// turn to whatever history it was handed, the way the real client does.
type fakeCompletions struct {
	gotHistory []models.Message
	blocked    bool
	text       *string // overrides the echoed reply when set
	err        error
}

func (f *fakeCompletions) Converse(_ context.Context, history []models.Message, prompt string) (*models.Completion, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.gotHistory = append([]models.Message(nil), history...)

	reply := "reply to: " + prompt
	if f.text != nil {
		reply = *f.text
	}
	updated := append(append([]models.Message(nil), history...),
		models.Message{Role: models.RoleUser, Content: prompt},
		models.Message{Role: models.RoleModel, Content: reply},
	)
	return &models.Completion{Text: reply, Blocked: f.blocked, History: updated}, nil
}

type fakeKeywords struct {
	keyword string
	err     error
	calls   int
}

func (f *fakeKeywords) DeriveKeyword(context.Context, string) (string, error) {
	f.calls++
	return f.keyword, f.err
}

type postedReply struct {
	channel, threadTS, text string
}

type fakeDispatcher struct {
	posts []postedReply
	err   error
}

func (f *fakeDispatcher) PostReply(_ context.Context, channelID, threadTS, text string) error {
	if f.err != nil {
		return f.err
	}
	f.posts = append(f.posts, postedReply{channel: channelID, threadTS: threadTS, text: text})
	return nil
}

type fakeSink struct {
	entries []audit.Entry
	err     error
}

func (f *fakeSink) Record(_ context.Context, entry audit.Entry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

type fixture struct {
	store       *memory.Store
	completions *fakeCompletions
	keywords    *fakeKeywords
	dispatcher  *fakeDispatcher
	sink        *fakeSink
	service     *ChatService
}

func newFixture() *fixture {
	f := &fixture{
		store:       memory.NewStore(),
		completions: &fakeCompletions{},
		keywords:    &fakeKeywords{keyword: "greeting"},
		dispatcher:  &fakeDispatcher{},
		sink:        &fakeSink{},
	}
	f.service = NewChatService(f.store, f.completions, f.keywords, f.dispatcher,
		slackfmt.StripMarkdown, f.sink)
	return f
}

func newThreadMessage() models.IncomingMessage {
	return models.IncomingMessage{
		Channel:   "C1",
		UserID:    "U1",
		Text:      "hello",
		Timestamp: "100",
	}
}

func TestProcessMessage_FirstTurn(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	require.NoError(t, f.service.ProcessMessage(ctx, newThreadMessage()))

	// Completion generated with empty history
	assert.Empty(t, f.completions.gotHistory)

	// Response posted into the new thread
	require.Len(t, f.dispatcher.posts, 1)
	assert.Equal(t, postedReply{channel: "C1", threadTS: "100", text: "reply to: hello"}, f.dispatcher.posts[0])

	// Record saved under the thread id with one full turn
	record, err := f.store.Load(ctx, "100")
	require.NoError(t, err)
	assert.Len(t, record.History, 2)

	// Audit entry logged exactly once
	require.Len(t, f.sink.entries, 1)
	assert.Equal(t, audit.Entry{
		UserID:   "U1",
		Prompt:   "hello",
		Response: "reply to: hello",
		Keyword:  "greeting",
	}, f.sink.entries[0])
}

func TestProcessMessage_SecondTurnResumesHistory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	require.NoError(t, f.service.ProcessMessage(ctx, newThreadMessage()))
	priorRecord, err := f.store.Load(ctx, "100")
	require.NoError(t, err)

	followUp := models.IncomingMessage{
		Channel:         "C1",
		UserID:          "U1",
		Text:            "follow-up",
		Timestamp:       "101",
		ThreadTimestamp: "100",
	}
	require.NoError(t, f.service.ProcessMessage(ctx, followUp))

	// The history handed to the model is exactly the persisted history
	assert.Equal(t, priorRecord.History, f.completions.gotHistory)

	// One turn appended, same thread id
	record, err := f.store.Load(ctx, "100")
	require.NoError(t, err)
	assert.Len(t, record.History, len(priorRecord.History)+2)

	// The reply is anchored to the thread, not the follow-up message
	require.Len(t, f.dispatcher.posts, 2)
	assert.Equal(t, "100", f.dispatcher.posts[1].threadTS)

	// No second audit entry
	assert.Len(t, f.sink.entries, 1)
	assert.Equal(t, 1, f.keywords.calls)
}

func TestProcessMessage_SanitizesReply(t *testing.T) {
	f := newFixture()
	raw := "**bold** answer"
	f.completions.text = &raw

	require.NoError(t, f.service.ProcessMessage(context.Background(), newThreadMessage()))

	require.Len(t, f.dispatcher.posts, 1)
	assert.Equal(t, "bold answer", f.dispatcher.posts[0].text)
}

func TestProcessMessage_BlockedSubstitutesNotice(t *testing.T) {
	f := newFixture()
	raw := "raw model text"
	f.completions.text = &raw
	f.completions.blocked = true
	ctx := context.Background()

	require.NoError(t, f.service.ProcessMessage(ctx, newThreadMessage()))

	require.Len(t, f.dispatcher.posts, 1)
	assert.Equal(t, BlockedNotice, f.dispatcher.posts[0].text)

	// The real model history is persisted regardless of the substitution
	record, err := f.store.Load(ctx, "100")
	require.NoError(t, err)
	require.Len(t, record.History, 2)
	assert.Equal(t, "raw model text", record.History[1].Content)

	// The audit entry reflects what the user actually saw
	require.Len(t, f.sink.entries, 1)
	assert.Equal(t, BlockedNotice, f.sink.entries[0].Response)
}

func TestProcessMessage_EmptyReplySubstitutesNotice(t *testing.T) {
	f := newFixture()
	raw := "  \n "
	f.completions.text = &raw

	require.NoError(t, f.service.ProcessMessage(context.Background(), newThreadMessage()))

	require.Len(t, f.dispatcher.posts, 1)
	assert.Equal(t, BlockedNotice, f.dispatcher.posts[0].text)
}

func TestProcessMessage_CompletionFailureAbortsPipeline(t *testing.T) {
	f := newFixture()
	f.completions.err = errors.New("model unreachable")
	ctx := context.Background()

	err := f.service.ProcessMessage(ctx, newThreadMessage())
	require.Error(t, err)

	assert.Empty(t, f.dispatcher.posts)
	_, loadErr := f.store.Load(ctx, "100")
	assert.Error(t, loadErr)
	assert.Empty(t, f.sink.entries)
}

func TestProcessMessage_DispatchFailureSkipsSave(t *testing.T) {
	f := newFixture()
	f.dispatcher.err = fmt.Errorf("channel gone")
	ctx := context.Background()

	err := f.service.ProcessMessage(ctx, newThreadMessage())
	require.Error(t, err)

	_, loadErr := f.store.Load(ctx, "100")
	assert.Error(t, loadErr)
}

func TestProcessMessage_AuditFailuresDoNotFailResponse(t *testing.T) {
	f := newFixture()
	f.keywords.err = errors.New("keyword model down")
	f.sink.err = errors.New("sink down")

	require.NoError(t, f.service.ProcessMessage(context.Background(), newThreadMessage()))

	// Primary path completed
	assert.Len(t, f.dispatcher.posts, 1)
}

func TestProcessMessage_KeywordFailureStillRecordsEntry(t *testing.T) {
	f := newFixture()
	f.keywords.err = errors.New("keyword model down")

	require.NoError(t, f.service.ProcessMessage(context.Background(), newThreadMessage()))

	require.Len(t, f.sink.entries, 1)
	assert.Empty(t, f.sink.entries[0].Keyword)
}
