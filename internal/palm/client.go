// Package palm wraps the hosted chat model behind the two operations the
// workflow needs: a multi-turn completion and a one-shot keyword summary.
package palm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"palmchat-backend/internal/models"
)

// ErrCompletionService wraps failures calling the hosted model service.
var ErrCompletionService = errors.New("completion service error")

// Params are the fixed generation parameters applied to every call.
type Params struct {
	MaxOutputTokens int32
	Temperature     float32
	TopP            float32
	TopK            float32
}

// Client is a chat completion client. Its configuration (system context,
// few-shot examples, generation parameters) is set once at construction and
// never mutated, so a single Client is safely shared by all event handlers.
type Client struct {
	genai        *genai.Client
	chatModel    string
	keywordModel string
	examples     []Example
	config       *genai.GenerateContentConfig
}

// NewClient creates a Client against the Vertex AI backend of the given
// project and location.
func NewClient(ctx context.Context, projectID, location, chatModel, keywordModel, systemContext string, examples []Example, params Params) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create client: %v", ErrCompletionService, err)
	}

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: params.MaxOutputTokens,
		Temperature:     genai.Ptr(params.Temperature),
		TopP:            genai.Ptr(params.TopP),
		TopK:            genai.Ptr(params.TopK),
	}
	if systemContext != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemContext, genai.RoleUser)
	}

	return &Client{
		genai:        gc,
		chatModel:    chatModel,
		keywordModel: keywordModel,
		examples:     examples,
		config:       cfg,
	}, nil
}

// Converse starts (or, given history, resumes) a chat session seeded with the
// configured few-shot examples and requests one completion for prompt. The
// returned history covers the real conversation only, example turns excluded,
// so it can be persisted and passed back in on the next turn.
func (c *Client) Converse(ctx context.Context, history []models.Message, prompt string) (*models.Completion, error) {
	seed := make([]*genai.Content, 0, len(c.examples)*2+len(history))
	for _, ex := range c.examples {
		seed = append(seed,
			genai.NewContentFromText(ex.InputText, genai.RoleUser),
			genai.NewContentFromText(ex.OutputText, genai.RoleModel),
		)
	}
	for _, m := range history {
		seed = append(seed, genai.NewContentFromText(m.Content, genai.Role(m.Role)))
	}

	chat, err := c.genai.Chats.Create(ctx, c.chatModel, c.config, seed)
	if err != nil {
		return nil, fmt.Errorf("%w: start chat: %v", ErrCompletionService, err)
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: prompt})
	if err != nil {
		return nil, fmt.Errorf("%w: send message: %v", ErrCompletionService, err)
	}

	updated := chat.History(false)
	if len(updated) >= len(c.examples)*2 {
		updated = updated[len(c.examples)*2:]
	}

	return &models.Completion{
		Text:    resp.Text(),
		Blocked: blocked(resp),
		History: fromContents(updated),
	}, nil
}

const keywordPrompt = "Summarize the topic of the following message as a single short keyword:\n\n%s"

// DeriveKeyword summarizes the prompt topic in a short token via a one-shot
// call to the keyword model.
func (c *Client) DeriveKeyword(ctx context.Context, prompt string) (string, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, c.keywordModel,
		genai.Text(fmt.Sprintf(keywordPrompt, prompt)), c.config)
	if err != nil {
		return "", fmt.Errorf("%w: derive keyword: %v", ErrCompletionService, err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

func blocked(resp *genai.GenerateContentResponse) bool {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		return true
	}
	for _, cand := range resp.Candidates {
		switch cand.FinishReason {
		case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent,
			genai.FinishReasonBlocklist, genai.FinishReasonSPII:
			return true
		}
	}
	return false
}

func fromContents(contents []*genai.Content) []models.Message {
	out := make([]models.Message, 0, len(contents))
	for _, content := range contents {
		var b strings.Builder
		for _, part := range content.Parts {
			if part != nil {
				b.WriteString(part.Text)
			}
		}
		out = append(out, models.Message{Role: content.Role, Content: b.String()})
	}
	return out
}
