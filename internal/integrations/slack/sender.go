// Package slack posts workflow replies back into Slack conversation threads.
package slack

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"
)

// ErrDelivery wraps failures posting a message into Slack, e.g. when the
// channel no longer exists or the bot lacks permission.
var ErrDelivery = errors.New("slack delivery error")

// Dispatcher sends messages through the Slack Web API with a fixed bot token.
type Dispatcher struct {
	api *slack.Client
}

// NewDispatcher creates a Dispatcher using the given bot token.
func NewDispatcher(botToken string) *Dispatcher {
	return &Dispatcher{api: slack.New(botToken)}
}

// BotUserID resolves the authenticated bot user via auth.test. The webhook
// handler uses it to ignore the bot's own messages and avoid reply loops.
func (d *Dispatcher) BotUserID(ctx context.Context) (string, error) {
	resp, err := d.api.AuthTestContext(ctx)
	if err != nil {
		return "", fmt.Errorf("slack auth test: %w", err)
	}
	return resp.UserID, nil
}

// PostReply sends text into channelID as a reply anchored to threadTS. An
// empty threadTS posts a top-level message.
func (d *Dispatcher) PostReply(ctx context.Context, channelID, threadTS, text string) error {
	opts := []slack.MsgOption{
		slack.MsgOptionText(text, false),
	}
	if threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(threadTS))
	}

	if _, _, err := d.api.PostMessageContext(ctx, channelID, opts...); err != nil {
		return fmt.Errorf("%w: post to channel %s: %v", ErrDelivery, channelID, err)
	}
	return nil
}
