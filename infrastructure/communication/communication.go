package communication

import (
	"context"
	"fmt"
	"os"

	timesheet "github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/core"
	"github.com/slack-go/slack"
)

// Slack delivers lifecycle notifications to Slack channels. One channel per
// topic; unknown topics fall through to the default channel.
type Slack struct {
	client  *slack.Client
	options SlackOption
}

type SlackOption struct {
	DefaultChannelID string
	// Topic -> channel id.
	TopicChannels map[string]string
}

func ConnectSlack() *Slack {
	token := os.Getenv("SLACK_BOT_TOKEN")

	return NewSlack(token, SlackOption{
		DefaultChannelID: os.Getenv("SLACK_DEFAULT_CHANNEL"),
		TopicChannels: map[string]string{
			timesheet.TopicTimecardChanges: os.Getenv("SLACK_TIMECARD_CHANGES_CHANNEL"),
			timesheet.TopicTimecardStatus:  os.Getenv("SLACK_TIMECARD_STATUS_CHANNEL"),
			timesheet.TopicEquipmentBreak:  os.Getenv("SLACK_EQUIPMENT_BREAK_CHANNEL"),
		},
	})
}

func NewSlack(token string, options SlackOption) *Slack {
	client := slack.New(token)
	return &Slack{client: client, options: options}
}

// Send implements the notification sink consumed by the lifecycle service.
func (s *Slack) Send(ctx context.Context, msg timesheet.Message) error {
	channelID := s.options.TopicChannels[msg.Topic]
	if channelID == "" {
		channelID = s.options.DefaultChannelID
	}
	if channelID == "" {
		return fmt.Errorf("no channel configured for topic %s", msg.Topic)
	}

	text := fmt.Sprintf("*%s*\n%s", msg.Title, msg.Body)
	if msg.Link != "" {
		text += "\n" + msg.Link
	}

	_, _, err := s.client.PostMessageContext(
		ctx,
		channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}
