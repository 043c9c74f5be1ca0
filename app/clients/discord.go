package clients

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"DocAnalystAI/app/utils"
)

const discordMessageLimit = 2000

var _ Interface = &DiscordClient{}

type messageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type DiscordClient struct {
	session   messageSender
	closer    func() error
	channelID string
}

func NewDiscordClient(token, channelID string) (*DiscordClient, error) {
	if token == "" {
		return nil, fmt.Errorf("discord token is empty")
	}
	if channelID == "" {
		return nil, fmt.Errorf("discord channel ID is empty")
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &DiscordClient{
		session:   session,
		closer:    session.Close,
		channelID: channelID,
	}, nil
}

func NewDiscordClientFromConfig(cfg map[string]string) (*DiscordClient, error) {
	return NewDiscordClient(cfg["token"], cfg["channel_id"])
}

func (c *DiscordClient) Name() string {
	return "discord"
}

func (c *DiscordClient) Notify(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.SendMessage(c.channelID, n.Message())
}

func (c *DiscordClient) SendMessage(channelID, content string) error {
	if channelID == "" {
		return fmt.Errorf("channelID is empty")
	}
	if _, err := c.session.ChannelMessageSend(channelID, utils.Truncate(content, discordMessageLimit-3)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	slog.Debug("💬 Discord message sent", "channel", channelID)
	return nil
}

func (c *DiscordClient) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}
