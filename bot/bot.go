package bot

import (
	"context"
	"fmt"
	"strconv"

	"whitelister/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string
}

// Bot wires Discord gateway events to the whitelist service. It also serves
// as the service's collaborator for role grants and prompt posting.
type Bot struct {
	config    Config
	session   *discordgo.Session
	whitelist service.WhitelistService
}

// New creates the Discord session without opening it. The service is attached
// in Start, after it has been constructed with this bot as collaborator.
func New(config Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages

	return &Bot{
		config:  config,
		session: dg,
	}, nil
}

// Start registers handlers, opens the gateway connection, and registers the
// slash commands.
func (b *Bot) Start(whitelist service.WhitelistService) error {
	b.whitelist = whitelist

	b.session.AddHandler(b.handleInteractions)
	b.session.AddHandler(b.handleMemberRemove)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	if err := b.registerCommands(); err != nil {
		b.session.Close()
		return fmt.Errorf("error registering commands: %w", err)
	}

	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) registerCommands() error {
	adminOnly := int64(discordgo.PermissionAdministrator)

	commands := []*discordgo.ApplicationCommand{
		{
			Name:                     "whitelist",
			Description:              "Manage the wallet whitelist",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "panel",
					Description: "Open the whitelist configuration menu",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "download",
					Description: "Download all submitted wallets as CSV",
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}

// GrantRole implements service.RoleGranter.
func (b *Bot) GrantRole(ctx context.Context, userID, roleID int64) error {
	err := b.session.GuildMemberRoleAdd(b.config.GuildID,
		strconv.FormatInt(userID, 10), strconv.FormatInt(roleID, 10))
	if err != nil {
		return fmt.Errorf("failed to grant role %d to user %d: %w", roleID, userID, err)
	}
	return nil
}

// HasExistingPrompt implements service.PromptManager. It scans recent channel
// history for a prompt message authored by this bot.
func (b *Bot) HasExistingPrompt(ctx context.Context, channelID int64) (bool, error) {
	messages, err := b.session.ChannelMessages(strconv.FormatInt(channelID, 10), 100, "", "", "")
	if err != nil {
		return false, fmt.Errorf("failed to fetch channel messages: %w", err)
	}
	return containsPrompt(messages, b.session.State.User.ID), nil
}

// PostPrompt implements service.PromptManager.
func (b *Bot) PostPrompt(ctx context.Context, channelID int64) error {
	_, err := b.session.ChannelMessageSendComplex(strconv.FormatInt(channelID, 10), &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       "Wallet Whitelist",
				Description: "Press the button below to submit your wallet address.",
				Color:       0x5865F2,
			},
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Submit Wallet",
						Style:    discordgo.PrimaryButton,
						CustomID: promptSubmitID,
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to post submission prompt: %w", err)
	}

	log.Infof("Posted submission prompt in channel %d", channelID)
	return nil
}

// containsPrompt reports whether any of the messages is a submission prompt
// authored by the bot, identified by the submit button's custom ID.
func containsPrompt(messages []*discordgo.Message, botUserID string) bool {
	for _, msg := range messages {
		if msg.Author == nil || msg.Author.ID != botUserID {
			continue
		}
		for _, row := range msg.Components {
			actionsRow, ok := row.(*discordgo.ActionsRow)
			if !ok {
				continue
			}
			for _, component := range actionsRow.Components {
				if button, ok := component.(*discordgo.Button); ok && button.CustomID == promptSubmitID {
					return true
				}
			}
		}
	}
	return false
}
