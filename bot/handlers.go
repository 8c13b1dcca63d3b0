package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"whitelister/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleInteractions routes slash commands, component presses, and modal
// submissions to their handlers.
func (b *Bot) handleInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if i.ApplicationCommandData().Name != "whitelist" {
			return
		}
		switch i.ApplicationCommandData().Options[0].Name {
		case "panel":
			b.handlePanel(s, i)
		case "download":
			b.handleDownload(s, i)
		}

	case discordgo.InteractionMessageComponent:
		switch i.MessageComponentData().CustomID {
		case promptSubmitID:
			b.handleSubmitButton(s, i)
		case configMenuID:
			b.handleConfigMenu(s, i)
		case configChannelID:
			b.handleChannelSelect(s, i)
		case configRoleID:
			b.handleRoleSelect(s, i)
		}

	case discordgo.InteractionModalSubmit:
		switch i.ModalSubmitData().CustomID {
		case walletModalID:
			b.handleWalletModal(s, i)
		case maxWalletsModalID:
			b.handleMaxWalletsModal(s, i)
		}
	}
}

// handlePanel shows the admin configuration menu.
func (b *Bot) handlePanel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireAdmin(s, i) {
		return
	}

	settings := b.whitelist.Snapshot()

	status := "closed"
	if settings.WhitelistStatus {
		status = "open"
	}
	channel := "not set"
	if settings.WhitelistChannelID != nil {
		channel = fmt.Sprintf("<#%d>", *settings.WhitelistChannelID)
	}
	role := "not set"
	if settings.AutoRoleID != nil {
		role = fmt.Sprintf("<@&%d>", *settings.AutoRoleID)
	}

	content := fmt.Sprintf(
		"**Whitelist configuration**\nStatus: %s\nChannel: %s\nAuto role: %s\nWallet limit: %d\nDelete on leave: %t\nUsers on file: %d",
		status, channel, role, settings.MaxWallets, settings.DeleteOnLeave, len(settings.SubmittedWallets),
	)

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: configMenuComponents(),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error responding to panel command: %v", err)
	}
}

// handleConfigMenu dispatches the selected configuration action.
func (b *Bot) handleConfigMenu(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireAdmin(s, i) {
		return
	}

	values := i.MessageComponentData().Values
	if len(values) == 0 {
		b.respondWithError(s, i, "No action selected.")
		return
	}

	ctx := context.Background()

	switch ParseConfigAction(values[0]) {
	case ConfigActionSetChannel:
		b.respondEphemeralComponents(s, i, "Pick the channel for the submission prompt:", channelSelectComponents())

	case ConfigActionSetRole:
		b.respondEphemeralComponents(s, i, "Pick the role granted on submission:", roleSelectComponents())

	case ConfigActionSetMaxWallets:
		err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: maxWalletsModal(b.whitelist.Snapshot().MaxWallets),
		})
		if err != nil {
			log.Errorf("Error opening wallet limit modal: %v", err)
		}

	case ConfigActionToggleStatus:
		open, err := b.whitelist.ToggleWhitelistStatus(ctx)
		if err != nil {
			log.Errorf("Failed to toggle whitelist status: %v", err)
			b.respondWithError(s, i, "Failed to update settings.")
			return
		}
		if open {
			b.respondEphemeral(s, i, "✅ Whitelist is now **open**.")
		} else {
			b.respondEphemeral(s, i, "✅ Whitelist is now **closed**.")
		}

	case ConfigActionToggleDeleteOnLeave:
		enabled, err := b.whitelist.ToggleDeleteOnLeave(ctx)
		if err != nil {
			log.Errorf("Failed to toggle delete on leave: %v", err)
			b.respondWithError(s, i, "Failed to update settings.")
			return
		}
		b.respondEphemeral(s, i, fmt.Sprintf("✅ Delete on leave is now **%t**.", enabled))

	case ConfigActionReset:
		if err := b.whitelist.ResetAll(ctx); err != nil {
			log.Errorf("Failed to reset settings: %v", err)
			b.respondWithError(s, i, "Failed to reset settings.")
			return
		}
		b.respondEphemeral(s, i, "✅ All whitelist settings reset to defaults.")

	default:
		b.respondWithError(s, i, "Unknown configuration action.")
	}
}

// handleChannelSelect applies the chosen whitelist channel.
func (b *Bot) handleChannelSelect(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireAdmin(s, i) {
		return
	}

	values := i.MessageComponentData().Values
	if len(values) == 0 {
		b.respondWithError(s, i, "No channel selected.")
		return
	}

	channelID, err := strconv.ParseInt(values[0], 10, 64)
	if err != nil {
		log.Errorf("Failed to parse channel ID %s: %v", values[0], err)
		b.respondWithError(s, i, "Invalid channel selected.")
		return
	}

	if err := b.whitelist.SetWhitelistChannel(context.Background(), channelID); err != nil {
		log.Errorf("Failed to set whitelist channel: %v", err)
		b.respondWithError(s, i, "Failed to update settings.")
		return
	}

	b.respondEphemeral(s, i, fmt.Sprintf("✅ Whitelist channel set to <#%d>.", channelID))
}

// handleRoleSelect applies the chosen auto role.
func (b *Bot) handleRoleSelect(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireAdmin(s, i) {
		return
	}

	values := i.MessageComponentData().Values
	if len(values) == 0 {
		b.respondWithError(s, i, "No role selected.")
		return
	}

	roleID, err := strconv.ParseInt(values[0], 10, 64)
	if err != nil {
		log.Errorf("Failed to parse role ID %s: %v", values[0], err)
		b.respondWithError(s, i, "Invalid role selected.")
		return
	}

	if err := b.whitelist.SetAutoRole(context.Background(), roleID); err != nil {
		log.Errorf("Failed to set auto role: %v", err)
		b.respondWithError(s, i, "Failed to update settings.")
		return
	}

	b.respondEphemeral(s, i, fmt.Sprintf("✅ Auto role set to <@&%d>.", roleID))
}

// handleMaxWalletsModal applies the submitted wallet limit.
func (b *Bot) handleMaxWalletsModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireAdmin(s, i) {
		return
	}

	value := strings.TrimSpace(modalInputValue(i.ModalSubmitData()))

	n, err := strconv.Atoi(value)
	if err != nil || n < 1 || n > 25 {
		b.respondWithError(s, i, "Wallet limit must be a number between 1 and 25.")
		return
	}

	if err := b.whitelist.SetMaxWallets(context.Background(), n); err != nil {
		if errors.Is(err, service.ErrInvalidMaxWallets) {
			b.respondWithError(s, i, "Wallet limit must be a positive number.")
			return
		}
		log.Errorf("Failed to set wallet limit: %v", err)
		b.respondWithError(s, i, "Failed to update settings.")
		return
	}

	b.respondEphemeral(s, i, fmt.Sprintf("✅ Wallet limit set to **%d** per user.", n))
}

// handleSubmitButton opens the wallet submission modal.
func (b *Bot) handleSubmitButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: walletModal(),
	})
	if err != nil {
		log.Errorf("Error opening wallet modal: %v", err)
	}
}

// handleWalletModal records the submitted wallet address.
func (b *Bot) handleWalletModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	wallet := strings.TrimSpace(modalInputValue(i.ModalSubmitData()))
	if wallet == "" {
		b.respondWithError(s, i, "Wallet address cannot be empty.")
		return
	}

	result, err := b.whitelist.Submit(context.Background(), userID, wallet)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWhitelistClosed):
			b.respondWithError(s, i, "The whitelist is currently closed.")
		case errors.Is(err, service.ErrLimitReached):
			b.respondWithError(s, i, "You have already submitted the maximum number of wallets.")
		default:
			log.Errorf("Failed to record submission for user %d: %v", userID, err)
			b.respondWithError(s, i, "Unable to record your wallet. Please try again.")
		}
		return
	}

	message := fmt.Sprintf("✅ Wallet recorded (%d/%d).", result.WalletCount, result.MaxWallets)
	if result.RoleGranted {
		message += fmt.Sprintf(" You received <@&%d>.", *result.RoleID)
	} else if result.RoleErr != nil {
		message += " ⚠️ Your wallet was saved, but the role could not be assigned."
	}

	b.respondEphemeral(s, i, message)
}

// handleDownload exports all submissions as a CSV attachment.
func (b *Bot) handleDownload(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireAdmin(s, i) {
		return
	}

	data, err := b.whitelist.ExportCSV(b.resolveUsername)
	if err != nil {
		log.Errorf("Failed to export whitelist CSV: %v", err)
		b.respondWithError(s, i, "Failed to generate the export.")
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Whitelist export:",
			Flags:   discordgo.MessageFlagsEphemeral,
			Files: []*discordgo.File{
				{
					Name:        "whitelist.csv",
					ContentType: "text/csv",
					Reader:      bytes.NewReader(data),
				},
			},
		},
	})
	if err != nil {
		log.Errorf("Error responding to download command: %v", err)
	}
}

// resolveUsername maps a user ID to a display name for the CSV export.
func (b *Bot) resolveUsername(userID int64) string {
	id := strconv.FormatInt(userID, 10)

	member, err := b.session.GuildMember(b.config.GuildID, id)
	if err == nil && member != nil && member.User != nil {
		return member.User.Username
	}

	user, err := b.session.User(id)
	if err == nil && user != nil {
		return user.Username
	}

	return service.UnknownUser
}

// modalInputValue extracts the first text input value from a modal submission.
func modalInputValue(data discordgo.ModalSubmitInteractionData) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, component := range actionsRow.Components {
			if input, ok := component.(*discordgo.TextInput); ok {
				return input.Value
			}
		}
	}
	return ""
}
