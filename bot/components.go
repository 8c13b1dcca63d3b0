package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Component custom IDs. The submit button ID doubles as the marker used to
// recognize an existing prompt message.
const (
	promptSubmitID    = "whitelist_submit"
	walletModalID     = "whitelist_wallet_modal"
	walletInputID     = "whitelist_wallet_input"
	configMenuID      = "whitelist_config_menu"
	configChannelID   = "whitelist_config_channel"
	configRoleID      = "whitelist_config_role"
	maxWalletsModalID = "whitelist_max_modal"
	maxWalletsInputID = "whitelist_max_input"
)

// ConfigAction enumerates the admin configuration menu choices.
type ConfigAction int

const (
	ConfigActionUnknown ConfigAction = iota
	ConfigActionSetChannel
	ConfigActionSetRole
	ConfigActionSetMaxWallets
	ConfigActionToggleStatus
	ConfigActionToggleDeleteOnLeave
	ConfigActionReset
)

// menu option values, stable identifiers carried in the select interaction
const (
	actionValueSetChannel          = "set_channel"
	actionValueSetRole             = "set_role"
	actionValueSetMaxWallets       = "set_max_wallets"
	actionValueToggleStatus        = "toggle_status"
	actionValueToggleDeleteOnLeave = "toggle_delete_on_leave"
	actionValueReset               = "reset"
)

// ParseConfigAction maps a select menu value to its ConfigAction.
func ParseConfigAction(value string) ConfigAction {
	switch value {
	case actionValueSetChannel:
		return ConfigActionSetChannel
	case actionValueSetRole:
		return ConfigActionSetRole
	case actionValueSetMaxWallets:
		return ConfigActionSetMaxWallets
	case actionValueToggleStatus:
		return ConfigActionToggleStatus
	case actionValueToggleDeleteOnLeave:
		return ConfigActionToggleDeleteOnLeave
	case actionValueReset:
		return ConfigActionReset
	}
	return ConfigActionUnknown
}

// configMenuComponents builds the admin configuration select menu.
func configMenuComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    configMenuID,
					Placeholder: "Choose a setting to change",
					Options: []discordgo.SelectMenuOption{
						{
							Label:       "Set whitelist channel",
							Value:       actionValueSetChannel,
							Description: "Where the submission prompt is posted",
						},
						{
							Label:       "Set auto role",
							Value:       actionValueSetRole,
							Description: "Role granted on successful submission",
						},
						{
							Label:       "Set wallet limit",
							Value:       actionValueSetMaxWallets,
							Description: "Maximum wallets per user",
						},
						{
							Label:       "Toggle whitelist status",
							Value:       actionValueToggleStatus,
							Description: "Open or close submissions",
						},
						{
							Label:       "Toggle delete on leave",
							Value:       actionValueToggleDeleteOnLeave,
							Description: "Purge data when a member leaves",
						},
						{
							Label:       "Reset all settings",
							Value:       actionValueReset,
							Description: "Restore defaults and clear submissions",
						},
					},
				},
			},
		},
	}
}

// channelSelectComponents builds the channel picker shown for the
// set-channel action.
func channelSelectComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:     discordgo.ChannelSelectMenu,
					CustomID:     configChannelID,
					Placeholder:  "Select the whitelist channel",
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				},
			},
		},
	}
}

// roleSelectComponents builds the role picker shown for the set-role action.
func roleSelectComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:    discordgo.RoleSelectMenu,
					CustomID:    configRoleID,
					Placeholder: "Select the auto role",
				},
			},
		},
	}
}

// walletModal builds the wallet submission modal opened by the prompt button.
func walletModal() *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: walletModalID,
		Title:    "Submit Wallet Address",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    walletInputID,
						Label:       "Wallet address",
						Style:       discordgo.TextInputShort,
						Placeholder: "0x...",
						Required:    true,
						MaxLength:   200,
					},
				},
			},
		},
	}
}

// maxWalletsModal builds the cap input modal for the set-limit action.
func maxWalletsModal(current int) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: maxWalletsModalID,
		Title:    "Set Wallet Limit",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    maxWalletsInputID,
						Label:       "Wallets per user (1-25)",
						Style:       discordgo.TextInputShort,
						Value:       fmt.Sprintf("%d", current),
						Required:    true,
						MaxLength:   2,
					},
				},
			},
		},
	}
}
