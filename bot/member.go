package bot

import (
	"context"
	"strconv"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleMemberRemove purges a departing member's submissions when the
// delete-on-leave policy is enabled.
func (b *Bot) handleMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.User == nil {
		return
	}

	userID, err := strconv.ParseInt(m.User.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", m.User.ID, err)
		return
	}

	if err := b.whitelist.OnMemberLeave(context.Background(), userID); err != nil {
		log.Errorf("Failed to clean up submissions for departed user %d: %v", userID, err)
	}
}
