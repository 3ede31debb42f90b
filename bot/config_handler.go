package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleConfigShow handles the /config command with an ephemeral
// summary of the stored configuration.
func (b *Bot) handleConfigShow(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, err := parseSnowflake(i.GuildID)
	if err != nil {
		b.respondWithError(s, i, "Invalid guild.")
		return
	}

	cfg, err := b.configRepo.Get(context.Background(), guildID)
	if err != nil {
		log.Errorf("Error loading guild config: %v", err)
		b.respondWithError(s, i, "Failed to load the configuration. Try again.")
		return
	}

	content := "**Current Configuration**\n" + renderConfigSummary(cfg)
	if !cfg.IsProvisioned() {
		content += "\n\n⚠️ Not provisioned yet. An administrator must run /setup."
	}

	b.respondEphemeral(s, i, content)
}
