package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// adminOnly is the default-member-permissions value restricting a
// command to administrators; Discord enforces it server-side.
var adminOnly int64 = discordgo.PermissionAdministrator

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:                     "setup",
			Description:              "Configure allowed/excluded roles, admiral role, and channels.",
			DefaultMemberPermissions: &adminOnly,
		},
		{
			Name:        "config",
			Description: "Show current configuration (ephemeral).",
		},
		{
			Name:        "roe",
			Description: "Report a Rules of Engagement violation (pings selected role).",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "offender",
					Description: "Offending player",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "target_role",
					Description: "Role to notify/ping (e.g., their alliance)",
					Required:    true,
				},
			},
		},
		{
			Name:        "declare",
			Description: "Declare war against a role/faction with a detailed reason.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "target",
					Description: "Role/faction to declare against",
					Required:    true,
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
