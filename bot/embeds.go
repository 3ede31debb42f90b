package bot

import (
	"fmt"
	"strings"

	"aegis/models"

	"github.com/bwmarrin/discordgo"
)

// Embed colors
const (
	ColorViolation = 0xED4245 // red
	ColorWar       = 0xE67E22 // orange
)

const maxDetailLength = 4000

var zeroValues = 0

// buildSetupSelects renders the five panel selects, pre-filled from the
// draft so a reopened panel shows the stored configuration.
func buildSetupSelects(sessionID string, draft *models.GuildConfig) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:      discordgo.RoleSelectMenu,
					CustomID:      "setup_allowed_" + sessionID,
					Placeholder:   "Allowed roles (may use /roe and /declare)",
					MinValues:     &zeroValues,
					MaxValues:     25,
					DefaultValues: roleDefaults(draft.AllowedRoleIDs),
				},
			},
		},
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:      discordgo.RoleSelectMenu,
					CustomID:      "setup_excluded_" + sessionID,
					Placeholder:   "Excluded roles (always blocked)",
					MinValues:     &zeroValues,
					MaxValues:     25,
					DefaultValues: roleDefaults(draft.ExcludedRoleIDs),
				},
			},
		},
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:      discordgo.RoleSelectMenu,
					CustomID:      "setup_admiral_" + sessionID,
					Placeholder:   "Admiral role (pinged on war declarations)",
					MinValues:     &zeroValues,
					MaxValues:     1,
					DefaultValues: roleDefaults(optionalSlice(draft.AdmiralRoleID)),
				},
			},
		},
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:      discordgo.ChannelSelectMenu,
					CustomID:      "setup_war_" + sessionID,
					Placeholder:   "War channel (mirrors declarations)",
					MinValues:     &zeroValues,
					MaxValues:     1,
					ChannelTypes:  []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
					DefaultValues: channelDefaults(optionalSlice(draft.WarChannelID)),
				},
			},
		},
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:      discordgo.ChannelSelectMenu,
					CustomID:      "setup_log_" + sessionID,
					Placeholder:   "Log channel (required)",
					MinValues:     &zeroValues,
					MaxValues:     1,
					ChannelTypes:  []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
					DefaultValues: channelDefaults(optionalSlice(draft.LogChannelID)),
				},
			},
		},
	}
}

func buildSetupButtons(sessionID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Save",
					Style:    discordgo.SuccessButton,
					CustomID: "setup_save_" + sessionID,
				},
				discordgo.Button{
					Label:    "Cancel",
					Style:    discordgo.DangerButton,
					CustomID: "setup_cancel_" + sessionID,
				},
			},
		},
	}
}

func roleDefaults(roleIDs []int64) []discordgo.SelectMenuDefaultValue {
	defaults := make([]discordgo.SelectMenuDefaultValue, len(roleIDs))
	for i, id := range roleIDs {
		defaults[i] = discordgo.SelectMenuDefaultValue{
			ID:   formatSnowflake(id),
			Type: discordgo.SelectMenuDefaultValueRole,
		}
	}
	return defaults
}

func channelDefaults(channelIDs []int64) []discordgo.SelectMenuDefaultValue {
	defaults := make([]discordgo.SelectMenuDefaultValue, len(channelIDs))
	for i, id := range channelIDs {
		defaults[i] = discordgo.SelectMenuDefaultValue{
			ID:   formatSnowflake(id),
			Type: discordgo.SelectMenuDefaultValueChannel,
		}
	}
	return defaults
}

func optionalSlice(id *int64) []int64 {
	if id == nil {
		return nil
	}
	return []int64{*id}
}

// BuildDetailModal renders the detail-entry modal for a pending report
// or declaration, carrying the correlation token in the custom ID.
func BuildDetailModal(kind models.AnnouncementKind, token string) *discordgo.InteractionResponseData {
	title := "RoE Violation Report"
	label := "What happened?"
	placeholder := "Describe the violation (who, where, what)."
	if kind == models.AnnouncementKindWar {
		title = "War Declaration"
		label = "Reason for declaration"
		placeholder = "State the grounds for this declaration."
	}

	return &discordgo.InteractionResponseData{
		CustomID: "announce_modal_" + token,
		Title:    title,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "detail",
						Label:       label,
						Style:       discordgo.TextInputParagraph,
						Placeholder: placeholder,
						Required:    true,
						MaxLength:   maxDetailLength,
					},
				},
			},
		},
	}
}

// buildAnnouncementEmbed renders the public announcement embed.
func buildAnnouncementEmbed(ann *models.Announcement) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Fields: []*discordgo.MessageEmbedField{},
	}

	switch ann.Kind {
	case models.AnnouncementKindWar:
		embed.Title = "🛡️ War Declaration"
		embed.Color = ColorWar
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Declared against", Value: RoleMention(ann.TargetRoleID), Inline: true},
			&discordgo.MessageEmbedField{Name: "Declared by", Value: UserMention(ann.ActorID), Inline: true},
		)
	default:
		embed.Title = "🚨 RoE Violation Report"
		embed.Color = ColorViolation
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Reported by", Value: UserMention(ann.ActorID), Inline: true},
			&discordgo.MessageEmbedField{Name: "Notified", Value: RoleMention(ann.TargetRoleID), Inline: true},
		)
		if ann.OffenderID != nil {
			embed.Fields = append(embed.Fields,
				&discordgo.MessageEmbedField{Name: "Offender", Value: UserMention(*ann.OffenderID), Inline: true},
			)
		}
	}

	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "Details", Value: ann.Detail},
		&discordgo.MessageEmbedField{Name: "When", Value: FormatDiscordTimestamp(ann.CreatedAt, "F")},
	)

	return embed
}

// renderConfigSummary formats a configuration for the setup confirmation
// and the /config command.
func renderConfigSummary(cfg *models.GuildConfig) string {
	var sb strings.Builder

	sb.WriteString("**Allowed roles:** ")
	sb.WriteString(roleListOrNone(cfg.AllowedRoleIDs))
	sb.WriteString("\n**Excluded roles:** ")
	sb.WriteString(roleListOrNone(cfg.ExcludedRoleIDs))

	sb.WriteString("\n**Admiral role:** ")
	if cfg.AdmiralRoleID != nil {
		sb.WriteString(RoleMention(*cfg.AdmiralRoleID))
	} else {
		sb.WriteString("not set")
	}

	sb.WriteString("\n**War channel:** ")
	if cfg.WarChannelID != nil {
		sb.WriteString(channelMention(*cfg.WarChannelID))
	} else {
		sb.WriteString("not set")
	}

	sb.WriteString("\n**Log channel:** ")
	if cfg.LogChannelID != nil {
		sb.WriteString(channelMention(*cfg.LogChannelID))
	} else {
		sb.WriteString("not set")
	}

	if cfg.UpdatedBy != 0 {
		sb.WriteString(fmt.Sprintf("\n\nLast updated by %s on %s",
			UserMention(cfg.UpdatedBy), FormatDiscordTimestamp(cfg.UpdatedAt, "F")))
	}

	return sb.String()
}

func roleListOrNone(roleIDs []int64) string {
	if len(roleIDs) == 0 {
		return "none"
	}
	return RoleMentions(roleIDs)
}

func channelMention(channelID int64) string {
	return fmt.Sprintf("<#%d>", channelID)
}
