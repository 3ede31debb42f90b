package bot

import (
	"context"
	"fmt"
	"strings"

	"aegis/models"

	"github.com/bwmarrin/discordgo"
)

// sessionMessenger implements service.Messenger on top of the Discord
// session.
type sessionMessenger struct {
	session *discordgo.Session
}

// PostAnnouncement posts the announcement embed with its ping line. Only
// the roles and users the workflow selected are allowed to resolve into
// actual notifications.
func (m *sessionMessenger) PostAnnouncement(ctx context.Context, channelID int64, ann *models.Announcement) (int64, error) {
	msg, err := m.session.ChannelMessageSendComplex(formatSnowflake(channelID), &discordgo.MessageSend{
		Content: RoleMentions(ann.PingRoleIDs),
		Embeds:  []*discordgo.MessageEmbed{buildAnnouncementEmbed(ann)},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{
				discordgo.AllowedMentionTypeRoles,
				discordgo.AllowedMentionTypeUsers,
			},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to post announcement: %w", err)
	}

	messageID, err := parseSnowflake(msg.ID)
	if err != nil {
		return 0, fmt.Errorf("unparseable message ID %q: %w", msg.ID, err)
	}
	return messageID, nil
}

// PostAuditLog posts one audit line. Mentions render as text only; the
// log channel never pings anyone.
func (m *sessionMessenger) PostAuditLog(ctx context.Context, channelID int64, entry *models.AuditEntry) error {
	_, err := m.session.ChannelMessageSendComplex(formatSnowflake(channelID), &discordgo.MessageSend{
		Content:         renderAuditLine(entry),
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to post audit entry: %w", err)
	}
	return nil
}

func renderAuditLine(entry *models.AuditEntry) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 **%s** by %s at %s",
		entry.Action, UserMention(entry.ActorID), FormatDiscordTimestamp(entry.CreatedAt, "F")))
	if len(entry.TargetRoleIDs) > 0 {
		sb.WriteString(" • targets: ")
		sb.WriteString(RoleMentions(entry.TargetRoleIDs))
	}
	if entry.Detail != "" {
		sb.WriteString("\n> ")
		sb.WriteString(strings.ReplaceAll(entry.Detail, "\n", "\n> "))
	}
	return sb.String()
}
