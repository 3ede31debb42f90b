package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// parseSnowflake converts a Discord string ID to int64
func parseSnowflake(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

func formatSnowflake(id int64) string {
	return strconv.FormatInt(id, 10)
}

// parseMemberRoles snapshots the invoker's role IDs at receipt time.
func parseMemberRoles(member *discordgo.Member) []int64 {
	roles := make([]int64, 0, len(member.Roles))
	for _, id := range member.Roles {
		parsed, err := parseSnowflake(id)
		if err != nil {
			log.Warnf("Skipping unparseable role ID %q: %v", id, err)
			continue
		}
		roles = append(roles, parsed)
	}
	return roles
}

// isAdmin reports whether the invoking member holds the administrator
// permission. Setup is gated on this, independent of the allowed and
// excluded role sets.
func isAdmin(member *discordgo.Member) bool {
	return member.Permissions&discordgo.PermissionAdministrator != 0
}

// RoleMention formats a role ping
func RoleMention(roleID int64) string {
	return fmt.Sprintf("<@&%d>", roleID)
}

// UserMention formats a user ping
func UserMention(userID int64) string {
	return fmt.Sprintf("<@%d>", userID)
}

// RoleMentions joins role pings for message content
func RoleMentions(roleIDs []int64) string {
	mentions := make([]string, len(roleIDs))
	for i, id := range roleIDs {
		mentions[i] = RoleMention(id)
	}
	return strings.Join(mentions, " ")
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that
// displays in the reader's local timezone. Format types: "F" = long
// date/time, "R" = relative time.
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// formatWindow renders a duration for user-facing text. Whole minutes
// read as "10 minutes" rather than "10m0s".
func formatWindow(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		minutes := int(d / time.Minute)
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	seconds := int(d / time.Second)
	if seconds == 1 {
		return "1 second"
	}
	return fmt.Sprintf("%d seconds", seconds)
}

// messageJumpLink builds the jump URL for a posted message.
func messageJumpLink(guildID int64, channelID, messageID int64) string {
	return fmt.Sprintf("https://discord.com/channels/%d/%d/%d", guildID, channelID, messageID)
}

func (b *Bot) respondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

func (b *Bot) respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending response: %v", err)
	}
}

// followUpEphemeral sends an ephemeral follow-up to an already-answered
// interaction.
func (b *Bot) followUpEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: message,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error sending follow-up message: %v", err)
	}
}
