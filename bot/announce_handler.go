package bot

import (
	"context"
	"errors"

	"aegis/models"
	"aegis/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleReport handles the /roe command
func (b *Bot) handleReport(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := optionMap(i)

	var offenderID *int64
	if opt, ok := options["offender"]; ok {
		id, err := parseSnowflake(opt.UserValue(nil).ID)
		if err != nil {
			b.respondWithError(s, i, "Invalid offender.")
			return
		}
		offenderID = &id
	}

	var targetRoleID int64
	if opt, ok := options["target_role"]; ok {
		id, err := parseSnowflake(opt.RoleValue(nil, "").ID)
		if err != nil {
			b.respondWithError(s, i, "Invalid target role.")
			return
		}
		targetRoleID = id
	}

	b.beginAnnouncement(s, i, models.AnnouncementKindViolation, targetRoleID, offenderID)
}

// handleDeclare handles the /declare command
func (b *Bot) handleDeclare(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := optionMap(i)

	var targetRoleID int64
	if opt, ok := options["target"]; ok {
		id, err := parseSnowflake(opt.RoleValue(nil, "").ID)
		if err != nil {
			b.respondWithError(s, i, "Invalid target role.")
			return
		}
		targetRoleID = id
	}

	b.beginAnnouncement(s, i, models.AnnouncementKindWar, targetRoleID, nil)
}

// beginAnnouncement gates the invocation and opens the detail modal.
// The invoker's roles are snapshotted here, at receipt time, so a role
// change after the modal opens does not alter the decision.
func (b *Bot) beginAnnouncement(s *discordgo.Session, i *discordgo.InteractionCreate, kind models.AnnouncementKind, targetRoleID int64, offenderID *int64) {
	guildID, err := parseSnowflake(i.GuildID)
	if err != nil {
		b.respondWithError(s, i, "Invalid guild.")
		return
	}
	channelID, err := parseSnowflake(i.ChannelID)
	if err != nil {
		b.respondWithError(s, i, "Invalid channel.")
		return
	}
	invokerID, err := parseSnowflake(i.Member.User.ID)
	if err != nil {
		b.respondWithError(s, i, "Invalid user.")
		return
	}

	token, err := b.announcementService.Begin(context.Background(), service.BeginParams{
		Kind:         kind,
		GuildID:      guildID,
		ChannelID:    channelID,
		InvokerID:    invokerID,
		InvokerRoles: parseMemberRoles(i.Member),
		TargetRoleID: targetRoleID,
		OffenderID:   offenderID,
	})
	if err != nil {
		var deny *service.DenyError
		switch {
		case errors.As(err, &deny):
			b.respondWithError(s, i, deny.Reason.Message())
		case errors.Is(err, service.ErrTargetRoleRequired):
			b.respondWithError(s, i, "A target role is required.")
		default:
			log.Errorf("Error beginning announcement: %v", err)
			b.respondWithError(s, i, "Something went wrong. Try again.")
		}
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: BuildDetailModal(kind, token),
	})
	if err != nil {
		log.Errorf("Error opening detail modal: %v", err)
		// The token expires on its own; nothing was posted.
		b.announcementService.Discard(token)
	}
}

// handleAnnouncementSubmit completes the workflow from the modal.
func (b *Bot) handleAnnouncementSubmit(s *discordgo.Session, i *discordgo.InteractionCreate, token string) {
	actorID, err := parseSnowflake(i.Member.User.ID)
	if err != nil {
		b.respondWithError(s, i, "Invalid user.")
		return
	}

	detail := extractModalDetail(i.ModalSubmitData())

	result, err := b.announcementService.Submit(context.Background(), token, actorID, detail)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDetailRequired):
			b.respondWithError(s, i, "Details are required. Submit the form again with a description.")
		case errors.Is(err, service.ErrTokenNotFound):
			b.respondWithError(s, i, "This form has expired or was already submitted. Run the command again.")
		default:
			log.Errorf("Error submitting announcement: %v", err)
			b.respondWithError(s, i, "Failed to post the announcement. Nothing was published; run the command again.")
		}
		return
	}

	guildID, _ := parseSnowflake(i.GuildID)
	b.respondEphemeral(s, i, "✅ Posted: "+messageJumpLink(guildID, result.PrimaryChannelID, result.PrimaryMessageID))

	// Warnings ride separate follow-ups so the confirmation with the jump
	// link stays clean.
	for _, warning := range submitWarnings(result) {
		b.followUpEphemeral(s, i, warning)
	}
}

// submitWarnings lists the non-fatal failures of a completed submission.
func submitWarnings(result *service.SubmitResult) []string {
	var warnings []string
	if result.MirrorErr != nil {
		warnings = append(warnings, "⚠️ Posted, but mirroring to the war channel failed.")
	}
	if result.AuditErr != nil {
		warnings = append(warnings, "⚠️ Posted, but the audit log entry could not be written.")
	}
	return warnings
}

// extractModalDetail pulls the detail text out of the modal payload.
func extractModalDetail(data discordgo.ModalSubmitInteractionData) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, component := range actionsRow.Components {
			if input, ok := component.(*discordgo.TextInput); ok && input.CustomID == "detail" {
				return input.Value
			}
		}
	}
	return ""
}

// optionMap indexes a command's options by name.
func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}
