package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aegis/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleSetup opens a setup session and renders the panel. Discord
// enforces the administrator gate via the command's default member
// permissions; the check here covers stale permission overrides.
func (b *Bot) handleSetup(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !isAdmin(i.Member) {
		b.respondWithError(s, i, "You need the Administrator permission to run setup.")
		return
	}

	guildID, err := parseSnowflake(i.GuildID)
	if err != nil {
		b.respondWithError(s, i, "Invalid guild.")
		return
	}
	adminID, err := parseSnowflake(i.Member.User.ID)
	if err != nil {
		b.respondWithError(s, i, "Invalid user.")
		return
	}

	sessionID, draft, err := b.setupService.Open(context.Background(), guildID, adminID)
	if err != nil {
		log.Errorf("Error opening setup session: %v", err)
		b.respondWithError(s, i, "Failed to load the current configuration. Try again.")
		return
	}

	// Discord caps a message at five action rows, so the selects fill the
	// initial response and the save/cancel buttons ride a follow-up.
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf(
				"**Server Setup**\nAdjust the selections below, then press Save. The panel expires after %s of inactivity.",
				formatWindow(b.config.SetupSessionTTL)),
			Components: buildSetupSelects(sessionID, draft),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending setup panel: %v", err)
		return
	}

	_, err = s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Components: buildSetupButtons(sessionID),
		Flags:      discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error sending setup buttons: %v", err)
	}
}

// handleSetupComponent routes one panel interaction. Custom IDs look
// like "setup_<field>_<sessionID>"; the session ID is a UUID and never
// contains an underscore.
func (b *Bot) handleSetupComponent(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	parts := strings.SplitN(customID, "_", 3)
	if len(parts) != 3 {
		return
	}
	field, sessionID := parts[1], parts[2]

	actorID, err := parseSnowflake(i.Member.User.ID)
	if err != nil {
		b.respondWithError(s, i, "Invalid user.")
		return
	}

	switch field {
	case "save":
		b.handleSetupSave(s, i, sessionID, actorID)
		return
	case "cancel":
		b.handleSetupCancel(s, i, sessionID, actorID)
		return
	}

	values, err := parseSelectValues(i.MessageComponentData().Values)
	if err != nil {
		b.respondWithError(s, i, "Invalid selection.")
		return
	}

	switch field {
	case "allowed":
		err = b.setupService.SetAllowedRoles(sessionID, actorID, values)
	case "excluded":
		err = b.setupService.SetExcludedRoles(sessionID, actorID, values)
	case "admiral":
		err = b.setupService.SetAdmiralRole(sessionID, actorID, optionalID(values))
	case "war":
		err = b.setupService.SetWarChannel(sessionID, actorID, optionalID(values))
	case "log":
		err = b.setupService.SetLogChannel(sessionID, actorID, optionalID(values))
	default:
		return
	}
	if err != nil {
		b.respondWithError(s, i, setupErrorMessage(err))
		return
	}

	// Silent ack; the draft lives server-side and the panel already shows
	// the admin's selection.
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		log.Errorf("Error acking setup component: %v", err)
	}
}

func (b *Bot) handleSetupSave(s *discordgo.Session, i *discordgo.InteractionCreate, sessionID string, actorID int64) {
	cfg, err := b.setupService.Commit(context.Background(), sessionID, actorID)
	if err != nil {
		// The session survives validation and storage failures, so the
		// panel stays usable and the admin can fix the draft and retry.
		b.respondWithError(s, i, setupErrorMessage(err))
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    fmt.Sprintf("✅ Configuration saved.\n%s", renderConfigSummary(cfg)),
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		log.Errorf("Error confirming setup save: %v", err)
	}
}

func (b *Bot) handleSetupCancel(s *discordgo.Session, i *discordgo.InteractionCreate, sessionID string, actorID int64) {
	if err := b.setupService.Cancel(sessionID, actorID); err != nil {
		b.respondWithError(s, i, setupErrorMessage(err))
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    "Setup cancelled. No changes were saved.",
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		log.Errorf("Error confirming setup cancel: %v", err)
	}
}

func setupErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrLogChannelRequired):
		return "⚠️ A log channel is required before saving."
	case errors.Is(err, service.ErrSessionNotFound):
		return "This setup panel has expired. Run /setup again."
	case errors.Is(err, service.ErrUnauthorized):
		return "This setup panel belongs to another administrator."
	default:
		log.Errorf("Setup action failed: %v", err)
		return "Something went wrong. Your changes were not saved; try again."
	}
}

// parseSelectValues converts a component's selected IDs to int64s.
func parseSelectValues(values []string) ([]int64, error) {
	out := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := parseSnowflake(v)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// optionalID maps a single-select result to a nullable ID; an empty
// selection clears the field.
func optionalID(values []int64) *int64 {
	if len(values) == 0 {
		return nil
	}
	return &values[0]
}
