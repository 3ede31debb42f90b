package service

import (
	"context"

	"aegis/events"
	"aegis/models"
)

// GuildConfigRepository defines the interface for guild configuration data access
type GuildConfigRepository interface {
	// Get retrieves the configuration for a guild. When no record exists
	// it returns a default-empty configuration, never an error.
	Get(ctx context.Context, guildID int64) (*models.GuildConfig, error)

	// Upsert replaces the guild's entire configuration record atomically.
	// A concurrent Get observes either the fully-old or fully-new record.
	Upsert(ctx context.Context, cfg *models.GuildConfig) error
}

// Messenger defines the outbound rendering surface the workflows need.
// The bot layer implements it on top of the Discord session; tests mock
// it. Failures come back as error values, never as panics that could
// escape into unrelated flows.
type Messenger interface {
	// PostAnnouncement renders an announcement into the channel and
	// returns the posted message ID.
	PostAnnouncement(ctx context.Context, channelID int64, ann *models.Announcement) (int64, error)

	// PostAuditLog renders an audit entry into the channel.
	PostAuditLog(ctx context.Context, channelID int64, entry *models.AuditEntry) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// SetupService drives the single-admin setup panel sessions.
type SetupService interface {
	// Open starts a session for the admin, drafting a copy of the current
	// stored configuration, and returns the session ID with the draft.
	Open(ctx context.Context, guildID, adminID int64) (string, *models.GuildConfig, error)

	// Draft returns the current draft of a live session.
	Draft(sessionID string, actorID int64) (*models.GuildConfig, error)

	// SetAllowedRoles replaces the draft's allowed role set.
	SetAllowedRoles(sessionID string, actorID int64, roleIDs []int64) error

	// SetExcludedRoles replaces the draft's excluded role set.
	SetExcludedRoles(sessionID string, actorID int64, roleIDs []int64) error

	// SetAdmiralRole sets or clears the draft's admiral role.
	SetAdmiralRole(sessionID string, actorID int64, roleID *int64) error

	// SetWarChannel sets or clears the draft's war channel.
	SetWarChannel(sessionID string, actorID int64, channelID *int64) error

	// SetLogChannel sets the draft's log channel.
	SetLogChannel(sessionID string, actorID int64, channelID *int64) error

	// Commit validates the draft and writes it through the repository.
	// A draft without a log channel fails with ErrLogChannelRequired and
	// leaves the stored configuration unchanged.
	Commit(ctx context.Context, sessionID string, actorID int64) (*models.GuildConfig, error)

	// Cancel discards the session without writing anything.
	Cancel(sessionID string, actorID int64) error
}

// BeginParams carries the invocation context of a report or declare
// command, including the invoker's role snapshot taken at receipt time.
type BeginParams struct {
	Kind         models.AnnouncementKind
	GuildID      int64
	ChannelID    int64
	InvokerID    int64
	InvokerRoles []int64
	TargetRoleID int64
	// OffenderID is required for violation reports, unused for war
	// declarations.
	OffenderID *int64
}

// SubmitResult reports what the submit phase accomplished. MirrorErr and
// AuditErr are warnings: the primary post already succeeded.
type SubmitResult struct {
	Announcement     *models.Announcement
	PrimaryChannelID int64
	PrimaryMessageID int64
	MirrorChannelID  *int64
	MirrorMessageID  *int64
	MirrorErr        error
	AuditErr         error
}

// AnnouncementService drives the two-phase report and declare workflows.
type AnnouncementService interface {
	// Begin gates the invocation and, on success, returns a single-use
	// correlation token binding the eventual modal submission back to
	// this invocation context. A denial comes back as a DenyError.
	Begin(ctx context.Context, params BeginParams) (string, error)

	// Submit consumes the token, validates the detail text, posts the
	// announcement and dispatches the audit entry. Mirror and audit
	// failures are reported inside the result as non-fatal warnings.
	Submit(ctx context.Context, token string, actorID int64, detail string) (*SubmitResult, error)

	// Discard drops a pending token after the user closed the modal
	// without submitting. Unknown tokens are a no-op.
	Discard(token string)
}

// AuditLogger formats and dispatches audit entries to the guild's
// configured log channel.
type AuditLogger interface {
	// Log dispatches the entry. An unset log channel or a failed post
	// returns ErrLogChannelUnavailable; callers treat it as non-fatal.
	Log(ctx context.Context, cfg *models.GuildConfig, entry *models.AuditEntry) error
}
