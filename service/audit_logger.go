package service

import (
	"context"
	"fmt"

	"aegis/models"
)

// auditLogger implements the AuditLogger interface
type auditLogger struct {
	messenger Messenger
}

// NewAuditLogger creates a new audit logger dispatching through the
// given messenger.
func NewAuditLogger(messenger Messenger) AuditLogger {
	return &auditLogger{messenger: messenger}
}

// Log dispatches the entry to the guild's log channel. Callers never
// roll back a completed action because of a failure here.
func (l *auditLogger) Log(ctx context.Context, cfg *models.GuildConfig, entry *models.AuditEntry) error {
	// Post-provisioning this should always be set, but check anyway so a
	// miss degrades to a warning instead of a failed workflow.
	if cfg.LogChannelID == nil {
		return ErrLogChannelUnavailable
	}

	if err := l.messenger.PostAuditLog(ctx, *cfg.LogChannelID, entry); err != nil {
		return fmt.Errorf("%w: %v", ErrLogChannelUnavailable, err)
	}

	return nil
}
