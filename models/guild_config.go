package models

import (
	"slices"
	"time"
)

// GuildConfig holds the per-guild role and channel configuration.
// A guild without a log channel is considered unprovisioned and every
// gated command is rejected until an administrator runs setup.
type GuildConfig struct {
	GuildID         int64     `db:"guild_id"`
	AllowedRoleIDs  []int64   `db:"allowed_role_ids"`
	ExcludedRoleIDs []int64   `db:"excluded_role_ids"`
	AdmiralRoleID   *int64    `db:"admiral_role_id"`
	WarChannelID    *int64    `db:"war_channel_id"`
	LogChannelID    *int64    `db:"log_channel_id"`
	UpdatedBy       int64     `db:"updated_by"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// NewGuildConfig returns an empty configuration for a guild that has not
// been set up yet.
func NewGuildConfig(guildID int64) *GuildConfig {
	return &GuildConfig{
		GuildID:         guildID,
		AllowedRoleIDs:  []int64{},
		ExcludedRoleIDs: []int64{},
	}
}

// IsProvisioned reports whether the guild has completed setup.
func (c *GuildConfig) IsProvisioned() bool {
	return c.LogChannelID != nil
}

// Clone returns a deep copy of the configuration. Setup sessions edit a
// clone so an abandoned draft never leaks into the stored record.
func (c *GuildConfig) Clone() *GuildConfig {
	clone := *c
	clone.AllowedRoleIDs = slices.Clone(c.AllowedRoleIDs)
	clone.ExcludedRoleIDs = slices.Clone(c.ExcludedRoleIDs)
	if c.AdmiralRoleID != nil {
		v := *c.AdmiralRoleID
		clone.AdmiralRoleID = &v
	}
	if c.WarChannelID != nil {
		v := *c.WarChannelID
		clone.WarChannelID = &v
	}
	if c.LogChannelID != nil {
		v := *c.LogChannelID
		clone.LogChannelID = &v
	}
	return &clone
}
