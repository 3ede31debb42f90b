package testutil

import (
	"time"

	"aegis/models"
)

// Int64Ptr returns a pointer to the given ID, for optional config fields.
func Int64Ptr(v int64) *int64 {
	return &v
}

// CreateTestGuildConfig creates a fully provisioned config for a guild
func CreateTestGuildConfig(guildID int64) *models.GuildConfig {
	return &models.GuildConfig{
		GuildID:         guildID,
		AllowedRoleIDs:  []int64{100, 101},
		ExcludedRoleIDs: []int64{200},
		AdmiralRoleID:   Int64Ptr(300),
		WarChannelID:    Int64Ptr(400),
		LogChannelID:    Int64Ptr(500),
		UpdatedBy:       42,
		UpdatedAt:       time.Now().UTC().Truncate(time.Microsecond),
	}
}

// CreateUnprovisionedGuildConfig creates a config with no log channel
func CreateUnprovisionedGuildConfig(guildID int64) *models.GuildConfig {
	cfg := models.NewGuildConfig(guildID)
	cfg.AllowedRoleIDs = []int64{100}
	return cfg
}
