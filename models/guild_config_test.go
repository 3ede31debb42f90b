package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuildConfig_IsProvisioned(t *testing.T) {
	cfg := NewGuildConfig(1)
	assert.False(t, cfg.IsProvisioned())

	logChannel := int64(500)
	cfg.LogChannelID = &logChannel
	assert.True(t, cfg.IsProvisioned())
}

func TestGuildConfig_Clone(t *testing.T) {
	admiral := int64(300)
	logChannel := int64(500)
	cfg := NewGuildConfig(1)
	cfg.AllowedRoleIDs = []int64{100, 101}
	cfg.AdmiralRoleID = &admiral
	cfg.LogChannelID = &logChannel

	clone := cfg.Clone()
	require.Equal(t, cfg, clone)

	// Mutating the clone leaves the original untouched.
	clone.AllowedRoleIDs[0] = 999
	clone.AllowedRoleIDs = append(clone.AllowedRoleIDs, 102)
	*clone.AdmiralRoleID = 301
	clone.LogChannelID = nil

	assert.Equal(t, []int64{100, 101}, cfg.AllowedRoleIDs)
	assert.Equal(t, int64(300), *cfg.AdmiralRoleID)
	assert.True(t, cfg.IsProvisioned())
}
