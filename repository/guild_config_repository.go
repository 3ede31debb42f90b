package repository

import (
	"context"
	"fmt"

	"aegis/database"
	"aegis/models"

	"github.com/jackc/pgx/v5"
)

// GuildConfigRepository implements the service.GuildConfigRepository
// interface on postgres. One row per guild; the upsert replaces every
// column in a single statement so readers never observe a torn record.
type GuildConfigRepository struct {
	db *database.DB
}

// NewGuildConfigRepository creates a new guild config repository
func NewGuildConfigRepository(db *database.DB) *GuildConfigRepository {
	return &GuildConfigRepository{db: db}
}

// Get retrieves the configuration for a guild. A guild without a stored
// row gets a default-empty configuration, not an error.
func (r *GuildConfigRepository) Get(ctx context.Context, guildID int64) (*models.GuildConfig, error) {
	query := `
		SELECT
			guild_id,
			allowed_role_ids,
			excluded_role_ids,
			admiral_role_id,
			war_channel_id,
			log_channel_id,
			updated_by,
			updated_at
		FROM guild_configs
		WHERE guild_id = $1
	`

	var cfg models.GuildConfig
	err := r.db.QueryRow(ctx, query, guildID).Scan(
		&cfg.GuildID,
		&cfg.AllowedRoleIDs,
		&cfg.ExcludedRoleIDs,
		&cfg.AdmiralRoleID,
		&cfg.WarChannelID,
		&cfg.LogChannelID,
		&cfg.UpdatedBy,
		&cfg.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return models.NewGuildConfig(guildID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get config for guild %d: %w", guildID, err)
	}

	if cfg.AllowedRoleIDs == nil {
		cfg.AllowedRoleIDs = []int64{}
	}
	if cfg.ExcludedRoleIDs == nil {
		cfg.ExcludedRoleIDs = []int64{}
	}

	return &cfg, nil
}

// Upsert replaces the guild's entire configuration record. Row-level
// locking serializes concurrent saves for the same guild; saves for
// different guilds never contend.
func (r *GuildConfigRepository) Upsert(ctx context.Context, cfg *models.GuildConfig) error {
	query := `
		INSERT INTO guild_configs (
			guild_id,
			allowed_role_ids,
			excluded_role_ids,
			admiral_role_id,
			war_channel_id,
			log_channel_id,
			updated_by,
			updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (guild_id) DO UPDATE SET
			allowed_role_ids = EXCLUDED.allowed_role_ids,
			excluded_role_ids = EXCLUDED.excluded_role_ids,
			admiral_role_id = EXCLUDED.admiral_role_id,
			war_channel_id = EXCLUDED.war_channel_id,
			log_channel_id = EXCLUDED.log_channel_id,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, query,
		cfg.GuildID,
		cfg.AllowedRoleIDs,
		cfg.ExcludedRoleIDs,
		cfg.AdmiralRoleID,
		cfg.WarChannelID,
		cfg.LogChannelID,
		cfg.UpdatedBy,
		cfg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save config for guild %d: %w", cfg.GuildID, err)
	}

	return nil
}
