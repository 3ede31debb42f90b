package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"aegis/models"
	"aegis/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuildConfigRepository_Get(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildConfigRepository(testDB.DB)
	ctx := context.Background()

	t.Run("missing guild returns default empty config", func(t *testing.T) {
		cfg, err := repo.Get(ctx, 111)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, int64(111), cfg.GuildID)
		assert.Empty(t, cfg.AllowedRoleIDs)
		assert.Empty(t, cfg.ExcludedRoleIDs)
		assert.Nil(t, cfg.AdmiralRoleID)
		assert.Nil(t, cfg.WarChannelID)
		assert.Nil(t, cfg.LogChannelID)
		assert.False(t, cfg.IsProvisioned())
	})

	t.Run("round trip preserves every field", func(t *testing.T) {
		original := testutil.CreateTestGuildConfig(222)
		require.NoError(t, repo.Upsert(ctx, original))

		cfg, err := repo.Get(ctx, 222)
		require.NoError(t, err)

		assert.Equal(t, original.AllowedRoleIDs, cfg.AllowedRoleIDs)
		assert.Equal(t, original.ExcludedRoleIDs, cfg.ExcludedRoleIDs)
		require.NotNil(t, cfg.AdmiralRoleID)
		assert.Equal(t, *original.AdmiralRoleID, *cfg.AdmiralRoleID)
		require.NotNil(t, cfg.WarChannelID)
		assert.Equal(t, *original.WarChannelID, *cfg.WarChannelID)
		require.NotNil(t, cfg.LogChannelID)
		assert.Equal(t, *original.LogChannelID, *cfg.LogChannelID)
		assert.Equal(t, original.UpdatedBy, cfg.UpdatedBy)
		assert.WithinDuration(t, original.UpdatedAt, cfg.UpdatedAt, time.Millisecond)
	})
}

func TestGuildConfigRepository_Upsert(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildConfigRepository(testDB.DB)
	ctx := context.Background()

	t.Run("replaces the whole record", func(t *testing.T) {
		first := testutil.CreateTestGuildConfig(333)
		require.NoError(t, repo.Upsert(ctx, first))

		// Second save clears the optional fields entirely. A replace, not
		// a merge: the old admiral role and war channel must not survive.
		second := models.NewGuildConfig(333)
		second.AllowedRoleIDs = []int64{900}
		second.LogChannelID = testutil.Int64Ptr(901)
		second.UpdatedBy = 7
		second.UpdatedAt = time.Now().UTC()
		require.NoError(t, repo.Upsert(ctx, second))

		cfg, err := repo.Get(ctx, 333)
		require.NoError(t, err)

		assert.Equal(t, []int64{900}, cfg.AllowedRoleIDs)
		assert.Empty(t, cfg.ExcludedRoleIDs)
		assert.Nil(t, cfg.AdmiralRoleID)
		assert.Nil(t, cfg.WarChannelID)
		require.NotNil(t, cfg.LogChannelID)
		assert.Equal(t, int64(901), *cfg.LogChannelID)
		assert.Equal(t, int64(7), cfg.UpdatedBy)
	})

	t.Run("concurrent saves to different guilds are independent", func(t *testing.T) {
		guildIDs := []int64{1001, 1002, 1003, 1004, 1005}

		var wg sync.WaitGroup
		errs := make([]error, len(guildIDs))
		for i, guildID := range guildIDs {
			wg.Add(1)
			go func(i int, guildID int64) {
				defer wg.Done()
				cfg := testutil.CreateTestGuildConfig(guildID)
				cfg.UpdatedBy = guildID
				errs[i] = repo.Upsert(ctx, cfg)
			}(i, guildID)
		}
		wg.Wait()

		for i, err := range errs {
			require.NoError(t, err, "save for guild %d", guildIDs[i])
		}
		for _, guildID := range guildIDs {
			cfg, err := repo.Get(ctx, guildID)
			require.NoError(t, err)
			assert.Equal(t, guildID, cfg.UpdatedBy)
		}
	})

	t.Run("concurrent saves to the same guild never tear", func(t *testing.T) {
		// Two writers race with distinct full drafts. Whichever wins, the
		// stored row must match one draft exactly, never a mix.
		a := models.NewGuildConfig(444)
		a.AllowedRoleIDs = []int64{1}
		a.ExcludedRoleIDs = []int64{2}
		a.LogChannelID = testutil.Int64Ptr(10)
		a.UpdatedBy = 1
		a.UpdatedAt = time.Now().UTC()

		b := models.NewGuildConfig(444)
		b.AllowedRoleIDs = []int64{3}
		b.ExcludedRoleIDs = []int64{4}
		b.LogChannelID = testutil.Int64Ptr(20)
		b.UpdatedBy = 2
		b.UpdatedAt = time.Now().UTC()

		for n := 0; n < 20; n++ {
			var wg sync.WaitGroup
			for _, draft := range []*models.GuildConfig{a, b} {
				wg.Add(1)
				go func(cfg *models.GuildConfig) {
					defer wg.Done()
					require.NoError(t, repo.Upsert(ctx, cfg))
				}(draft)
			}
			wg.Wait()

			cfg, err := repo.Get(ctx, 444)
			require.NoError(t, err)

			switch cfg.UpdatedBy {
			case 1:
				assert.Equal(t, a.AllowedRoleIDs, cfg.AllowedRoleIDs)
				assert.Equal(t, a.ExcludedRoleIDs, cfg.ExcludedRoleIDs)
				assert.Equal(t, *a.LogChannelID, *cfg.LogChannelID)
			case 2:
				assert.Equal(t, b.AllowedRoleIDs, cfg.AllowedRoleIDs)
				assert.Equal(t, b.ExcludedRoleIDs, cfg.ExcludedRoleIDs)
				assert.Equal(t, *b.LogChannelID, *cfg.LogChannelID)
			default:
				t.Fatalf("unexpected updated_by %d", cfg.UpdatedBy)
			}
		}
	})
}
