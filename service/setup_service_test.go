package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"aegis/events"
	"aegis/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestSetupService(repo *MockGuildConfigRepository, auditLogger *MockAuditLogger, publisher *MockEventPublisher, ttl time.Duration) SetupService {
	return NewSetupService(repo, auditLogger, publisher, ttl)
}

func TestSetupService_OpenAndCommit(t *testing.T) {
	ctx := context.Background()
	repo := new(MockGuildConfigRepository)
	auditLogger := new(MockAuditLogger)
	publisher := new(MockEventPublisher)
	svc := newTestSetupService(repo, auditLogger, publisher, DefaultSetupSessionTTL)

	repo.On("Get", ctx, int64(1)).Return(models.NewGuildConfig(1), nil)
	repo.On("Upsert", ctx, mock.AnythingOfType("*models.GuildConfig")).Return(nil)
	auditLogger.On("Log", ctx, mock.Anything, mock.Anything).Return(nil)
	publisher.On("Publish", mock.Anything).Return()

	sessionID, draft, err := svc.Open(ctx, 1, 42)
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)
	assert.False(t, draft.IsProvisioned())

	logChannel := int64(500)
	admiral := int64(300)
	require.NoError(t, svc.SetAllowedRoles(sessionID, 42, []int64{100, 101, 100}))
	require.NoError(t, svc.SetExcludedRoles(sessionID, 42, []int64{200}))
	require.NoError(t, svc.SetAdmiralRole(sessionID, 42, &admiral))
	require.NoError(t, svc.SetLogChannel(sessionID, 42, &logChannel))

	saved, err := svc.Commit(ctx, sessionID, 42)
	require.NoError(t, err)

	// Duplicate selections collapse.
	assert.Equal(t, []int64{100, 101}, saved.AllowedRoleIDs)
	assert.Equal(t, []int64{200}, saved.ExcludedRoleIDs)
	require.NotNil(t, saved.AdmiralRoleID)
	assert.Equal(t, int64(300), *saved.AdmiralRoleID)
	require.NotNil(t, saved.LogChannelID)
	assert.Equal(t, int64(500), *saved.LogChannelID)
	assert.Equal(t, int64(42), saved.UpdatedBy)
	assert.WithinDuration(t, time.Now().UTC(), saved.UpdatedAt, time.Second)

	repo.AssertExpectations(t)
	publisher.AssertCalled(t, "Publish", mock.MatchedBy(func(e events.Event) bool {
		committed, ok := e.(events.ConfigCommittedEvent)
		return ok && committed.GuildID == 1 && committed.UpdatedBy == 42
	}))
	auditLogger.AssertCalled(t, "Log", ctx, mock.Anything, mock.MatchedBy(func(entry *models.AuditEntry) bool {
		return entry.Action == models.AuditActionSetupChange && entry.ActorID == 42
	}))

	// The session is gone after commit.
	_, err = svc.Draft(sessionID, 42)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSetupService_CommitRequiresLogChannel(t *testing.T) {
	ctx := context.Background()
	repo := new(MockGuildConfigRepository)
	auditLogger := new(MockAuditLogger)
	publisher := new(MockEventPublisher)
	svc := newTestSetupService(repo, auditLogger, publisher, DefaultSetupSessionTTL)

	repo.On("Get", ctx, int64(1)).Return(models.NewGuildConfig(1), nil)

	sessionID, _, err := svc.Open(ctx, 1, 42)
	require.NoError(t, err)
	require.NoError(t, svc.SetAllowedRoles(sessionID, 42, []int64{100}))

	_, err = svc.Commit(ctx, sessionID, 42)
	assert.ErrorIs(t, err, ErrLogChannelRequired)

	// Nothing was written and the session survives for a retry.
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "Publish", mock.Anything)

	draft, err := svc.Draft(sessionID, 42)
	require.NoError(t, err)
	assert.Equal(t, []int64{100}, draft.AllowedRoleIDs)
}

func TestSetupService_CommitStorageFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	repo := new(MockGuildConfigRepository)
	auditLogger := new(MockAuditLogger)
	publisher := new(MockEventPublisher)
	svc := newTestSetupService(repo, auditLogger, publisher, DefaultSetupSessionTTL)

	logChannel := int64(500)
	repo.On("Get", ctx, int64(1)).Return(models.NewGuildConfig(1), nil)
	repo.On("Upsert", ctx, mock.Anything).Return(errors.New("connection reset")).Once()
	repo.On("Upsert", ctx, mock.Anything).Return(nil).Once()
	auditLogger.On("Log", ctx, mock.Anything, mock.Anything).Return(nil)
	publisher.On("Publish", mock.Anything).Return()

	sessionID, _, err := svc.Open(ctx, 1, 42)
	require.NoError(t, err)
	require.NoError(t, svc.SetLogChannel(sessionID, 42, &logChannel))

	_, err = svc.Commit(ctx, sessionID, 42)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)

	// Retry succeeds against the same session.
	saved, err := svc.Commit(ctx, sessionID, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(500), *saved.LogChannelID)
}

func TestSetupService_AuditFailureDoesNotFailCommit(t *testing.T) {
	ctx := context.Background()
	repo := new(MockGuildConfigRepository)
	auditLogger := new(MockAuditLogger)
	publisher := new(MockEventPublisher)
	svc := newTestSetupService(repo, auditLogger, publisher, DefaultSetupSessionTTL)

	logChannel := int64(500)
	repo.On("Get", ctx, int64(1)).Return(models.NewGuildConfig(1), nil)
	repo.On("Upsert", ctx, mock.Anything).Return(nil)
	auditLogger.On("Log", ctx, mock.Anything, mock.Anything).Return(ErrLogChannelUnavailable)
	publisher.On("Publish", mock.Anything).Return()

	sessionID, _, err := svc.Open(ctx, 1, 42)
	require.NoError(t, err)
	require.NoError(t, svc.SetLogChannel(sessionID, 42, &logChannel))

	saved, err := svc.Commit(ctx, sessionID, 42)
	require.NoError(t, err)
	assert.NotNil(t, saved)
}

func TestSetupService_ConcurrentPanelInteractions(t *testing.T) {
	// Panel selects fire on separate gateway goroutines. Concurrent edits
	// to different fields must all land, and draft reads racing the edits
	// must observe a consistent snapshot.
	ctx := context.Background()
	repo := new(MockGuildConfigRepository)
	auditLogger := new(MockAuditLogger)
	publisher := new(MockEventPublisher)
	svc := newTestSetupService(repo, auditLogger, publisher, DefaultSetupSessionTTL)

	repo.On("Get", ctx, int64(1)).Return(models.NewGuildConfig(1), nil)
	repo.On("Upsert", ctx, mock.Anything).Return(nil)
	auditLogger.On("Log", ctx, mock.Anything, mock.Anything).Return(nil)
	publisher.On("Publish", mock.Anything).Return()

	sessionID, _, err := svc.Open(ctx, 1, 42)
	require.NoError(t, err)

	admiral := int64(300)
	logChannel := int64(500)

	start := make(chan struct{})
	var wg sync.WaitGroup
	edits := []func() error{
		func() error { return svc.SetAllowedRoles(sessionID, 42, []int64{100, 101}) },
		func() error { return svc.SetExcludedRoles(sessionID, 42, []int64{200}) },
		func() error { return svc.SetAdmiralRole(sessionID, 42, &admiral) },
		func() error { return svc.SetLogChannel(sessionID, 42, &logChannel) },
	}
	errs := make([]error, len(edits))
	for i, apply := range edits {
		wg.Add(1)
		go func(i int, apply func() error) {
			defer wg.Done()
			<-start
			errs[i] = apply()
		}(i, apply)
	}
	// Concurrent readers alongside the writers.
	for n := 0; n < 4; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for m := 0; m < 10; m++ {
				draft, err := svc.Draft(sessionID, 42)
				assert.NoError(t, err)
				assert.NotNil(t, draft)
			}
		}()
	}
	close(start)
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	saved, err := svc.Commit(ctx, sessionID, 42)
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 101}, saved.AllowedRoleIDs)
	assert.Equal(t, []int64{200}, saved.ExcludedRoleIDs)
	require.NotNil(t, saved.AdmiralRoleID)
	assert.Equal(t, int64(300), *saved.AdmiralRoleID)
	require.NotNil(t, saved.LogChannelID)
	assert.Equal(t, int64(500), *saved.LogChannelID)
}

func TestSetupService_SessionOwnership(t *testing.T) {
	ctx := context.Background()
	repo := new(MockGuildConfigRepository)
	svc := newTestSetupService(repo, new(MockAuditLogger), new(MockEventPublisher), DefaultSetupSessionTTL)

	repo.On("Get", ctx, int64(1)).Return(models.NewGuildConfig(1), nil)

	sessionID, _, err := svc.Open(ctx, 1, 42)
	require.NoError(t, err)

	// A different admin cannot read, edit, save or cancel the session.
	_, err = svc.Draft(sessionID, 99)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, svc.SetAllowedRoles(sessionID, 99, []int64{1}), ErrUnauthorized)
	_, err = svc.Commit(ctx, sessionID, 99)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, svc.Cancel(sessionID, 99), ErrUnauthorized)

	// The owner still holds an untouched draft.
	draft, err := svc.Draft(sessionID, 42)
	require.NoError(t, err)
	assert.Empty(t, draft.AllowedRoleIDs)
}

func TestSetupService_Cancel(t *testing.T) {
	ctx := context.Background()
	repo := new(MockGuildConfigRepository)
	svc := newTestSetupService(repo, new(MockAuditLogger), new(MockEventPublisher), DefaultSetupSessionTTL)

	repo.On("Get", ctx, int64(1)).Return(models.NewGuildConfig(1), nil)

	sessionID, _, err := svc.Open(ctx, 1, 42)
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(sessionID, 42))

	_, err = svc.Draft(sessionID, 42)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSetupService_SessionExpiry(t *testing.T) {
	ctx := context.Background()
	repo := new(MockGuildConfigRepository)
	svc := newTestSetupService(repo, new(MockAuditLogger), new(MockEventPublisher), 20*time.Millisecond)

	repo.On("Get", ctx, int64(1)).Return(models.NewGuildConfig(1), nil)

	sessionID, _, err := svc.Open(ctx, 1, 42)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	// A late save against the expired session fails with no side effects.
	_, err = svc.Commit(ctx, sessionID, 42)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSetupService_EditsRestartExpiryWindow(t *testing.T) {
	ctx := context.Background()
	repo := new(MockGuildConfigRepository)
	svc := newTestSetupService(repo, new(MockAuditLogger), new(MockEventPublisher), 60*time.Millisecond)

	repo.On("Get", ctx, int64(1)).Return(models.NewGuildConfig(1), nil)

	sessionID, _, err := svc.Open(ctx, 1, 42)
	require.NoError(t, err)

	// Keep editing past the original deadline; each edit restarts the
	// inactivity window.
	for n := 0; n < 4; n++ {
		time.Sleep(30 * time.Millisecond)
		require.NoError(t, svc.SetAllowedRoles(sessionID, 42, []int64{100}))
	}

	draft, err := svc.Draft(sessionID, 42)
	require.NoError(t, err)
	assert.Equal(t, []int64{100}, draft.AllowedRoleIDs)
}
