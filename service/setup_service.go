package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"aegis/events"
	"aegis/models"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
)

// DefaultSetupSessionTTL matches the panel timeout shown to the admin.
const DefaultSetupSessionTTL = 10 * time.Minute

// setupSession is one admin's in-progress draft. It is owned exclusively
// by that admin; every accessor checks ownership before touching it.
// Even a single admin's panel interactions arrive on separate gateway
// goroutines, so draft access goes through mu.
type setupSession struct {
	guildID int64
	adminID int64

	mu    sync.Mutex
	draft *models.GuildConfig
}

// setupService implements the SetupService interface
type setupService struct {
	repo        GuildConfigRepository
	auditLogger AuditLogger
	publisher   EventPublisher
	sessions    *gocache.Cache
	now         func() time.Time
}

// NewSetupService creates a new setup service with the given session TTL.
func NewSetupService(repo GuildConfigRepository, auditLogger AuditLogger, publisher EventPublisher, ttl time.Duration) SetupService {
	return &setupService{
		repo:        repo,
		auditLogger: auditLogger,
		publisher:   publisher,
		sessions:    gocache.New(ttl, ttl/2),
		now:         time.Now,
	}
}

// Open starts a session for the admin with a draft copied from the
// stored configuration.
func (s *setupService) Open(ctx context.Context, guildID, adminID int64) (string, *models.GuildConfig, error) {
	cfg, err := s.repo.Get(ctx, guildID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load guild config: %w", err)
	}

	sessionID := uuid.NewString()
	s.sessions.SetDefault(sessionID, &setupSession{
		guildID: guildID,
		adminID: adminID,
		draft:   cfg.Clone(),
	})

	log.WithFields(log.Fields{
		"guildID":   guildID,
		"adminID":   adminID,
		"sessionID": sessionID,
	}).Info("Setup session opened")

	return sessionID, cfg.Clone(), nil
}

// session fetches a live session and enforces ownership. Expired entries
// are already gone from the cache, so a stale late action simply fails.
func (s *setupService) session(sessionID string, actorID int64) (*setupSession, error) {
	v, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess := v.(*setupSession)
	if sess.adminID != actorID {
		return nil, ErrUnauthorized
	}
	return sess, nil
}

func (s *setupService) Draft(sessionID string, actorID int64) (*models.GuildConfig, error) {
	sess, err := s.session(sessionID, actorID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	draft := sess.draft.Clone()
	sess.mu.Unlock()
	return draft, nil
}

func (s *setupService) SetAllowedRoles(sessionID string, actorID int64, roleIDs []int64) error {
	return s.edit(sessionID, actorID, func(draft *models.GuildConfig) {
		draft.AllowedRoleIDs = dedupeRoles(roleIDs)
	})
}

func (s *setupService) SetExcludedRoles(sessionID string, actorID int64, roleIDs []int64) error {
	return s.edit(sessionID, actorID, func(draft *models.GuildConfig) {
		draft.ExcludedRoleIDs = dedupeRoles(roleIDs)
	})
}

func (s *setupService) SetAdmiralRole(sessionID string, actorID int64, roleID *int64) error {
	return s.edit(sessionID, actorID, func(draft *models.GuildConfig) {
		draft.AdmiralRoleID = roleID
	})
}

func (s *setupService) SetWarChannel(sessionID string, actorID int64, channelID *int64) error {
	return s.edit(sessionID, actorID, func(draft *models.GuildConfig) {
		draft.WarChannelID = channelID
	})
}

func (s *setupService) SetLogChannel(sessionID string, actorID int64, channelID *int64) error {
	return s.edit(sessionID, actorID, func(draft *models.GuildConfig) {
		draft.LogChannelID = channelID
	})
}

// edit applies one draft mutation under the session lock.
func (s *setupService) edit(sessionID string, actorID int64, mutate func(*models.GuildConfig)) error {
	sess, err := s.session(sessionID, actorID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	mutate(sess.draft)
	sess.mu.Unlock()
	s.touch(sessionID, sess)
	return nil
}

// Commit validates and persists the draft, then discards the session.
// The log channel requirement is enforced here, not at edit time, so an
// admin can fill the panel in any order.
func (s *setupService) Commit(ctx context.Context, sessionID string, actorID int64) (*models.GuildConfig, error) {
	sess, err := s.session(sessionID, actorID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.draft.LogChannelID == nil {
		sess.mu.Unlock()
		return nil, ErrLogChannelRequired
	}
	cfg := sess.draft.Clone()
	sess.mu.Unlock()

	cfg.UpdatedBy = actorID
	cfg.UpdatedAt = s.now().UTC()

	if err := s.repo.Upsert(ctx, cfg); err != nil {
		// Stored configuration is untouched; the session stays alive so
		// the admin can retry the save.
		return nil, fmt.Errorf("failed to save guild config: %w", err)
	}

	s.sessions.Delete(sessionID)

	s.publisher.Publish(events.ConfigCommittedEvent{
		GuildID:   cfg.GuildID,
		UpdatedBy: actorID,
	})

	entry := &models.AuditEntry{
		GuildID:   cfg.GuildID,
		ActorID:   actorID,
		Action:    models.AuditActionSetupChange,
		Detail:    "configuration updated",
		CreatedAt: cfg.UpdatedAt,
	}
	if err := s.auditLogger.Log(ctx, cfg, entry); err != nil {
		log.WithFields(log.Fields{
			"guildID": cfg.GuildID,
			"actorID": actorID,
		}).Warnf("Configuration saved but audit log failed: %v", err)
	}

	return cfg, nil
}

func (s *setupService) Cancel(sessionID string, actorID int64) error {
	if _, err := s.session(sessionID, actorID); err != nil {
		return err
	}
	s.sessions.Delete(sessionID)
	return nil
}

// touch re-sets the entry so the inactivity window restarts on each edit.
func (s *setupService) touch(sessionID string, sess *setupSession) {
	s.sessions.SetDefault(sessionID, sess)
}

// dedupeRoles copies the selection, dropping duplicates while keeping
// selection order.
func dedupeRoles(roleIDs []int64) []int64 {
	out := make([]int64, 0, len(roleIDs))
	for _, id := range roleIDs {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
