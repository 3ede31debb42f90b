package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"aegis/events"
	"aegis/models"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
)

// DefaultModalWindow matches the lifetime of the detail modal shown to
// the invoker.
const DefaultModalWindow = 5 * time.Minute

// pendingInvocation is the context held between the invoke and submit
// phases, keyed by the correlation token. The config snapshot taken at
// invoke time is what the submission acts on.
type pendingInvocation struct {
	params BeginParams
	cfg    *models.GuildConfig
}

// announcementService implements the AnnouncementService interface
type announcementService struct {
	repo        GuildConfigRepository
	messenger   Messenger
	auditLogger AuditLogger
	publisher   EventPublisher
	// mu serializes token take and discard. The cache alone cannot make
	// lookup-then-delete atomic, and gateway events arrive on separate
	// goroutines.
	mu      sync.Mutex
	pending *gocache.Cache
	now     func() time.Time
}

// NewAnnouncementService creates a new announcement service. The window
// bounds how long a modal may stay open before its token expires.
func NewAnnouncementService(repo GuildConfigRepository, messenger Messenger, auditLogger AuditLogger, publisher EventPublisher, window time.Duration) AnnouncementService {
	return &announcementService{
		repo:        repo,
		messenger:   messenger,
		auditLogger: auditLogger,
		publisher:   publisher,
		pending:     gocache.New(window, window/2),
		now:         time.Now,
	}
}

// Begin gates the invocation and registers a correlation token for it.
func (s *announcementService) Begin(ctx context.Context, params BeginParams) (string, error) {
	if params.TargetRoleID == 0 {
		return "", ErrTargetRoleRequired
	}

	cfg, err := s.repo.Get(ctx, params.GuildID)
	if err != nil {
		return "", fmt.Errorf("failed to load guild config: %w", err)
	}

	if decision := Authorize(cfg, params.InvokerRoles); !decision.Allowed {
		return "", &DenyError{Reason: decision.Reason}
	}

	token := uuid.NewString()
	s.pending.SetDefault(token, &pendingInvocation{params: params, cfg: cfg})

	log.WithFields(log.Fields{
		"guildID":   params.GuildID,
		"invokerID": params.InvokerID,
		"kind":      params.Kind,
	}).Info("Announcement invocation accepted, awaiting modal submission")

	return token, nil
}

// Submit consumes the token and runs the post-and-log sequence. The
// token is removed before any side effect, so duplicate delivery of the
// same submission event produces a second post never.
func (s *announcementService) Submit(ctx context.Context, token string, actorID int64, detail string) (*SubmitResult, error) {
	inv, err := s.takePending(token, actorID, detail)
	if err != nil {
		return nil, err
	}

	ann := s.buildAnnouncement(inv, detail)

	primaryID, err := s.messenger.PostAnnouncement(ctx, inv.params.ChannelID, ann)
	if err != nil {
		return nil, fmt.Errorf("failed to post announcement: %w", err)
	}

	result := &SubmitResult{
		Announcement:     ann,
		PrimaryChannelID: inv.params.ChannelID,
		PrimaryMessageID: primaryID,
	}

	// War declarations mirror to the configured war channel. Best
	// effort: the primary post stands even if the mirror fails.
	if ann.Kind == models.AnnouncementKindWar && inv.cfg.WarChannelID != nil {
		result.MirrorChannelID = inv.cfg.WarChannelID
		mirrorID, mirrorErr := s.messenger.PostAnnouncement(ctx, *inv.cfg.WarChannelID, ann)
		if mirrorErr != nil {
			result.MirrorErr = mirrorErr
			log.WithFields(log.Fields{
				"guildID":      inv.params.GuildID,
				"warChannelID": *inv.cfg.WarChannelID,
			}).Warnf("Failed to mirror war declaration: %v", mirrorErr)
		} else {
			result.MirrorMessageID = &mirrorID
		}
	}

	entry := &models.AuditEntry{
		GuildID:       inv.params.GuildID,
		ActorID:       actorID,
		Action:        auditAction(ann.Kind),
		TargetRoleIDs: ann.PingRoleIDs,
		Detail:        detail,
		CreatedAt:     ann.CreatedAt,
	}
	if auditErr := s.auditLogger.Log(ctx, inv.cfg, entry); auditErr != nil {
		result.AuditErr = auditErr
		log.WithFields(log.Fields{
			"guildID": inv.params.GuildID,
			"actorID": actorID,
		}).Warnf("Announcement posted but audit log failed: %v", auditErr)
	}

	s.publisher.Publish(events.AnnouncementPostedEvent{
		GuildID:      inv.params.GuildID,
		Kind:         string(ann.Kind),
		ActorID:      actorID,
		TargetRoleID: inv.params.TargetRoleID,
		ChannelID:    inv.params.ChannelID,
		MessageID:    primaryID,
		Mirrored:     result.MirrorMessageID != nil,
	})

	return result, nil
}

// Discard drops a pending token with no side effects.
func (s *announcementService) Discard(token string) {
	s.mu.Lock()
	s.pending.Delete(token)
	s.mu.Unlock()
}

// takePending validates and consumes the token in one locked step, so
// duplicate delivery of the same submission takes it exactly once and
// the loser resolves to ErrTokenNotFound.
func (s *announcementService) takePending(token string, actorID int64, detail string) (*pendingInvocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.pending.Get(token)
	if !ok {
		return nil, ErrTokenNotFound
	}
	inv := v.(*pendingInvocation)
	if inv.params.InvokerID != actorID {
		return nil, ErrTokenNotFound
	}

	if strings.TrimSpace(detail) == "" {
		// Token stays live so the invoker can reopen the modal and retry
		// within the window.
		return nil, ErrDetailRequired
	}

	s.pending.Delete(token)
	return inv, nil
}

func (s *announcementService) buildAnnouncement(inv *pendingInvocation, detail string) *models.Announcement {
	pings := []int64{inv.params.TargetRoleID}
	if inv.params.Kind == models.AnnouncementKindWar && inv.cfg.AdmiralRoleID != nil {
		pings = append(pings, *inv.cfg.AdmiralRoleID)
	}

	return &models.Announcement{
		Kind:         inv.params.Kind,
		GuildID:      inv.params.GuildID,
		ActorID:      inv.params.InvokerID,
		TargetRoleID: inv.params.TargetRoleID,
		OffenderID:   inv.params.OffenderID,
		PingRoleIDs:  pings,
		Detail:       detail,
		CreatedAt:    s.now().UTC(),
	}
}

func auditAction(kind models.AnnouncementKind) models.AuditAction {
	if kind == models.AnnouncementKindWar {
		return models.AuditActionDeclare
	}
	return models.AuditActionReport
}
