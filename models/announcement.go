package models

import "time"

// AnnouncementKind distinguishes the two gated workflows.
type AnnouncementKind string

const (
	AnnouncementKindViolation AnnouncementKind = "violation"
	AnnouncementKindWar       AnnouncementKind = "war"
)

// Announcement is the payload posted to a channel after a modal
// submission passes validation. It is transport-agnostic; the bot layer
// renders it into an embed with role pings.
type Announcement struct {
	Kind         AnnouncementKind
	GuildID      int64
	ActorID      int64
	TargetRoleID int64
	// OffenderID is set for violation reports only.
	OffenderID *int64
	// PingRoleIDs lists every role mentioned in the message content, in
	// ping order (target first, admiral second for war declarations).
	PingRoleIDs []int64
	Detail      string
	CreatedAt   time.Time
}
