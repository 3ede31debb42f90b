package models

import "time"

// AuditAction identifies what a gated action did.
type AuditAction string

const (
	AuditActionReport      AuditAction = "report"
	AuditActionDeclare     AuditAction = "declare"
	AuditActionSetupChange AuditAction = "setup-change"
)

// AuditEntry is a record of a successful gated action, dispatched to the
// guild's log channel. Entries are rendered immediately and never stored;
// durability is the chat platform's message history.
type AuditEntry struct {
	GuildID       int64
	ActorID       int64
	Action        AuditAction
	TargetRoleIDs []int64
	Detail        string
	CreatedAt     time.Time
}
