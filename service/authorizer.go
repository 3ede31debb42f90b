package service

import (
	"slices"

	"aegis/models"
)

// DenyReason says why a gated command was rejected. Reasons are
// user-visible; they are never written to the audit log.
type DenyReason string

const (
	DenyNotProvisioned DenyReason = "not_provisioned"
	DenyExcluded       DenyReason = "excluded"
	DenyNoAllowedRoles DenyReason = "no_allowed_roles"
	DenyNotAllowed     DenyReason = "not_allowed"
)

// Message returns the user-facing text for a denial.
func (r DenyReason) Message() string {
	switch r {
	case DenyNotProvisioned:
		return "This server is not set up yet. Ask an admin to run `/setup`."
	case DenyExcluded:
		return "Your role is excluded from using this command."
	case DenyNoAllowedRoles:
		return "No allowed roles are configured yet. Ask an admin to run `/setup`."
	case DenyNotAllowed:
		return "You don't have a required role to use this command."
	default:
		return "You can't use this command."
	}
}

// DenyError carries a deny decision across an error return so callers
// can distinguish denials from operational failures with errors.As.
type DenyError struct {
	Reason DenyReason
}

func (e *DenyError) Error() string {
	return e.Reason.Message()
}

// Decision is the outcome of the authorization gate.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// Authorize gates a command invocation against the guild configuration.
// The rules run in a fixed order and the first match wins:
//
//  1. unprovisioned guild (no log channel) denies everything,
//  2. holding any excluded role denies, even if an allowed role is also
//     held (exclusion overrides allowance so a demoted role can be cut
//     off without first editing the allowed set),
//  3. an empty allowed set denies (fail closed),
//  4. holding any allowed role permits,
//  5. otherwise deny.
//
// The setup command itself never goes through this gate; it is gated by
// the Discord administrator permission in the bot layer.
func Authorize(cfg *models.GuildConfig, invokerRoles []int64) Decision {
	if !cfg.IsProvisioned() {
		return deny(DenyNotProvisioned)
	}
	if hasAnyRole(invokerRoles, cfg.ExcludedRoleIDs) {
		return deny(DenyExcluded)
	}
	if len(cfg.AllowedRoleIDs) == 0 {
		return deny(DenyNoAllowedRoles)
	}
	if hasAnyRole(invokerRoles, cfg.AllowedRoleIDs) {
		return allow()
	}
	return deny(DenyNotAllowed)
}

func hasAnyRole(held, wanted []int64) bool {
	for _, id := range held {
		if slices.Contains(wanted, id) {
			return true
		}
	}
	return false
}
