// Package types provides the shared domain model used across fieldops packages.
// Types here are foundational data structures with no complex dependencies, so
// the store, codec, sync engine, and CLI can all import them without cycles.
package types

import (
	"strings"
	"time"
)

// =============================================================================
// ROLES
// =============================================================================

// Role identifies what a logged-in promoter is allowed to see and do.
type Role string

const (
	RoleAdmin         Role = "ADMIN"
	RoleFieldPromoter Role = "FIELD_PROMOTER"
)

// AdminScopeAll is the sentinel for "no owner restriction" when an admin
// filters the activity list.
const AdminScopeAll = "ALL"

// ParseRole normalizes free-form role input (CLI flags, config) to a Role.
// Anything unrecognized maps to the least-privileged role.
func ParseRole(s string) Role {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ADMIN":
		return RoleAdmin
	default:
		return RoleFieldPromoter
	}
}

// =============================================================================
// ACTIVITY STATUS
// =============================================================================

// Status is the lifecycle label of an activity. The engine does not constrain
// transitions; the advisory flow is Pendiente -> En Proceso -> {Completado, Cancelado}.
type Status string

const (
	StatusScheduled  Status = "Programado"
	StatusPending    Status = "Pendiente"
	StatusInProgress Status = "En Proceso"
	StatusCompleted  Status = "Completado"
	StatusCancelled  Status = "Cancelado"
)

// KnownStatuses lists every status value the dashboard understands.
var KnownStatuses = []Status{
	StatusScheduled,
	StatusPending,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
}

// Terminal reports whether the presentation layer should stop accepting
// free-text edits for an activity in this status. This is a soft lock: the
// sync engine itself never rejects a status write.
func (s Status) Terminal() bool {
	return s == StatusCompleted
}

// =============================================================================
// PROMOTER
// =============================================================================

// Location is the last place a promoter reported from.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label,omitempty"`
}

// Promoter is an identity record for a field staff member or administrator.
type Promoter struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Role           Role      `json:"role"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Online         bool      `json:"online"`
	LastConnection time.Time `json:"lastConnection,omitempty"`
	LastLocation   *Location `json:"lastLocation,omitempty"`
}

// =============================================================================
// ACTIVITY
// =============================================================================

// ObservationNote is one entry in an activity's append-only note trail.
type ObservationNote struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Activity is one scheduled or completed field engagement. PromoterID is the
// owning promoter; the remote store is authoritative for ID once the activity
// has been created there (locally minted ids survive only until the next
// refresh replaces them).
type Activity struct {
	ID           string            `json:"id"`
	PromoterID   string            `json:"promoterId"`
	AssignedTo   string            `json:"assignedTo,omitempty"`
	Community    string            `json:"community,omitempty"`
	Objective    string            `json:"objective"`
	Date         string            `json:"date"`
	Time         string            `json:"time,omitempty"`
	Status       Status            `json:"status"`
	Place        string            `json:"place,omitempty"`
	Proposals    string            `json:"proposals,omitempty"`
	Agreements   string            `json:"agreements,omitempty"`
	Observations string            `json:"observations,omitempty"`
	Referral     string            `json:"referral,omitempty"`
	Companions   string            `json:"companions,omitempty"`
	PhotoRef     string            `json:"photoRef,omitempty"`
	DriveLink    string            `json:"driveLink,omitempty"`
	Notes        []ObservationNote `json:"notes,omitempty"`
}

// =============================================================================
// NOTIFICATION
// =============================================================================

// NotificationType distinguishes informational announcements from warnings.
type NotificationType string

const (
	NotificationAnnouncement NotificationType = "announcement"
	NotificationWarning      NotificationType = "warning"
)

// Notification is an admin-to-field message. Recipient empty means broadcast.
// Notifications are never mutated after creation.
type Notification struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Recipient string           `json:"recipient,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// =============================================================================
// SESSION
// =============================================================================

// Session is the persisted (user, role) pair that lets a restart resume the
// same identity. A zero-value session means nobody is logged in.
type Session struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

// Active reports whether a user is logged in.
func (s Session) Active() bool {
	return s.UserID != ""
}
