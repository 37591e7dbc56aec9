package dbs

import (
	"strings"

	"github.com/surrealdb/qcore/val"
)

// Permission is one of the scopes OPTION (and statement-internal checks)
// gate on, per spec.md §4.6 ("Edit, Option, Db").
type Permission uint8

const (
	PermEdit Permission = iota
	PermOption
	PermDb
)

// Notification is one live-query event, produced during a statement's
// compute and flushed to the session's sender only after the enclosing
// tx's successful commit (drained silently on cancel).
type Notification struct {
	LiveID string
	Action string // CREATE, UPDATE, DELETE
	Result val.Value
}

// Session carries the identity and variable bindings that persist across
// the statement sequence of one execute call: NS/DB selection, the IAM
// subject, and the bound session variables later SET/LET statements and
// expression evaluation read from.
type Session struct {
	NS   string
	DB   string
	IAM  Subject
	Vars map[string]val.Value
}

// Subject is the authenticated principal an execute call runs as.
// Anonymous sessions (IsAnonymous true) fail any permissioned operation
// when AuthEnabled is set on the Options.
type Subject struct {
	ID          string
	IsAnonymous bool
	Scopes      map[Permission]bool
}

// HasPermission reports whether the subject holds p, anonymous subjects
// always failing regardless of Scopes content.
func (s Subject) HasPermission(p Permission) bool {
	if s.IsAnonymous {
		return false
	}
	return s.Scopes[p]
}

// NewSession returns a Session with an empty variable binding map.
func NewSession(iam Subject) *Session {
	return &Session{IAM: iam, Vars: map[string]val.Value{}}
}

// Options carries per-execute configuration: whether auth is enforced,
// import/force modes toggled by OPTION, and the notification sender slot
// live query results are flushed to.
type Options struct {
	AuthEnabled bool
	ImportMode  bool
	ForceAll    bool
	Notify      func(Notification)
}

// applyOption implements the OPTION{name, bool} dispatch branch: uppercase
// the name, gate on permission, then toggle the matching mode.
func (o *Options) applyOption(sess *Session, name string, value bool) error {
	if o.AuthEnabled && !sess.IAM.HasPermission(PermOption) {
		return ErrNotEnoughPermissions
	}
	switch strings.ToUpper(name) {
	case "IMPORT":
		o.ImportMode = value
	case "FORCE":
		o.ForceAll = value
	}
	return nil
}
