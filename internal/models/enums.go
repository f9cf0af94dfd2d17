package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// VisibilityLevel is the ordered audience tier for a tree or person.
// Each wider level is a superset of the narrower audiences.
type VisibilityLevel string

const (
	VisibilityPrivate  VisibilityLevel = "private"
	VisibilityFamily   VisibilityLevel = "family"
	VisibilityExtended VisibilityLevel = "extended"
	VisibilityPublic   VisibilityLevel = "public"
)

func (v VisibilityLevel) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityFamily, VisibilityExtended, VisibilityPublic:
		return true
	}
	return false
}

// AccessLevel is the ordered grant tier for an authenticated user on a tree.
// Higher levels subsume lower ones for read purposes.
type AccessLevel string

const (
	AccessViewer  AccessLevel = "viewer"
	AccessFamily  AccessLevel = "family"
	AccessTrusted AccessLevel = "trusted"
	AccessEditor  AccessLevel = "editor"
	AccessAdmin   AccessLevel = "admin"
)

func (a AccessLevel) Valid() bool {
	switch a {
	case AccessViewer, AccessFamily, AccessTrusted, AccessEditor, AccessAdmin:
		return true
	}
	return false
}

// Rank returns the ordering position of the level, 0 for unknown values.
func (a AccessLevel) Rank() int {
	switch a {
	case AccessViewer:
		return 1
	case AccessFamily:
		return 2
	case AccessTrusted:
		return 3
	case AccessEditor:
		return 4
	case AccessAdmin:
		return 5
	}
	return 0
}

// TreeRole is a collaborator role from the role registry (tree_members).
type TreeRole string

const (
	RoleOwner  TreeRole = "owner"
	RoleEditor TreeRole = "editor"
)

// RequestStatus is the state of a connection request.
// pending is the only non-terminal state.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
	StatusBlocked  RequestStatus = "blocked"
)

func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusBlocked
}

// AuditAction is the action type of a privacy audit log entry.
type AuditAction string

const (
	AuditPrivacyChange AuditAction = "privacy_change"
	AuditAccessRequest AuditAction = "access_request"
	AuditApproval      AuditAction = "approval"
	AuditRejection     AuditAction = "rejection"
	AuditSecurity      AuditAction = "security"
)

// Tristate is a per-field visibility override: inherit the tree default,
// explicitly enabled, or explicitly disabled. It is stored as a nullable
// boolean column (NULL = inherit) but is never exposed as a raw *bool,
// so callers cannot misread "inherit" as "disabled".
type Tristate int

const (
	TristateInherit Tristate = iota
	TristateEnabled
	TristateDisabled
)

// Bool resolves the tristate against a default used when inheriting.
func (t Tristate) Bool(inherited bool) bool {
	switch t {
	case TristateEnabled:
		return true
	case TristateDisabled:
		return false
	}
	return inherited
}

// Scan implements sql.Scanner. NULL maps to inherit.
func (t *Tristate) Scan(value interface{}) error {
	if value == nil {
		*t = TristateInherit
		return nil
	}
	switch v := value.(type) {
	case bool:
		if v {
			*t = TristateEnabled
		} else {
			*t = TristateDisabled
		}
	case int64:
		if v != 0 {
			*t = TristateEnabled
		} else {
			*t = TristateDisabled
		}
	default:
		return fmt.Errorf("cannot scan %T into Tristate", value)
	}
	return nil
}

// Value implements driver.Valuer. Inherit is stored as NULL.
func (t Tristate) Value() (driver.Value, error) {
	switch t {
	case TristateEnabled:
		return true, nil
	case TristateDisabled:
		return false, nil
	}
	return nil, nil
}

func (t Tristate) String() string {
	switch t {
	case TristateEnabled:
		return "enabled"
	case TristateDisabled:
		return "disabled"
	}
	return "inherit"
}

// MarshalJSON emits the string tag so API consumers see an explicit
// three-valued field instead of a nullable boolean.
func (t Tristate) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts the string tags as well as plain booleans and null.
func (t *Tristate) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*t = TristateInherit
	case bool:
		if v {
			*t = TristateEnabled
		} else {
			*t = TristateDisabled
		}
	case string:
		switch v {
		case "inherit":
			*t = TristateInherit
		case "enabled":
			*t = TristateEnabled
		case "disabled":
			*t = TristateDisabled
		default:
			return fmt.Errorf("invalid tristate value %q", v)
		}
	default:
		return fmt.Errorf("invalid tristate value %v", raw)
	}
	return nil
}
