package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TreePrivacySettings holds the tree-level privacy configuration. One row
// per tree, created lazily with defaults when first written.
type TreePrivacySettings struct {
	ID                        string          `gorm:"primaryKey;size:36" json:"id"`
	TreeID                    string          `gorm:"size:36;uniqueIndex;not null" json:"tree_id"`
	DefaultVisibility         VisibilityLevel `gorm:"size:20;default:family" json:"default_visibility"`
	LivingMembersVisibility   VisibilityLevel `gorm:"size:20;default:family" json:"living_members_visibility"`
	DeceasedMembersVisibility VisibilityLevel `gorm:"size:20;default:extended" json:"deceased_members_visibility"`
	ShowLivingToPublic        bool            `gorm:"default:false" json:"show_living_to_public"`
	ShowPhotosToPublic        bool            `gorm:"default:false" json:"show_photos_to_public"`
	ShowDatesToPublic         bool            `gorm:"default:true" json:"show_dates_to_public"`
	ShowLocationsToPublic     bool            `gorm:"default:true" json:"show_locations_to_public"`
	AllowDiscovery            bool            `gorm:"default:true" json:"allow_discovery"`
	RequireApprovalForConnections bool        `gorm:"default:true" json:"require_approval_for_connections"`
	CreatedAt                 int64           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                 int64           `gorm:"autoUpdateTime" json:"updated_at"`
}

// DefaultTreePrivacySettings returns the settings applied when a tree has
// no stored row yet.
func DefaultTreePrivacySettings(treeID string) *TreePrivacySettings {
	return &TreePrivacySettings{
		TreeID:                        treeID,
		DefaultVisibility:             VisibilityFamily,
		LivingMembersVisibility:       VisibilityFamily,
		DeceasedMembersVisibility:     VisibilityExtended,
		ShowLivingToPublic:            false,
		ShowPhotosToPublic:            false,
		ShowDatesToPublic:             true,
		ShowLocationsToPublic:         true,
		AllowDiscovery:                true,
		RequireApprovalForConnections: true,
	}
}

// MemberPrivacySettings is the per-person visibility override. At most one
// row per person. A nil VisibilityLevel and inherit tristates mean the tree
// default applies.
type MemberPrivacySettings struct {
	ID                 string           `gorm:"primaryKey;size:36" json:"id"`
	PersonID           string           `gorm:"size:36;uniqueIndex;not null" json:"person_id"`
	TreeID             string           `gorm:"size:36;index;not null" json:"tree_id"`
	VisibilityLevel    *VisibilityLevel `gorm:"size:20" json:"visibility_level"`
	ShowBirthDate      Tristate         `gorm:"type:boolean" json:"show_birth_date"`
	ShowBirthPlace     Tristate         `gorm:"type:boolean" json:"show_birth_place"`
	ShowDeathDate      Tristate         `gorm:"type:boolean" json:"show_death_date"`
	ShowDeathPlace     Tristate         `gorm:"type:boolean" json:"show_death_place"`
	ShowPhoto          Tristate         `gorm:"type:boolean" json:"show_photo"`
	ShowNotes          Tristate         `gorm:"type:boolean" json:"show_notes"`
	ControlledByUserID string           `gorm:"size:36;index" json:"controlled_by_user_id"`
	CreatedAt          int64            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          int64            `gorm:"autoUpdateTime" json:"updated_at"`
}

// PrivacyAuditLog is an append-only record of every privacy-relevant
// mutation. Rows are never updated or deleted.
type PrivacyAuditLog struct {
	ID         string      `gorm:"primaryKey;size:36" json:"id"`
	TreeID     *string     `gorm:"size:36;index" json:"tree_id"`
	UserID     string      `gorm:"size:36;index;not null" json:"user_id"`
	ActionType AuditAction `gorm:"size:30;index;not null" json:"action_type"`
	TargetType string      `gorm:"size:50" json:"target_type"`
	TargetID   string      `gorm:"size:36" json:"target_id"`
	Details    string      `gorm:"type:text" json:"details"` // opaque JSON
	CreatedAt  int64       `gorm:"autoCreateTime;index" json:"created_at"`
}

func (TreePrivacySettings) TableName() string   { return "tree_privacy_settings" }
func (MemberPrivacySettings) TableName() string { return "member_privacy_settings" }
func (PrivacyAuditLog) TableName() string       { return "privacy_audit_log" }

func (s *TreePrivacySettings) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (s *MemberPrivacySettings) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (e *PrivacyAuditLog) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
