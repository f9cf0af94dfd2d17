package services

import (
	"errors"

	"github.com/arborhq/arbor/internal/models"
	"gorm.io/gorm"
)

// TreePrivacyService manages the tree-level privacy configuration.
type TreePrivacyService struct {
	db     *gorm.DB
	access *AccessService
	audit  AuditSink
}

func NewTreePrivacyService(db *gorm.DB, access *AccessService, audit AuditSink) *TreePrivacyService {
	return &TreePrivacyService{db: db, access: access, audit: audit}
}

// TreePrivacyPatch carries only the fields the caller wants to change.
type TreePrivacyPatch struct {
	DefaultVisibility             *models.VisibilityLevel `json:"default_visibility"`
	LivingMembersVisibility       *models.VisibilityLevel `json:"living_members_visibility"`
	DeceasedMembersVisibility     *models.VisibilityLevel `json:"deceased_members_visibility"`
	ShowLivingToPublic            *bool                   `json:"show_living_to_public"`
	ShowPhotosToPublic            *bool                   `json:"show_photos_to_public"`
	ShowDatesToPublic             *bool                   `json:"show_dates_to_public"`
	ShowLocationsToPublic         *bool                   `json:"show_locations_to_public"`
	AllowDiscovery                *bool                   `json:"allow_discovery"`
	RequireApprovalForConnections *bool                   `json:"require_approval_for_connections"`
}

func (p *TreePrivacyPatch) validate() error {
	for _, v := range []*models.VisibilityLevel{p.DefaultVisibility, p.LivingMembersVisibility, p.DeceasedMembersVisibility} {
		if v != nil && !v.Valid() {
			return ErrInvalidInput
		}
	}
	return nil
}

// Get returns a tree's privacy settings, or the defaults when no row has
// been written yet. Never mutates.
func (s *TreePrivacyService) Get(treeID string) (*models.TreePrivacySettings, error) {
	var tree models.Tree
	if err := s.db.First(&tree, "id = ?", treeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var settings models.TreePrivacySettings
	err := s.db.Where("tree_id = ?", treeID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultTreePrivacySettings(treeID), nil
	}
	return nil, err
}

// Update applies a patch to a tree's settings, creating the row from
// defaults if it does not exist yet. Admin/editor only. Appends one
// privacy_change audit entry with the applied patch.
func (s *TreePrivacyService) Update(treeID, callerID string, patch *TreePrivacyPatch) (*models.TreePrivacySettings, error) {
	if err := s.access.RequireTreeManager(treeID, callerID); err != nil {
		return nil, err
	}
	if err := patch.validate(); err != nil {
		return nil, err
	}

	var settings *models.TreePrivacySettings
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var row models.TreePrivacySettings
		err := tx.Where("tree_id = ?", treeID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			settings = models.DefaultTreePrivacySettings(treeID)
		} else if err != nil {
			return err
		} else {
			settings = &row
		}

		applyTreePrivacyPatch(settings, patch)
		return tx.Save(settings).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(&models.PrivacyAuditLog{
		TreeID:     &treeID,
		UserID:     callerID,
		ActionType: models.AuditPrivacyChange,
		TargetType: "tree_privacy_settings",
		TargetID:   settings.ID,
		Details:    auditDetails(patch),
	})

	return settings, nil
}

func applyTreePrivacyPatch(settings *models.TreePrivacySettings, patch *TreePrivacyPatch) {
	if patch.DefaultVisibility != nil {
		settings.DefaultVisibility = *patch.DefaultVisibility
	}
	if patch.LivingMembersVisibility != nil {
		settings.LivingMembersVisibility = *patch.LivingMembersVisibility
	}
	if patch.DeceasedMembersVisibility != nil {
		settings.DeceasedMembersVisibility = *patch.DeceasedMembersVisibility
	}
	if patch.ShowLivingToPublic != nil {
		settings.ShowLivingToPublic = *patch.ShowLivingToPublic
	}
	if patch.ShowPhotosToPublic != nil {
		settings.ShowPhotosToPublic = *patch.ShowPhotosToPublic
	}
	if patch.ShowDatesToPublic != nil {
		settings.ShowDatesToPublic = *patch.ShowDatesToPublic
	}
	if patch.ShowLocationsToPublic != nil {
		settings.ShowLocationsToPublic = *patch.ShowLocationsToPublic
	}
	if patch.AllowDiscovery != nil {
		settings.AllowDiscovery = *patch.AllowDiscovery
	}
	if patch.RequireApprovalForConnections != nil {
		settings.RequireApprovalForConnections = *patch.RequireApprovalForConnections
	}
}
