package services

import (
	"errors"

	"github.com/arborhq/arbor/internal/models"
	"gorm.io/gorm"
)

// MemberPrivacyService manages per-person visibility overrides.
type MemberPrivacyService struct {
	db     *gorm.DB
	access *AccessService
	audit  AuditSink
}

func NewMemberPrivacyService(db *gorm.DB, access *AccessService, audit AuditSink) *MemberPrivacyService {
	return &MemberPrivacyService{db: db, access: access, audit: audit}
}

// MemberPrivacyPatch carries only explicitly supplied override fields.
// An absent field leaves the stored override untouched; a supplied tristate
// of "inherit" clears it. VisibilityLevel accepts the empty string to clear
// the level override back to inherit.
type MemberPrivacyPatch struct {
	VisibilityLevel    *models.VisibilityLevel `json:"visibility_level"`
	ShowBirthDate      *models.Tristate        `json:"show_birth_date"`
	ShowBirthPlace     *models.Tristate        `json:"show_birth_place"`
	ShowDeathDate      *models.Tristate        `json:"show_death_date"`
	ShowDeathPlace     *models.Tristate        `json:"show_death_place"`
	ShowPhoto          *models.Tristate        `json:"show_photo"`
	ShowNotes          *models.Tristate        `json:"show_notes"`
	ControlledByUserID *string                 `json:"controlled_by_user_id"`
}

// Get returns a person's override settings, or nil when none exist.
func (s *MemberPrivacyService) Get(personID string) (*models.MemberPrivacySettings, error) {
	var settings models.MemberPrivacySettings
	err := s.db.Where("person_id = ?", personID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

// Upsert creates or updates a person's override row. The caller must be the
// person's designated controller or a tree admin. Only supplied patch fields
// are written; tristates are stored exactly as given.
func (s *MemberPrivacyService) Upsert(personID, callerID string, patch *MemberPrivacyPatch) (*models.MemberPrivacySettings, error) {
	if callerID == "" {
		return nil, ErrUnauthenticated
	}

	var person models.Person
	if err := s.db.First(&person, "id = ?", personID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if patch.VisibilityLevel != nil && *patch.VisibilityLevel != "" && !patch.VisibilityLevel.Valid() {
		return nil, ErrInvalidInput
	}

	existing, err := s.Get(personID)
	if err != nil {
		return nil, err
	}

	isController := existing != nil && existing.ControlledByUserID == callerID
	if !isController {
		if err := s.access.RequireTreeAdmin(person.TreeID, callerID); err != nil {
			return nil, err
		}
	}

	var settings *models.MemberPrivacySettings
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var row models.MemberPrivacySettings
		err := tx.Where("person_id = ?", personID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			settings = &models.MemberPrivacySettings{
				PersonID: personID,
				TreeID:   person.TreeID,
			}
		} else if err != nil {
			return err
		} else {
			settings = &row
		}

		applyMemberPrivacyPatch(settings, patch)
		return tx.Save(settings).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(&models.PrivacyAuditLog{
		TreeID:     &person.TreeID,
		UserID:     callerID,
		ActionType: models.AuditPrivacyChange,
		TargetType: "member_privacy_settings",
		TargetID:   personID,
		Details:    auditDetails(patch),
	})

	return settings, nil
}

func applyMemberPrivacyPatch(settings *models.MemberPrivacySettings, patch *MemberPrivacyPatch) {
	if patch.VisibilityLevel != nil {
		if *patch.VisibilityLevel == "" {
			settings.VisibilityLevel = nil
		} else {
			lvl := *patch.VisibilityLevel
			settings.VisibilityLevel = &lvl
		}
	}
	if patch.ShowBirthDate != nil {
		settings.ShowBirthDate = *patch.ShowBirthDate
	}
	if patch.ShowBirthPlace != nil {
		settings.ShowBirthPlace = *patch.ShowBirthPlace
	}
	if patch.ShowDeathDate != nil {
		settings.ShowDeathDate = *patch.ShowDeathDate
	}
	if patch.ShowDeathPlace != nil {
		settings.ShowDeathPlace = *patch.ShowDeathPlace
	}
	if patch.ShowPhoto != nil {
		settings.ShowPhoto = *patch.ShowPhoto
	}
	if patch.ShowNotes != nil {
		settings.ShowNotes = *patch.ShowNotes
	}
	if patch.ControlledByUserID != nil {
		settings.ControlledByUserID = *patch.ControlledByUserID
	}
}
