package services

import (
	"errors"

	"github.com/arborhq/arbor/internal/models"
	"gorm.io/gorm"
)

// AccessService is the authorization engine: it decides, for every
// (viewer, tree, person, field) tuple, whether data may be seen.
type AccessService struct {
	db *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db}
}

// AccessResult is the resolved standing of a viewer on a tree. A nil Level
// with IsBlocked=false means anonymous or no access.
type AccessResult struct {
	Level     *models.AccessLevel `json:"level"`
	IsOwner   bool                `json:"is_owner"`
	IsBlocked bool                `json:"is_blocked"`
}

// VisibleFields is the per-field outcome of a person visibility check.
type VisibleFields struct {
	FullProfile bool `json:"full_profile"`
	BirthDate   bool `json:"birth_date"`
	BirthPlace  bool `json:"birth_place"`
	DeathDate   bool `json:"death_date"`
	DeathPlace  bool `json:"death_place"`
	Photo       bool `json:"photo"`
	Notes       bool `json:"notes"`
}

type PersonVisibility struct {
	CanView bool          `json:"can_view"`
	Fields  VisibleFields `json:"visible_fields"`
}

// ResolveAccess determines a viewer's standing on a tree. An empty userID is
// an anonymous viewer. A block short-circuits every other source of access;
// otherwise the role registry (owner → admin, editor → editor) wins over a
// family connection grant.
func (s *AccessService) ResolveAccess(treeID, userID string) (*AccessResult, error) {
	if userID == "" {
		return &AccessResult{}, nil
	}

	var blocked int64
	if err := s.db.Model(&models.BlockedUser{}).
		Where("tree_id = ? AND blocked_user_id = ?", treeID, userID).
		Count(&blocked).Error; err != nil {
		return nil, err
	}
	if blocked > 0 {
		return &AccessResult{IsBlocked: true}, nil
	}

	var member models.TreeMember
	err := s.db.Where("tree_id = ? AND user_id = ?", treeID, userID).First(&member).Error
	if err == nil {
		switch member.Role {
		case models.RoleOwner:
			lvl := models.AccessAdmin
			return &AccessResult{Level: &lvl, IsOwner: true}, nil
		case models.RoleEditor:
			lvl := models.AccessEditor
			return &AccessResult{Level: &lvl}, nil
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var conn models.FamilyConnection
	err = s.db.Where("tree_id = ? AND user_id = ?", treeID, userID).First(&conn).Error
	if err == nil {
		lvl := conn.AccessLevel
		return &AccessResult{Level: &lvl}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return &AccessResult{}, nil
}

// RequireTreeManager returns nil only when the caller is the tree owner or
// holds an admin or editor level on it.
func (s *AccessService) RequireTreeManager(treeID, callerID string) error {
	if callerID == "" {
		return ErrUnauthenticated
	}
	access, err := s.ResolveAccess(treeID, callerID)
	if err != nil {
		return err
	}
	if access.IsBlocked || access.Level == nil {
		return ErrUnauthorized
	}
	switch *access.Level {
	case models.AccessAdmin, models.AccessEditor:
		return nil
	case models.AccessViewer, models.AccessFamily, models.AccessTrusted:
		return ErrUnauthorized
	}
	return ErrUnauthorized
}

// RequireTreeAdmin returns nil only for the tree owner or an admin-level
// grant holder.
func (s *AccessService) RequireTreeAdmin(treeID, callerID string) error {
	if callerID == "" {
		return ErrUnauthenticated
	}
	access, err := s.ResolveAccess(treeID, callerID)
	if err != nil {
		return err
	}
	if access.IsBlocked || access.Level == nil {
		return ErrUnauthorized
	}
	if access.IsOwner || *access.Level == models.AccessAdmin {
		return nil
	}
	return ErrUnauthorized
}

// CanViewTree reports whether a viewer may see a tree at all. A block denies
// even a public tree; otherwise public trees are visible to everyone and
// private trees require a non-nil access level.
func (s *AccessService) CanViewTree(treeID, userID string) (bool, error) {
	var tree models.Tree
	if err := s.db.First(&tree, "id = ?", treeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrNotFound
		}
		return false, err
	}

	access, err := s.ResolveAccess(treeID, userID)
	if err != nil {
		return false, err
	}
	if access.IsBlocked {
		return false, nil
	}
	if tree.IsPublic {
		return true, nil
	}
	return access.Level != nil, nil
}

// CanViewPerson computes whether a viewer may see a person and which fields
// are visible.
//
// The decision order: missing tree denies everything; a block denies
// everything; owner/admin/editor bypass all settings; then the effective
// visibility (member override, else the living/deceased tree default) is
// matched against the viewer's level; finally per-field overrides and, for
// anonymous viewers, the tree's show-to-public flags are applied.
func (s *AccessService) CanViewPerson(personID, userID string) (*PersonVisibility, error) {
	denied := &PersonVisibility{}

	var person models.Person
	if err := s.db.First(&person, "id = ?", personID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var tree models.Tree
	if err := s.db.First(&tree, "id = ?", person.TreeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return denied, nil
		}
		return nil, err
	}

	access, err := s.ResolveAccess(tree.ID, userID)
	if err != nil {
		return nil, err
	}
	if access.IsBlocked {
		return denied, nil
	}

	// Administrative roles never have data hidden from them.
	if access.Level != nil {
		switch *access.Level {
		case models.AccessAdmin, models.AccessEditor:
			return &PersonVisibility{
				CanView: true,
				Fields: VisibleFields{
					FullProfile: true,
					BirthDate:   true,
					BirthPlace:  true,
					DeathDate:   true,
					DeathPlace:  true,
					Photo:       true,
					Notes:       true,
				},
			}, nil
		case models.AccessViewer, models.AccessFamily, models.AccessTrusted:
		}
	}

	settings, err := s.treeSettings(tree.ID)
	if err != nil {
		return nil, err
	}
	override, err := s.memberOverride(person.ID)
	if err != nil {
		return nil, err
	}

	effective := settings.DeceasedMembersVisibility
	if person.IsLiving {
		effective = settings.LivingMembersVisibility
	}
	if override != nil && override.VisibilityLevel != nil {
		effective = *override.VisibilityLevel
	}

	if !canViewBasic(effective, access.Level) {
		return denied, nil
	}

	anonymous := access.Level == nil
	if anonymous && person.IsLiving && !settings.ShowLivingToPublic {
		return denied, nil
	}

	fields := VisibleFields{
		BirthDate:  fieldVisible(override, func(o *models.MemberPrivacySettings) models.Tristate { return o.ShowBirthDate }, anonymous, settings.ShowDatesToPublic),
		BirthPlace: fieldVisible(override, func(o *models.MemberPrivacySettings) models.Tristate { return o.ShowBirthPlace }, anonymous, settings.ShowLocationsToPublic),
		DeathDate:  fieldVisible(override, func(o *models.MemberPrivacySettings) models.Tristate { return o.ShowDeathDate }, anonymous, settings.ShowDatesToPublic),
		DeathPlace: fieldVisible(override, func(o *models.MemberPrivacySettings) models.Tristate { return o.ShowDeathPlace }, anonymous, settings.ShowLocationsToPublic),
		Photo:      fieldVisible(override, func(o *models.MemberPrivacySettings) models.Tristate { return o.ShowPhoto }, anonymous, settings.ShowPhotosToPublic),
		// No show-to-public flag exists for notes, so anonymous viewers
		// never see them.
		Notes: fieldVisible(override, func(o *models.MemberPrivacySettings) models.Tristate { return o.ShowNotes }, anonymous, false),
	}

	if access.Level != nil {
		switch *access.Level {
		case models.AccessFamily, models.AccessTrusted:
			fields.FullProfile = true
		case models.AccessViewer, models.AccessEditor, models.AccessAdmin:
		}
	}

	return &PersonVisibility{CanView: true, Fields: fields}, nil
}

// canViewBasic matches the effective visibility tier against the viewer's
// access level. A nil level only satisfies public.
func canViewBasic(effective models.VisibilityLevel, level *models.AccessLevel) bool {
	switch effective {
	case models.VisibilityPublic:
		return true
	case models.VisibilityExtended:
		if level == nil {
			return false
		}
		switch *level {
		case models.AccessViewer, models.AccessFamily, models.AccessTrusted,
			models.AccessEditor, models.AccessAdmin:
			return true
		}
		return false
	case models.VisibilityFamily:
		if level == nil {
			return false
		}
		switch *level {
		case models.AccessFamily, models.AccessTrusted,
			models.AccessEditor, models.AccessAdmin:
			return true
		case models.AccessViewer:
			return false
		}
		return false
	case models.VisibilityPrivate:
		return false
	}
	return false
}

// fieldVisible applies a member field override (defaulting to visible) and,
// for anonymous viewers, the tree's show-to-public flag for the field's
// category.
func fieldVisible(override *models.MemberPrivacySettings, pick func(*models.MemberPrivacySettings) models.Tristate, anonymous, publicFlag bool) bool {
	allowed := true
	if override != nil {
		allowed = pick(override).Bool(true)
	}
	if anonymous {
		allowed = allowed && publicFlag
	}
	return allowed
}

func (s *AccessService) treeSettings(treeID string) (*models.TreePrivacySettings, error) {
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

func (s *AccessService) memberOverride(personID string) (*models.MemberPrivacySettings, error) {
	var override models.MemberPrivacySettings
	err := s.db.Where("person_id = ?", personID).First(&override).Error
	if err == nil {
		return &override, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}
