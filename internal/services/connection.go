package services

import (
	"errors"
	"time"

	"github.com/arborhq/arbor/internal/models"
	"gorm.io/gorm"
)

// ConnectionService is the access grant registry: realized, durable grants
// on a tree.
type ConnectionService struct {
	db     *gorm.DB
	access *AccessService
	audit  AuditSink
}

func NewConnectionService(db *gorm.DB, access *AccessService, audit AuditSink) *ConnectionService {
	return &ConnectionService{db: db, access: access, audit: audit}
}

// ListForTree returns a tree's grants, highest access level first, then
// oldest first. Admin/editor only.
func (s *ConnectionService) ListForTree(treeID, callerID string) ([]models.FamilyConnection, error) {
	if err := s.access.RequireTreeManager(treeID, callerID); err != nil {
		return nil, err
	}

	var conns []models.FamilyConnection
	err := s.db.Where("tree_id = ?", treeID).
		Order(`CASE access_level
			WHEN 'admin' THEN 5
			WHEN 'editor' THEN 4
			WHEN 'trusted' THEN 3
			WHEN 'family' THEN 2
			ELSE 1 END DESC, created_at ASC`).
		Find(&conns).Error
	if err != nil {
		return nil, err
	}
	return conns, nil
}

type InviteInput struct {
	Email            string              `json:"email"`
	AccessLevel      *models.AccessLevel `json:"access_level"`
	LinkedPersonID   *string             `json:"linked_person_id"`
	RelationshipType string              `json:"relationship_type"`
}

// InviteDirect grants access to a registered user without a request. The
// grant is created verified, with no originating request. Admin/editor only.
func (s *ConnectionService) InviteDirect(treeID, callerID string, input *InviteInput) (*models.FamilyConnection, error) {
	if err := s.access.RequireTreeManager(treeID, callerID); err != nil {
		return nil, err
	}
	if input.AccessLevel != nil && !input.AccessLevel.Valid() {
		return nil, ErrInvalidInput
	}

	var user models.User
	if err := s.db.Where("email = ?", input.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	level := models.AccessViewer
	if input.AccessLevel != nil {
		level = *input.AccessLevel
	}

	now := time.Now().Unix()
	conn := &models.FamilyConnection{
		UserID:           user.ID,
		TreeID:           treeID,
		LinkedPersonID:   input.LinkedPersonID,
		RelationshipType: input.RelationshipType,
		AccessLevel:      level,
		IsVerified:       true,
		VerifiedBy:       &callerID,
		VerifiedAt:       &now,
		InvitedByUserID:  callerID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		blocked, err := isBlocked(tx, treeID, user.ID)
		if err != nil {
			return err
		}
		if blocked {
			return ErrBlocked
		}

		var count int64
		if err := tx.Model(&models.FamilyConnection{}).
			Where("tree_id = ? AND user_id = ?", treeID, user.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyConnected
		}

		return tx.Create(conn).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(&models.PrivacyAuditLog{
		TreeID:     &treeID,
		UserID:     callerID,
		ActionType: models.AuditApproval,
		TargetType: "family_connection",
		TargetID:   conn.ID,
		Details:    auditDetails(map[string]string{"invited_user_id": user.ID, "access_level": string(level)}),
	})

	return conn, nil
}

type ConnectionPatch struct {
	AccessLevel      *models.AccessLevel `json:"access_level"`
	LinkedPersonID   *string             `json:"linked_person_id"`
	RelationshipType *string             `json:"relationship_type"`
	IsVerified       *bool               `json:"is_verified"`
}

// Update changes a grant's level, linked person, relationship, or marks it
// verified. Verification only moves false to true; a revoke attempt fails.
// Admin/editor only.
func (s *ConnectionService) Update(connectionID, callerID string, patch *ConnectionPatch) (*models.FamilyConnection, error) {
	if patch.AccessLevel != nil && !patch.AccessLevel.Valid() {
		return nil, ErrInvalidInput
	}

	var conn models.FamilyConnection
	if err := s.db.First(&conn, "id = ?", connectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.access.RequireTreeManager(conn.TreeID, callerID); err != nil {
		return nil, err
	}

	if patch.IsVerified != nil && !*patch.IsVerified && conn.IsVerified {
		return nil, ErrInvalidState
	}

	if patch.AccessLevel != nil {
		conn.AccessLevel = *patch.AccessLevel
	}
	if patch.LinkedPersonID != nil {
		conn.LinkedPersonID = patch.LinkedPersonID
	}
	if patch.RelationshipType != nil {
		conn.RelationshipType = *patch.RelationshipType
	}
	if patch.IsVerified != nil && *patch.IsVerified && !conn.IsVerified {
		now := time.Now().Unix()
		conn.IsVerified = true
		conn.VerifiedBy = &callerID
		conn.VerifiedAt = &now
	}

	if err := s.db.Save(&conn).Error; err != nil {
		return nil, err
	}

	s.audit.Record(&models.PrivacyAuditLog{
		TreeID:     &conn.TreeID,
		UserID:     callerID,
		ActionType: models.AuditPrivacyChange,
		TargetType: "family_connection",
		TargetID:   conn.ID,
		Details:    auditDetails(patch),
	})

	return &conn, nil
}

// Remove deletes a grant. Allowed for a tree admin/editor or for the grant
// holder removing themself.
func (s *ConnectionService) Remove(connectionID, callerID string) error {
	if callerID == "" {
		return ErrUnauthenticated
	}

	var conn models.FamilyConnection
	if err := s.db.First(&conn, "id = ?", connectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if conn.UserID != callerID {
		if err := s.access.RequireTreeManager(conn.TreeID, callerID); err != nil {
			return err
		}
	}

	if err := s.db.Delete(&conn).Error; err != nil {
		return err
	}

	s.audit.Record(&models.PrivacyAuditLog{
		TreeID:     &conn.TreeID,
		UserID:     callerID,
		ActionType: models.AuditPrivacyChange,
		TargetType: "family_connection",
		TargetID:   conn.ID,
		Details:    auditDetails(map[string]string{"action": "remove", "grant_user_id": conn.UserID}),
	})

	return nil
}
