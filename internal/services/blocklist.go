package services

import (
	"errors"

	"github.com/arborhq/arbor/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlockListService manages the (tree, user) pairs forbidden from requesting
// or holding access.
type BlockListService struct {
	db     *gorm.DB
	access *AccessService
	audit  AuditSink
}

func NewBlockListService(db *gorm.DB, access *AccessService, audit AuditSink) *BlockListService {
	return &BlockListService{db: db, access: access, audit: audit}
}

// IsBlocked reports whether the pair is on the block list.
func (s *BlockListService) IsBlocked(treeID, userID string) (bool, error) {
	return isBlocked(s.db, treeID, userID)
}

func isBlocked(db *gorm.DB, treeID, userID string) (bool, error) {
	var count int64
	err := db.Model(&models.BlockedUser{}).
		Where("tree_id = ? AND blocked_user_id = ?", treeID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// add inserts a block row, ignoring the conflict if the pair is already
// blocked. Only called from inside the review workflow's transaction.
func addBlock(db *gorm.DB, treeID, blockedUserID, blockedByUserID, reason string) error {
	block := models.BlockedUser{
		TreeID:          treeID,
		BlockedUserID:   blockedUserID,
		BlockedByUserID: blockedByUserID,
		Reason:          reason,
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&block).Error
}

// ListForTree returns a tree's block list. Admin only.
func (s *BlockListService) ListForTree(treeID, callerID string) ([]models.BlockedUser, error) {
	if err := s.access.RequireTreeAdmin(treeID, callerID); err != nil {
		return nil, err
	}
	var blocks []models.BlockedUser
	if err := s.db.Where("tree_id = ?", treeID).
		Order("created_at DESC").
		Find(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

// Remove lifts a block. This is an administrative action outside the review
// workflow; it appends a security audit entry.
func (s *BlockListService) Remove(treeID, blockedUserID, callerID string) error {
	if err := s.access.RequireTreeAdmin(treeID, callerID); err != nil {
		return err
	}

	var block models.BlockedUser
	err := s.db.Where("tree_id = ? AND blocked_user_id = ?", treeID, blockedUserID).
		First(&block).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.db.Delete(&block).Error; err != nil {
		return err
	}

	s.audit.Record(&models.PrivacyAuditLog{
		TreeID:     &treeID,
		UserID:     callerID,
		ActionType: models.AuditSecurity,
		TargetType: "blocked_user",
		TargetID:   blockedUserID,
		Details:    auditDetails(map[string]string{"action": "unblock"}),
	})

	return nil
}
