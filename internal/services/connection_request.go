package services

import (
	"errors"
	"time"

	"github.com/arborhq/arbor/internal/models"
	"gorm.io/gorm"
)

// ConnectionRequestService runs the workflow by which outside users ask for
// access to a tree: pending → approved | rejected | blocked, all terminal.
type ConnectionRequestService struct {
	db     *gorm.DB
	access *AccessService
	audit  AuditSink
}

func NewConnectionRequestService(db *gorm.DB, access *AccessService, audit AuditSink) *ConnectionRequestService {
	return &ConnectionRequestService{db: db, access: access, audit: audit}
}

type CreateRequestInput struct {
	ClaimedRelationship string  `json:"claimed_relationship"`
	ClaimedPersonID     *string `json:"claimed_person_id"`
	Message             string  `json:"message"`
}

// Create opens a pending request. The blocked, already-connected and
// duplicate checks run in the same transaction as the insert so concurrent
// duplicate calls cannot both succeed.
func (s *ConnectionRequestService) Create(requesterID, treeID string, input *CreateRequestInput) (*models.ConnectionRequest, error) {
	if requesterID == "" {
		return nil, ErrUnauthenticated
	}

	var tree models.Tree
	if err := s.db.First(&tree, "id = ?", treeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	request := &models.ConnectionRequest{
		RequesterUserID:     requesterID,
		TreeID:              treeID,
		ClaimedRelationship: input.ClaimedRelationship,
		ClaimedPersonID:     input.ClaimedPersonID,
		Message:             input.Message,
		Status:              models.StatusPending,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		blocked, err := isBlocked(tx, treeID, requesterID)
		if err != nil {
			return err
		}
		if blocked {
			return ErrBlocked
		}

		var connCount int64
		if err := tx.Model(&models.FamilyConnection{}).
			Where("tree_id = ? AND user_id = ?", treeID, requesterID).
			Count(&connCount).Error; err != nil {
			return err
		}
		if connCount > 0 {
			return ErrAlreadyConnected
		}

		var openCount int64
		if err := tx.Model(&models.ConnectionRequest{}).
			Where("tree_id = ? AND requester_user_id = ? AND status != ?",
				treeID, requesterID, models.StatusRejected).
			Count(&openCount).Error; err != nil {
			return err
		}
		if openCount > 0 {
			return ErrDuplicateRequest
		}

		return tx.Create(request).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(&models.PrivacyAuditLog{
		TreeID:     &treeID,
		UserID:     requesterID,
		ActionType: models.AuditAccessRequest,
		TargetType: "connection_request",
		TargetID:   request.ID,
		Details:    auditDetails(map[string]string{"claimed_relationship": input.ClaimedRelationship}),
	})

	return request, nil
}

// ListForTree returns a tree's requests, pending first, then newest first.
// Admin/editor only.
func (s *ConnectionRequestService) ListForTree(treeID, callerID string) ([]models.ConnectionRequest, error) {
	if err := s.access.RequireTreeManager(treeID, callerID); err != nil {
		return nil, err
	}

	var requests []models.ConnectionRequest
	err := s.db.Where("tree_id = ?", treeID).
		Order("CASE WHEN status = 'pending' THEN 0 ELSE 1 END, created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

type ReviewInput struct {
	Decision    models.RequestStatus `json:"decision"`
	AccessLevel *models.AccessLevel  `json:"access_level"`
	Notes       string               `json:"notes"`
}

// Review closes a pending request. Approving atomically creates the access
// grant (default level viewer, unverified); blocking inserts a block list
// row. A request that already reached a terminal state cannot be reviewed
// again.
func (s *ConnectionRequestService) Review(requestID, callerID string, input *ReviewInput) (*models.ConnectionRequest, error) {
	switch input.Decision {
	case models.StatusApproved, models.StatusRejected, models.StatusBlocked:
	default:
		return nil, ErrInvalidInput
	}
	if input.AccessLevel != nil && !input.AccessLevel.Valid() {
		return nil, ErrInvalidInput
	}

	var request models.ConnectionRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := s.access.RequireTreeManager(request.TreeID, callerID); err != nil {
			return err
		}

		if request.Status != models.StatusPending {
			return ErrInvalidState
		}

		now := time.Now().Unix()
		request.Status = input.Decision
		request.ReviewedBy = &callerID
		request.ReviewedAt = &now
		request.Notes = input.Notes

		switch input.Decision {
		case models.StatusApproved:
			level := models.AccessViewer
			if input.AccessLevel != nil {
				level = *input.AccessLevel
			}
			request.GrantedAccessLevel = &level

			var connCount int64
			if err := tx.Model(&models.FamilyConnection{}).
				Where("tree_id = ? AND user_id = ?", request.TreeID, request.RequesterUserID).
				Count(&connCount).Error; err != nil {
				return err
			}
			if connCount > 0 {
				return ErrAlreadyConnected
			}

			conn := models.FamilyConnection{
				UserID:              request.RequesterUserID,
				TreeID:              request.TreeID,
				LinkedPersonID:      request.ClaimedPersonID,
				RelationshipType:    request.ClaimedRelationship,
				AccessLevel:         level,
				IsVerified:          false,
				InvitedByUserID:     callerID,
				ConnectionRequestID: &request.ID,
			}
			if err := tx.Create(&conn).Error; err != nil {
				return err
			}

		case models.StatusBlocked:
			if err := addBlock(tx, request.TreeID, request.RequesterUserID, callerID, input.Notes); err != nil {
				return err
			}
		}

		return tx.Save(&request).Error
	})
	if err != nil {
		return nil, err
	}

	action := models.AuditRejection
	if input.Decision == models.StatusApproved {
		action = models.AuditApproval
	}
	s.audit.Record(&models.PrivacyAuditLog{
		TreeID:     &request.TreeID,
		UserID:     callerID,
		ActionType: action,
		TargetType: "connection_request",
		TargetID:   request.ID,
		Details:    auditDetails(map[string]string{"decision": string(input.Decision)}),
	})

	return &request, nil
}
