package services

import (
	"encoding/json"

	"github.com/arborhq/arbor/internal/models"
	"github.com/arborhq/arbor/pkg/logger"
	"gorm.io/gorm"
)

// AuditSink receives one entry per mutating engine action. It is an
// observer: a failing sink must never abort the mutation it describes.
type AuditSink interface {
	Record(entry *models.PrivacyAuditLog)
}

// PrivacyAuditService is the gorm-backed audit sink plus the admin-facing
// query side of the append-only privacy audit log.
type PrivacyAuditService struct {
	db     *gorm.DB
	access *AccessService
}

func NewPrivacyAuditService(db *gorm.DB, access *AccessService) *PrivacyAuditService {
	return &PrivacyAuditService{db: db, access: access}
}

// Record appends an entry. Storage errors are logged and swallowed so the
// primary mutation is never rolled back on account of auditing.
func (s *PrivacyAuditService) Record(entry *models.PrivacyAuditLog) {
	if err := s.db.Create(entry).Error; err != nil {
		logger.Error().
			Err(err).
			Str("action_type", string(entry.ActionType)).
			Str("target_id", entry.TargetID).
			Msg("failed to write privacy audit entry")
	}
}

// auditDetails marshals an arbitrary detail payload for the opaque Details
// column. A marshal failure yields an empty string rather than an error.
func auditDetails(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

type AuditLogListRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

type AuditLogListResponse struct {
	Total    int64                    `json:"total"`
	Page     int                      `json:"page"`
	PageSize int                      `json:"page_size"`
	Items    []models.PrivacyAuditLog `json:"items"`
}

// List returns a tree's audit entries, newest first. Admin/editor only.
func (s *PrivacyAuditService) List(treeID, callerID string, req *AuditLogListRequest) (*AuditLogListResponse, error) {
	if err := s.access.RequireTreeManager(treeID, callerID); err != nil {
		return nil, err
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.PrivacyAuditLog{}).Where("tree_id = ?", treeID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.PrivacyAuditLog
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("created_at DESC, id DESC").
		Offset(offset).Limit(req.PageSize).
		Find(&items).Error; err != nil {
		return nil, err
	}

	return &AuditLogListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}
