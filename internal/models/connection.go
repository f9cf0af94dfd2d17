package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConnectionRequest is a pending ask by an outside user to gain access to a
// tree. At most one non-rejected request may exist per (requester, tree).
type ConnectionRequest struct {
	ID                  string        `gorm:"primaryKey;size:36" json:"id"`
	RequesterUserID     string        `gorm:"size:36;index:idx_requester_tree;not null" json:"requester_user_id"`
	TreeID              string        `gorm:"size:36;index:idx_requester_tree;not null" json:"tree_id"`
	ClaimedRelationship string        `gorm:"size:100" json:"claimed_relationship"`
	ClaimedPersonID     *string       `gorm:"size:36" json:"claimed_person_id"`
	Message             string        `gorm:"type:text" json:"message"`
	Status              RequestStatus `gorm:"size:20;default:pending;index" json:"status"`
	ReviewedBy          *string       `gorm:"size:36" json:"reviewed_by"`
	ReviewedAt          *int64        `json:"reviewed_at"`
	Notes               string        `gorm:"type:text" json:"notes"`
	GrantedAccessLevel  *AccessLevel  `gorm:"size:20" json:"granted_access_level"`
	CreatedAt           int64         `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt           int64         `gorm:"autoUpdateTime" json:"updated_at"`
}

// FamilyConnection is a realized, durable access grant on a tree.
// ConnectionRequestID is nil for direct invites.
type FamilyConnection struct {
	ID                  string      `gorm:"primaryKey;size:36" json:"id"`
	UserID              string      `gorm:"size:36;uniqueIndex:idx_conn_user_tree;not null" json:"user_id"`
	TreeID              string      `gorm:"size:36;uniqueIndex:idx_conn_user_tree;not null" json:"tree_id"`
	LinkedPersonID      *string     `gorm:"size:36" json:"linked_person_id"`
	RelationshipType    string      `gorm:"size:100" json:"relationship_type"`
	AccessLevel         AccessLevel `gorm:"size:20;default:viewer;not null" json:"access_level"`
	IsVerified          bool        `gorm:"default:false" json:"is_verified"`
	VerifiedBy          *string     `gorm:"size:36" json:"verified_by"`
	VerifiedAt          *int64      `json:"verified_at"`
	InvitedByUserID     string      `gorm:"size:36" json:"invited_by_user_id"`
	ConnectionRequestID *string     `gorm:"size:36" json:"connection_request_id"`
	CreatedAt           int64       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt           int64       `gorm:"autoUpdateTime" json:"updated_at"`
}

// BlockedUser forbids a (tree, user) pair from requesting or holding access
// until the row is removed.
type BlockedUser struct {
	ID              string `gorm:"primaryKey;size:36" json:"id"`
	TreeID          string `gorm:"size:36;uniqueIndex:idx_block_tree_user;not null" json:"tree_id"`
	BlockedUserID   string `gorm:"size:36;uniqueIndex:idx_block_tree_user;not null" json:"blocked_user_id"`
	BlockedByUserID string `gorm:"size:36;not null" json:"blocked_by_user_id"`
	Reason          string `gorm:"size:500" json:"reason"`
	CreatedAt       int64  `gorm:"autoCreateTime" json:"created_at"`
}

func (ConnectionRequest) TableName() string { return "connection_requests" }
func (FamilyConnection) TableName() string  { return "family_connections" }
func (BlockedUser) TableName() string       { return "blocked_users" }

func (r *ConnectionRequest) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (c *FamilyConnection) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (b *BlockedUser) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
