package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered platform user
type User struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	Email       string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Username    string `gorm:"size:100;not null" json:"username"`
	Password    string `gorm:"size:255" json:"-"` // bcrypt hash
	DisplayName string `gorm:"size:200" json:"display_name"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
	CreatedAt   int64  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   int64  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Tree represents a family tree
type Tree struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	Name        string `gorm:"size:200;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	OwnerUserID string `gorm:"size:36;index;not null" json:"owner_user_id"`
	IsPublic    bool   `gorm:"default:false" json:"is_public"`
	CreatedAt   int64  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   int64  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Person represents an individual in a family tree. The engine only reads
// persons; person CRUD lives outside this core.
type Person struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	TreeID     string `gorm:"size:36;index;not null" json:"tree_id"`
	Tree       *Tree  `gorm:"foreignKey:TreeID" json:"tree,omitempty"`
	GivenName  string `gorm:"size:200" json:"given_name"`
	FamilyName string `gorm:"size:200" json:"family_name"`
	BirthDate  string `gorm:"size:50" json:"birth_date"`
	BirthPlace string `gorm:"size:300" json:"birth_place"`
	DeathDate  string `gorm:"size:50" json:"death_date"`
	DeathPlace string `gorm:"size:300" json:"death_place"`
	PhotoURL   string `gorm:"size:500" json:"photo_url"`
	Notes      string `gorm:"type:text" json:"notes"`
	IsLiving   bool   `gorm:"default:true" json:"is_living"`
	CreatedAt  int64  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  int64  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TreeMember is the role registry: a collaborator role (owner/editor) on a
// tree. Read-only input to access resolution; managed by tree CRUD.
type TreeMember struct {
	ID        string   `gorm:"primaryKey;size:36" json:"id"`
	TreeID    string   `gorm:"size:36;uniqueIndex:idx_tree_user;not null" json:"tree_id"`
	UserID    string   `gorm:"size:36;uniqueIndex:idx_tree_user;not null" json:"user_id"`
	Role      TreeRole `gorm:"size:20;not null" json:"role"`
	CreatedAt int64    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt int64    `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName overrides
func (User) TableName() string       { return "users" }
func (Tree) TableName() string       { return "trees" }
func (Person) TableName() string     { return "persons" }
func (TreeMember) TableName() string { return "tree_members" }

// UUID primary keys, generated on insert unless supplied.

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (t *Tree) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

func (p *Person) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (m *TreeMember) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
