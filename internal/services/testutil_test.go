package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/arborhq/arbor/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory database. The named shared-cache DSN
// lets every pooled connection see the same database, which a plain
// ":memory:" DSN does not.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// testEnv wires the full service graph against one test database.
type testEnv struct {
	db       *gorm.DB
	access   *AccessService
	audit    *PrivacyAuditService
	treePriv *TreePrivacyService
	members  *MemberPrivacyService
	requests *ConnectionRequestService
	conns    *ConnectionService
	blocks   *BlockListService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	access := NewAccessService(db)
	audit := NewPrivacyAuditService(db, access)
	return &testEnv{
		db:       db,
		access:   access,
		audit:    audit,
		treePriv: NewTreePrivacyService(db, access, audit),
		members:  NewMemberPrivacyService(db, access, audit),
		requests: NewConnectionRequestService(db, access, audit),
		conns:    NewConnectionService(db, access, audit),
		blocks:   NewBlockListService(db, access, audit),
	}
}

func (e *testEnv) seedUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:    email,
		Username: strings.SplitN(email, "@", 2)[0],
		IsActive: true,
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

// seedTree creates a tree plus the owner's role registry row.
func (e *testEnv) seedTree(t *testing.T, owner *models.User, isPublic bool) *models.Tree {
	t.Helper()
	tree := &models.Tree{
		Name:        "Hargrove Family",
		OwnerUserID: owner.ID,
		IsPublic:    isPublic,
	}
	if err := e.db.Create(tree).Error; err != nil {
		t.Fatalf("seed tree: %v", err)
	}
	member := &models.TreeMember{TreeID: tree.ID, UserID: owner.ID, Role: models.RoleOwner}
	if err := e.db.Create(member).Error; err != nil {
		t.Fatalf("seed owner member: %v", err)
	}
	return tree
}

func (e *testEnv) seedEditor(t *testing.T, tree *models.Tree, user *models.User) {
	t.Helper()
	member := &models.TreeMember{TreeID: tree.ID, UserID: user.ID, Role: models.RoleEditor}
	if err := e.db.Create(member).Error; err != nil {
		t.Fatalf("seed editor member: %v", err)
	}
}

func (e *testEnv) seedPerson(t *testing.T, tree *models.Tree, living bool) *models.Person {
	t.Helper()
	person := &models.Person{
		TreeID:     tree.ID,
		GivenName:  "Edith",
		FamilyName: "Hargrove",
		BirthDate:  "1922-04-01",
		BirthPlace: "Dover",
		PhotoURL:   "https://example.com/edith.jpg",
		Notes:      "family notes",
		IsLiving:   living,
	}
	if !living {
		person.DeathDate = "2001-09-12"
		person.DeathPlace = "Leeds"
	}
	if err := e.db.Create(person).Error; err != nil {
		t.Fatalf("seed person: %v", err)
	}
	return person
}

func (e *testEnv) grant(t *testing.T, tree *models.Tree, user *models.User, level models.AccessLevel) *models.FamilyConnection {
	t.Helper()
	conn := &models.FamilyConnection{
		UserID:          user.ID,
		TreeID:          tree.ID,
		AccessLevel:     level,
		IsVerified:      true,
		InvitedByUserID: tree.OwnerUserID,
	}
	if err := e.db.Create(conn).Error; err != nil {
		t.Fatalf("seed connection: %v", err)
	}
	return conn
}

func (e *testEnv) blockUser(t *testing.T, tree *models.Tree, user *models.User) {
	t.Helper()
	block := &models.BlockedUser{
		TreeID:          tree.ID,
		BlockedUserID:   user.ID,
		BlockedByUserID: tree.OwnerUserID,
		Reason:          "test block",
	}
	if err := e.db.Create(block).Error; err != nil {
		t.Fatalf("seed block: %v", err)
	}
}

func (e *testEnv) auditCount(t *testing.T, treeID string, action models.AuditAction) int64 {
	t.Helper()
	var count int64
	err := e.db.Model(&models.PrivacyAuditLog{}).
		Where("tree_id = ? AND action_type = ?", treeID, action).
		Count(&count).Error
	if err != nil {
		t.Fatalf("count audit entries: %v", err)
	}
	return count
}
