package services

import (
	"errors"
	"testing"

	"github.com/arborhq/arbor/internal/models"
)

func TestInviteDirect(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	invitee := env.seedUser(t, "aunt@example.com")
	tree := env.seedTree(t, owner, false)

	level := models.AccessTrusted
	conn, err := env.conns.InviteDirect(tree.ID, owner.ID, &InviteInput{
		Email:            "aunt@example.com",
		AccessLevel:      &level,
		RelationshipType: "aunt",
	})
	if err != nil {
		t.Fatalf("InviteDirect: %v", err)
	}
	if conn.UserID != invitee.ID {
		t.Errorf("UserID = %q, expected the invitee", conn.UserID)
	}
	if conn.AccessLevel != models.AccessTrusted {
		t.Errorf("AccessLevel = %q, expected trusted", conn.AccessLevel)
	}
	if !conn.IsVerified {
		t.Error("direct invites are created verified")
	}
	if conn.VerifiedBy == nil || *conn.VerifiedBy != owner.ID {
		t.Error("VerifiedBy should record the inviter")
	}
	if conn.ConnectionRequestID != nil {
		t.Error("direct invites have no originating request")
	}
	if got := env.auditCount(t, tree.ID, models.AuditApproval); got != 1 {
		t.Errorf("approval audit entries = %d, expected 1", got)
	}
}

func TestInviteDirect_DefaultsToViewer(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	env.seedUser(t, "cousin@example.com")
	tree := env.seedTree(t, owner, false)

	conn, err := env.conns.InviteDirect(tree.ID, owner.ID, &InviteInput{Email: "cousin@example.com"})
	if err != nil {
		t.Fatalf("InviteDirect: %v", err)
	}
	if conn.AccessLevel != models.AccessViewer {
		t.Errorf("AccessLevel = %q, expected viewer", conn.AccessLevel)
	}
}

func TestInviteDirect_Errors(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	connected := env.seedUser(t, "connected@example.com")
	blocked := env.seedUser(t, "blocked@example.com")
	viewer := env.seedUser(t, "viewer@example.com")
	tree := env.seedTree(t, owner, false)
	env.grant(t, tree, connected, models.AccessViewer)
	env.grant(t, tree, viewer, models.AccessViewer)
	env.blockUser(t, tree, blocked)

	if _, err := env.conns.InviteDirect(tree.ID, owner.ID, &InviteInput{Email: "nobody@example.com"}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown email: err = %v, expected ErrUserNotFound", err)
	}
	if _, err := env.conns.InviteDirect(tree.ID, owner.ID, &InviteInput{Email: "connected@example.com"}); !errors.Is(err, ErrAlreadyConnected) {
		t.Errorf("existing grant: err = %v, expected ErrAlreadyConnected", err)
	}
	if _, err := env.conns.InviteDirect(tree.ID, owner.ID, &InviteInput{Email: "blocked@example.com"}); !errors.Is(err, ErrBlocked) {
		t.Errorf("blocked invitee: err = %v, expected ErrBlocked", err)
	}
	if _, err := env.conns.InviteDirect(tree.ID, viewer.ID, &InviteInput{Email: "owner@example.com"}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("viewer caller: err = %v, expected ErrUnauthorized", err)
	}
	bad := models.AccessLevel("root")
	if _, err := env.conns.InviteDirect(tree.ID, owner.ID, &InviteInput{Email: "owner@example.com", AccessLevel: &bad}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad level: err = %v, expected ErrInvalidInput", err)
	}
}

func TestUpdateConnection_Level(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	cousin := env.seedUser(t, "cousin@example.com")
	tree := env.seedTree(t, owner, false)
	conn := env.grant(t, tree, cousin, models.AccessViewer)

	level := models.AccessFamily
	updated, err := env.conns.Update(conn.ID, owner.ID, &ConnectionPatch{AccessLevel: &level})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.AccessLevel != models.AccessFamily {
		t.Errorf("AccessLevel = %q, expected family", updated.AccessLevel)
	}
	if got := env.auditCount(t, tree.ID, models.AuditPrivacyChange); got != 1 {
		t.Errorf("privacy_change audit entries = %d, expected 1", got)
	}
}

func TestUpdateConnection_Verify(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	cousin := env.seedUser(t, "cousin@example.com")
	tree := env.seedTree(t, owner, false)

	conn := &models.FamilyConnection{
		UserID:          cousin.ID,
		TreeID:          tree.ID,
		AccessLevel:     models.AccessViewer,
		InvitedByUserID: owner.ID,
	}
	if err := env.db.Create(conn).Error; err != nil {
		t.Fatalf("seed connection: %v", err)
	}

	verified := true
	updated, err := env.conns.Update(conn.ID, owner.ID, &ConnectionPatch{IsVerified: &verified})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.IsVerified {
		t.Error("connection should be verified")
	}
	if updated.VerifiedBy == nil || *updated.VerifiedBy != owner.ID {
		t.Error("VerifiedBy should record the verifier")
	}
	if updated.VerifiedAt == nil {
		t.Error("VerifiedAt should be stamped")
	}

	// Verification is one-way.
	revoke := false
	if _, err := env.conns.Update(conn.ID, owner.ID, &ConnectionPatch{IsVerified: &revoke}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("revoke: err = %v, expected ErrInvalidState", err)
	}
}

func TestRemoveConnection(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	cousin := env.seedUser(t, "cousin@example.com")
	stranger := env.seedUser(t, "stranger@example.com")
	tree := env.seedTree(t, owner, false)
	conn := env.grant(t, tree, cousin, models.AccessViewer)

	if err := env.conns.Remove(conn.ID, stranger.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("stranger: err = %v, expected ErrUnauthorized", err)
	}
	if err := env.conns.Remove(conn.ID, owner.ID); err != nil {
		t.Fatalf("owner remove: %v", err)
	}

	access, err := env.access.ResolveAccess(tree.ID, cousin.ID)
	if err != nil {
		t.Fatalf("ResolveAccess: %v", err)
	}
	if access.Level != nil {
		t.Error("removed grant should no longer confer access")
	}
	if err := env.conns.Remove(conn.ID, owner.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second remove: err = %v, expected ErrNotFound", err)
	}
}

// A grant holder may always walk away from a tree themself.
func TestRemoveConnection_Self(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	cousin := env.seedUser(t, "cousin@example.com")
	tree := env.seedTree(t, owner, false)
	conn := env.grant(t, tree, cousin, models.AccessViewer)

	if err := env.conns.Remove(conn.ID, cousin.ID); err != nil {
		t.Fatalf("self remove: %v", err)
	}
}

func TestListConnections_OrderedByLevel(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	a := env.seedUser(t, "a@example.com")
	b := env.seedUser(t, "b@example.com")
	c := env.seedUser(t, "c@example.com")
	tree := env.seedTree(t, owner, false)
	env.grant(t, tree, a, models.AccessViewer)
	env.grant(t, tree, b, models.AccessTrusted)
	env.grant(t, tree, c, models.AccessFamily)

	list, err := env.conns.ListForTree(tree.ID, owner.ID)
	if err != nil {
		t.Fatalf("ListForTree: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("connections = %d, expected 3", len(list))
	}
	want := []models.AccessLevel{models.AccessTrusted, models.AccessFamily, models.AccessViewer}
	for i, lvl := range want {
		if list[i].AccessLevel != lvl {
			t.Errorf("list[%d].AccessLevel = %q, expected %q", i, list[i].AccessLevel, lvl)
		}
	}

	if _, err := env.conns.ListForTree(tree.ID, a.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("viewer list: err = %v, expected ErrUnauthorized", err)
	}
}
