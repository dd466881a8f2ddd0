package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/labstock/internal/db"
	"github.com/erazemk/labstock/internal/model"
)

func member(username, group string) NewUser {
	return NewUser{
		Username:     username,
		PasswordHash: "hash",
		DisplayName:  username,
		GroupName:    group,
		Role:         model.RoleMember,
	}
}

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, member("testuser", "Team A"))
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Username != "testuser" {
		t.Errorf("expected username 'testuser', got %q", user.Username)
	}
	if user.Role != model.RoleMember || user.GroupName != "Team A" {
		t.Errorf("unexpected user: %+v", user)
	}
	if user.Approved {
		t.Error("expected new member to be unapproved")
	}

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "testuser" {
		t.Errorf("expected username 'testuser', got %q", got.Username)
	}

	missing, err := GetUser(ctx, database, 999)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, database, member("alice", "Team A")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	_, err := CreateUser(ctx, database, member("alice", "Team B"))
	if !errors.Is(err, model.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestGetUserByUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, member("alice", "Team A"))

	user, err := GetUserByUsername(ctx, database, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if user == nil || user.Username != "alice" {
		t.Fatalf("expected alice, got %+v", user)
	}

	missing, err := GetUserByUsername(ctx, database, "bob")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestApproveAndUpdateUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, member("carol", "Team A"))

	if err := ApproveUser(ctx, database, user.ID); err != nil {
		t.Fatalf("ApproveUser: %v", err)
	}
	err := UpdateUser(ctx, database, user.ID, UserUpdate{
		DisplayName: "Carol C",
		GroupName:   "Team C",
		Role:        model.RoleAdmin,
		Email:       "carol@example.com",
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	got, _ := GetUser(ctx, database, user.ID)
	if !got.Approved || got.GroupName != "Team C" || got.Role != model.RoleAdmin || got.DisplayName != "Carol C" {
		t.Errorf("unexpected user after update: %+v", got)
	}

	if err := ApproveUser(ctx, database, 999); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestListNotifiableUsers(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	withMail := member("a", "Team A")
	withMail.Email = "a@example.com"
	withMail.Approved = true
	CreateUser(ctx, database, withMail)

	noMail := member("b", "Team A")
	noMail.Approved = true
	CreateUser(ctx, database, noMail)

	pending := member("c", "Team A")
	pending.Email = "c@example.com"
	CreateUser(ctx, database, pending)

	otherGroup := member("d", "Team B")
	otherGroup.Email = "d@example.com"
	otherGroup.Approved = true
	CreateUser(ctx, database, otherGroup)

	users, err := ListNotifiableUsers(ctx, database, "Team A")
	if err != nil {
		t.Fatalf("ListNotifiableUsers: %v", err)
	}
	if len(users) != 1 || users[0].Username != "a" {
		t.Errorf("expected only user a, got %+v", users)
	}

	all, _ := ListUsers(ctx, database)
	if len(all) != 4 {
		t.Errorf("expected 4 users, got %d", len(all))
	}
}

func TestDeleteUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, member("deleteme", "Team A"))
	if err := DeleteUser(ctx, database, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	users, _ := ListUsers(ctx, database)
	if len(users) != 0 {
		t.Errorf("expected 0 users after delete, got %d", len(users))
	}
	if err := DeleteUser(ctx, database, user.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}

func TestUpdateUserPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, member("pwuser", "Team A"))
	UpdateUserPassword(ctx, database, user.ID, "newhash")

	got, _ := GetUser(ctx, database, user.ID)
	if got.PasswordHash != "newhash" {
		t.Errorf("expected password hash 'newhash', got %q", got.PasswordHash)
	}
}
