package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dukerupert/chorewheel/internal/database"
	"github.com/dukerupert/chorewheel/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedUserAndHousehold creates a user, a household, and the membership row
// most store tests need.
func seedUserAndHousehold(t *testing.T, db *sql.DB) (*model.User, *model.Household) {
	t.Helper()
	ctx := context.Background()

	u, err := NewUserStore(db).Create(ctx, "test@example.com", "Test User")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	h, err := NewHouseholdStore(db).Create(ctx, "Test Household")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	if _, err := NewHouseholdStore(db).AddMember(ctx, h.ID, u.ID, "owner"); err != nil {
		t.Fatalf("add member: %v", err)
	}
	return u, h
}
