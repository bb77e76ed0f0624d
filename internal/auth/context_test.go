package auth

import (
	"context"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	ac := AuthContext{
		UserID:      "user-1",
		HouseholdID: "house-1",
		Role:        "owner",
		SessionID:   42,
	}

	ctx := WithAuth(context.Background(), ac)

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("FromContext returned not ok")
	}
	if got != ac {
		t.Errorf("got %+v, want %+v", got, ac)
	}
	if UserID(ctx) != "user-1" {
		t.Errorf("UserID = %q", UserID(ctx))
	}
	if HouseholdID(ctx) != "house-1" {
		t.Errorf("HouseholdID = %q", HouseholdID(ctx))
	}
	if !IsOwner(ctx) {
		t.Error("IsOwner = false for owner role")
	}
}

func TestContextEmpty(t *testing.T) {
	ctx := context.Background()

	if _, ok := FromContext(ctx); ok {
		t.Error("FromContext ok on empty context")
	}
	if UserID(ctx) != "" || HouseholdID(ctx) != "" {
		t.Error("expected empty ids on empty context")
	}
	if IsOwner(ctx) {
		t.Error("IsOwner = true on empty context")
	}
}

func TestIsOwnerMemberRole(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{UserID: "u", Role: "member"})
	if IsOwner(ctx) {
		t.Error("IsOwner = true for member role")
	}
}
