package commands

import (
	"context"
	"testing"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/repository/memory"
)

func TestLookupUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	id, err := store.Users.Create(ctx, &domain.User{Name: "Ana", Email: "ana@example.com", Role: domain.RoleMember, Member: &domain.MemberProfile{}})
	if err != nil {
		t.Fatalf("seeding user: %v", err)
	}

	got, err := lookupUser(ctx, store.Users, "  Ana@Example.com ")
	if err != nil {
		t.Fatalf("lookupUser: %v", err)
	}
	if got.ID != id {
		t.Errorf("got user %s, want %s", got.ID.Hex(), id.Hex())
	}

	if _, err := lookupUser(ctx, store.Users, "nobody@example.com"); err == nil || err.Error() != "no account for nobody@example.com" {
		t.Errorf("unknown email: got %v", err)
	}
}
