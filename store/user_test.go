package store

import (
	"testing"

	"github.com/epustaka/epustaka/model"
)

func TestArchiveUser(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "retiree", model.RoleMember)

	if err := s.ArchiveUser(user.ID); err != nil {
		t.Fatalf("Failed to archive user: %v", err)
	}

	// The cache entry must be invalidated, not serve the stale NORMAL row.
	got, err := s.GetUser(&model.FindUser{ID: &user.ID})
	if err != nil {
		t.Fatalf("Failed to get user: %v", err)
	}
	if got == nil {
		t.Fatalf("Archived user should still exist")
	}
	if got.RowStatus != model.Archived {
		t.Fatalf("Expected row status %s, got %s", model.Archived, got.RowStatus)
	}
}
