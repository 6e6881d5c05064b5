package store

import (
	"testing"

	"github.com/epustaka/epustaka/model"
)

func TestUpsertReviewReplaces(t *testing.T) {
	s := newTestStore(t)

	member := createTestUser(t, s, "reviewer", model.RoleMember)
	book := createTestBook(t, s, "reviewed-book", 1)

	first, err := s.UpsertReview(&model.Review{
		MemberID: member.ID,
		BookID:   book.ID,
		Rating:   3,
		Body:     "decent",
	})
	if err != nil {
		t.Fatalf("Failed to upsert review: %v", err)
	}

	second, err := s.UpsertReview(&model.Review{
		MemberID: member.ID,
		BookID:   book.ID,
		Rating:   5,
		Body:     "changed my mind",
	})
	if err != nil {
		t.Fatalf("Failed to upsert review: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Expected the same review row, got %d and %d", first.ID, second.ID)
	}
	if second.Rating != 5 {
		t.Errorf("Expected rating 5, got %d", second.Rating)
	}

	reviews, err := s.ListReviews(&model.FindReview{BookID: &book.ID})
	if err != nil {
		t.Fatalf("Failed to list reviews: %v", err)
	}
	if len(reviews) != 1 {
		t.Errorf("Expected 1 review, got %d", len(reviews))
	}
}

func TestReviewSummary(t *testing.T) {
	s := newTestStore(t)

	book := createTestBook(t, s, "summary-book", 1)

	// No reviews yet.
	summary, err := s.GetReviewSummary(book.ID)
	if err != nil {
		t.Fatalf("Failed to get review summary: %v", err)
	}
	if summary.Count != 0 || summary.Average != 0 {
		t.Errorf("Expected empty summary, got %+v", summary)
	}

	for i, rating := range []int{2, 4} {
		member := createTestUser(t, s, "reader"+string(rune('a'+i)), model.RoleMember)
		if _, err := s.UpsertReview(&model.Review{
			MemberID: member.ID,
			BookID:   book.ID,
			Rating:   rating,
		}); err != nil {
			t.Fatalf("Failed to upsert review: %v", err)
		}
	}

	summary, err = s.GetReviewSummary(book.ID)
	if err != nil {
		t.Fatalf("Failed to get review summary: %v", err)
	}
	if summary.Count != 2 {
		t.Errorf("Expected 2 reviews, got %d", summary.Count)
	}
	if summary.Average != 3 {
		t.Errorf("Expected average 3, got %f", summary.Average)
	}
}
