package validator

import (
	"github.com/pkg/errors"

	"github.com/epustaka/epustaka/model"
)

func ValidateBookCreateRequest(book *model.BookCreateRequest) error {
	if book == nil {
		return errors.New("book is nil")
	}
	if book.Title == "" {
		return errors.New("title is empty")
	}
	if book.Licenses < 0 {
		return errors.New("licenses must not be negative")
	}
	return nil
}

func ValidateBookUpdateRequest(update *model.BookUpdateRequest) error {
	if update == nil {
		return errors.New("update is nil")
	}
	if update.Title != nil && *update.Title == "" {
		return errors.New("title is empty")
	}
	if update.Licenses != nil && *update.Licenses < 0 {
		return errors.New("licenses must not be negative")
	}
	return nil
}

func ValidateReviewUpsertRequest(review *model.ReviewUpsertRequest) error {
	if review == nil {
		return errors.New("review is nil")
	}
	if review.Rating < 1 || review.Rating > 5 {
		return errors.New("rating must be between 1 and 5")
	}
	return nil
}
