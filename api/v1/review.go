package v1

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/epustaka/epustaka/http/request"
	"github.com/epustaka/epustaka/http/response"
	"github.com/epustaka/epustaka/log"
	"github.com/epustaka/epustaka/model"
	"github.com/epustaka/epustaka/validator"
)

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	bookID := request.RouteInt32Param(r, "id")
	reviews, err := h.store.ListReviews(&model.FindReview{BookID: &bookID})
	if err != nil {
		log.Error("Failed to list reviews", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, reviews)
}

func (h *Handler) getReviewSummary(w http.ResponseWriter, r *http.Request) {
	bookID := request.RouteInt32Param(r, "id")
	summary, err := h.store.GetReviewSummary(bookID)
	if err != nil {
		log.Error("Failed to get review summary", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, summary)
}

// upsertReview writes the caller's review of the book, one per member and
// book, later writes replace earlier ones.
func (h *Handler) upsertReview(w http.ResponseWriter, r *http.Request) {
	bookID := request.RouteInt32Param(r, "id")
	var upsert model.ReviewUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&upsert); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if err := validator.ValidateReviewUpsertRequest(&upsert); err != nil {
		log.Error("Failed to validate review", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	book, err := h.store.GetBook(&model.FindBook{ID: &bookID})
	if err != nil {
		log.Error("Failed to get book", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if book == nil {
		response.NotFound(w, r)
		return
	}

	review := &model.Review{
		MemberID: request.GetUserID(r),
		BookID:   bookID,
		Rating:   upsert.Rating,
		Body:     upsert.Body,
	}
	newReview, err := h.store.UpsertReview(review)
	if err != nil {
		log.Error("Failed to upsert review", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, newReview)
}

// deleteReview removes a review, members their own, admins any.
func (h *Handler) deleteReview(w http.ResponseWriter, r *http.Request) {
	reviewID := request.RouteInt32Param(r, "id")
	review, err := h.store.GetReview(&model.FindReview{ID: &reviewID})
	if err != nil {
		log.Error("Failed to get review", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if review == nil {
		response.NotFound(w, r)
		return
	}
	if review.MemberID != request.GetUserID(r) && !request.GetUserRole(r).IsAdmin() {
		response.Forbidden(w, r)
		return
	}

	if err := h.store.RemoveReview(reviewID); err != nil {
		log.Error("Failed to delete review", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.NoContent(w, r)
}
