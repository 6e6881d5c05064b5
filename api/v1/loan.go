package v1

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/epustaka/epustaka/http/request"
	"github.com/epustaka/epustaka/http/response"
	"github.com/epustaka/epustaka/lending"
	"github.com/epustaka/epustaka/log"
	"github.com/epustaka/epustaka/model"
)

// respondLendingError maps the lending error taxonomy onto HTTP statuses.
func respondLendingError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, lending.ErrNotFound):
		response.NotFound(w, r)
	case errors.Is(err, lending.ErrForbidden):
		response.Forbidden(w, r)
	case errors.Is(err, lending.ErrOutOfStock),
		errors.Is(err, lending.ErrAlreadyBorrowed),
		errors.Is(err, lending.ErrTooManyLoans):
		response.Conflict(w, r, err)
	case errors.Is(err, lending.ErrInvalidState):
		response.BadRequest(w, r, err)
	default:
		response.ServerError(w, r, err)
	}
}

func currentUser(r *http.Request) *model.User {
	return &model.User{
		ID:       request.GetUserID(r),
		Username: request.GetUserName(r),
		Role:     request.GetUserRole(r),
	}
}

func (h *Handler) requestLoan(w http.ResponseWriter, r *http.Request) {
	var create model.LoanCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	loan, err := h.engine.Request(currentUser(r), create.BookID)
	if err != nil {
		log.Debug("Loan request rejected",
			zap.Int32("book_id", create.BookID),
			zap.Int32("member_id", request.GetUserID(r)),
			zap.Error(err))
		respondLendingError(w, r, err)
		return
	}
	response.Created(w, r, loan)
}

// createManualLoan is the admin back-office entry, it can record a loan for
// any member and defaults to handing the book out immediately.
func (h *Handler) createManualLoan(w http.ResponseWriter, r *http.Request) {
	var create model.LoanCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	loan, err := h.engine.CreateManual(currentUser(r), &create)
	if err != nil {
		respondLendingError(w, r, err)
		return
	}
	response.Created(w, r, loan)
}

func (h *Handler) listLoans(w http.ResponseWriter, r *http.Request) {
	find := &model.FindLoan{}

	// Members only see their own shelf, admins see everything.
	if !request.GetUserRole(r).IsAdmin() {
		memberID := request.GetUserID(r)
		find.MemberID = &memberID
	}
	if status := request.QueryStringParam(r, "status", ""); status != "" {
		loanStatus := model.LoanStatus(status)
		if !loanStatus.Valid() {
			response.BadRequest(w, r, errors.Errorf("unknown loan status: %s", status))
			return
		}
		find.Status = &loanStatus
	}

	loans, err := h.store.ListLoanDetails(find)
	if err != nil {
		log.Error("Failed to list loans", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, loans)
}

func (h *Handler) approveLoan(w http.ResponseWriter, r *http.Request) {
	loanID := request.RouteInt32Param(r, "id")
	loan, err := h.engine.Approve(currentUser(r), loanID)
	if err != nil {
		respondLendingError(w, r, err)
		return
	}
	response.OK(w, r, loan)
}

func (h *Handler) declineLoan(w http.ResponseWriter, r *http.Request) {
	loanID := request.RouteInt32Param(r, "id")
	loan, err := h.engine.Decline(currentUser(r), loanID)
	if err != nil {
		respondLendingError(w, r, err)
		return
	}
	response.OK(w, r, loan)
}

func (h *Handler) completeLoan(w http.ResponseWriter, r *http.Request) {
	loanID := request.RouteInt32Param(r, "id")
	loan, err := h.engine.Complete(currentUser(r), loanID)
	if err != nil {
		respondLendingError(w, r, err)
		return
	}
	response.OK(w, r, loan)
}

func (h *Handler) deleteLoan(w http.ResponseWriter, r *http.Request) {
	loanID := request.RouteInt32Param(r, "id")
	if err := h.engine.Delete(currentUser(r), loanID); err != nil {
		respondLendingError(w, r, err)
		return
	}
	response.NoContent(w, r)
}
