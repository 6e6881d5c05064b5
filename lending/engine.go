package lending

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/epustaka/epustaka/config"
	"github.com/epustaka/epustaka/log"
	"github.com/epustaka/epustaka/model"
	"github.com/epustaka/epustaka/store"
)

// DateLayout is the format of loan and due dates.
const DateLayout = "2006-01-02"

// Engine owns the loan lifecycle. Every borrowed-counter mutation in the
// system goes through one of its transitions, nothing else writes it.
//
// States: REQUESTED -> ACTIVE -> COMPLETED, with REQUESTED -> DECLINED as
// the rejection branch. Transitions against the wrong state fail with
// ErrInvalidState instead of being silently ignored, so a stale console
// button or a double submit surfaces in the logs.
type Engine struct {
	store *store.Store

	// now is replaced in tests
	now func() time.Time
}

func NewEngine(s *store.Store) *Engine {
	return &Engine{
		store: s,
		now:   time.Now,
	}
}

func (e *Engine) today() string {
	return e.now().Format(DateLayout)
}

// loanPeriod is the lending window stamped on approval, a deployment
// policy rather than a constant.
func (e *Engine) loanPeriod() time.Duration {
	days := 7
	if config.Opts != nil && config.Opts.LoanPeriodDays > 0 {
		days = config.Opts.LoanPeriodDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// Request creates a REQUESTED loan for the member. It fails with
// ErrAlreadyBorrowed when the member already holds a requested or active
// loan for the book, and with ErrOutOfStock when no license slot is free.
// Availability is checked here for early feedback, but the authoritative
// check is the conditional increment inside Approve.
func (e *Engine) Request(member *model.User, bookID int32) (*model.Loan, error) {
	book, err := e.store.GetBook(&model.FindBook{ID: &bookID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get book")
	}
	if book == nil {
		return nil, ErrNotFound
	}

	open, err := e.store.ListLoans(&model.FindLoan{
		MemberID: &member.ID,
		StatusIn: []model.LoanStatus{model.LoanRequested, model.LoanActive},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list open loans")
	}
	for _, loan := range open {
		if loan.BookID == bookID {
			return nil, ErrAlreadyBorrowed
		}
	}
	if config.Opts != nil && config.Opts.MaxActiveLoans > 0 && len(open) >= config.Opts.MaxActiveLoans {
		return nil, ErrTooManyLoans
	}

	if book.Availability() <= 0 {
		return nil, ErrOutOfStock
	}

	loan, err := e.store.CreateLoan(&model.Loan{
		MemberID: member.ID,
		BookID:   bookID,
		Status:   model.LoanRequested,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create loan")
	}

	log.Info("Loan requested",
		zap.Int32("loan_id", loan.ID),
		zap.Int32("member_id", member.ID),
		zap.Int32("book_id", bookID))
	return loan, nil
}

// CreateManual is the admin manual-entry path. The initial state may be any
// of the four, defaulting to ACTIVE; an active entry stamps dates and
// claims a license slot like an approval would.
func (e *Engine) CreateManual(actor *model.User, req *model.LoanCreateRequest) (*model.Loan, error) {
	if !actor.Role.IsAdmin() {
		return nil, ErrForbidden
	}

	status := req.Status
	if status == "" {
		status = model.LoanActive
	}
	if !status.Valid() {
		return nil, ErrInvalidState
	}

	book, err := e.store.GetBook(&model.FindBook{ID: &req.BookID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get book")
	}
	if book == nil {
		return nil, ErrNotFound
	}
	member, err := e.store.GetUser(&model.FindUser{ID: &req.MemberID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get member")
	}
	if member == nil {
		return nil, ErrNotFound
	}

	loan := &model.Loan{
		MemberID: req.MemberID,
		BookID:   req.BookID,
		Status:   status,
	}
	if status == model.LoanActive || status == model.LoanCompleted {
		loan.LoanDate = e.today()
		loan.DueDate = e.now().Add(e.loanPeriod()).Format(DateLayout)
	}
	if status == model.LoanActive {
		ok, err := e.store.IncrementBorrowed(req.BookID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to claim license slot")
		}
		if !ok {
			return nil, ErrOutOfStock
		}
	}

	created, err := e.store.CreateLoan(loan)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create loan")
	}
	log.Info("Loan created manually",
		zap.Int32("loan_id", created.ID),
		zap.String("status", created.Status.String()),
		zap.Int32("actor_id", actor.ID))
	return created, nil
}

// Approve moves a REQUESTED loan to ACTIVE, stamps the dates and claims a
// license slot. The slot claim is a single conditional update, so two
// concurrent approvals of the last copy cannot both succeed.
func (e *Engine) Approve(actor *model.User, loanID int32) (*model.Loan, error) {
	if !actor.Role.IsAdmin() {
		return nil, ErrForbidden
	}

	loan, err := e.store.GetLoan(&model.FindLoan{ID: &loanID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get loan")
	}
	if loan == nil {
		return nil, ErrNotFound
	}
	if loan.Status != model.LoanRequested {
		log.Warn("Rejected invalid loan transition",
			zap.Int32("loan_id", loanID),
			zap.String("from", loan.Status.String()),
			zap.String("op", "approve"))
		return nil, ErrInvalidState
	}

	ok, err := e.store.IncrementBorrowed(loan.BookID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to claim license slot")
	}
	if !ok {
		return nil, ErrOutOfStock
	}

	loanDate := e.today()
	dueDate := e.now().Add(e.loanPeriod()).Format(DateLayout)
	updated, err := e.store.TransitionLoan(loanID, model.LoanRequested, model.LoanActive, &loanDate, &dueDate)
	if err != nil {
		// The loan changed underneath us, release the slot we claimed.
		if _, derr := e.store.DecrementBorrowed(loan.BookID); derr != nil {
			log.Error("Failed to release license slot after lost transition",
				zap.Int32("book_id", loan.BookID), zap.Error(derr))
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidState
		}
		return nil, errors.Wrap(err, "failed to transition loan")
	}

	log.Info("Loan approved",
		zap.Int32("loan_id", loanID),
		zap.Int32("actor_id", actor.ID),
		zap.String("due_date", dueDate))
	return updated, nil
}

// Decline moves a REQUESTED loan to DECLINED. No counter changes.
func (e *Engine) Decline(actor *model.User, loanID int32) (*model.Loan, error) {
	if !actor.Role.IsAdmin() {
		return nil, ErrForbidden
	}

	updated, err := e.transition(loanID, model.LoanRequested, model.LoanDeclined, "decline")
	if err != nil {
		return nil, err
	}
	log.Info("Loan declined", zap.Int32("loan_id", loanID), zap.Int32("actor_id", actor.ID))
	return updated, nil
}

// Complete moves an ACTIVE loan to COMPLETED and releases its license
// slot, floored at zero if the counters ever diverged.
func (e *Engine) Complete(actor *model.User, loanID int32) (*model.Loan, error) {
	if !actor.Role.IsAdmin() {
		return nil, ErrForbidden
	}

	updated, err := e.transition(loanID, model.LoanActive, model.LoanCompleted, "complete")
	if err != nil {
		return nil, err
	}

	released, err := e.store.DecrementBorrowed(updated.BookID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to release license slot")
	}
	if !released {
		log.Warn("Borrowed counter was already zero on completion",
			zap.Int32("book_id", updated.BookID),
			zap.Int32("loan_id", loanID))
	}

	log.Info("Loan completed", zap.Int32("loan_id", loanID), zap.Int32("actor_id", actor.ID))
	return updated, nil
}

// Delete hard-removes a loan regardless of state. Deliberately no counter
// reconciliation: this is the admin cleanup escape hatch outside the
// lifecycle.
func (e *Engine) Delete(actor *model.User, loanID int32) error {
	if !actor.Role.IsAdmin() {
		return ErrForbidden
	}

	found, err := e.store.RemoveLoan(loanID)
	if err != nil {
		return errors.Wrap(err, "failed to remove loan")
	}
	if !found {
		return ErrNotFound
	}
	log.Info("Loan deleted", zap.Int32("loan_id", loanID), zap.Int32("actor_id", actor.ID))
	return nil
}

// Availability returns the number of free license slots for a book.
func (e *Engine) Availability(bookID int32) (int, error) {
	book, err := e.store.GetBook(&model.FindBook{ID: &bookID})
	if err != nil {
		return 0, errors.Wrap(err, "failed to get book")
	}
	if book == nil {
		return 0, ErrNotFound
	}
	return book.Availability(), nil
}

func (e *Engine) transition(loanID int32, from, to model.LoanStatus, op string) (*model.Loan, error) {
	loan, err := e.store.GetLoan(&model.FindLoan{ID: &loanID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get loan")
	}
	if loan == nil {
		return nil, ErrNotFound
	}
	if loan.Status != from {
		log.Warn("Rejected invalid loan transition",
			zap.Int32("loan_id", loanID),
			zap.String("from", loan.Status.String()),
			zap.String("op", op))
		return nil, ErrInvalidState
	}

	updated, err := e.store.TransitionLoan(loanID, from, to, nil, nil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidState
		}
		return nil, errors.Wrap(err, "failed to transition loan")
	}
	return updated, nil
}
