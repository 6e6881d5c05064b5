package lending

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/epustaka/epustaka/log"
	"github.com/epustaka/epustaka/model"
)

// CheckAccess decides whether a member may stream a book's content: an
// ACTIVE loan for the (member, book) pair whose due date is unset or not
// yet past. Admins bypass unconditionally. The predicate runs on every
// content fetch, nothing is cached or pre-materialized.
func (e *Engine) CheckAccess(member *model.User, bookID int32) (bool, error) {
	if member.Role.IsAdmin() {
		return true, nil
	}

	active := model.LoanActive
	loan, err := e.store.GetLoan(&model.FindLoan{
		MemberID: &member.ID,
		BookID:   &bookID,
		Status:   &active,
	})
	if err != nil {
		return false, errors.Wrap(err, "failed to get loan")
	}
	if loan == nil {
		return false, nil
	}
	if loan.DueDate == "" {
		return true, nil
	}

	due, err := time.Parse(DateLayout, loan.DueDate)
	if err != nil {
		log.Warn("Unparseable due date, denying access",
			zap.Int32("loan_id", loan.ID),
			zap.String("due_date", loan.DueDate))
		return false, nil
	}

	today, _ := time.Parse(DateLayout, e.today())
	return !due.Before(today), nil
}
