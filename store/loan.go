package store

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/epustaka/epustaka/log"
	"github.com/epustaka/epustaka/model"
)

const loanColumns = `id, member_id, book_id, status, loan_date, due_date, created_ts, updated_ts`

func (s *Store) GetLoan(find *model.FindLoan) (*model.Loan, error) {
	limit := 1
	find.Limit = &limit
	list, err := s.ListLoans(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) ListLoans(find *model.FindLoan) ([]*model.Loan, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.MemberID; v != nil {
		where, args = append(where, "member_id = ?"), append(args, *v)
	}
	if v := find.BookID; v != nil {
		where, args = append(where, "book_id = ?"), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "status = ?"), append(args, *v)
	}
	if v := find.StatusIn; len(v) > 0 {
		placeholders := make([]string, 0, len(v))
		for _, status := range v {
			placeholders = append(placeholders, "?")
			args = append(args, status)
		}
		where = append(where, "status IN ("+strings.Join(placeholders, ",")+")")
	}

	query := `
		SELECT ` + loanColumns + `
		FROM loan
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC`
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
	}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", query, args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Error("Failed to query loans", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Loan, 0)
	for rows.Next() {
		var loan model.Loan
		if err := rows.Scan(
			&loan.ID,
			&loan.MemberID,
			&loan.BookID,
			&loan.Status,
			&loan.LoanDate,
			&loan.DueDate,
			&loan.CreatedTs,
			&loan.UpdatedTs,
		); err != nil {
			log.Error("Failed to scan loan", zap.Error(err))
			return nil, err
		}
		list = append(list, &loan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// ListLoanDetails joins loans with their book and member for the shelf and
// the admin console.
func (s *Store) ListLoanDetails(find *model.FindLoan) ([]*model.LoanDetail, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.MemberID; v != nil {
		where, args = append(where, "l.member_id = ?"), append(args, *v)
	}
	if v := find.BookID; v != nil {
		where, args = append(where, "l.book_id = ?"), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "l.status = ?"), append(args, *v)
	}

	query := `
		SELECT
			l.id,
			l.member_id,
			l.book_id,
			l.status,
			l.loan_date,
			l.due_date,
			l.created_ts,
			l.updated_ts,
			b.title,
			b.author,
			u.username
		FROM loan l
		JOIN book b ON b.id = l.book_id
		JOIN user u ON u.id = l.member_id
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY l.created_ts DESC`
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
	}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", query, args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Error("Failed to query loan details", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.LoanDetail, 0)
	for rows.Next() {
		var detail model.LoanDetail
		if err := rows.Scan(
			&detail.ID,
			&detail.MemberID,
			&detail.BookID,
			&detail.Status,
			&detail.LoanDate,
			&detail.DueDate,
			&detail.CreatedTs,
			&detail.UpdatedTs,
			&detail.BookTitle,
			&detail.BookAuthor,
			&detail.Member,
		); err != nil {
			return nil, err
		}
		list = append(list, &detail)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) CreateLoan(loan *model.Loan) (*model.Loan, error) {
	stmt := `
		INSERT INTO loan (
			member_id,
			book_id,
			status,
			loan_date,
			due_date
		) VALUES (?, ?, ?, ?, ?)
		RETURNING ` + loanColumns
	args := []any{loan.MemberID, loan.BookID, loan.Status, loan.LoanDate, loan.DueDate}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	var newLoan model.Loan
	if err := tx.QueryRow(stmt, args...).Scan(
		&newLoan.ID,
		&newLoan.MemberID,
		&newLoan.BookID,
		&newLoan.Status,
		&newLoan.LoanDate,
		&newLoan.DueDate,
		&newLoan.CreatedTs,
		&newLoan.UpdatedTs,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &newLoan, nil
}

// TransitionLoan flips a loan from one status to another, stamping the
// dates when given. The expected status rides in the WHERE clause so a
// stale transition matches zero rows instead of clobbering a newer state.
func (s *Store) TransitionLoan(loanID int32, from, to model.LoanStatus, loanDate, dueDate *string) (*model.Loan, error) {
	set, args := []string{"status = ?", "updated_ts = ?"}, []any{to, time.Now().Unix()}
	if loanDate != nil {
		set, args = append(set, "loan_date = ?"), append(args, *loanDate)
	}
	if dueDate != nil {
		set, args = append(set, "due_date = ?"), append(args, *dueDate)
	}
	args = append(args, loanID, from)

	stmt := `
		UPDATE loan SET ` + strings.Join(set, ", ") + `
		WHERE id = ? AND status = ?
		RETURNING ` + loanColumns

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	var loan model.Loan
	err = tx.QueryRow(stmt, args...).Scan(
		&loan.ID,
		&loan.MemberID,
		&loan.BookID,
		&loan.Status,
		&loan.LoanDate,
		&loan.DueDate,
		&loan.CreatedTs,
		&loan.UpdatedTs,
	)
	if err != nil {
		// sql.ErrNoRows here means the loan was not in the expected state
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &loan, nil
}

// RemoveLoan hard-deletes a loan. No counter reconciliation happens here,
// admin cleanup bypasses the lifecycle.
func (s *Store) RemoveLoan(loanID int32) (bool, error) {
	stmt := `DELETE FROM loan WHERE id = ?`

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, []any{loanID}))

	res, err := tx.Exec(stmt, loanID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListOverdueLoans returns active loans whose due date is strictly before
// the given date.
func (s *Store) ListOverdueLoans(today string) ([]*model.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loan
		WHERE status = ? AND due_date != '' AND due_date < ?
		ORDER BY due_date`

	rows, err := s.db.Query(query, model.LoanActive, today)
	if err != nil {
		log.Error("Failed to query overdue loans", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Loan, 0)
	for rows.Next() {
		var loan model.Loan
		if err := rows.Scan(
			&loan.ID,
			&loan.MemberID,
			&loan.BookID,
			&loan.Status,
			&loan.LoanDate,
			&loan.DueDate,
			&loan.CreatedTs,
			&loan.UpdatedTs,
		); err != nil {
			return nil, err
		}
		list = append(list, &loan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
