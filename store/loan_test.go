package store

import (
	"database/sql"
	"testing"

	"github.com/pkg/errors"

	"github.com/epustaka/epustaka/model"
)

func TestCreateAndGetLoan(t *testing.T) {
	s := newTestStore(t)

	member := createTestUser(t, s, "member", model.RoleMember)
	book := createTestBook(t, s, "loan-book", 1)

	loan, err := s.CreateLoan(&model.Loan{
		MemberID: member.ID,
		BookID:   book.ID,
		Status:   model.LoanRequested,
	})
	if err != nil {
		t.Fatalf("Failed to create loan: %v", err)
	}
	if loan.Status != model.LoanRequested {
		t.Errorf("Expected status REQUESTED, got %s", loan.Status)
	}
	if loan.LoanDate != "" || loan.DueDate != "" {
		t.Errorf("Expected empty dates on a requested loan, got %q %q", loan.LoanDate, loan.DueDate)
	}

	found, err := s.GetLoan(&model.FindLoan{ID: &loan.ID})
	if err != nil {
		t.Fatalf("Failed to get loan: %v", err)
	}
	if found == nil || found.MemberID != member.ID {
		t.Errorf("Unexpected loan: %+v", found)
	}
}

func TestTransitionLoan(t *testing.T) {
	s := newTestStore(t)

	member := createTestUser(t, s, "member", model.RoleMember)
	book := createTestBook(t, s, "transition-book", 1)

	loan, err := s.CreateLoan(&model.Loan{
		MemberID: member.ID,
		BookID:   book.ID,
		Status:   model.LoanRequested,
	})
	if err != nil {
		t.Fatalf("Failed to create loan: %v", err)
	}

	loanDate, dueDate := "2026-09-01", "2026-09-08"
	active, err := s.TransitionLoan(loan.ID, model.LoanRequested, model.LoanActive, &loanDate, &dueDate)
	if err != nil {
		t.Fatalf("Failed to transition loan: %v", err)
	}
	if active.Status != model.LoanActive {
		t.Errorf("Expected status ACTIVE, got %s", active.Status)
	}
	if active.LoanDate != loanDate || active.DueDate != dueDate {
		t.Errorf("Expected dates to be stamped, got %q %q", active.LoanDate, active.DueDate)
	}

	// A stale transition from the old state must match nothing.
	_, err = s.TransitionLoan(loan.ID, model.LoanRequested, model.LoanDeclined, nil, nil)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("Expected sql.ErrNoRows for a stale transition, got %v", err)
	}

	found, _ := s.GetLoan(&model.FindLoan{ID: &loan.ID})
	if found.Status != model.LoanActive {
		t.Errorf("Loan state should be untouched, got %s", found.Status)
	}
}

func TestListLoansByStatusIn(t *testing.T) {
	s := newTestStore(t)

	member := createTestUser(t, s, "member", model.RoleMember)
	book := createTestBook(t, s, "status-book", 2)

	for _, status := range []model.LoanStatus{model.LoanRequested, model.LoanCompleted, model.LoanDeclined} {
		if _, err := s.CreateLoan(&model.Loan{
			MemberID: member.ID,
			BookID:   book.ID,
			Status:   status,
		}); err != nil {
			t.Fatalf("Failed to create loan: %v", err)
		}
	}

	open, err := s.ListLoans(&model.FindLoan{
		MemberID: &member.ID,
		StatusIn: []model.LoanStatus{model.LoanRequested, model.LoanActive},
	})
	if err != nil {
		t.Fatalf("Failed to list loans: %v", err)
	}
	if len(open) != 1 {
		t.Errorf("Expected 1 open loan, got %d", len(open))
	}
}

func TestListLoanDetails(t *testing.T) {
	s := newTestStore(t)

	member := createTestUser(t, s, "reader", model.RoleMember)
	book := createTestBook(t, s, "detail-book", 1)

	if _, err := s.CreateLoan(&model.Loan{
		MemberID: member.ID,
		BookID:   book.ID,
		Status:   model.LoanRequested,
	}); err != nil {
		t.Fatalf("Failed to create loan: %v", err)
	}

	details, err := s.ListLoanDetails(&model.FindLoan{MemberID: &member.ID})
	if err != nil {
		t.Fatalf("Failed to list loan details: %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("Expected 1 loan detail, got %d", len(details))
	}
	if details[0].BookTitle != book.Title {
		t.Errorf("Expected book title %q, got %q", book.Title, details[0].BookTitle)
	}
	if details[0].Member != member.Username {
		t.Errorf("Expected member %q, got %q", member.Username, details[0].Member)
	}
}

func TestListOverdueLoans(t *testing.T) {
	s := newTestStore(t)

	member := createTestUser(t, s, "late-reader", model.RoleMember)
	book := createTestBook(t, s, "overdue-book", 2)

	overdue := &model.Loan{
		MemberID: member.ID,
		BookID:   book.ID,
		Status:   model.LoanActive,
		LoanDate: "2026-08-01",
		DueDate:  "2026-08-08",
	}
	onTime := &model.Loan{
		MemberID: member.ID,
		BookID:   book.ID,
		Status:   model.LoanActive,
		LoanDate: "2026-08-30",
		DueDate:  "2026-09-06",
	}
	for _, loan := range []*model.Loan{overdue, onTime} {
		if _, err := s.CreateLoan(loan); err != nil {
			t.Fatalf("Failed to create loan: %v", err)
		}
	}

	loans, err := s.ListOverdueLoans("2026-09-01")
	if err != nil {
		t.Fatalf("Failed to list overdue loans: %v", err)
	}
	if len(loans) != 1 {
		t.Fatalf("Expected 1 overdue loan, got %d", len(loans))
	}
	if loans[0].DueDate != overdue.DueDate {
		t.Errorf("Expected due date %q, got %q", overdue.DueDate, loans[0].DueDate)
	}
}
