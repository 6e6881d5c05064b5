package model

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	// LoanRequested is a borrow request waiting for approval.
	LoanRequested LoanStatus = "REQUESTED"
	// LoanActive is a checked-out loan.
	LoanActive LoanStatus = "ACTIVE"
	// LoanCompleted is a returned loan.
	LoanCompleted LoanStatus = "COMPLETED"
	// LoanDeclined is a rejected borrow request.
	LoanDeclined LoanStatus = "DECLINED"
)

func (e LoanStatus) String() string {
	return string(e)
}

// Valid reports whether the status is one of the four lifecycle states.
func (e LoanStatus) Valid() bool {
	switch e {
	case LoanRequested, LoanActive, LoanCompleted, LoanDeclined:
		return true
	}
	return false
}

// Loan is one borrowing transaction between a member and a book.
// LoanDate and DueDate are "YYYY-MM-DD" strings, empty until the loan is
// approved. Once the loan is active or completed both are set and
// DueDate >= LoanDate.
type Loan struct {
	ID int32 `json:"id"`

	CreatedTs int64 `json:"created_ts"`
	UpdatedTs int64 `json:"updated_ts"`

	MemberID int32      `json:"member_id"`
	BookID   int32      `json:"book_id"`
	Status   LoanStatus `json:"status"`
	LoanDate string     `json:"loan_date"`
	DueDate  string     `json:"due_date"`
}

type FindLoan struct {
	ID       *int32      `json:"id"`
	MemberID *int32      `json:"member_id"`
	BookID   *int32      `json:"book_id"`
	Status   *LoanStatus `json:"status"`

	// StatusIn filters on any of the given states, used by the
	// already-borrowed check.
	StatusIn []LoanStatus `json:"status_in"`
	// The maximum number of loans to return.
	Limit *int `json:"limit"`
}

// LoanDetail is a loan joined with its book for the member shelf and the
// admin console.
type LoanDetail struct {
	Loan
	BookTitle  string `json:"book_title"`
	BookAuthor string `json:"book_author"`
	Member     string `json:"member"`
}

type LoanCreateRequest struct {
	BookID int32 `json:"book_id"`
	// MemberID and Status are only honored for admin manual entry.
	MemberID int32      `json:"member_id"`
	Status   LoanStatus `json:"status"`
}
