package lending // import "github.com/epustaka/epustaka/lending"

import "github.com/pkg/errors"

var (
	// ErrOutOfStock means the book has no free license slot.
	ErrOutOfStock = errors.New("book is out of stock")
	// ErrAlreadyBorrowed means the member already holds a requested or
	// active loan for the book.
	ErrAlreadyBorrowed = errors.New("book already borrowed by this member")
	// ErrTooManyLoans means the member hit the configured active-loan cap.
	ErrTooManyLoans = errors.New("member has too many open loans")
	// ErrInvalidState means the loan is not in the state the transition
	// requires.
	ErrInvalidState = errors.New("invalid loan state for this transition")
	// ErrNotFound means the referenced loan or book does not exist.
	ErrNotFound = errors.New("loan or book not found")
	// ErrForbidden means the acting identity lacks the admin role the
	// operation requires.
	ErrForbidden = errors.New("operation requires the admin role")
)
