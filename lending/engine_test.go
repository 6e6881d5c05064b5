package lending

import (
	"database/sql"
	"os"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/epustaka/epustaka/config"
	"github.com/epustaka/epustaka/log"
	"github.com/epustaka/epustaka/model"
	"github.com/epustaka/epustaka/store"
)

// Initialize the logger and config
func init() {
	config.Opts = config.GetDefaultOptions()
	log.Logger = log.NewLogger()
}

const testSchema = `
CREATE TABLE user (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
  updated_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
  row_status TEXT NOT NULL DEFAULT 'NORMAL',
  username TEXT NOT NULL UNIQUE,
  role TEXT NOT NULL DEFAULT 'MEMBER',
  email TEXT NOT NULL DEFAULT '',
  nickname TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  last_login_ts BIGINT NOT NULL DEFAULT 0
);
CREATE TABLE book (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
  updated_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
  row_status TEXT NOT NULL DEFAULT 'NORMAL',
  title TEXT NOT NULL,
  author TEXT NOT NULL DEFAULT '',
  slug TEXT NOT NULL UNIQUE,
  licenses INTEGER NOT NULL DEFAULT 1,
  borrowed INTEGER NOT NULL DEFAULT 0,
  ebook_path TEXT NOT NULL DEFAULT '',
  cover_path TEXT NOT NULL DEFAULT ''
);
CREATE TABLE loan (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
  updated_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
  member_id INTEGER NOT NULL,
  book_id INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'REQUESTED',
  loan_date TEXT NOT NULL DEFAULT '',
  due_date TEXT NOT NULL DEFAULT ''
);
`

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	dir, err := os.MkdirTemp(os.TempDir(), "epustaka-lending-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	db, err := sql.Open("sqlite", dir+"/test.db")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}

	s := store.NewStore(db)
	return NewEngine(s), s
}

func createMember(t *testing.T, s *store.Store, username string) *model.User {
	t.Helper()
	user, err := s.CreateUser(&model.User{
		Username:     username,
		PasswordHash: "test",
		Role:         model.RoleMember,
	})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func createAdmin(t *testing.T, s *store.Store) *model.User {
	t.Helper()
	user, err := s.CreateUser(&model.User{
		Username:     "admin",
		PasswordHash: "test",
		Role:         model.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("Failed to create admin: %v", err)
	}
	return user
}

func createBook(t *testing.T, s *store.Store, title string, licenses int) *model.Book {
	t.Helper()
	book, err := s.AddBook(&model.Book{
		Title:    title,
		Slug:     title,
		Licenses: licenses,
	})
	if err != nil {
		t.Fatalf("Failed to create book: %v", err)
	}
	return book
}

func TestAvailabilityClamp(t *testing.T) {
	engine, s := newTestEngine(t)
	book := createBook(t, s, "clamped", 1)

	available, err := engine.Availability(book.ID)
	if err != nil {
		t.Fatalf("Failed to get availability: %v", err)
	}
	if available != 1 {
		t.Fatalf("Expected availability 1, got %d", available)
	}

	// Force the counters to diverge, availability must clamp at zero
	if _, err := s.IncrementBorrowed(book.ID); err != nil {
		t.Fatalf("Failed to increment: %v", err)
	}
	if _, err := s.UpdateBook(book.ID, &model.BookUpdateRequest{Licenses: intPtr(0)}); err != nil {
		t.Fatalf("Failed to shrink licenses: %v", err)
	}
	available, err = engine.Availability(book.ID)
	if err != nil {
		t.Fatalf("Failed to get availability: %v", err)
	}
	if available != 0 {
		t.Fatalf("Expected clamped availability 0, got %d", available)
	}
}

func TestRequestCreatesRequestedLoan(t *testing.T) {
	engine, s := newTestEngine(t)
	member := createMember(t, s, "alice")
	book := createBook(t, s, "ulysses", 1)

	loan, err := engine.Request(member, book.ID)
	if err != nil {
		t.Fatalf("Failed to request loan: %v", err)
	}
	if loan.Status != model.LoanRequested {
		t.Fatalf("Expected status REQUESTED, got %s", loan.Status)
	}
	if loan.LoanDate != "" || loan.DueDate != "" {
		t.Fatalf("Dates should not be stamped before approval")
	}

	// Requesting does not consume a license slot
	available, _ := engine.Availability(book.ID)
	if available != 1 {
		t.Fatalf("Expected availability 1 after request, got %d", available)
	}
}

func TestRequestFailsWhenAlreadyBorrowed(t *testing.T) {
	engine, s := newTestEngine(t)
	member := createMember(t, s, "alice")
	book := createBook(t, s, "dubliners", 2)

	if _, err := engine.Request(member, book.ID); err != nil {
		t.Fatalf("Failed to request loan: %v", err)
	}
	if _, err := engine.Request(member, book.ID); err != ErrAlreadyBorrowed {
		t.Fatalf("Expected ErrAlreadyBorrowed, got %v", err)
	}
}

func TestRequestFailsWhenOutOfStock(t *testing.T) {
	engine, s := newTestEngine(t)
	member := createMember(t, s, "alice")
	book := createBook(t, s, "empty", 0)

	if _, err := engine.Request(member, book.ID); err != ErrOutOfStock {
		t.Fatalf("Expected ErrOutOfStock, got %v", err)
	}
}

func TestRequestUnknownBook(t *testing.T) {
	engine, s := newTestEngine(t)
	member := createMember(t, s, "alice")

	if _, err := engine.Request(member, 9999); err != ErrNotFound {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestApproveStampsDatesAndClaimsSlot(t *testing.T) {
	engine, s := newTestEngine(t)
	member := createMember(t, s, "alice")
	admin := createAdmin(t, s)
	book := createBook(t, s, "hamlet", 1)

	loan, err := engine.Request(member, book.ID)
	if err != nil {
		t.Fatalf("Failed to request loan: %v", err)
	}

	approved, err := engine.Approve(admin, loan.ID)
	if err != nil {
		t.Fatalf("Failed to approve loan: %v", err)
	}
	if approved.Status != model.LoanActive {
		t.Fatalf("Expected status ACTIVE, got %s", approved.Status)
	}

	today := time.Now().Format(DateLayout)
	due := time.Now().Add(time.Duration(config.Opts.LoanPeriodDays) * 24 * time.Hour).Format(DateLayout)
	if approved.LoanDate != today {
		t.Fatalf("Expected loan date %s, got %s", today, approved.LoanDate)
	}
	if approved.DueDate != due {
		t.Fatalf("Expected due date %s, got %s", due, approved.DueDate)
	}

	available, _ := engine.Availability(book.ID)
	if available != 0 {
		t.Fatalf("Expected availability 0 after approval, got %d", available)
	}

	// A second approval of the same loan must fail
	if _, err := engine.Approve(admin, loan.ID); err != ErrInvalidState {
		t.Fatalf("Expected ErrInvalidState on double approve, got %v", err)
	}
}

func TestApproveRequiresAdmin(t *testing.T) {
	engine, s := newTestEngine(t)
	member := createMember(t, s, "alice")
	book := createBook(t, s, "macbeth", 1)

	loan, err := engine.Request(member, book.ID)
	if err != nil {
		t.Fatalf("Failed to request loan: %v", err)
	}
	if _, err := engine.Approve(member, loan.ID); err != ErrForbidden {
		t.Fatalf("Expected ErrForbidden, got %v", err)
	}
}

func TestDeclineKeepsCounter(t *testing.T) {
	engine, s := newTestEngine(t)
	member := createMember(t, s, "alice")
	admin := createAdmin(t, s)
	book := createBook(t, s, "othello", 1)

	loan, err := engine.Request(member, book.ID)
	if err != nil {
		t.Fatalf("Failed to request loan: %v", err)
	}

	declined, err := engine.Decline(admin, loan.ID)
	if err != nil {
		t.Fatalf("Failed to decline loan: %v", err)
	}
	if declined.Status != model.LoanDeclined {
		t.Fatalf("Expected status DECLINED, got %s", declined.Status)
	}

	available, _ := engine.Availability(book.ID)
	if available != 1 {
		t.Fatalf("Expected availability 1 after decline, got %d", available)
	}

	// Declining again is an invalid transition
	if _, err := engine.Decline(admin, loan.ID); err != ErrInvalidState {
		t.Fatalf("Expected ErrInvalidState on double decline, got %v", err)
	}
}

func TestCompleteReleasesSlot(t *testing.T) {
	engine, s := newTestEngine(t)
	member := createMember(t, s, "alice")
	admin := createAdmin(t, s)
	book := createBook(t, s, "tempest", 1)

	loan, err := engine.Request(member, book.ID)
	if err != nil {
		t.Fatalf("Failed to request loan: %v", err)
	}
	if _, err := engine.Approve(admin, loan.ID); err != nil {
		t.Fatalf("Failed to approve loan: %v", err)
	}

	completed, err := engine.Complete(admin, loan.ID)
	if err != nil {
		t.Fatalf("Failed to complete loan: %v", err)
	}
	if completed.Status != model.LoanCompleted {
		t.Fatalf("Expected status COMPLETED, got %s", completed.Status)
	}

	// The license slot comes back after a full cycle
	available, _ := engine.Availability(book.ID)
	if available != 1 {
		t.Fatalf("Expected availability 1 after completion, got %d", available)
	}

	if _, err := engine.Complete(admin, loan.ID); err != ErrInvalidState {
		t.Fatalf("Expected ErrInvalidState on double complete, got %v", err)
	}
}

func TestSingleCopyScenario(t *testing.T) {
	// Book B has one license. M requests, admin approves, N is locked out.
	engine, s := newTestEngine(t)
	memberM := createMember(t, s, "member-m")
	memberN := createMember(t, s, "member-n")
	admin := createAdmin(t, s)
	book := createBook(t, s, "single-copy", 1)

	loan, err := engine.Request(memberM, book.ID)
	if err != nil {
		t.Fatalf("Failed to request loan: %v", err)
	}
	if loan.Status != model.LoanRequested {
		t.Fatalf("Expected status REQUESTED, got %s", loan.Status)
	}
	available, _ := engine.Availability(book.ID)
	if available != 1 {
		t.Fatalf("Availability should stay 1 until approval, got %d", available)
	}

	if _, err := engine.Approve(admin, loan.ID); err != nil {
		t.Fatalf("Failed to approve loan: %v", err)
	}
	available, _ = engine.Availability(book.ID)
	if available != 0 {
		t.Fatalf("Expected availability 0 after approval, got %d", available)
	}

	if _, err := engine.Request(memberN, book.ID); err != ErrOutOfStock {
		t.Fatalf("Expected ErrOutOfStock for second member, got %v", err)
	}
}

func TestApproveCapRace(t *testing.T) {
	// Two requested loans, one license: the second approval must lose at
	// the conditional increment, not over-allocate.
	engine, s := newTestEngine(t)
	memberM := createMember(t, s, "member-m")
	memberN := createMember(t, s, "member-n")
	admin := createAdmin(t, s)
	book := createBook(t, s, "contested", 2)

	loanM, err := engine.Request(memberM, book.ID)
	if err != nil {
		t.Fatalf("Failed to request loan: %v", err)
	}
	loanN, err := engine.Request(memberN, book.ID)
	if err != nil {
		t.Fatalf("Failed to request loan: %v", err)
	}

	// Shrink the stock after both requests passed the availability check
	if _, err := s.UpdateBook(book.ID, &model.BookUpdateRequest{Licenses: intPtr(1)}); err != nil {
		t.Fatalf("Failed to shrink licenses: %v", err)
	}

	if _, err := engine.Approve(admin, loanM.ID); err != nil {
		t.Fatalf("Failed to approve first loan: %v", err)
	}
	if _, err := engine.Approve(admin, loanN.ID); err != ErrOutOfStock {
		t.Fatalf("Expected ErrOutOfStock on second approve, got %v", err)
	}

	// The losing loan stays requested
	found, err := s.GetLoan(&model.FindLoan{ID: &loanN.ID})
	if err != nil {
		t.Fatalf("Failed to get loan: %v", err)
	}
	if found.Status != model.LoanRequested {
		t.Fatalf("Losing loan should stay REQUESTED, got %s", found.Status)
	}
}

func TestMaxActiveLoans(t *testing.T) {
	engine, s := newTestEngine(t)
	member := createMember(t, s, "greedy")

	config.Opts.MaxActiveLoans = 2
	defer func() { config.Opts.MaxActiveLoans = 5 }()

	for i, title := range []string{"one", "two"} {
		book := createBook(t, s, title, 1)
		if _, err := engine.Request(member, book.ID); err != nil {
			t.Fatalf("Request %d failed: %v", i, err)
		}
	}

	book := createBook(t, s, "three", 1)
	if _, err := engine.Request(member, book.ID); err != ErrTooManyLoans {
		t.Fatalf("Expected ErrTooManyLoans, got %v", err)
	}
}

func TestDeleteLoan(t *testing.T) {
	engine, s := newTestEngine(t)
	member := createMember(t, s, "alice")
	admin := createAdmin(t, s)
	book := createBook(t, s, "deleted", 1)

	loan, err := engine.Request(member, book.ID)
	if err != nil {
		t.Fatalf("Failed to request loan: %v", err)
	}

	if err := engine.Delete(member, loan.ID); err != ErrForbidden {
		t.Fatalf("Expected ErrForbidden for member delete, got %v", err)
	}
	if err := engine.Delete(admin, loan.ID); err != nil {
		t.Fatalf("Failed to delete loan: %v", err)
	}
	if err := engine.Delete(admin, loan.ID); err != ErrNotFound {
		t.Fatalf("Expected ErrNotFound on double delete, got %v", err)
	}
}

func TestManualEntryDefaultsToActive(t *testing.T) {
	engine, s := newTestEngine(t)
	member := createMember(t, s, "alice")
	admin := createAdmin(t, s)
	book := createBook(t, s, "manual", 1)

	loan, err := engine.CreateManual(admin, &model.LoanCreateRequest{
		MemberID: member.ID,
		BookID:   book.ID,
	})
	if err != nil {
		t.Fatalf("Failed to create manual loan: %v", err)
	}
	if loan.Status != model.LoanActive {
		t.Fatalf("Expected default status ACTIVE, got %s", loan.Status)
	}
	if loan.LoanDate == "" || loan.DueDate == "" {
		t.Fatalf("Active manual entry should stamp dates")
	}

	available, _ := engine.Availability(book.ID)
	if available != 0 {
		t.Fatalf("Expected availability 0 after manual active entry, got %d", available)
	}
}

func TestManualEntryMissingBookOrMember(t *testing.T) {
	engine, s := newTestEngine(t)
	member := createMember(t, s, "alice")
	admin := createAdmin(t, s)

	if _, err := engine.CreateManual(admin, &model.LoanCreateRequest{
		MemberID: member.ID,
		BookID:   9999,
		Status:   model.LoanRequested,
	}); err != ErrNotFound {
		t.Fatalf("Expected ErrNotFound for missing book, got %v", err)
	}

	// Default ACTIVE entry must report the missing book, not a stock problem.
	if _, err := engine.CreateManual(admin, &model.LoanCreateRequest{
		MemberID: member.ID,
		BookID:   9999,
	}); err != ErrNotFound {
		t.Fatalf("Expected ErrNotFound for missing book on active entry, got %v", err)
	}

	book := createBook(t, s, "manual", 1)
	if _, err := engine.CreateManual(admin, &model.LoanCreateRequest{
		MemberID: 9999,
		BookID:   book.ID,
	}); err != ErrNotFound {
		t.Fatalf("Expected ErrNotFound for missing member, got %v", err)
	}

	loans, err := s.ListLoans(&model.FindLoan{})
	if err != nil {
		t.Fatalf("Failed to list loans: %v", err)
	}
	if len(loans) != 0 {
		t.Fatalf("Expected no orphan loans, got %d", len(loans))
	}
}

func intPtr(v int) *int {
	return &v
}
