package store

import (
	"database/sql"
	"embed"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/epustaka/epustaka/config"
	"github.com/epustaka/epustaka/log"
	"github.com/epustaka/epustaka/model"
)

// Initialize the logger and config
func init() {
	config.Opts = config.GetDefaultOptions()
	log.Logger = log.NewLogger()
}

//go:embed db/migration
var testMigrationFS embed.FS

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite", t.TempDir()+"/epustaka_test.db")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema, err := testMigrationFS.ReadFile("db/migration/LATEST_SCHEMA.sql")
	if err != nil {
		t.Fatalf("Failed to read schema: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}

	return NewStore(db)
}

func createTestUser(t *testing.T, s *Store, username string, role model.Role) *model.User {
	t.Helper()
	user, err := s.CreateUser(&model.User{
		Username:     username,
		PasswordHash: "test",
		Role:         role,
	})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func createTestBook(t *testing.T, s *Store, title string, licenses int) *model.Book {
	t.Helper()
	book, err := s.AddBook(&model.Book{
		Title:    title,
		Author:   "Test Author",
		Slug:     title,
		Licenses: licenses,
	})
	if err != nil {
		t.Fatalf("Failed to add book: %v", err)
	}
	return book
}
