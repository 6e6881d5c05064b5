package store // import "github.com/epustaka/epustaka/store"

import (
	"database/sql"
	"sync"
)

type Store struct {
	db *sql.DB
	// sqlite runs single-writer, serialize our own write transactions
	dbLock sync.Mutex

	UserCache sync.Map // map[int32]*model.User
	BookCache sync.Map // map[int32]*model.Book
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db: db,
	}
}

func (s *Store) DBStats() sql.DBStats {
	return s.db.Stats()
}

func (s *Store) Ping() error {
	return s.db.Ping()
}

type MigrationHistory struct {
	Version   string
	CreatedTs int64
}

type UpsertMigrationHistory struct {
	Version string
}

type FindMigrationHistory struct {
}
