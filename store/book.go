package store

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/epustaka/epustaka/log"
	"github.com/epustaka/epustaka/model"
)

func (s *Store) GetBook(find *model.FindBook) (*model.Book, error) {
	if find.ID != nil {
		if cache, ok := s.BookCache.Load(*find.ID); ok {
			return cache.(*model.Book), nil
		}
	}

	list, err := s.ListBooks(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	book := list[0]
	s.BookCache.Store(book.ID, book)
	return book, nil
}

func (s *Store) ListBooks(find *model.FindBook) ([]*model.Book, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.Title; v != nil {
		where, args = append(where, "title = ?"), append(args, *v)
	}
	if v := find.Author; v != nil {
		where, args = append(where, "author = ?"), append(args, *v)
	}
	if v := find.Slug; v != nil {
		where, args = append(where, "slug = ?"), append(args, *v)
	}

	// Default order by title
	orderBy := []string{"title"}
	if find.OrderBy != nil {
		orderBy = append(orderBy, *find.OrderBy)
	}
	if find.Random {
		orderBy = []string{"RANDOM()"}
	}

	query := `
		SELECT
			id,
			title,
			author,
			slug,
			licenses,
			borrowed,
			ebook_path,
			cover_path,
			created_ts,
			updated_ts,
			row_status
		FROM book
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY ` + strings.Join(orderBy, ", ")
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
	}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", query, args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Error("Failed to query books", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Book, 0)
	for rows.Next() {
		var book model.Book
		if err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.Author,
			&book.Slug,
			&book.Licenses,
			&book.Borrowed,
			&book.EbookPath,
			&book.CoverPath,
			&book.CreatedTs,
			&book.UpdatedTs,
			&book.RowStatus,
		); err != nil {
			log.Error("Failed to scan book", zap.Error(err))
			return nil, err
		}
		list = append(list, &book)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) AddBook(book *model.Book) (*model.Book, error) {
	stmt := `
		INSERT INTO book (
			title,
			author,
			slug,
			licenses,
			ebook_path,
			cover_path
		) VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, title, author, slug, licenses, borrowed, ebook_path, cover_path, created_ts, updated_ts, row_status`
	args := []any{book.Title, book.Author, book.Slug, book.Licenses, book.EbookPath, book.CoverPath}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	var newBook model.Book
	if err := tx.QueryRow(stmt, args...).Scan(
		&newBook.ID,
		&newBook.Title,
		&newBook.Author,
		&newBook.Slug,
		&newBook.Licenses,
		&newBook.Borrowed,
		&newBook.EbookPath,
		&newBook.CoverPath,
		&newBook.CreatedTs,
		&newBook.UpdatedTs,
		&newBook.RowStatus,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &newBook, nil
}

// UpdateBook applies the non-nil fields of the request. Borrowed is not
// reachable from here, the lending transitions are its only writer.
func (s *Store) UpdateBook(bookID int32, update *model.BookUpdateRequest) (*model.Book, error) {
	set, args := []string{}, []any{}

	if v := update.Title; v != nil {
		set, args = append(set, "title = ?"), append(args, *v)
	}
	if v := update.Author; v != nil {
		set, args = append(set, "author = ?"), append(args, *v)
	}
	if v := update.Licenses; v != nil {
		set, args = append(set, "licenses = ?"), append(args, *v)
	}
	if len(set) == 0 {
		return s.GetBook(&model.FindBook{ID: &bookID})
	}
	set, args = append(set, "updated_ts = ?"), append(args, time.Now().Unix())
	args = append(args, bookID)

	stmt := `
		UPDATE book SET ` + strings.Join(set, ", ") + `
		WHERE id = ?
		RETURNING id, title, author, slug, licenses, borrowed, ebook_path, cover_path, created_ts, updated_ts, row_status`

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	var book model.Book
	if err := tx.QueryRow(stmt, args...).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Slug,
		&book.Licenses,
		&book.Borrowed,
		&book.EbookPath,
		&book.CoverPath,
		&book.CreatedTs,
		&book.UpdatedTs,
		&book.RowStatus,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.BookCache.Store(book.ID, &book)
	return &book, nil
}

// SetBookFiles records the ingested ebook and cover paths for a book.
func (s *Store) SetBookFiles(bookID int32, ebookPath, coverPath *string) error {
	set, args := []string{}, []any{}
	if ebookPath != nil {
		set, args = append(set, "ebook_path = ?"), append(args, *ebookPath)
	}
	if coverPath != nil {
		set, args = append(set, "cover_path = ?"), append(args, *coverPath)
	}
	if len(set) == 0 {
		return nil
	}
	set, args = append(set, "updated_ts = ?"), append(args, time.Now().Unix())
	args = append(args, bookID)

	stmt := `UPDATE book SET ` + strings.Join(set, ", ") + ` WHERE id = ?`

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stmt, args...); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.BookCache.Delete(bookID)
	return nil
}

func (s *Store) RemoveBook(bookID int32) error {
	stmt := `DELETE FROM book WHERE id = ?`

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, []any{bookID}))

	if _, err := tx.Exec(stmt, bookID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.BookCache.Delete(bookID)
	return nil
}

// IncrementBorrowed bumps the borrowed counter only while it is below the
// license count, in one statement. Two concurrent approvals cannot both
// pass, the loser sees false and the caller reports out of stock.
func (s *Store) IncrementBorrowed(bookID int32) (bool, error) {
	stmt := `
		UPDATE book
		SET borrowed = borrowed + 1, updated_ts = ?
		WHERE id = ? AND borrowed < licenses`

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	res, err := s.db.Exec(stmt, time.Now().Unix(), bookID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	s.BookCache.Delete(bookID)
	return n > 0, nil
}

// DecrementBorrowed releases one license slot, floored at zero.
func (s *Store) DecrementBorrowed(bookID int32) (bool, error) {
	stmt := `
		UPDATE book
		SET borrowed = borrowed - 1, updated_ts = ?
		WHERE id = ? AND borrowed > 0`

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	res, err := s.db.Exec(stmt, time.Now().Unix(), bookID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	s.BookCache.Delete(bookID)
	return n > 0, nil
}
