package store

import (
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/epustaka/epustaka/log"
	"github.com/epustaka/epustaka/model"
)

// UpsertReview writes a member's review of a book, replacing any earlier
// one. The (member_id, book_id) unique constraint makes this at most one
// review per pair.
func (s *Store) UpsertReview(review *model.Review) (*model.Review, error) {
	stmt := `
		INSERT INTO review (
			member_id,
			book_id,
			rating,
			body
		) VALUES (?, ?, ?, ?)
		ON CONFLICT(member_id, book_id) DO UPDATE
		SET
			rating = EXCLUDED.rating,
			body = EXCLUDED.body,
			updated_ts = strftime('%s', 'now')
		RETURNING id, member_id, book_id, rating, body, created_ts, updated_ts`
	args := []any{review.MemberID, review.BookID, review.Rating, review.Body}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	var newReview model.Review
	if err := tx.QueryRow(stmt, args...).Scan(
		&newReview.ID,
		&newReview.MemberID,
		&newReview.BookID,
		&newReview.Rating,
		&newReview.Body,
		&newReview.CreatedTs,
		&newReview.UpdatedTs,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &newReview, nil
}

func (s *Store) GetReview(find *model.FindReview) (*model.Review, error) {
	limit := 1
	find.Limit = &limit
	list, err := s.ListReviews(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) ListReviews(find *model.FindReview) ([]*model.Review, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "r.id = ?"), append(args, *v)
	}
	if v := find.MemberID; v != nil {
		where, args = append(where, "r.member_id = ?"), append(args, *v)
	}
	if v := find.BookID; v != nil {
		where, args = append(where, "r.book_id = ?"), append(args, *v)
	}

	query := `
		SELECT
			r.id,
			r.member_id,
			r.book_id,
			r.rating,
			r.body,
			r.created_ts,
			r.updated_ts,
			u.username
		FROM review r
		JOIN user u ON u.id = r.member_id
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY r.created_ts DESC`
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
	}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", query, args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Error("Failed to query reviews", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Review, 0)
	for rows.Next() {
		var review model.Review
		if err := rows.Scan(
			&review.ID,
			&review.MemberID,
			&review.BookID,
			&review.Rating,
			&review.Body,
			&review.CreatedTs,
			&review.UpdatedTs,
			&review.Member,
		); err != nil {
			return nil, err
		}
		list = append(list, &review)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) GetReviewSummary(bookID int32) (*model.ReviewSummary, error) {
	query := `
		SELECT COUNT(*), COALESCE(AVG(rating), 0)
		FROM review
		WHERE book_id = ?`

	summary := model.ReviewSummary{BookID: bookID}
	if err := s.db.QueryRow(query, bookID).Scan(&summary.Count, &summary.Average); err != nil {
		if err == sql.ErrNoRows {
			return &summary, nil
		}
		return nil, err
	}
	return &summary, nil
}

func (s *Store) RemoveReview(reviewID int32) error {
	stmt := `DELETE FROM review WHERE id = ?`

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stmt, reviewID); err != nil {
		return err
	}
	return tx.Commit()
}
