package store

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/epustaka/epustaka/log"
	"github.com/epustaka/epustaka/model"
)

func (s *Store) GetUser(find *model.FindUser) (*model.User, error) {
	if find.ID != nil {
		if cache, ok := s.UserCache.Load(*find.ID); ok {
			return cache.(*model.User), nil
		}
	}

	list, err := s.ListUsers(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	user := list[0]
	s.UserCache.Store(user.ID, user)
	return user, nil
}

func (s *Store) ListUsers(find *model.FindUser) ([]*model.User, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.RowStatus; v != nil {
		where, args = append(where, "row_status = ?"), append(args, *v)
	}
	if v := find.Username; v != nil {
		where, args = append(where, "username = ?"), append(args, *v)
	}
	if v := find.Role; v != nil {
		where, args = append(where, "role = ?"), append(args, *v)
	}
	if v := find.Email; v != nil {
		where, args = append(where, "email = ?"), append(args, *v)
	}

	// Password hashes come back here, strip them before any response.
	// Use response.UserResponse for client payloads.
	query := `
		SELECT
			id,
			username,
			role,
			email,
			nickname,
			password_hash,
			created_ts,
			updated_ts,
			last_login_ts,
			row_status
		FROM user
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC, row_status DESC`
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
	}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", query, args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Debug("Error querying users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.User, 0)
	for rows.Next() {
		var user model.User
		// The scan order must match the select order
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Role,
			&user.Email,
			&user.Nickname,
			&user.PasswordHash,
			&user.CreatedTs,
			&user.UpdatedTs,
			&user.LastLoginTs,
			&user.RowStatus,
		); err != nil {
			return nil, err
		}
		list = append(list, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) CreateUser(user *model.User) (*model.User, error) {
	stmt := `
		INSERT INTO user (
			username,
			role,
			email,
			nickname,
			password_hash
		) VALUES (?, ?, ?, ?, ?)
		RETURNING id, username, role, email, nickname, password_hash, created_ts, updated_ts, last_login_ts, row_status`
	args := []any{user.Username, user.Role, user.Email, user.Nickname, user.PasswordHash}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	var newUser model.User
	if err := tx.QueryRow(stmt, args...).Scan(
		&newUser.ID,
		&newUser.Username,
		&newUser.Role,
		&newUser.Email,
		&newUser.Nickname,
		&newUser.PasswordHash,
		&newUser.CreatedTs,
		&newUser.UpdatedTs,
		&newUser.LastLoginTs,
		&newUser.RowStatus,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &newUser, nil
}

func (s *Store) SetLastLogin(userID int32) {
	stmt := `UPDATE user SET last_login_ts = ? WHERE id = ?`

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	if _, err := s.db.Exec(stmt, time.Now().Unix(), userID); err != nil {
		log.Warn("Failed to set last login", zap.Int32("user_id", userID), zap.Error(err))
	}
	s.UserCache.Delete(userID)
}

func (s *Store) ArchiveUser(userID int32) error {
	stmt := `UPDATE user SET row_status = ?, updated_ts = ? WHERE id = ?`

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stmt, model.Archived, time.Now().Unix(), userID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.UserCache.Delete(userID)
	return nil
}
