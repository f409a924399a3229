// internal/store/users.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"phoneplan-workers/internal/models"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, name, email, phone, password_hash, is_admin`

// GetByEmail looks a user up by case-insensitive email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = $1`,
		normalizeEmail(email))
	return scanUser("users.get_by_email", row)
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser("users.get_by_id", row)
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, queryError("users.list", err)
	}
	defer rows.Close()

	out := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.IsAdmin); err != nil {
			return nil, queryError("users.list", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("users.list", err)
	}
	return out, nil
}

// Create inserts u with its email lower-cased. u.PasswordHash must already
// hold a bcrypt hash.
func (s *UserStore) Create(ctx context.Context, u *models.User) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, phone, password_hash, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		u.Name, normalizeEmail(u.Email), u.Phone, u.PasswordHash, u.IsAdmin,
	).Scan(&id)
	switch {
	case isViolation(err, pqUniqueViolation):
		return 0, ErrDuplicateEmail
	case err != nil:
		return 0, queryError("users.create", err)
	}
	return id, nil
}

// Update rewrites a user's profile. The stored password hash is replaced
// only when u.PasswordHash is set.
func (s *UserStore) Update(ctx context.Context, u *models.User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET name = $1, email = $2, phone = $3, is_admin = $4,
		    password_hash = COALESCE(NULLIF($5::text, ''), password_hash)
		WHERE id = $6`,
		u.Name, normalizeEmail(u.Email), u.Phone, u.IsAdmin, u.PasswordHash, u.ID)
	if isViolation(err, pqUniqueViolation) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return queryError("users.update", err)
	}
	n, err := res.RowsAffected()
	return rowsAffected("users.update", n, err)
}

// Delete removes a user. Users that still hold subscriptions are kept and
// ErrInUse is returned.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if isViolation(err, pqForeignKeyViolation) {
		return ErrInUse
	}
	if err != nil {
		return queryError("users.delete", err)
	}
	n, err := res.RowsAffected()
	return rowsAffected("users.delete", n, err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func scanUser(op string, row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, queryError(op, err)
	}
	return &u, nil
}
