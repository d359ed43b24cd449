// Package sqlite implements the repositories on an embedded sqlite
// database. It exposes the same operations and ordering semantics as the
// flat-file store: rowid order is storage order, and an update re-inserts
// the record so it moves to the end of the collection.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"minitweet/internal/domain"
	"minitweet/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	user_id TEXT PRIMARY KEY,
	email TEXT NOT NULL,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	birthday TEXT,
	password_hash TEXT NOT NULL
);
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (user_id, email, first_name, last_name, birthday, password_hash)
VALUES (?, ?, ?, ?, ?, ?)`,
		user.UserID.String(),
		user.Email,
		user.FirstName,
		user.LastName,
		birthdayValue(user.Birthday),
		user.PasswordHash,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return repository.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT user_id, email, first_name, last_name, birthday, password_hash
FROM users
ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT user_id, email, first_name, last_name, birthday, password_hash
FROM users
WHERE user_id = ?`,
		id.String(),
	)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT user_id, email, first_name, last_name, birthday, password_hash
FROM users
WHERE email = ? COLLATE NOCASE
ORDER BY rowid
LIMIT 1`,
		email,
	)
	return scanUser(row)
}

func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, user *domain.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update user: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete user for update: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO users (user_id, email, first_name, last_name, birthday, password_hash)
VALUES (?, ?, ?, ?, ?, ?)`,
		user.UserID.String(),
		user.Email,
		user.FirstName,
		user.LastName,
		birthdayValue(user.Birthday),
		user.PasswordHash,
	); err != nil {
		return fmt.Errorf("reinsert user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update user: %w", err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func birthdayValue(d *domain.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var (
		user     domain.User
		rawID    string
		birthday sql.NullString
	)
	if err := row.Scan(
		&rawID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&birthday,
		&user.PasswordHash,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	user.UserID = id

	if birthday.Valid && birthday.String != "" {
		d, err := domain.ParseDate(birthday.String)
		if err != nil {
			return nil, fmt.Errorf("parse user birthday: %w", err)
		}
		user.Birthday = &d
	}
	return &user, nil
}
