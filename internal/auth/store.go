package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"educonnect/internal/db"
)

// CredentialStore is the persistence the Service depends on.
type CredentialStore interface {
	FindByIdentity(ctx context.Context, id string) (*User, error)
	ExistsByIdentityOrEmail(ctx context.Context, id, email string) (bool, error)
	Create(ctx context.Context, u *User) error
}

type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store {
	return &Store{db: conn}
}

func (s *Store) FindByIdentity(ctx context.Context, id string) (*User, error) {
	const q = `SELECT id, name, email, password_hash, role, created_at FROM users WHERE id = $1`
	row := s.db.QueryRowContext(ctx, q, id)
	u := &User{}
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *Store) ExistsByIdentityOrEmail(ctx context.Context, id, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 OR lower(email) = lower($2))`
	var exists bool
	if err := s.db.QueryRowContext(ctx, q, id, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts u. A concurrent registration that wins the race surfaces as
// ErrDuplicateIdentity through the table's unique constraints.
func (s *Store) Create(ctx context.Context, u *User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	const q = `
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := s.db.QueryRowContext(ctx, q, u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt).
		Scan(&u.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateIdentity
		}
		return err
	}
	return nil
}
