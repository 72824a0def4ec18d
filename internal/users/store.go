package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"educonnect/internal/auth"
	"educonnect/internal/db"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

// Update carries a partial profile change; nil fields are left untouched.
type Update struct {
	Name  *string    `json:"name"`
	Email *string    `json:"email"`
	Role  *auth.Role `json:"role"`
}

type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store {
	return &Store{db: conn}
}

const userColumns = "id, name, email, role, created_at"

func scanUsers(rows *sql.Rows) ([]auth.User, error) {
	defer rows.Close()
	res := []auth.User{}
	for rows.Next() {
		var u auth.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) List(ctx context.Context) ([]auth.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	return scanUsers(rows)
}

func (s *Store) ListByRole(ctx context.Context, role auth.Role) ([]auth.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE role = $1 ORDER BY name, id", string(role))
	if err != nil {
		return nil, err
	}
	return scanUsers(rows)
}

// ListStudentsNotInCourse returns students with no enrollment in courseID.
func (s *Store) ListStudentsNotInCourse(ctx context.Context, courseID int64) ([]auth.User, error) {
	const q = `
		SELECT ` + userColumns + ` FROM users u
		WHERE u.role = 'Student'
		  AND NOT EXISTS (SELECT 1 FROM enrollments e WHERE e.user_id = u.id AND e.course_id = $1)
		ORDER BY u.name, u.id
	`
	rows, err := s.db.QueryContext(ctx, q, courseID)
	if err != nil {
		return nil, err
	}
	return scanUsers(rows)
}

func (s *Store) Get(ctx context.Context, id string) (*auth.User, error) {
	var u auth.User
	err := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: strings.TrimSpace(*p), Valid: true}
}

func (s *Store) Update(ctx context.Context, id string, upd Update) (*auth.User, error) {
	const q = `
		UPDATE users SET
			name  = COALESCE($2, name),
			email = COALESCE($3, email),
			role  = COALESCE($4, role)
		WHERE id = $1
		RETURNING ` + userColumns
	var role sql.NullString
	if upd.Role != nil {
		role = sql.NullString{String: string(*upd.Role), Valid: true}
	}
	var u auth.User
	err := s.db.QueryRowContext(ctx, q, id, nullString(upd.Name), nullString(upd.Email), role).
		Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
