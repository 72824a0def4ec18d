package courses

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"educonnect/internal/auth"
	"educonnect/internal/db"
)

var (
	ErrNotFound      = errors.New("course not found")
	ErrUnknownMember = errors.New("unknown user")
)

type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store {
	return &Store{db: conn}
}

const courseColumns = "c.id, c.name, c.description, c.creator_id, c.created_at"

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Course, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []Course{}
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatorID, &c.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) List(ctx context.Context) ([]Course, error) {
	return s.query(ctx, "SELECT "+courseColumns+" FROM courses c ORDER BY c.id")
}

func (s *Store) Get(ctx context.Context, id int64) (*Course, error) {
	var c Course
	err := s.db.QueryRowContext(ctx, "SELECT "+courseColumns+" FROM courses c WHERE c.id = $1", id).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatorID, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListByCreator(ctx context.Context, creatorID string) ([]Course, error) {
	return s.query(ctx, "SELECT "+courseColumns+" FROM courses c WHERE c.creator_id = $1 ORDER BY c.id", creatorID)
}

// ListByMember returns the courses userID is enrolled in.
func (s *Store) ListByMember(ctx context.Context, userID string) ([]Course, error) {
	const q = `
		SELECT ` + courseColumns + ` FROM courses c
		JOIN enrollments e ON e.course_id = c.id
		WHERE e.user_id = $1
		ORDER BY c.id
	`
	return s.query(ctx, q, userID)
}

func (s *Store) Create(ctx context.Context, c *Course) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	const q = `
		INSERT INTO courses (name, description, creator_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, q, c.Name, c.Description, c.CreatorID, c.CreatedAt).Scan(&c.ID)
	if db.IsForeignKeyViolation(err) {
		return ErrUnknownMember
	}
	return err
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM courses WHERE id = $1", id)
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

// Members returns the users enrolled in a course, optionally only students.
func (s *Store) Members(ctx context.Context, courseID int64, studentsOnly bool) ([]auth.User, error) {
	q := `
		SELECT u.id, u.name, u.email, u.role, u.created_at FROM users u
		JOIN enrollments e ON e.user_id = u.id
		WHERE e.course_id = $1`
	args := []any{courseID}
	if studentsOnly {
		q += " AND u.role = $2"
		args = append(args, string(auth.RoleStudent))
	}
	q += " ORDER BY u.name, u.id"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
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

// AddMembers enrolls userIDs in a course, skipping existing enrollments. It
// returns how many were added.
func (s *Store) AddMembers(ctx context.Context, courseID int64, userIDs []string) (int64, error) {
	const q = `
		INSERT INTO enrollments (user_id, course_id)
		SELECT DISTINCT u, $1 FROM unnest($2::text[]) AS u
		ON CONFLICT (user_id, course_id) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, q, courseID, pq.Array(userIDs))
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return 0, ErrUnknownMember
		}
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) RemoveMembers(ctx context.Context, courseID int64, userIDs []string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM enrollments WHERE course_id = $1 AND user_id = ANY($2)", courseID, pq.Array(userIDs))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
