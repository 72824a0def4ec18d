package enrollments

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"educonnect/internal/db"
)

var (
	ErrNotFound         = errors.New("enrollment not found")
	ErrDuplicate        = errors.New("user already enrolled in course")
	ErrUnknownReference = errors.New("user or course does not exist")
)

type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store {
	return &Store{db: conn}
}

func (s *Store) List(ctx context.Context) ([]Enrollment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, course_id, enrolled_at FROM enrollments ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []Enrollment{}
	for rows.Next() {
		var e Enrollment
		if err := rows.Scan(&e.ID, &e.UserID, &e.CourseID, &e.EnrolledAt); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) Create(ctx context.Context, e *Enrollment) error {
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = time.Now().UTC()
	}
	const q = `
		INSERT INTO enrollments (user_id, course_id, enrolled_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, q, e.UserID, e.CourseID, e.EnrolledAt).Scan(&e.ID)
	switch {
	case db.IsUniqueViolation(err):
		return ErrDuplicate
	case db.IsForeignKeyViolation(err):
		return ErrUnknownReference
	}
	return err
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM enrollments WHERE id = $1", id)
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
