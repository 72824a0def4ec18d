package tasks

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"educonnect/internal/db"
)

var (
	ErrNotFound       = errors.New("task not found")
	ErrCourseNotFound = errors.New("course not found")
)

type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store {
	return &Store{db: conn}
}

const taskColumns = "id, title, description, course_id, due_date"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*Task, error) {
	var (
		t    Task
		desc sql.NullString
		due  sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.Title, &desc, &t.CourseID, &due); err != nil {
		return nil, err
	}
	if desc.Valid {
		t.Description = &desc.String
	}
	if due.Valid {
		d := due.Time.UTC()
		t.DueDate = &d
	}
	return &t, nil
}

func (s *Store) List(ctx context.Context) ([]Task, error) {
	return s.query(ctx, "SELECT "+taskColumns+" FROM tasks ORDER BY id")
}

func (s *Store) ListByCourse(ctx context.Context, courseID int64) ([]Task, error) {
	return s.query(ctx, "SELECT "+taskColumns+" FROM tasks WHERE course_id = $1 ORDER BY id", courseID)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) Get(ctx context.Context, id int64) (*Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func nullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: p.UTC(), Valid: true}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

// Create inserts t and fills its id. A missing course yields ErrCourseNotFound.
func (s *Store) Create(ctx context.Context, t *Task) error {
	const q = `
		INSERT INTO tasks (title, description, course_id, due_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, q, t.Title, nullString(t.Description), t.CourseID, nullTime(t.DueDate)).
		Scan(&t.ID)
	if db.IsForeignKeyViolation(err) {
		return ErrCourseNotFound
	}
	return err
}

func (s *Store) Update(ctx context.Context, id int64, upd Update) (*Task, error) {
	const q = `
		UPDATE tasks SET
			title       = COALESCE($2, title),
			description = COALESCE($3, description),
			due_date    = COALESCE($4, due_date)
		WHERE id = $1
		RETURNING ` + taskColumns
	t, err := scanTask(s.db.QueryRowContext(ctx, q, id,
		nullString(upd.Title), nullString(upd.Description), nullTime(upd.DueDate)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", id)
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
