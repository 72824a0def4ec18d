package grades

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"educonnect/internal/db"
)

var (
	ErrNotFound     = errors.New("submission not found")
	ErrTaskNotFound = errors.New("task or user not found")
)

type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store {
	return &Store{db: conn}
}

const gradeColumns = "id, user_id, task_id, score, link"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGrade(row rowScanner) (*Grade, error) {
	var (
		g     Grade
		score sql.NullFloat64
		link  sql.NullString
	)
	if err := row.Scan(&g.ID, &g.UserID, &g.TaskID, &score, &link); err != nil {
		return nil, err
	}
	if score.Valid {
		g.Score = &score.Float64
	}
	if link.Valid {
		g.Link = &link.String
	}
	return &g, nil
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	UserID string
	TaskID int64
	Graded *bool
	Limit  int
}

const (
	defaultListLimit = 200
	maxListLimit     = 1000
)

func (s *Store) List(ctx context.Context, f Filter) ([]Grade, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if f.UserID != "" {
		args = append(args, f.UserID)
		clauses = append(clauses, "user_id = $"+strconv.Itoa(len(args)))
	}
	if f.TaskID > 0 {
		args = append(args, f.TaskID)
		clauses = append(clauses, "task_id = $"+strconv.Itoa(len(args)))
	}
	if f.Graded != nil {
		if *f.Graded {
			clauses = append(clauses, "score IS NOT NULL")
		} else {
			clauses = append(clauses, "score IS NULL")
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	query := "SELECT " + gradeColumns + " FROM grades WHERE " + strings.Join(clauses, " AND ") +
		" ORDER BY task_id, user_id LIMIT " + strconv.Itoa(limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []Grade{}
	for rows.Next() {
		g, err := scanGrade(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// SubmitLink records or replaces the user's submission link for a task. An
// existing score is kept.
func (s *Store) SubmitLink(ctx context.Context, userID string, taskID int64, link string) (*Grade, error) {
	const q = `
		INSERT INTO grades (user_id, task_id, link)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, task_id) DO UPDATE SET link = EXCLUDED.link
		RETURNING ` + gradeColumns
	g, err := scanGrade(s.db.QueryRowContext(ctx, q, userID, taskID, link))
	if db.IsForeignKeyViolation(err) {
		return nil, ErrTaskNotFound
	}
	return g, err
}

// SetScore grades an existing submission.
func (s *Store) SetScore(ctx context.Context, userID string, taskID int64, score float64) (*Grade, error) {
	const q = `
		UPDATE grades SET score = $3
		WHERE user_id = $1 AND task_id = $2
		RETURNING ` + gradeColumns
	g, err := scanGrade(s.db.QueryRowContext(ctx, q, userID, taskID, score))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return g, err
}
