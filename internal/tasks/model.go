package tasks

import "time"

type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	CourseID    int64      `json:"course_id"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// Update is a partial change; nil fields keep their stored value.
type Update struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}
