package tasks

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"educonnect/internal/httpx"
)

type Repository interface {
	List(ctx context.Context) ([]Task, error)
	ListByCourse(ctx context.Context, courseID int64) ([]Task, error)
	Get(ctx context.Context, id int64) (*Task, error)
	Create(ctx context.Context, t *Task) error
	Update(ctx context.Context, id int64, upd Update) (*Task, error)
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	Store  Repository
	Logger *slog.Logger
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.NotFound(w, "task does not exist")
	case errors.Is(err, ErrCourseNotFound):
		httpx.NotFound(w, "course does not exist")
	default:
		h.Logger.Error(msg, "err", err)
		httpx.Internal(w)
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ts, err := h.Store.List(r.Context())
	if err != nil {
		h.fail(w, "list tasks", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ts)
}

// ListForCourse lists the tasks of the {id} path course.
func (h *Handler) ListForCourse(w http.ResponseWriter, r *http.Request) {
	courseID, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	ts, err := h.Store.ListByCourse(r.Context(), courseID)
	if err != nil {
		h.fail(w, "list course tasks", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ts)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	t, err := h.Store.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get task", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

// Validate checks the fields required to store a task.
func (t *Task) Validate() error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return errors.New("title is required")
	}
	if t.CourseID <= 0 {
		return errors.New("course_id is required")
	}
	return nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var t Task
	if err := httpx.DecodeJSON(w, r, &t); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	if err := t.Validate(); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	if err := h.Store.Create(r.Context(), &t); err != nil {
		h.fail(w, "create task", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, t)
}

// CreateInCourse creates a task in the {courseId} path course, ignoring any
// course_id in the body.
func (h *Handler) CreateInCourse(w http.ResponseWriter, r *http.Request) {
	courseID, err := httpx.PathInt64(r, "courseId")
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	var t Task
	if err := httpx.DecodeJSON(w, r, &t); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	t.CourseID = courseID
	if err := t.Validate(); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	if err := h.Store.Create(r.Context(), &t); err != nil {
		h.fail(w, "create course task", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	var upd Update
	if err := httpx.DecodeJSON(w, r, &upd); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		httpx.BadRequest(w, "title cannot be empty")
		return
	}
	t, err := h.Store.Update(r.Context(), id, upd)
	if err != nil {
		h.fail(w, "update task", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	if err := h.Store.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete task", err)
		return
	}
	httpx.WriteNoContent(w)
}
