package enrollments

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"educonnect/internal/httpx"
)

type Repository interface {
	List(ctx context.Context) ([]Enrollment, error)
	Create(ctx context.Context, e *Enrollment) error
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	Store  Repository
	Logger *slog.Logger
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.NotFound(w, "enrollment does not exist")
	case errors.Is(err, ErrDuplicate):
		httpx.Conflict(w, err.Error())
	case errors.Is(err, ErrUnknownReference):
		httpx.BadRequest(w, err.Error())
	default:
		h.Logger.Error(msg, "err", err)
		httpx.Internal(w)
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	es, err := h.Store.List(r.Context())
	if err != nil {
		h.fail(w, "list enrollments", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, es)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var e Enrollment
	if err := httpx.DecodeJSON(w, r, &e); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	e.UserID = strings.TrimSpace(e.UserID)
	if e.UserID == "" || e.CourseID <= 0 {
		httpx.BadRequest(w, "user_id and course_id are required")
		return
	}
	e.ID = 0
	if err := h.Store.Create(r.Context(), &e); err != nil {
		h.fail(w, "create enrollment", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, e)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	if err := h.Store.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete enrollment", err)
		return
	}
	httpx.WriteNoContent(w)
}
