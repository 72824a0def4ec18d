package courses

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"educonnect/internal/auth"
	"educonnect/internal/httpx"
)

type Repository interface {
	List(ctx context.Context) ([]Course, error)
	Get(ctx context.Context, id int64) (*Course, error)
	ListByCreator(ctx context.Context, creatorID string) ([]Course, error)
	ListByMember(ctx context.Context, userID string) ([]Course, error)
	Create(ctx context.Context, c *Course) error
	Delete(ctx context.Context, id int64) error
	Members(ctx context.Context, courseID int64, studentsOnly bool) ([]auth.User, error)
	AddMembers(ctx context.Context, courseID int64, userIDs []string) (int64, error)
	RemoveMembers(ctx context.Context, courseID int64, userIDs []string) (int64, error)
}

type Handler struct {
	Store  Repository
	Logger *slog.Logger
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.NotFound(w, "course does not exist")
	case errors.Is(err, ErrUnknownMember):
		httpx.BadRequest(w, "one or more users do not exist")
	default:
		h.Logger.Error(msg, "err", err)
		httpx.Internal(w)
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Store.List(r.Context())
	if err != nil {
		h.fail(w, "list courses", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cs)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	c, err := h.Store.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get course", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

// Create stores a course owned by the caller.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.Unauthorized(w, "bearer token required")
		return
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	c := &Course{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		CreatorID:   claims.Identity(),
	}
	if c.Name == "" {
		httpx.BadRequest(w, "name is required")
		return
	}
	if err := h.Store.Create(r.Context(), c); err != nil {
		h.fail(w, "create course", err)
		return
	}
	h.Logger.Info("course created", "course_id", c.ID, "creator_id", c.CreatorID)
	httpx.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	if err := h.Store.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete course", err)
		return
	}
	httpx.WriteNoContent(w)
}

func (h *Handler) members(w http.ResponseWriter, r *http.Request, studentsOnly bool) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	users, err := h.Store.Members(r.Context(), id, studentsOnly)
	if err != nil {
		h.fail(w, "list course members", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

// Members lists every user enrolled in the course.
func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	h.members(w, r, false)
}

// EnrolledStudents lists only the enrolled users with the Student role.
func (h *Handler) EnrolledStudents(w http.ResponseWriter, r *http.Request) {
	h.members(w, r, true)
}

// decodeRoster reads a JSON array of user ids, dropping blanks.
func decodeRoster(w http.ResponseWriter, r *http.Request) ([]string, error) {
	var ids []string
	if err := httpx.DecodeJSON(w, r, &ids); err != nil {
		return nil, err
	}
	res := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			res = append(res, id)
		}
	}
	if len(res) == 0 {
		return nil, errors.New("at least one user id is required")
	}
	return res, nil
}

func (h *Handler) AddMembers(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	ids, err := decodeRoster(w, r)
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	if _, err := h.Store.Get(r.Context(), id); err != nil {
		h.fail(w, "get course", err)
		return
	}
	added, err := h.Store.AddMembers(r.Context(), id, ids)
	if err != nil {
		h.fail(w, "add course members", err)
		return
	}
	if added == 0 {
		httpx.BadRequest(w, "all users are already enrolled")
		return
	}
	h.Logger.Info("course members added", "course_id", id, "added", added)
	httpx.WriteNoContent(w)
}

func (h *Handler) RemoveMembers(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	ids, err := decodeRoster(w, r)
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	removed, err := h.Store.RemoveMembers(r.Context(), id, ids)
	if err != nil {
		h.fail(w, "remove course members", err)
		return
	}
	h.Logger.Info("course members removed", "course_id", id, "removed", removed)
	httpx.WriteNoContent(w)
}

func (h *Handler) listFor(w http.ResponseWriter, r *http.Request, key string, created, notFoundWhenEmpty bool) {
	userID, err := httpx.PathString(r, key)
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	var cs []Course
	if created {
		cs, err = h.Store.ListByCreator(r.Context(), userID)
	} else {
		cs, err = h.Store.ListByMember(r.Context(), userID)
	}
	if err != nil {
		h.fail(w, "list user courses", err)
		return
	}
	if notFoundWhenEmpty && len(cs) == 0 {
		httpx.NotFound(w, "no courses found")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cs)
}

// StudentCourses lists the courses a student is enrolled in, 404 when none.
func (h *Handler) StudentCourses(w http.ResponseWriter, r *http.Request) {
	h.listFor(w, r, "studentId", false, true)
}

// TeacherCourses lists the courses a teacher created, 404 when none.
func (h *Handler) TeacherCourses(w http.ResponseWriter, r *http.Request) {
	h.listFor(w, r, "teacherId", true, true)
}

func (h *Handler) UserCourses(w http.ResponseWriter, r *http.Request) {
	h.listFor(w, r, "userId", false, false)
}
