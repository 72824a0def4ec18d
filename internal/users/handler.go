package users

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
	List(ctx context.Context) ([]auth.User, error)
	ListByRole(ctx context.Context, role auth.Role) ([]auth.User, error)
	ListStudentsNotInCourse(ctx context.Context, courseID int64) ([]auth.User, error)
	Get(ctx context.Context, id string) (*auth.User, error)
	Update(ctx context.Context, id string, upd Update) (*auth.User, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	Store  Repository
	Logger *slog.Logger
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.NotFound(w, "user does not exist")
	case errors.Is(err, ErrEmailTaken):
		httpx.Conflict(w, "email already in use")
	default:
		h.Logger.Error(msg, "err", err)
		httpx.Internal(w)
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.List(r.Context())
	if err != nil {
		h.fail(w, "list users", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) Teachers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListByRole(r.Context(), auth.RoleTeacher)
	if err != nil {
		h.fail(w, "list teachers", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) StudentsNotInCourse(w http.ResponseWriter, r *http.Request) {
	courseID, err := httpx.PathInt64(r, "courseId")
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	users, err := h.Store.ListStudentsNotInCourse(r.Context(), courseID)
	if err != nil {
		h.fail(w, "list students not in course", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathString(r, "id")
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	u, err := h.Store.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get user", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

// Update lets a user edit their own profile. Admins may edit anyone and are
// the only ones allowed to change a role.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathString(r, "id")
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.Unauthorized(w, "bearer token required")
		return
	}
	isAdmin := auth.AdminPolicy.Allows(claims)
	if claims.Identity() != id && !isAdmin {
		httpx.Forbidden(w, "cannot modify another user")
		return
	}

	var payload struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
		Role  *string `json:"role"`
	}
	if err := httpx.DecodeJSON(w, r, &payload); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	upd := Update{Name: payload.Name, Email: payload.Email}
	if payload.Email != nil && !strings.Contains(*payload.Email, "@") {
		httpx.BadRequest(w, "a valid email is required")
		return
	}
	if payload.Role != nil {
		role, err := auth.ParseRole(*payload.Role)
		if err != nil {
			httpx.BadRequest(w, err.Error())
			return
		}
		if !isAdmin {
			httpx.Forbidden(w, "only an admin can change roles")
			return
		}
		upd.Role = &role
	}

	u, err := h.Store.Update(r.Context(), id, upd)
	if err != nil {
		h.fail(w, "update user", err)
		return
	}
	h.Logger.Info("user updated", "user_id", u.ID, "by", claims.Identity())
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathString(r, "id")
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	if err := h.Store.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete user", err)
		return
	}
	httpx.WriteNoContent(w)
}
