package grades

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"educonnect/internal/auth"
	"educonnect/internal/httpx"
)

type Repository interface {
	List(ctx context.Context, f Filter) ([]Grade, error)
	SubmitLink(ctx context.Context, userID string, taskID int64, link string) (*Grade, error)
	SetScore(ctx context.Context, userID string, taskID int64, score float64) (*Grade, error)
}

type Handler struct {
	Store  Repository
	Logger *slog.Logger
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.NotFound(w, "no submission for this task")
	case errors.Is(err, ErrTaskNotFound):
		httpx.NotFound(w, "task does not exist")
	default:
		h.Logger.Error(msg, "err", err)
		httpx.Internal(w)
	}
}

// ValidateLink accepts absolute http(s) URLs only.
func ValidateLink(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("link is required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("invalid link: %q", raw)
	}
	return raw, nil
}

// List supports user_id, task_id, graded and limit query parameters. Students
// only ever see their own grades.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{UserID: q.Get("user_id")}
	if v := q.Get("task_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			httpx.BadRequest(w, "invalid task_id: "+v)
			return
		}
		f.TaskID = id
	}
	if v := q.Get("graded"); v != "" {
		graded, err := strconv.ParseBool(v)
		if err != nil {
			httpx.BadRequest(w, "invalid graded: "+v)
			return
		}
		f.Graded = &graded
	}
	if v := q.Get("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l <= 0 {
			httpx.BadRequest(w, "invalid limit: "+v)
			return
		}
		f.Limit = l
	}
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok && claims.Role == auth.RoleStudent {
		f.UserID = claims.Identity()
	}

	gs, err := h.Store.List(r.Context(), f)
	if err != nil {
		h.fail(w, "list grades", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, gs)
}

// Submit stores the caller's link for a task. The user id always comes from
// the token.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaskID int64  `json:"task_id"`
		Link   string `json:"link"`
	}
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	if req.TaskID <= 0 {
		httpx.BadRequest(w, "task_id is required")
		return
	}
	h.submit(w, r, req.TaskID, req.Link)
}

// SubmitForTask is Submit with the task taken from the {taskId} path variable.
func (h *Handler) SubmitForTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := httpx.PathInt64(r, "taskId")
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	var req struct {
		Link string `json:"link"`
	}
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	h.submit(w, r, taskID, req.Link)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, taskID int64, rawLink string) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.Unauthorized(w, "bearer token required")
		return
	}
	link, err := ValidateLink(rawLink)
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	g, err := h.Store.SubmitLink(r.Context(), claims.Identity(), taskID, link)
	if err != nil {
		h.fail(w, "submit link", err)
		return
	}
	h.Logger.Info("submission stored", "user_id", g.UserID, "task_id", g.TaskID)
	httpx.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) Grade(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string   `json:"user_id"`
		TaskID int64    `json:"task_id"`
		Score  *float64 `json:"score"`
	}
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" || req.TaskID <= 0 {
		httpx.BadRequest(w, "user_id and task_id are required")
		return
	}
	if req.Score == nil || *req.Score < MinScore || *req.Score > MaxScore {
		httpx.BadRequest(w, fmt.Sprintf("score must be between %d and %d", MinScore, MaxScore))
		return
	}
	g, err := h.Store.SetScore(r.Context(), req.UserID, req.TaskID, *req.Score)
	if err != nil {
		h.fail(w, "grade submission", err)
		return
	}
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		h.Logger.Info("submission graded", "user_id", g.UserID, "task_id", g.TaskID, "by", claims.Identity())
	}
	httpx.WriteJSON(w, http.StatusOK, g)
}
