package auth

import (
	"log/slog"
	"net/http"

	"educonnect/internal/httpx"
)

type Handler struct {
	Service *Service
	Logger  *slog.Logger
}

func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := Reason(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error("auth request failed", "path", r.URL.Path, "err", err)
	}
	httpx.WriteError(w, status, code, msg)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	u, err := h.Service.Register(r.Context(), req)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	res, err := h.Service.Login(r.Context(), req)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

type meResponse struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	ExpiresAt int64  `json:"expires_at"`
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	c, ok := ClaimsFromContext(r.Context())
	if !ok {
		httpx.Unauthorized(w, "bearer token required")
		return
	}
	resp := meResponse{ID: c.Identity(), Role: c.Role}
	if c.ExpiresAt != nil {
		resp.ExpiresAt = c.ExpiresAt.Unix()
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
