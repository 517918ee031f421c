package rest

import (
	"net/http"
	"time"

	"github.com/taskdeck/taskdeck/internal/platform/httpx"
	authapp "github.com/taskdeck/taskdeck/internal/services/auth/app"
	"github.com/taskdeck/taskdeck/internal/services/auth/user"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

type userDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toUserDTO(u user.User) userDTO {
	return userDTO{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type authHandler struct {
	auth *authapp.Service
}

// register creates an account and returns the public identity.
func (h *authHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.auth.Register(httpx.RequestContext(r), user.Registration{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusCreated, toUserDTO(created))
}

// login verifies a credential pair and issues a bearer token.
func (h *authHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	signed, account, err := h.auth.Login(httpx.RequestContext(r), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, loginResponse{
		Token: signed,
		User:  toUserDTO(account),
	})
}

// me returns the authenticated caller's stored identity.
func (h *authHandler) me(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	account, err := h.auth.Identity(httpx.RequestContext(r), identity.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toUserDTO(account))
}

// deleteAccount removes the caller's account; owned tasks cascade.
func (h *authHandler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.auth.DeleteAccount(httpx.RequestContext(r), identity.UserID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
