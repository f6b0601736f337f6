package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/JoseGlez23/runX-API3/services/api/internal/apperr"
	"github.com/JoseGlez23/runX-API3/shared/pkg/models"
)

type Accounts interface {
	Register(ctx context.Context, name, email, password string) (int64, error)
	Login(ctx context.Context, email, password string) (models.Account, error)
}

type AccountsHandler struct {
	Accounts Accounts
	Log      zerolog.Logger
}

type registerReq struct {
	Nombre   string `json:"nombre" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type createdResp struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type clienteResp struct {
	ID           int64  `json:"id"`
	Nombre       string `json:"nombre"`
	Email        string `json:"email"`
	TwoFAEnabled bool   `json:"twofa_enabled"`
}

type loginResp struct {
	Message string      `json:"message"`
	Cliente clienteResp `json:"cliente"`
}

func (h *AccountsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Todos los campos son requeridos")
		return
	}
	id, err := h.Accounts.Register(r.Context(), req.Nombre, req.Email, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, createdResp{Message: "Cliente registrado", ID: id})
	case errors.Is(err, apperr.ErrValidation):
		writeMessage(w, http.StatusBadRequest, "Todos los campos son requeridos")
	case errors.Is(err, apperr.ErrConflict):
		writeMessage(w, http.StatusConflict, "Email ya registrado")
	default:
		h.Log.Error().Err(err).Msg("register failed")
		writeMessage(w, http.StatusInternalServerError, "Error al registrar cliente")
	}
}

func (h *AccountsHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Email y password requeridos")
		return
	}
	a, err := h.Accounts.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, loginResp{
			Message: "Login exitoso",
			Cliente: clienteResp{ID: a.ID, Nombre: a.Name, Email: a.Email, TwoFAEnabled: a.TwoFAEnabled()},
		})
	case errors.Is(err, apperr.ErrValidation):
		writeMessage(w, http.StatusBadRequest, "Email y password requeridos")
	case errors.Is(err, apperr.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "Credenciales inválidas")
	default:
		h.Log.Error().Err(err).Msg("login failed")
		writeMessage(w, http.StatusInternalServerError, "Error login")
	}
}
