package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/JoseGlez23/runX-API3/services/api/internal/apperr"
	"github.com/JoseGlez23/runX-API3/services/api/internal/service"
)

type TwoFactor interface {
	Status(ctx context.Context, accountID int64) (bool, error)
	BeginEnrollment(ctx context.Context, accountID int64) (service.Enrollment, error)
	Verify(ctx context.Context, accountID int64, code string) error
}

type TwoFAHandler struct {
	TwoFA TwoFactor
	Log   zerolog.Logger
}

type twofaReq struct {
	ClienteID int64 `json:"clienteId" validate:"required,gt=0"`
}

type twofaVerifyReq struct {
	ClienteID int64  `json:"clienteId" validate:"required,gt=0"`
	Code      string `json:"code" validate:"required"`
}

type twofaStatusResp struct {
	Enabled bool `json:"twofa_enabled"`
}

type twofaSetupResp struct {
	QR     string `json:"qr"`
	Secret string `json:"secret"`
}

func (h *TwoFAHandler) Status(w http.ResponseWriter, r *http.Request) {
	var req twofaReq
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Datos incompletos")
		return
	}
	enabled, err := h.TwoFA.Status(r.Context(), req.ClienteID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Cliente no encontrado")
			return
		}
		h.Log.Error().Err(err).Int64("cliente_id", req.ClienteID).Msg("twofa status failed")
		writeMessage(w, http.StatusInternalServerError, "Error 2FA")
		return
	}
	writeJSON(w, http.StatusOK, twofaStatusResp{Enabled: enabled})
}

func (h *TwoFAHandler) Setup(w http.ResponseWriter, r *http.Request) {
	var req twofaReq
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Datos incompletos")
		return
	}
	e, err := h.TwoFA.BeginEnrollment(r.Context(), req.ClienteID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Cliente no encontrado")
			return
		}
		h.Log.Error().Err(err).Int64("cliente_id", req.ClienteID).Msg("twofa setup failed")
		writeMessage(w, http.StatusInternalServerError, "Error cliente")
		return
	}
	writeJSON(w, http.StatusOK, twofaSetupResp{QR: e.QR, Secret: e.Secret})
}

func (h *TwoFAHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req twofaVerifyReq
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Datos incompletos")
		return
	}
	err := h.TwoFA.Verify(r.Context(), req.ClienteID, req.Code)
	switch {
	case err == nil:
		writeMessage(w, http.StatusOK, "Código 2FA verificado")
	case errors.Is(err, apperr.ErrNotEnrolled):
		writeMessage(w, http.StatusBadRequest, "Cliente no tiene 2FA")
	case errors.Is(err, apperr.ErrVerification):
		writeMessage(w, http.StatusBadRequest, "Código inválido o expirado")
	default:
		h.Log.Error().Err(err).Int64("cliente_id", req.ClienteID).Msg("twofa verify failed")
		writeMessage(w, http.StatusInternalServerError, "Error 2FA")
	}
}
