package handlers

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/rs/zerolog"
)

type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (string, error)
}

type PaymentsHandler struct {
	Gateway PaymentGateway
	Log     zerolog.Logger
}

type paymentIntentReq struct {
	Monto     *float64 `json:"monto" validate:"required"`
	Moneda    string   `json:"moneda" validate:"required"`
	ClienteID any      `json:"clienteId"`
}

type paymentIntentResp struct {
	ClientSecret string `json:"clientSecret"`
}

type errorResp struct {
	Error string `json:"error"`
}

func (h *PaymentsHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req paymentIntentReq
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "monto y moneda requeridos"})
		return
	}

	clienteID := ""
	if req.ClienteID != nil {
		clienteID = fmt.Sprint(req.ClienteID)
	}

	secret, err := h.Gateway.CreateIntent(r.Context(), int64(math.Round(*req.Monto)), req.Moneda, map[string]string{
		"clienteId": clienteID,
	})
	if err != nil {
		h.Log.Error().Err(err).Str("cliente_id", clienteID).Msg("create payment intent failed")
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, paymentIntentResp{ClientSecret: secret})
}
