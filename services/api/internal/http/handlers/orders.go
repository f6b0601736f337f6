package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/JoseGlez23/runX-API3/services/api/internal/apperr"
	"github.com/JoseGlez23/runX-API3/services/api/internal/service"
	"github.com/JoseGlez23/runX-API3/shared/pkg/models"
)

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, in service.PlaceOrderInput) (int64, error)
}

type OrdersHandler struct {
	Orders OrderPlacer
	Log    zerolog.Logger
}

type placeOrderReq struct {
	ClienteID int64              `json:"clienteId" validate:"required,gt=0"`
	Total     decimal.Decimal    `json:"total"`
	Productos []models.OrderItem `json:"productos" validate:"required,min=1"`
}

type placeOrderResp struct {
	Message string `json:"message"`
	OrdenID int64  `json:"ordenId"`
}

var stageMessages = map[apperr.Stage]string{
	apperr.StageHeader: "Error crear orden",
	apperr.StageItems:  "Error guardar detalles orden",
	apperr.StageCart:   "Error limpiar carrito",
	apperr.StageEvent:  "Error crear orden",
	apperr.StageCommit: "Error crear orden",
}

func (h *OrdersHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeOrderReq
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Datos incompletos")
		return
	}

	orderID, err := h.Orders.PlaceOrder(r.Context(), service.PlaceOrderInput{
		AccountID: req.ClienteID,
		Total:     req.Total,
		Items:     req.Productos,
	})
	if err != nil {
		var se *apperr.StageError
		switch {
		case errors.Is(err, apperr.ErrValidation):
			writeMessage(w, http.StatusBadRequest, "Datos incompletos")
		case errors.Is(err, apperr.ErrNotFound):
			writeMessage(w, http.StatusNotFound, "Cliente no encontrado")
		case errors.As(err, &se):
			h.Log.Error().Err(err).Int64("cliente_id", req.ClienteID).Str("stage", string(se.Stage)).Msg("place order failed")
			writeMessage(w, http.StatusInternalServerError, stageMessages[se.Stage])
		default:
			h.Log.Error().Err(err).Int64("cliente_id", req.ClienteID).Msg("place order failed")
			writeMessage(w, http.StatusInternalServerError, "Error crear orden")
		}
		return
	}

	h.Log.Info().Int64("cliente_id", req.ClienteID).Int64("orden_id", orderID).Msg("order placed")
	writeJSON(w, http.StatusCreated, placeOrderResp{Message: "Orden creada", OrdenID: orderID})
}
