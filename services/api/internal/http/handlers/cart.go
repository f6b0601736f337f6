package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/JoseGlez23/runX-API3/services/api/internal/apperr"
	"github.com/JoseGlez23/runX-API3/shared/pkg/models"
)

type Cart interface {
	List(ctx context.Context, accountID int64) ([]models.CartView, error)
	Add(ctx context.Context, accountID, productID int64, quantity int) (int64, error)
	UpdateQuantity(ctx context.Context, accountID, lineID int64, quantity int) error
	Remove(ctx context.Context, accountID, lineID int64) error
}

type CartHandler struct {
	Cart Cart
	Log  zerolog.Logger
}

type addCartReq struct {
	ProductoID int64 `json:"productoId"`
	Cantidad   int   `json:"cantidad"`
}

type quantityReq struct {
	Cantidad int `json:"cantidad"`
}

func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID, ok := idParam(r, "clienteId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Datos incompletos")
		return
	}
	out, err := h.Cart.List(r.Context(), accountID)
	if err != nil {
		h.Log.Error().Err(err).Int64("cliente_id", accountID).Msg("list cart failed")
		writeMessage(w, http.StatusInternalServerError, "Error carrito")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	accountID, ok := idParam(r, "clienteId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Datos incompletos")
		return
	}
	var req addCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductoID <= 0 {
		writeMessage(w, http.StatusBadRequest, "Datos incompletos")
		return
	}
	if req.Cantidad == 0 {
		req.Cantidad = 1
	}
	if req.Cantidad < 0 {
		writeMessage(w, http.StatusBadRequest, "Cantidad >0")
		return
	}
	id, err := h.Cart.Add(r.Context(), accountID, req.ProductoID, req.Cantidad)
	if err != nil {
		h.Log.Error().Err(err).Int64("cliente_id", accountID).Msg("add cart line failed")
		writeMessage(w, http.StatusInternalServerError, "Error agregar carrito")
		return
	}
	writeJSON(w, http.StatusOK, createdResp{Message: "Agregado", ID: id})
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	accountID, ok1 := idParam(r, "clienteId")
	lineID, ok2 := idParam(r, "id")
	if !ok1 || !ok2 {
		writeMessage(w, http.StatusBadRequest, "Datos incompletos")
		return
	}
	var req quantityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Cantidad >0")
		return
	}
	err := h.Cart.UpdateQuantity(r.Context(), accountID, lineID, req.Cantidad)
	switch {
	case err == nil:
		writeMessage(w, http.StatusOK, "Cantidad actualizada")
	case errors.Is(err, apperr.ErrValidation):
		writeMessage(w, http.StatusBadRequest, "Cantidad >0")
	default:
		h.Log.Error().Err(err).Int64("cliente_id", accountID).Int64("line_id", lineID).Msg("update cart line failed")
		writeMessage(w, http.StatusInternalServerError, "Error actualizar")
	}
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	accountID, ok1 := idParam(r, "clienteId")
	lineID, ok2 := idParam(r, "id")
	if !ok1 || !ok2 {
		writeMessage(w, http.StatusBadRequest, "Datos incompletos")
		return
	}
	if err := h.Cart.Remove(r.Context(), accountID, lineID); err != nil {
		h.Log.Error().Err(err).Int64("cliente_id", accountID).Int64("line_id", lineID).Msg("remove cart line failed")
		writeMessage(w, http.StatusInternalServerError, "Error eliminar")
		return
	}
	writeMessage(w, http.StatusOK, "Producto eliminado")
}
