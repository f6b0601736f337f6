package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/JoseGlez23/runX-API3/services/api/internal/apperr"
	"github.com/JoseGlez23/runX-API3/shared/pkg/models"
)

type Products interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id int64) (models.Product, error)
	Create(ctx context.Context, p models.Product) (int64, error)
	Update(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id int64) error
}

type ProductsHandler struct {
	Products Products
	Log      zerolog.Logger
}

type productReq struct {
	Nombre      string           `json:"nombre" validate:"required"`
	Precio      *decimal.Decimal `json:"precio" validate:"required"`
	Descripcion string           `json:"descripcion" validate:"required"`
	Tallas      string           `json:"tallas" validate:"required"`
	Imagen      string           `json:"imagen" validate:"required"`
}

func (req productReq) product(id int64) (models.Product, bool) {
	if req.Precio.IsNegative() {
		return models.Product{}, false
	}
	return models.Product{
		ID:          id,
		Name:        req.Nombre,
		Price:       *req.Precio,
		Description: req.Descripcion,
		Sizes:       req.Tallas,
		Image:       req.Imagen,
	}, true
}

func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.Products.List(r.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("list products failed")
		writeMessage(w, http.StatusInternalServerError, "Error productos")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeMessage(w, http.StatusNotFound, "Producto no encontrado")
		return
	}
	p, err := h.Products.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Producto no encontrado")
			return
		}
		h.Log.Error().Err(err).Int64("producto_id", id).Msg("get product failed")
		writeMessage(w, http.StatusInternalServerError, "Error")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Todos los campos son obligatorios")
		return
	}
	p, ok := req.product(0)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Todos los campos son obligatorios")
		return
	}
	id, err := h.Products.Create(r.Context(), p)
	if err != nil {
		h.Log.Error().Err(err).Msg("create product failed")
		writeMessage(w, http.StatusInternalServerError, "Error al agregar producto")
		return
	}
	writeJSON(w, http.StatusCreated, createdResp{Message: "Producto agregado", ID: id})
}

func (h *ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeMessage(w, http.StatusNotFound, "Producto no encontrado")
		return
	}
	var req productReq
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Todos los campos son obligatorios")
		return
	}
	p, ok := req.product(id)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Todos los campos son obligatorios")
		return
	}
	if err := h.Products.Update(r.Context(), p); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Producto no encontrado")
			return
		}
		h.Log.Error().Err(err).Int64("producto_id", id).Msg("update product failed")
		writeMessage(w, http.StatusInternalServerError, "Error actualizar")
		return
	}
	writeMessage(w, http.StatusOK, "Producto actualizado")
}

func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeMessage(w, http.StatusNotFound, "Producto no encontrado")
		return
	}
	if err := h.Products.Delete(r.Context(), id); err != nil {
		h.Log.Error().Err(err).Int64("producto_id", id).Msg("delete product failed")
		writeMessage(w, http.StatusInternalServerError, "Error eliminar")
		return
	}
	writeMessage(w, http.StatusOK, "Producto eliminado")
}
