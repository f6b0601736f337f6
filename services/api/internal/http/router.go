package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JoseGlez23/runX-API3/shared/pkg/metrics"
)

type Handlers struct {
	Health http.HandlerFunc

	Register http.HandlerFunc
	Login    http.HandlerFunc

	ListProducts  http.HandlerFunc
	GetProduct    http.HandlerFunc
	CreateProduct http.HandlerFunc
	UpdateProduct http.HandlerFunc
	DeleteProduct http.HandlerFunc

	ListCart       http.HandlerFunc
	AddToCart      http.HandlerFunc
	UpdateCartLine http.HandlerFunc
	RemoveCartLine http.HandlerFunc

	TwoFAStatus http.HandlerFunc
	TwoFASetup  http.HandlerFunc
	TwoFAVerify http.HandlerFunc

	CreatePaymentIntent http.HandlerFunc
	PlaceOrder          http.HandlerFunc
}

func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.AllowAll().Handler)
	r.Use(metrics.Middleware("runx-api"))
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/health", h.Health)
	r.Route("/api", func(r chi.Router) {
		r.Post("/clientes/register", h.Register)
		r.Post("/clientes/login", h.Login)

		r.Get("/productos", h.ListProducts)
		r.Post("/productos", h.CreateProduct)
		r.Get("/productos/{id}", h.GetProduct)
		r.Put("/productos/{id}", h.UpdateProduct)
		r.Delete("/productos/{id}", h.DeleteProduct)

		r.Get("/carrito/{clienteId}", h.ListCart)
		r.Post("/carrito/{clienteId}", h.AddToCart)
		r.Put("/carrito/{clienteId}/{id}", h.UpdateCartLine)
		r.Delete("/carrito/{clienteId}/{id}", h.RemoveCartLine)

		r.Post("/2fa/status", h.TwoFAStatus)
		r.Post("/2fa/setup", h.TwoFASetup)
		r.Post("/2fa/verificar", h.TwoFAVerify)

		r.Post("/crear-intento-pago", h.CreatePaymentIntent)
		r.Post("/ordenes", h.PlaceOrder)
	})
	return r
}
