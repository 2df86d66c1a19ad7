package api

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sksmith/go-retail-ledger/config"
)

func ConfigureRouter(cfg *config.Config, catalogSvc CatalogService, stockSvc StockService, orderSvc OrderService, levels LevelSource, userService UserService) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost*", "https://localhost*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(Metrics)
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(Logging)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("UP"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/env", NewEnvApi(cfg).ConfigureRouter)

	orderApi := NewOrderApi(orderSvc)

	r.With(Authenticate(userService)).Route("/api/v1", func(r chi.Router) {
		r.Route("/product", NewCatalogApi(catalogSvc).ConfigureRouter)
		r.Route("/stock", NewStockApi(stockSvc, levels).ConfigureRouter)
		r.Route("/order", orderApi.ConfigureRouter)
		r.Route("/sale", orderApi.ConfigureSaleRouter)
		r.Route("/user", NewUserApi(userService).ConfigureRouter)
	})

	return r
}
