package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Krimson/neorisk-monitor/neorisk/docs" // Swagger docs
)

// NewRouter assembles the API, the live feed, health, metrics and the
// Swagger UI behind the recover, metrics and CORS middleware.
func NewRouter(api *HTTPHandler, liveFeed http.HandlerFunc, healthz http.Handler) http.Handler {
	router := mux.NewRouter()
	router.Use(recoverMiddleware, metricsMiddleware)

	api.RegisterRoutes(router)

	router.HandleFunc("/ws", liveFeed).Methods("GET")
	router.Handle("/healthz", healthz).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return enableCORS(router)
}
