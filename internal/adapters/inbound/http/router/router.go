package router

import (
	"net/http"

	"addrpool/internal/adapters/inbound/http/controllers"
)

type Dependencies struct {
	HealthController      *controllers.HealthController
	SwaggerController     *controllers.SwaggerController
	AddressPoolController *controllers.AddressPoolController

	// MetricsHandler is optional; /metrics is not routed when nil.
	MetricsHandler http.Handler
}

func New(deps Dependencies) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", deps.HealthController.GetHealth)
	mux.HandleFunc("GET /swagger", deps.SwaggerController.RedirectToIndex)
	mux.HandleFunc("GET /swagger/openapi.yaml", deps.SwaggerController.GetOpenAPISpec)
	mux.HandleFunc("GET /swagger/", deps.SwaggerController.ServeUI)
	mux.HandleFunc("GET /v1/address", deps.AddressPoolController.GetCurrentAddress)
	mux.HandleFunc("GET /v1/pool/stats", deps.AddressPoolController.GetPoolStats)
	mux.HandleFunc("POST /v1/pool/rotation", deps.AddressPoolController.ForceRotation)
	mux.HandleFunc("DELETE /v1/pool", deps.AddressPoolController.ClearPool)
	if deps.MetricsHandler != nil {
		mux.Handle("GET /metrics", deps.MetricsHandler)
	}

	return mux
}
