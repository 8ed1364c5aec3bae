package httpapi

import (
	"expvar"
	"net/http"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", app.indexHandler)
	mux.HandleFunc("/cart/open", app.openCartHandler)
	mux.HandleFunc("/cart/close", app.closeCartHandler)
	mux.HandleFunc("/cart/add", app.addHandler)
	mux.HandleFunc("/cart/adjust", app.adjustHandler)
	mux.HandleFunc("/cart/remove", app.removeHandler)
	mux.HandleFunc("/grid/step", app.stepHandler)
	mux.HandleFunc("/checkout", app.checkoutHandler)
	mux.HandleFunc("/api/cart", app.apiCartHandler)
	mux.HandleFunc("/api/products", app.apiProductsHandler)
	mux.HandleFunc("/api/checkout", app.apiCheckoutHandler)
	mux.HandleFunc("/healthz", app.healthHandler)
	mux.Handle("/metrics", app.Metrics.Handler())
	mux.Handle("/debug/vars", expvar.Handler())
	mux.HandleFunc("/openapi.yaml", app.openapiHandler)
	mux.HandleFunc("/docs", app.docsHandler)
	return WithRequestID(WithLogging(mux))
}
