package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

func NewRouter(h *HTTPHandler, logger *zap.Logger) chi.Router {
	router := chi.NewRouter()
	router.Use(requestLogger(logger))

	router.Get("/health", h.HealthCheck)

	router.Route("/api", func(r chi.Router) {
		r.Get("/items", h.ListItems)
		r.Post("/items", h.AddItem)
		r.Get("/items/search", h.SearchItems)
		r.Post("/items/{id}/stock", h.UpdateStock)

		r.Get("/customers", h.ListCustomers)
		r.Post("/customers", h.AddCustomer)

		r.Get("/purchases", h.ListPurchases)
		r.Post("/purchases", h.RecordPurchase)
	})

	return router
}

// requestLogger tags every request with an X-Request-ID and logs its outcome.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)

			logger.Info("http request",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
