package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"sku-service/internal/config"
	"sku-service/internal/middleware"
	"sku-service/internal/predict"
	predHnd "sku-service/internal/predict/handler"
	"sku-service/server/http/handlers"
)

func NewRouter(cfg config.Config, predictor *predict.Predictor, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxBodyMB) * 1024 * 1024))

	r.Get("/health", handlers.Health)
	r.Post("/predict", predHnd.Predict(predictor, logger))

	return r
}
