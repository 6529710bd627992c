package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"sku-service/internal/predict"
)

type request struct {
	Maker       string `json:"maker"`
	Model       int    `json:"model"`
	Series      string `json:"series"`
	Descripcion string `json:"descripcion"`
	Limit       int    `json:"limit"`
}

type response struct {
	Predictions []predict.Prediction `json:"predictions"`
	ElapsedMS   int64                `json:"elapsed_ms"`
}

// Predict returns an http.HandlerFunc so the router can wire it as
// r.Post("/predict", handler.Predict(predictor, logger)).
func Predict(predictor *predict.Predictor, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		log := logger
		if rid := r.Header.Get("X-Request-ID"); rid != "" {
			log = logger.With().Str("req_id", rid).Logger()
		}

		defer r.Body.Close()
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.Maker == "" || req.Descripcion == "" || req.Model == 0 {
			http.Error(w, "maker, model and descripcion are required", http.StatusBadRequest)
			return
		}

		predictions, err := predictor.Predict(r.Context(), predict.Query{
			Maker:       req.Maker,
			Year:        req.Model,
			Series:      req.Series,
			Description: req.Descripcion,
			Limit:       req.Limit,
		})
		if err != nil {
			// query failure, as opposed to a clean "no predictions"
			log.Error().Err(err).Msg("prediction query failed")
			http.Error(w, "prediction backend unavailable", http.StatusBadGateway)
			return
		}
		if predictions == nil {
			predictions = []predict.Prediction{}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if err := json.NewEncoder(w).Encode(response{
			Predictions: predictions,
			ElapsedMS:   time.Since(start).Milliseconds(),
		}); err != nil {
			log.Error().Err(err).Msg("write json")
			return
		}

		log.Info().
			Str("maker", req.Maker).
			Int("model", req.Model).
			Str("series", req.Series).
			Int("predictions", len(predictions)).
			Dur("elapsed", time.Since(start)).
			Msg("predict done")
	}
}
