package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	_ "net/http/pprof"

	"github.com/rs/zerolog"

	"sku-service/internal/config"
	"sku-service/internal/ingest"
	"sku-service/internal/normalize"
	"sku-service/internal/predict"
	"sku-service/internal/rules"
	"sku-service/internal/store"
	serverhttp "sku-service/server/http"
)

func main() {
	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		runtime.GOMAXPROCS(runtime.NumCPU())
	}

	cfg := config.Load()
	logger := config.SetupLogger(cfg)

	mode := "serve"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	// rules are loaded once per process and immutable afterwards
	ruleSet, err := rules.Load(cfg.RulesPath, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("load rules")
	}
	norm := normalize.New(ruleSet)

	switch mode {
	case "process":
		runProcess(cfg, norm, logger)
	case "serve":
		runServe(cfg, norm, logger)
	default:
		logger.Fatal().Str("mode", mode).Msg("unknown mode, want serve or process")
	}
}

// runProcess rebuilds the historical store from the raw feed: fresh database,
// per-record normalization, year-range aggregation, VIN prefix frequencies.
func runProcess(cfg config.Config, norm *normalize.Normalizer, logger zerolog.Logger) {
	st, err := store.Open(cfg.DBPath, true, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open store")
	}
	defer st.Close()

	proc := ingest.NewProcessor(norm, st, cfg.MinModelYear, logger)
	proc.LoadWMIRegistry(cfg.WMIPath)
	if cfg.VINCheckDigit {
		proc.EnableVINCheckDigit()
	}

	if _, err := proc.Run(context.Background(), cfg.ConsolidadoPath); err != nil {
		logger.Fatal().Err(err).Msg("processing failed")
	}

	stats, err := st.Stats(context.Background())
	if err != nil {
		logger.Fatal().Err(err).Msg("final statistics")
	}
	logger.Info().
		Int("total_records", stats.TotalRecords).
		Int("vin_training_ready", stats.VINTrainingReady).
		Int("sku_training_ready", stats.SKUTrainingReady).
		Int("year_ranges", stats.YearRanges).
		Int("vin_prefix_rows", stats.VINPrefixRows).
		Str("db", cfg.DBPath).
		Msg("database ready")
}

// runServe exposes the prediction cascade over HTTP until SIGINT/SIGTERM.
func runServe(cfg config.Config, norm *normalize.Normalizer, logger zerolog.Logger) {
	st, err := store.Open(cfg.DBPath, false, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open store")
	}
	defer st.Close()

	predictor := predict.New(st, norm, logger)
	r := serverhttp.NewRouter(cfg, predictor, logger)

	srv := &http.Server{Addr: cfg.Addr(), Handler: r}
	logger.Info().Str("addr", cfg.Addr()).Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info().Msg("bye")
}
