package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/DarkGhons/paginaweb-finanzas/internal/finanzas"
	"github.com/DarkGhons/paginaweb-finanzas/internal/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := logger.New()
	cfg := finanzas.LoadConfig()

	var primary finanzas.Store
	switch cfg.Backend {
	case "sqlite":
		db, err := finanzas.OpenSQLiteStore(cfg.SQLitePath)
		if err != nil {
			log.Error().Err(err).Str("db", cfg.SQLitePath).Msg("failed to open sqlite store")
			os.Exit(1)
		}
		defer db.Close()
		primary = db
	case "csv":
		primary = finanzas.NewCSVStore(cfg.DataDir)
	default:
		fmt.Fprintf(os.Stderr, "unknown FINZ_STORE %q (want csv or sqlite)\n", cfg.Backend)
		os.Exit(1)
	}

	store := finanzas.NewFallbackStore(primary, log)
	srv := finanzas.NewServer(store, cfg, log)

	mux := http.NewServeMux()
	finanzas.RegisterAPI(mux, srv)

	handler := finanzas.WithSecurityHeaders(finanzas.WithRequestLogging(mux, log))

	log.Info().Str("addr", cfg.Addr).Str("store", cfg.Backend).Msg("finanzas listening")
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}
