package finanzas

import (
	"os"
	"strings"
)

// DefaultEquityCategory is the category whose movements count as equity on
// the dashboard. Overridable because historical data sets have used other
// codes for the same concept.
const DefaultEquityCategory = "CAT_033"

// Config carries the process-level settings, all sourced from environment
// variables (FINZ_*).
type Config struct {
	// Addr is the listen address (FINZ_BIND, or 127.0.0.1:PORT).
	Addr string
	// DataDir holds the CSV files (FINZ_DATA).
	DataDir string
	// Backend selects the primary store: "csv" or "sqlite" (FINZ_STORE).
	Backend string
	// SQLitePath is the database file for the sqlite backend (FINZ_DB).
	SQLitePath string
	// EquityCategory is the equity categoria_id (FINZ_EQUITY_CAT).
	EquityCategory string
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() Config {
	addr := "127.0.0.1:5000"
	if bind := strings.TrimSpace(os.Getenv("FINZ_BIND")); bind != "" {
		addr = bind
	} else if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		addr = "127.0.0.1:" + p
	}
	return Config{
		Addr:           addr,
		DataDir:        envOr("FINZ_DATA", "."),
		Backend:        envOr("FINZ_STORE", "csv"),
		SQLitePath:     envOr("FINZ_DB", "finanzas.db"),
		EquityCategory: envOr("FINZ_EQUITY_CAT", DefaultEquityCategory),
	}
}
