package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	// Base URL of the platform backend that supplies questions, categories
	// and simulator definitions.
	SupplyBaseURL string

	AuthSecret    string
	AdminUser     string
	AdminPassHash string // bcrypt

	// Review is offered only when the taker answered more than this
	// percentage of the attempt.
	ReviewMinAnsweredPct float64
	// Remaining-seconds mark for the one-shot countdown warning.
	WarnAtSeconds int

	CORSOrigins []string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:             addr,
		DBDriver:             envOr("DB_DRIVER", "sqlite"),
		DBDSN:                envOr("DB_DSN", ""),
		SupplyBaseURL:        envOr("SUPPLY_BASE_URL", "http://localhost:3333/api"),
		AuthSecret:           envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AdminUser:            envOr("ADMIN_USER", "admin"),
		AdminPassHash:        envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),
		ReviewMinAnsweredPct: envFloat("REVIEW_MIN_ANSWERED_PCT", 10),
		WarnAtSeconds:        envInt("WARN_AT_SECONDS", 300),
		CORSOrigins:          csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloat(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
