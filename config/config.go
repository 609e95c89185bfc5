package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Bar source
	CSVPath string // historical bar file replayed as the input stream
	Symbol  string // fallback symbol when the CSV has no symbol column

	// Indicators (comma-separated specs, e.g. "sma:9,ema:21,bb:20:2,macd:12:26:9")
	Indicators string

	// Infrastructure
	RedisAddr     string
	RedisPassword string
	SQLitePath    string
	MetricsAddr   string
	GatewayAddr   string
	LogLevel      string

	// Pipeline sizing
	RingSize   int // SPSC ring capacity between feed and engine
	BusBuffer  int // per-subscriber fan-out channel buffer
	WarmupBars int // bars replayed from SQLite on start to re-prime indicators

	// FeedSpeed paces CSV replay: 1.0 = real-time gaps, 0 = as fast as possible
	FeedSpeed float64
}

// IndicatorSpec is one parsed indicator request: a kind keyword plus its
// numeric arguments in declaration order.
type IndicatorSpec struct {
	Kind string
	Args []string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] no .env file loaded: %v", err)
	}

	return &Config{
		CSVPath: getEnv("CSV_PATH", "data/bars.csv"),
		Symbol:  getEnv("SYMBOL", "RELIANCE"),

		// Default set mirrors a common chart layout
		Indicators: getEnv("INDICATORS", "sma:9,ema:9,roc:9,atr:14,obv,bb:9:2,macd:12:26:9"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "data/bars.db"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),
		GatewayAddr:   getEnv("GATEWAY_ADDR", ":8081"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		RingSize:   getEnvInt("RING_SIZE", 1024),
		BusBuffer:  getEnvInt("BUS_BUFFER", 256),
		WarmupBars: getEnvInt("WARMUP_BARS", 500),

		FeedSpeed: getEnvFloat("FEED_SPEED", 0),
	}
}

// ParseIndicators parses the Indicators string into specs. Invalid entries
// are skipped with a log line rather than aborting startup.
func (c *Config) ParseIndicators() []IndicatorSpec {
	parts := strings.Split(c.Indicators, ",")
	specs := make([]IndicatorSpec, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		fields := strings.Split(p, ":")
		kind := strings.ToLower(strings.TrimSpace(fields[0]))
		if kind == "" {
			log.Printf("[config] skipping indicator spec with empty kind: %q", p)
			continue
		}
		args := make([]string, 0, len(fields)-1)
		valid := true
		for _, f := range fields[1:] {
			f = strings.TrimSpace(f)
			if _, err := strconv.ParseFloat(f, 64); err != nil {
				log.Printf("[config] skipping indicator spec with bad argument: %q", p)
				valid = false
				break
			}
			args = append(args, f)
		}
		if !valid {
			continue
		}
		specs = append(specs, IndicatorSpec{Kind: kind, Args: args})
	}
	return specs
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[config] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		log.Printf("[config] invalid %s=%q, using %g", key, v, fallback)
		return fallback
	}
	return f
}
