package config

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Addr         string
	DBPath       string
	MockMode     bool
	Debug        bool
	MaxScanAge   time.Duration
	ScanInterval time.Duration
}

// Load parses command line flags and environment variables to populate Config.
// Flags take precedence over environment variables.
func Load() *Config {
	cfg := &Config{}

	// Defaults and Environment Variables
	cfg.Addr = getEnv("WIFITRACK_ADDR", ":8080")
	cfg.DBPath = getEnv("WIFITRACK_DB", getDefaultDBPath())
	cfg.MockMode = getEnvBool("WIFITRACK_MOCK", true)
	maxScanAgeMS := getEnvInt("WIFITRACK_MAX_SCAN_AGE_MS", 15000)
	scanIntervalMS := getEnvInt("WIFITRACK_SCAN_INTERVAL_MS", 10000)

	// Command Line Flags (Override Env)
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite database")
	flag.BoolVar(&cfg.MockMode, "mock", cfg.MockMode, "Run against the simulated platform")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable verbose debug logging")
	flag.IntVar(&maxScanAgeMS, "scan-age", maxScanAgeMS, "Max age for tracked scan results in milliseconds")
	flag.IntVar(&scanIntervalMS, "scan-interval", scanIntervalMS, "Interval between initiated scans in milliseconds")

	flag.Parse()

	cfg.MaxScanAge = time.Duration(maxScanAgeMS) * time.Millisecond
	cfg.ScanInterval = time.Duration(scanIntervalMS) * time.Millisecond

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getDefaultDBPath returns the default database path in user's home directory.
// Creates the directory if it doesn't exist.
func getDefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Warning: Could not get user home directory, using current dir: %v", err)
		return "wifitrack.db"
	}

	dir := filepath.Join(home, ".wifitrack")

	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Warning: Could not create .wifitrack directory, using current dir: %v", err)
		return "wifitrack.db"
	}

	return filepath.Join(dir, "wifitrack.db")
}
