package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBPath        string
	DataDir       string
	Workers       int
	FetchTimeout  time.Duration
	Retention     time.Duration
	SweepInterval time.Duration
	SpotdlPath    string
	FFmpegPath    string
	FreeDownloads int
}

func Load() Config {
	// Optional .env for local development; env vars win.
	_ = godotenv.Load()

	return Config{
		Port:          getEnv("PORT", "8080"),
		DBPath:        getEnv("DB_PATH", "baixafy.db"),
		DataDir:       getEnv("DATA_DIR", "data"),
		Workers:       getEnvInt("WORKERS", 4),
		FetchTimeout:  getEnvDuration("FETCH_TIMEOUT", 5*time.Minute),
		Retention:     getEnvDuration("RETENTION_WINDOW", time.Hour),
		SweepInterval: getEnvDuration("SWEEP_INTERVAL", time.Minute),
		SpotdlPath:    getEnv("SPOTDL_PATH", "spotdl"),
		FFmpegPath:    getEnv("FFMPEG_PATH", "ffmpeg"),
		FreeDownloads: getEnvInt("FREE_DOWNLOADS", 1),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return fallback
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
