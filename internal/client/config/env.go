package config

import (
	"os"

	"github.com/dmitrijs2005/testimonykeeper/internal/flagx"
	"github.com/joho/godotenv"
)

const (
	EnvAPIURL    = "TESTIMONY_API_URL"
	EnvLogLevel  = "TESTIMONY_LOG_LEVEL"
	EnvRedisAddr = "TESTIMONY_REDIS_ADDR"
	EnvDataDir   = "TESTIMONY_DATA_DIR"
)

// parseEnv overlays Config with environment variables. A dotenv file named
// by -e/-env is loaded first, otherwise ".env" in the working directory if it
// exists. Variables already set in the process environment win over the
// file.
func parseEnv(cfg *Config) {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else {
		_ = godotenv.Load()
	}

	setFromEnv(&cfg.APIBaseURL, EnvAPIURL)
	setFromEnv(&cfg.LogLevel, EnvLogLevel)
	setFromEnv(&cfg.RedisAddr, EnvRedisAddr)
	setFromEnv(&cfg.DataDir, EnvDataDir)
}

func setFromEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
