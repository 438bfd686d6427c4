package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override config values.
const (
	EnvTMDBAPIKey     = "HOLOCRON_TMDB_API_KEY"
	EnvTMDBToken      = "HOLOCRON_TMDB_TOKEN"
	EnvStorageBackend = "HOLOCRON_STORAGE_BACKEND"
	EnvRedisAddr      = "HOLOCRON_REDIS_ADDR"
	EnvRedisDB        = "HOLOCRON_REDIS_DB"
	EnvLogLevel       = "HOLOCRON_LOG_LEVEL"
)

// ApplyEnv overlays environment overrides onto c.
//
// Values come from the process environment first, then from the dotenv file at envFile (if it exists).
// The file never modifies the process environment.
func ApplyEnv(c *Config, envFile string) error {
	fileValues := map[string]string{}
	if envFile != "" {
		values, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileValues = values
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("%w: failed to read env file %s: %v", ErrInvalidConfig, envFile, err)
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileValues[key]
		return v, ok
	}

	if v, ok := lookup(EnvTMDBAPIKey); ok {
		c.TMDB.APIKey = v
	}
	if v, ok := lookup(EnvTMDBToken); ok {
		c.TMDB.ReadAccessToken = v
	}
	if v, ok := lookup(EnvStorageBackend); ok && v != "" {
		c.Storage.Backend = v
	}
	if v, ok := lookup(EnvRedisAddr); ok && v != "" {
		c.Redis.Addr = v
	}
	if v, ok := lookup(EnvRedisDB); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidConfig, EnvRedisDB, v)
		}
		c.Redis.DB = db
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}

	return c.Validate()
}
