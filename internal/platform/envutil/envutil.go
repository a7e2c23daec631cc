package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/lore-backend/internal/platform/logger"
)

// LoadDotEnv loads the given files (default ".env") into the process
// environment. Variables already set win. Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	present := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

func String(key, def string, log *logger.Logger) string {
	val, ok := os.LookupEnv(key)
	val = strings.TrimSpace(val)
	if !ok || val == "" {
		debug(log, key, "Environment variable not found, using default", "default", def)
		return def
	}
	debug(log, key, "Environment variable found, using environment", "value", val)
	return val
}

func Int(key string, def int, log *logger.Logger) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		debug(log, key, "Environment variable not found, using default", "default", def)
		return def
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		debug(log, key, "Environment variable could not be parsed as int, using default", "provided", raw, "default", def, "error", err)
		return def
	}
	return i
}

func Bool(key string, def bool, log *logger.Logger) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch raw {
	case "":
		debug(log, key, "Environment variable not found, using default", "default", def)
		return def
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		debug(log, key, "Environment variable could not be parsed as bool, using default", "provided", raw, "default", def)
		return def
	}
}

// Duration accepts Go duration strings ("90s") or bare integers as seconds.
func Duration(key string, def time.Duration, log *logger.Logger) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		debug(log, key, "Environment variable not found, using default", "default", def.String())
		return def
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		debug(log, key, "Environment variable could not be parsed as duration, using default", "provided", raw, "default", def.String(), "error", err)
		return def
	}
	return d
}

// List splits a comma separated variable, dropping blanks.
func List(key string, def []string, log *logger.Logger) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		debug(log, key, "Environment variable not found, using default", "default", def)
		return def
	}
	out := make([]string, 0, 4)
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func debug(log *logger.Logger, key, msg string, kv ...interface{}) {
	if log == nil {
		return
	}
	log.With("env_var", key).Debug(msg, kv...)
}
