package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tonypoem-foundation/site-backend/errs"
)

// New snapshots the process environment. Callers read it through the Get
// helpers so tests can pass a plain map instead.
func New() map[string]string {
	environ := os.Environ()
	cfg := make(map[string]string, len(environ))
	for _, entry := range environ {
		if key, value, _ := strings.Cut(entry, "="); key != "" {
			cfg[key] = value
		}
	}
	return cfg
}

// GetString returns the trimmed value of key. Unset and blank values both
// yield defaultValue.
func GetString(config map[string]string, key string, defaultValue string) string {
	if val := strings.TrimSpace(config[key]); val != "" {
		return val
	}
	return defaultValue
}

func GetInt(config map[string]string, key string, defaultValue int) int {
	n, err := strconv.Atoi(GetString(config, key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func GetBool(config map[string]string, key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(GetString(config, key, ""))
	if err != nil {
		return defaultValue
	}
	return b
}

// GetList splits a comma separated value, dropping blank entries.
func GetList(config map[string]string, key string) []string {
	var values []string
	for _, part := range strings.Split(GetString(config, key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

// GetDuration accepts Go duration strings ("2s", "150ms").
func GetDuration(config map[string]string, key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(GetString(config, key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}

// Require reports the first of keys that has no value.
func Require(config map[string]string, keys ...string) error {
	for _, key := range keys {
		if GetString(config, key, "") == "" {
			return errs.NewEnvironmentVariableError(key)
		}
	}
	return nil
}
