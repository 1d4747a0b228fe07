package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

// Lookups log at debug level when a logger is supplied; secrets are masked by the logger itself.

func String(name, def string, log *logger.Logger) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		debug(log, name, def, true)
		return def
	}
	debug(log, name, v, false)
	return v
}

func Int(name string, def int, log *logger.Logger) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		debug(log, name, def, true)
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		if log != nil {
			log.Warn("Invalid integer env var, using default", "name", name, "value", v, "default", def)
		}
		return def
	}
	debug(log, name, i, false)
	return i
}

func Float(name string, def float64, log *logger.Logger) float64 {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		debug(log, name, def, true)
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		if log != nil {
			log.Warn("Invalid float env var, using default", "name", name, "value", v, "default", def)
		}
		return def
	}
	debug(log, name, f, false)
	return f
}

func Bool(name string, def bool, log *logger.Logger) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	switch v {
	case "":
		debug(log, name, def, true)
		return def
	case "1", "true", "yes", "on":
		debug(log, name, true, false)
		return true
	case "0", "false", "no", "off":
		debug(log, name, false, false)
		return false
	default:
		return def
	}
}

// Duration accepts Go duration strings ("90s", "168h") or a bare number of seconds.
func Duration(name string, def time.Duration, log *logger.Logger) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		debug(log, name, def.String(), true)
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		if log != nil {
			log.Warn("Invalid duration env var, using default", "name", name, "value", v, "default", def.String())
		}
		return def
	}
	debug(log, name, d.String(), false)
	return d
}

// List splits a comma separated variable, dropping empty items.
func List(name string, def []string, log *logger.Logger) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		debug(log, name, strings.Join(def, ","), true)
		return def
	}
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	debug(log, name, raw, false)
	return out
}

func debug(log *logger.Logger, name string, value interface{}, defaulted bool) {
	if log == nil {
		return
	}
	if defaulted {
		log.Debug("Env var not set, using default", "name", name, "default", value)
		return
	}
	log.Debug("Env var loaded", "name", name, "value", maskIfSecret(name, value))
}

func maskIfSecret(name string, value interface{}) interface{} {
	n := strings.ToUpper(name)
	if strings.Contains(n, "KEY") || strings.Contains(n, "SECRET") || strings.Contains(n, "PASSWORD") || strings.Contains(n, "URL") {
		return "***"
	}
	return value
}
