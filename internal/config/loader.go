package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the dashboard front.
type Config struct {
	HTTPPort       int            `env:"DASHBOARD_HTTP_PORT" validate:"min=1,max=65535"`
	BackendURL     string         `env:"DASHBOARD_BACKEND_URL" validate:"required,url"`
	APIPrefix      string         `env:"DASHBOARD_API_PREFIX" validate:"required,startswith=/"`
	LoginURL       string         `env:"DASHBOARD_LOGIN_URL" validate:"required"`
	RequestTimeout time.Duration  `env:"DASHBOARD_REQUEST_TIMEOUT" validate:"gte=0"`
	ToastDuration  time.Duration  `env:"DASHBOARD_TOAST_DURATION" validate:"gt=0"`
	Location       *time.Location `env:"DASHBOARD_TIMEZONE" validate:"required"`
	ActionRate     float64        `env:"DASHBOARD_ACTION_RATE" validate:"gt=0"`
	ActionBurst    int            `env:"DASHBOARD_ACTION_BURST" validate:"min=1"`
	MaxViewers     int            `env:"DASHBOARD_MAX_VIEWERS" validate:"min=1"`
	LogFormat      string         `env:"DASHBOARD_LOG_FORMAT" validate:"omitempty,oneof=json text"`
}

// LoadDotEnv preloads variables from the given files (".env" when none are
// named). Missing files are ignored; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// Load parses configuration values from the current process environment.
//
// Defaults apply to every unset variable. Values that fail to parse or
// validate are reported together in a single error naming the variables.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:      8081,
		BackendURL:    "http://localhost:5001",
		APIPrefix:     "/api",
		ToastDuration: 5 * time.Second,
		Location:      time.Local,
		ActionRate:    5,
		ActionBurst:   10,
		MaxViewers:    1024,
	}

	invalid := make([]string, 0, 2)

	if portValue := lookup("DASHBOARD_HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil {
			invalid = append(invalid, "DASHBOARD_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if backend := lookup("DASHBOARD_BACKEND_URL"); backend != "" {
		cfg.BackendURL = strings.TrimRight(backend, "/")
	}

	if prefix := lookup("DASHBOARD_API_PREFIX"); prefix != "" {
		cfg.APIPrefix = strings.TrimRight(prefix, "/")
	}

	cfg.LoginURL = cfg.BackendURL + "/auth/login"
	if login := lookup("DASHBOARD_LOGIN_URL"); login != "" {
		cfg.LoginURL = login
	}

	parseDuration := func(key string, target *time.Duration) {
		value := lookup(key)
		if value == "" {
			return
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			invalid = append(invalid, key)
			return
		}
		*target = d
	}
	parseDuration("DASHBOARD_REQUEST_TIMEOUT", &cfg.RequestTimeout)
	parseDuration("DASHBOARD_TOAST_DURATION", &cfg.ToastDuration)

	if zone := lookup("DASHBOARD_TIMEZONE"); zone != "" {
		loc, err := time.LoadLocation(zone)
		if err != nil {
			invalid = append(invalid, "DASHBOARD_TIMEZONE")
		} else {
			cfg.Location = loc
		}
	}

	if rateValue := lookup("DASHBOARD_ACTION_RATE"); rateValue != "" {
		rate, err := strconv.ParseFloat(rateValue, 64)
		if err != nil {
			invalid = append(invalid, "DASHBOARD_ACTION_RATE")
		} else {
			cfg.ActionRate = rate
		}
	}

	parseInt := func(key string, target *int) {
		value := lookup(key)
		if value == "" {
			return
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			invalid = append(invalid, key)
			return
		}
		*target = n
	}
	parseInt("DASHBOARD_ACTION_BURST", &cfg.ActionBurst)
	parseInt("DASHBOARD_MAX_VIEWERS", &cfg.MaxViewers)

	cfg.LogFormat = strings.ToLower(lookup("DASHBOARD_LOG_FORMAT"))

	invalid = append(invalid, validate(cfg)...)
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(dedupe(invalid), ", "))
	}

	return cfg, nil
}

// APIRoot returns the base URL every API endpoint is resolved against.
func (c Config) APIRoot() string {
	return c.BackendURL + c.APIPrefix
}

var configValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("env"); name != "" {
			return name
		}
		return fld.Name
	})
	return v
}

// validate returns the env names of every field that fails its rules.
func validate(cfg Config) []string {
	err := configValidator.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		names = append(names, fe.Field())
	}
	return names
}

func lookup(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
