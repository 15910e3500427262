package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var dashboardVariables = []string{
	"DASHBOARD_HTTP_PORT",
	"DASHBOARD_BACKEND_URL",
	"DASHBOARD_API_PREFIX",
	"DASHBOARD_LOGIN_URL",
	"DASHBOARD_REQUEST_TIMEOUT",
	"DASHBOARD_TOAST_DURATION",
	"DASHBOARD_TIMEZONE",
	"DASHBOARD_ACTION_RATE",
	"DASHBOARD_ACTION_BURST",
	"DASHBOARD_MAX_VIEWERS",
	"DASHBOARD_LOG_FORMAT",
}

func clearEnvironment(t *testing.T) {
	t.Helper()
	for _, key := range dashboardVariables {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {
	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnvironment(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8081 {
			t.Fatalf("expected default HTTP port 8081, got %d", cfg.HTTPPort)
		}
		if cfg.APIRoot() != "http://localhost:5001/api" {
			t.Fatalf("unexpected default API root: %q", cfg.APIRoot())
		}
		if cfg.LoginURL != "http://localhost:5001/auth/login" {
			t.Fatalf("unexpected default login URL: %q", cfg.LoginURL)
		}
		if cfg.ToastDuration != 5*time.Second {
			t.Fatalf("expected 5s toast duration, got %v", cfg.ToastDuration)
		}
		if cfg.RequestTimeout != 0 {
			t.Fatalf("expected no request timeout by default, got %v", cfg.RequestTimeout)
		}
		if cfg.Location != time.Local {
			t.Fatalf("expected local time zone, got %v", cfg.Location)
		}
	})

	t.Run("reads overrides", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("DASHBOARD_HTTP_PORT", "9000")
		t.Setenv("DASHBOARD_BACKEND_URL", "https://study.example.edu/")
		t.Setenv("DASHBOARD_API_PREFIX", "/api/v2/")
		t.Setenv("DASHBOARD_REQUEST_TIMEOUT", "15s")
		t.Setenv("DASHBOARD_TOAST_DURATION", "2500ms")
		t.Setenv("DASHBOARD_TIMEZONE", "UTC")
		t.Setenv("DASHBOARD_LOG_FORMAT", "TEXT")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 9000 {
			t.Fatalf("expected port 9000, got %d", cfg.HTTPPort)
		}
		if cfg.APIRoot() != "https://study.example.edu/api/v2" {
			t.Fatalf("unexpected API root: %q", cfg.APIRoot())
		}
		if cfg.LoginURL != "https://study.example.edu/auth/login" {
			t.Fatalf("unexpected login URL: %q", cfg.LoginURL)
		}
		if cfg.RequestTimeout != 15*time.Second || cfg.ToastDuration != 2500*time.Millisecond {
			t.Fatalf("unexpected durations: %v %v", cfg.RequestTimeout, cfg.ToastDuration)
		}
		if cfg.Location.String() != "UTC" {
			t.Fatalf("expected UTC, got %v", cfg.Location)
		}
		if cfg.LogFormat != "text" {
			t.Fatalf("expected lower-cased log format, got %q", cfg.LogFormat)
		}
	})

	t.Run("reports every invalid variable at once", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("DASHBOARD_HTTP_PORT", "eighty")
		t.Setenv("DASHBOARD_TOAST_DURATION", "0s")
		t.Setenv("DASHBOARD_BACKEND_URL", "not a url")
		t.Setenv("DASHBOARD_LOG_FORMAT", "xml")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error for invalid values")
		}
		expected := "invalid environment variables: DASHBOARD_BACKEND_URL, DASHBOARD_HTTP_PORT, DASHBOARD_LOG_FORMAT, DASHBOARD_TOAST_DURATION"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("rejects unknown time zones", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("DASHBOARD_TIMEZONE", "Mars/Olympus_Mons")

		if _, err := Load(); err == nil {
			t.Fatal("expected error for unknown time zone")
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	clearEnvironment(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "dashboard.env")
	if err := os.WriteFile(path, []byte("DASHBOARD_HTTP_PORT=9100\n"), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("DASHBOARD_HTTP_PORT") })

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv returned error: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.HTTPPort != 9100 {
		t.Fatalf("expected port from env file, got %d", cfg.HTTPPort)
	}
}
