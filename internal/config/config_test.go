package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ExecutionLogBackend != ExecutionLogBackendBolt {
		t.Fatalf("unexpected ExecutionLogBackend: %q", cfg.ExecutionLogBackend)
	}
	if cfg.ScheduleCron != "@every 1h" {
		t.Fatalf("unexpected ScheduleCron: %q", cfg.ScheduleCron)
	}
	if cfg.StorePoolsURL != "http://localhost:8081/api/pools" {
		t.Fatalf("unexpected StorePoolsURL: %q", cfg.StorePoolsURL)
	}
	if cfg.SourceTimezone == nil || cfg.SourceTimezone.String() != "Europe/Paris" {
		t.Fatalf("unexpected SourceTimezone: %v", cfg.SourceTimezone)
	}
	if cfg.FFVBAttempts != 3 || cfg.FFVBRetryDelay != 2*time.Second || cfg.FFVBMaxDownloads != 10 {
		t.Fatalf("unexpected download settings: attempts=%d delay=%s max=%d", cfg.FFVBAttempts, cfg.FFVBRetryDelay, cfg.FFVBMaxDownloads)
	}
	if len(cfg.RegionalExcluded) != 5 || cfg.RegionalExcluded[4] != "LIMART" {
		t.Fatalf("unexpected RegionalExcluded: %v", cfg.RegionalExcluded)
	}
	if cfg.LogFormat != "json" || cfg.TeamLookupCacheTTL != 2*time.Minute {
		t.Fatalf("unexpected log format %q or team cache ttl %s", cfg.LogFormat, cfg.TeamLookupCacheTTL)
	}
	if !cfg.StoreCircuitConfig.Enabled || cfg.StoreCircuitConfig.FailureThreshold != 5 {
		t.Fatalf("unexpected StoreCircuitConfig: %+v", cfg.StoreCircuitConfig)
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `uptrace-dsn="https://token@api.uptrace.dev/1"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev/1" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"EXECUTION_LOG_BACKEND":       "sqlite",
		"STORE_TIMEOUT":               "0s",
		"STORE_READ_RETRIES":          "-1",
		"STORE_CIRCUIT_FAILURE_COUNT": "zero",
		"FFVB_MAX_DOWNLOADS":          "0",
		"TEAM_ALIAS_THRESHOLD":        "1.5",
		"SOURCE_TIMEZONE":             "Mars/Olympus",
		"PPROF_ENABLED":               "maybe",
		"APP_LOG_FORMAT":              "logfmt",
		"TEAM_LOOKUP_CACHE_TTL":       "-1m",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestLoad_ReadsExplicitEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraper.env")
	content := "SCHEDULE_CRON=0 */30 * * * *\nFFVB_MAX_DOWNLOADS=4\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("ENV_FILE", path)
	t.Cleanup(func() {
		_ = os.Unsetenv("SCHEDULE_CRON")
		_ = os.Unsetenv("FFVB_MAX_DOWNLOADS")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ScheduleCron != "0 */30 * * * *" {
		t.Fatalf("unexpected ScheduleCron: %q", cfg.ScheduleCron)
	}
	if cfg.FFVBMaxDownloads != 4 {
		t.Fatalf("unexpected FFVBMaxDownloads: %d", cfg.FFVBMaxDownloads)
	}
}

func TestLoad_MissingExplicitEnvFileFails(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing ENV_FILE")
	}
}
