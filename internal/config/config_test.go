package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "rosterlink-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "rosterlink-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default true", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 60*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}

func TestLoad_CurrentSeasonValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("explicit season", func(t *testing.T) {
		t.Setenv("CURRENT_SEASON", "2025")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.CurrentSeason != 2025 {
			t.Fatalf("unexpected current season: %d", cfg.CurrentSeason)
		}
	})

	t.Run("rejects two digit year", func(t *testing.T) {
		t.Setenv("CURRENT_SEASON", "25")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for a two digit CURRENT_SEASON")
		}
	})

	t.Run("defaults to a plausible year", func(t *testing.T) {
		t.Setenv("CURRENT_SEASON", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.CurrentSeason < 2024 {
			t.Fatalf("unexpected default current season: %d", cfg.CurrentSeason)
		}
	})
}

func TestLoad_PlatformClientConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SleeperBaseURL != "https://api.sleeper.app" {
			t.Fatalf("unexpected sleeper base url: %q", cfg.SleeperBaseURL)
		}
		if cfg.SleeperTimeout != 20*time.Second {
			t.Fatalf("unexpected sleeper timeout: %s", cfg.SleeperTimeout)
		}
		if cfg.SleeperMaxWeeks != 18 {
			t.Fatalf("unexpected sleeper max weeks: %d", cfg.SleeperMaxWeeks)
		}
		if cfg.FleaflickerBaseURL != "https://www.fleaflicker.com" {
			t.Fatalf("unexpected fleaflicker base url: %q", cfg.FleaflickerBaseURL)
		}
		if !cfg.SleeperCircuitEnabled || !cfg.FleaflickerCircuitEnabled {
			t.Fatalf("expected circuit breakers enabled by default")
		}
		if cfg.SleeperCircuitFailureCount != 5 {
			t.Fatalf("unexpected sleeper circuit failure count: %d", cfg.SleeperCircuitFailureCount)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("SLEEPER_BASE_URL", "http://localhost:9001")
		t.Setenv("SLEEPER_TIMEOUT", "5s")
		t.Setenv("SLEEPER_MAX_RETRIES", "3")
		t.Setenv("SLEEPER_CIRCUIT_ENABLED", "false")
		t.Setenv("FLEAFLICKER_CIRCUIT_FAILURE_COUNT", "9")
		t.Setenv("FLEAFLICKER_CIRCUIT_OPEN_TIMEOUT", "30s")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SleeperBaseURL != "http://localhost:9001" {
			t.Fatalf("unexpected sleeper base url: %q", cfg.SleeperBaseURL)
		}
		if cfg.SleeperTimeout != 5*time.Second {
			t.Fatalf("unexpected sleeper timeout: %s", cfg.SleeperTimeout)
		}
		if cfg.SleeperMaxRetries != 3 {
			t.Fatalf("unexpected sleeper max retries: %d", cfg.SleeperMaxRetries)
		}
		if cfg.SleeperCircuitEnabled {
			t.Fatalf("expected sleeper circuit disabled")
		}
		if cfg.FleaflickerCircuitFailureCount != 9 {
			t.Fatalf("unexpected fleaflicker circuit failure count: %d", cfg.FleaflickerCircuitFailureCount)
		}
		if cfg.FleaflickerCircuitOpenTimeout != 30*time.Second {
			t.Fatalf("unexpected fleaflicker circuit open timeout: %s", cfg.FleaflickerCircuitOpenTimeout)
		}
	})

	t.Run("invalid circuit failure count", func(t *testing.T) {
		t.Setenv("SLEEPER_CIRCUIT_FAILURE_COUNT", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for SLEEPER_CIRCUIT_FAILURE_COUNT=0")
		}
	})
}

func TestLoad_RefreshAndStalenessParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.StalenessMaxAge != 24*time.Hour {
			t.Fatalf("unexpected staleness max age: %s", cfg.StalenessMaxAge)
		}
		if cfg.StalenessTouchThreshold != 10*time.Minute {
			t.Fatalf("unexpected touch threshold: %s", cfg.StalenessTouchThreshold)
		}
		if cfg.RefreshConcurrency != 3 {
			t.Fatalf("unexpected refresh concurrency: %d", cfg.RefreshConcurrency)
		}
		if cfg.RefreshPace != 500*time.Millisecond {
			t.Fatalf("unexpected refresh pace: %s", cfg.RefreshPace)
		}
		if cfg.MigrationMaxWorkers != 4 {
			t.Fatalf("unexpected migration max workers: %d", cfg.MigrationMaxWorkers)
		}
		if cfg.ContentionRingCapacity != 256 {
			t.Fatalf("unexpected contention ring capacity: %d", cfg.ContentionRingCapacity)
		}
	})

	t.Run("rejects zero concurrency", func(t *testing.T) {
		t.Setenv("REFRESH_CONCURRENCY", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for REFRESH_CONCURRENCY=0")
		}
	})

	t.Run("rejects negative pace", func(t *testing.T) {
		t.Setenv("REFRESH_PACE", "-1s")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for negative REFRESH_PACE")
		}
	})
}
