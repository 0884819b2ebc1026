package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

// allEnvVars lists every variable Load reads.
var allEnvVars = []string{
	"KIGO_DATABASE_URL", "KIGO_GRPC_ADDR", "KIGO_HTTP_ADDR", "KIGO_NATS_URL",
	"KIGO_AUTH_TOKEN", "KIGO_LOG_LEVEL", "KIGO_DEFAULT_PAGE_SIZE", "KIGO_MAX_PAGE_SIZE",
	"KIGO_SYNC_INTERVAL", "KIGO_SYNC_S3_BUCKET", "KIGO_SYNC_S3_ENDPOINT",
	"KIGO_SYNC_S3_REGION", "KIGO_SYNC_S3_PREFIX", "KIGO_SYNC_GIT_REPO",
	"KIGO_SYNC_GIT_PATH", "KIGO_SYNC_GIT_BRANCH", "KIGO_SESSION_IDLE",
}

// clearAllEnv unsets the variables so each test starts from the defaults.
// t.Setenv first registers the restore on cleanup.
func clearAllEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvVars {
		t.Setenv(key, "x")
		unsetenv(t, key)
	}
}

func unsetenv(t *testing.T, key string) {
	t.Helper()
	if err := os.Unsetenv(key); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	for _, tc := range []struct {
		name         string
		env          map[string]string
		wantErr      bool
		wantGRPCAddr string
		wantHTTPAddr string
		wantNATSURL  string
	}{
		{
			name:         "DefaultAddresses",
			env:          map[string]string{},
			wantGRPCAddr: ":9090",
			wantHTTPAddr: ":8080",
		},
		{
			name: "CustomAddresses",
			env: map[string]string{
				"KIGO_DATABASE_URL": "postgres://db:5432/kigo",
				"KIGO_GRPC_ADDR":    ":5050",
				"KIGO_HTTP_ADDR":    ":3000",
				"KIGO_NATS_URL":     "nats://localhost:4222",
			},
			wantGRPCAddr: ":5050",
			wantHTTPAddr: ":3000",
			wantNATSURL:  "nats://localhost:4222",
		},
		{
			name:    "BadPageSize",
			env:     map[string]string{"KIGO_DEFAULT_PAGE_SIZE": "0"},
			wantErr: true,
		},
		{
			name:    "DefaultAboveMax",
			env:     map[string]string{"KIGO_DEFAULT_PAGE_SIZE": "50", "KIGO_MAX_PAGE_SIZE": "20"},
			wantErr: true,
		},
		{
			name:    "BadLogLevel",
			env:     map[string]string{"KIGO_LOG_LEVEL": "chatty"},
			wantErr: true,
		},
		{
			name:    "NotAnInt",
			env:     map[string]string{"KIGO_MAX_PAGE_SIZE": "lots"},
			wantErr: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			clearAllEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.DatabaseURL != tc.env["KIGO_DATABASE_URL"] {
				t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, tc.env["KIGO_DATABASE_URL"])
			}
			if cfg.GRPCAddr != tc.wantGRPCAddr {
				t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, tc.wantGRPCAddr)
			}
			if cfg.HTTPAddr != tc.wantHTTPAddr {
				t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, tc.wantHTTPAddr)
			}
			if cfg.NATSURL != tc.wantNATSURL {
				t.Errorf("NATSURL = %q, want %q", cfg.NATSURL, tc.wantNATSURL)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	clearAllEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SyncInterval != 5*time.Minute {
		t.Errorf("SyncInterval = %v, want 5m", cfg.SyncInterval)
	}
	if cfg.SyncS3Region != "us-east-1" {
		t.Errorf("SyncS3Region = %q, want %q", cfg.SyncS3Region, "us-east-1")
	}
	if cfg.SyncS3Prefix != "kigo/" {
		t.Errorf("SyncS3Prefix = %q, want %q", cfg.SyncS3Prefix, "kigo/")
	}
	if cfg.SyncGitPath != "kigo.jsonl" {
		t.Errorf("SyncGitPath = %q, want %q", cfg.SyncGitPath, "kigo.jsonl")
	}
	if cfg.DefaultPageSize != 10 || cfg.MaxPageSize != 100 {
		t.Errorf("page sizes = %d/%d, want 10/100", cfg.DefaultPageSize, cfg.MaxPageSize)
	}
	if cfg.SessionIdle != 30*time.Minute {
		t.Errorf("SessionIdle = %v, want 30m", cfg.SessionIdle)
	}
	if cfg.Level() != slog.LevelInfo {
		t.Errorf("Level() = %v, want info", cfg.Level())
	}
}

func TestLoadCustom(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("KIGO_SYNC_INTERVAL", "10m")
	t.Setenv("KIGO_SYNC_S3_BUCKET", "my-bucket")
	t.Setenv("KIGO_SYNC_S3_ENDPOINT", "http://minio:9000")
	t.Setenv("KIGO_SYNC_S3_REGION", "eu-west-1")
	t.Setenv("KIGO_SYNC_GIT_REPO", "/tmp/repo")
	t.Setenv("KIGO_SYNC_GIT_BRANCH", "backup")
	t.Setenv("KIGO_LOG_LEVEL", "debug")
	t.Setenv("KIGO_SESSION_IDLE", "90s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SyncInterval != 10*time.Minute {
		t.Errorf("SyncInterval = %v, want 10m", cfg.SyncInterval)
	}
	if cfg.SyncS3Bucket != "my-bucket" {
		t.Errorf("SyncS3Bucket = %q", cfg.SyncS3Bucket)
	}
	if cfg.SyncS3Endpoint != "http://minio:9000" {
		t.Errorf("SyncS3Endpoint = %q", cfg.SyncS3Endpoint)
	}
	if cfg.SyncS3Region != "eu-west-1" {
		t.Errorf("SyncS3Region = %q", cfg.SyncS3Region)
	}
	if cfg.SyncGitRepo != "/tmp/repo" {
		t.Errorf("SyncGitRepo = %q", cfg.SyncGitRepo)
	}
	if cfg.SyncGitBranch != "backup" {
		t.Errorf("SyncGitBranch = %q", cfg.SyncGitBranch)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Level() = %v, want debug", cfg.Level())
	}
	if cfg.SessionIdle != 90*time.Second {
		t.Errorf("SessionIdle = %v", cfg.SessionIdle)
	}
}

func TestLoadSyncInvalidInterval(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("KIGO_SYNC_INTERVAL", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid KIGO_SYNC_INTERVAL")
	}
}

func TestLoadSyncDisabled(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("KIGO_SYNC_INTERVAL", "0s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SyncInterval != 0 {
		t.Errorf("SyncInterval = %v, want 0 (disabled)", cfg.SyncInterval)
	}
}

func TestClampPageSize(t *testing.T) {
	c := &Config{DefaultPageSize: 10, MaxPageSize: 50}
	for _, tc := range []struct{ in, want int }{
		{0, 10}, {-3, 10}, {20, 20}, {50, 50}, {500, 50},
	} {
		if got := c.ClampPageSize(tc.in); got != tc.want {
			t.Errorf("ClampPageSize(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
