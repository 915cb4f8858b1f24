package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.JWT.ExpireHour != 24 {
		t.Errorf("ExpireHour = %d, expected 24", cfg.JWT.ExpireHour)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %q, expected sqlite", cfg.Database.Driver)
	}
	if cfg.RateLimit.Auth != 10 || cfg.RateLimit.General != 200 {
		t.Errorf("unexpected rate limits: %+v", cfg.RateLimit)
	}
	if GlobalConfig != cfg {
		t.Error("GlobalConfig should point at the loaded config")
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  port: \"9000\"\ndatabase:\n  driver: postgres\n  dsn: postgres://localhost/travelit\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9000" {
		t.Errorf("Port = %q, expected 9000", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Driver = %q, expected postgres", cfg.Database.Driver)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Host default lost: %q", cfg.Server.Host)
	}
	if cfg.JWT.ExpireHour != 24 {
		t.Errorf("ExpireHour default lost: %d", cfg.JWT.ExpireHour)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on invalid yaml")
	}
}

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("FRONTEND_URL", "https://travelit.example/")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")

	cfg := DefaultConfig()
	cfg.overrideFromEnv()

	if cfg.Database.Driver != "mysql" {
		t.Errorf("Driver = %q", cfg.Database.Driver)
	}
	if cfg.JWT.Secret != "from-env" {
		t.Errorf("Secret = %q", cfg.JWT.Secret)
	}
	if cfg.App.FrontendURL != "https://travelit.example" {
		t.Errorf("FrontendURL = %q, trailing slash should be trimmed", cfg.App.FrontendURL)
	}
	if !cfg.Mail.Enabled || cfg.Mail.Host != "smtp.example.com" || cfg.Mail.Port != 2525 {
		t.Errorf("unexpected mail config: %+v", cfg.Mail)
	}
}

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		addr     string
		password string
		db       int
	}{
		{"host only", "redis://localhost:6379", "localhost:6379", "", 0},
		{"with db", "redis://localhost:6379/2", "localhost:6379", "", 2},
		{"with password", "redis://:secret@redis:6379/1", "redis:6379", "secret", 1},
		{"user and password", "redis://user:pw@redis:6380", "redis:6380", "pw", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.parseRedisURL(tt.url)
			if cfg.Redis.Addr != tt.addr {
				t.Errorf("Addr = %q, expected %q", cfg.Redis.Addr, tt.addr)
			}
			if cfg.Redis.Password != tt.password {
				t.Errorf("Password = %q, expected %q", cfg.Redis.Password, tt.password)
			}
			if cfg.Redis.DB != tt.db {
				t.Errorf("DB = %d, expected %d", cfg.Redis.DB, tt.db)
			}
		})
	}
}

func TestVerificationURLs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.App.PublicURL = "https://api.travelit.example/"
	cfg.App.FrontendURL = "https://travelit.example"

	if got := cfg.VerificationURL("abc"); got != "https://api.travelit.example/api/auth/verify?token=abc" {
		t.Errorf("VerificationURL = %q", got)
	}
	if got := cfg.VerifiedRedirectURL(); got != "https://travelit.example/#/verified" {
		t.Errorf("VerifiedRedirectURL = %q", got)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Storage.UploadDir = "/var/lib/travelit/uploads"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Storage.UploadDir != "/var/lib/travelit/uploads" {
		t.Errorf("UploadDir = %q", loaded.Storage.UploadDir)
	}
}
