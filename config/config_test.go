package config

import (
	"strings"
	"testing"
	"time"
)

// setBaseEnv pins every variable Load reads so the host environment cannot leak in.
// An empty value behaves like an unset variable.
func setBaseEnv(t *testing.T) {
	t.Helper()
	for _, key := range GetEnvVars() {
		t.Setenv(key, "")
	}
}

func TestLoadValidConfig(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "8002")
	t.Setenv("ADDRESS", "127.0.0.1")
	t.Setenv("ENV", "dev")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8002" {
		t.Errorf("Expected port 8002, got %s", cfg.Port)
	}
	if cfg.Address != "127.0.0.1" {
		t.Errorf("Expected address 127.0.0.1, got %s", cfg.Address)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Expected env dev, got %s", cfg.Env)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.LogLevel)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Expected default port 8000, got %s", cfg.Port)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Expected default env dev, got %s", cfg.Env)
	}
	if cfg.LogDir != "logs" {
		t.Errorf("Expected default log dir logs, got %s", cfg.LogDir)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("Expected default session TTL 30m, got %s", cfg.SessionTTL)
	}
	if cfg.ChatWidget != ChatWidgetPopup {
		t.Errorf("Expected default chat widget popup, got %s", cfg.ChatWidget)
	}
	if cfg.ChatScriptURL != DefaultChatScriptURL {
		t.Errorf("Expected default chat script URL, got %s", cfg.ChatScriptURL)
	}
	if cfg.ChatRegion != "au-syd" {
		t.Errorf("Expected default chat region au-syd, got %s", cfg.ChatRegion)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("Expected default CORS origin http://localhost:3000, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RequireProxy {
		t.Error("Expected RequireProxy to default to false")
	}
	if cfg.IsProduction() {
		t.Error("Expected dev config not to be production")
	}
}

func TestInvalidValues(t *testing.T) {
	testCases := []struct {
		name     string
		key      string
		value    string
		expected string
	}{
		{"non numeric port", "PORT", "abc", "PORT must be a valid number"},
		{"zero port", "PORT", "0", "PORT must be between 1 and 65535"},
		{"port too high", "PORT", "65536", "PORT must be between 1 and 65535"},
		{"privileged port", "PORT", "80", "PORT 80 is privileged"},
		{"bad address", "ADDRESS", "invalid", "ADDRESS must be a valid IP address"},
		{"public address", "ADDRESS", "8.8.8.8", "is a public IP"},
		{"bad env", "ENV", "invalid", "ENV must be one of"},
		{"bad log level", "LOG_LEVEL", "verbose", "LOG_LEVEL must be one of"},
		{"negative body", "MAX_REQUEST_BODY", "-1", "MAX_REQUEST_BODY must be positive"},
		{"retention too long", "LOG_RETENTION_WEEKS", "60", "LOG_RETENTION_WEEKS is too large"},
		{"log file too small", "MAX_LOG_FILE_SIZE", "1000", "MAX_LOG_FILE_SIZE is too small"},
		{"session ttl too short", "SESSION_TTL", "5s", "invalid SESSION_TTL"},
		{"unknown chat widget", "CHAT_WIDGET", "iframe", "CHAT_WIDGET must be one of"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Expected error for %s=%s, got nil", tc.key, tc.value)
			}
			if !strings.Contains(err.Error(), tc.expected) {
				t.Errorf("Expected error containing %q, got %q", tc.expected, err.Error())
			}
		})
	}
}

func TestEmbedChatRequiresIdentifiers(t *testing.T) {
	tests := []struct {
		name        string
		integration string
		instance    string
		scriptURL   string
		expected    string
	}{
		{"missing integration id", "", "instance", "", "CHAT_INTEGRATION_ID is required"},
		{"missing service instance id", "integration", "", "", "CHAT_SERVICE_INSTANCE_ID is required"},
		{"relative script url", "integration", "instance", "/chat.js", "CHAT_SCRIPT_URL must be an absolute"},
		{"complete", "integration", "instance", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv("CHAT_WIDGET", "embed")
			t.Setenv("CHAT_INTEGRATION_ID", tt.integration)
			t.Setenv("CHAT_SERVICE_INSTANCE_ID", tt.instance)
			t.Setenv("CHAT_SCRIPT_URL", tt.scriptURL)

			cfg, err := Load()
			if tt.expected == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				if cfg.ChatWidget != ChatWidgetEmbed {
					t.Errorf("Expected embed widget, got %s", cfg.ChatWidget)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.expected) {
				t.Errorf("Expected error containing %q, got %v", tt.expected, err)
			}
		})
	}
}

func TestListAndDurationParsing(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("REQUIRE_PROXY", "true")
	t.Setenv("ENV", "PROD")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[0] != "https://a.example" || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("Unexpected CORS origins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.SessionTTL != 45*time.Minute {
		t.Errorf("Expected session TTL 45m, got %s", cfg.SessionTTL)
	}
	if !cfg.RequireProxy {
		t.Error("Expected RequireProxy to be true")
	}
	if !cfg.IsProduction() {
		t.Error("Expected ENV=PROD to be treated as production")
	}
}

func TestMalformedNumbersFallBackToDefaults(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LOG_RETENTION_WEEKS", "many")
	t.Setenv("SESSION_TTL", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.LogRetentionWeeks != 4 {
		t.Errorf("Expected fallback retention 4, got %d", cfg.LogRetentionWeeks)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("Expected fallback TTL 30m, got %s", cfg.SessionTTL)
	}
}
