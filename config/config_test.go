package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := defaults()

	if cfg.Company.Name != "Winnicki Digital" {
		t.Errorf("expected company Winnicki Digital, got %s", cfg.Company.Name)
	}
	if cfg.Model.Provider != "anthropic" {
		t.Errorf("expected default provider anthropic, got %s", cfg.Model.Provider)
	}
	if cfg.Model.MaxConcurrentCalls != 4 {
		t.Errorf("expected max_concurrent_calls 4, got %d", cfg.Model.MaxConcurrentCalls)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected server port 8080, got %d", cfg.Server.Port)
	}

	small, ok := cfg.Packages["small"]
	if !ok {
		t.Fatal("expected small package in defaults")
	}
	if small.BasePrice != 1999 {
		t.Errorf("expected small base_price 1999, got %d", small.BasePrice)
	}
	if small.Pages != 5 {
		t.Errorf("expected small pages 5, got %d", small.Pages)
	}

	single, ok := cfg.Packages["single_page"]
	if !ok {
		t.Fatal("expected single_page package in defaults")
	}
	if single.BasePrice != 700 {
		t.Errorf("expected single_page base_price 700, got %d", single.BasePrice)
	}

	voice, ok := cfg.Services["voice_agent"]
	if !ok {
		t.Fatal("expected voice_agent service in defaults")
	}
	if voice.Pricing != "$2000-5000 setup" {
		t.Errorf("expected voice_agent pricing $2000-5000 setup, got %s", voice.Pricing)
	}

	if cfg.Notify.Slack.Username != "Winnicki Digital Bot" {
		t.Errorf("expected slack username Winnicki Digital Bot, got %s", cfg.Notify.Slack.Username)
	}
	if cfg.Artifacts.Backend != "local" {
		t.Errorf("expected artifact backend local, got %s", cfg.Artifacts.Backend)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	// Point config to a non-existent file so we use defaults
	t.Setenv("SALESMESH_CONFIG", "/nonexistent/config.yaml")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test-key")
	t.Setenv("SENDGRID_API_KEY", "sg-test-key")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.test/T1/B1")
	t.Setenv("SALESMESH_PORT", "9090")
	t.Setenv("TELEGRAM_CHAT_ID", "123456")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Model.AnthropicAPIKey != "sk-test-key" {
		t.Errorf("expected anthropic key sk-test-key, got %s", cfg.Model.AnthropicAPIKey)
	}
	if cfg.Notify.Email.SendGridAPIKey != "sg-test-key" {
		t.Errorf("expected sendgrid key sg-test-key, got %s", cfg.Notify.Email.SendGridAPIKey)
	}
	if cfg.Notify.Slack.WebhookURL != "https://hooks.slack.test/T1/B1" {
		t.Errorf("unexpected slack webhook: %s", cfg.Notify.Slack.WebhookURL)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected server port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Notify.Telegram.ChatID != 123456 {
		t.Errorf("expected telegram chat id 123456, got %d", cfg.Notify.Telegram.ChatID)
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yaml := `
server:
  port: 3000
model:
  provider: "openai"
  max_concurrent_calls: 2
company:
  name: "Acme Web Co"
packages:
  small:
    name: "Small Website"
    base_price: 2499
    pages: 5
    timeline: "2-3 weeks"
notify:
  email:
    to: "sales@acmeweb.test"
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SALESMESH_CONFIG", cfgPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("expected server port 3000, got %d", cfg.Server.Port)
	}
	if cfg.Model.Provider != "openai" {
		t.Errorf("expected provider openai, got %s", cfg.Model.Provider)
	}
	if cfg.Company.Name != "Acme Web Co" {
		t.Errorf("expected company Acme Web Co, got %s", cfg.Company.Name)
	}
	if cfg.Packages["small"].BasePrice != 2499 {
		t.Errorf("expected overridden small base_price 2499, got %d", cfg.Packages["small"].BasePrice)
	}
	// Untouched defaults survive a partial override.
	if _, ok := cfg.Packages["large"]; !ok {
		t.Error("expected large package to survive partial override")
	}
	if cfg.Notify.Email.To != "sales@acmeweb.test" {
		t.Errorf("expected email to sales@acmeweb.test, got %s", cfg.Notify.Email.To)
	}
	if cfg.Notify.Email.From != "system@winnickidigital.com" {
		t.Errorf("expected default from address, got %s", cfg.Notify.Email.From)
	}
}
