package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration. Defaults describe the Winnicki
// Digital service catalog; a YAML file and environment variables override them.
type Config struct {
	Server    ServerConfig       `yaml:"server"`
	Model     ModelConfig        `yaml:"model"`
	Company   CompanyConfig      `yaml:"company"`
	Packages  map[string]Package `yaml:"packages"`
	Services  map[string]Service `yaml:"services"`
	Notify    NotifyConfig       `yaml:"notify"`
	Artifacts ArtifactConfig     `yaml:"artifacts"`
	Logging   LoggingConfig      `yaml:"logging"`
}

type ServerConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type ModelConfig struct {
	Provider           string  `yaml:"provider"`
	Name               string  `yaml:"name"`
	Temperature        float64 `yaml:"temperature"`
	MaxTokens          int64   `yaml:"max_tokens"`
	MaxConcurrentCalls int     `yaml:"max_concurrent_calls"`
	AnthropicAPIKey    string  `yaml:"anthropic_api_key"`
	OpenAIAPIKey       string  `yaml:"openai_api_key"`
}

type CompanyConfig struct {
	Name         string   `yaml:"name" json:"name"`
	Website      string   `yaml:"website" json:"website"`
	ContactEmail string   `yaml:"contact_email" json:"contact_email"`
	Services     []string `yaml:"services" json:"services"`
	Platforms    []string `yaml:"platforms" json:"platforms"`
}

// Package describes one website package from the sales catalog. The JSON tags
// match the shape agents see when the catalog is embedded in their instructions.
type Package struct {
	Name               string   `yaml:"name" json:"name"`
	BasePrice          int      `yaml:"base_price" json:"base_price"`
	Pages              int      `yaml:"pages" json:"pages"`
	AdditionalPageCost int      `yaml:"additional_page_cost" json:"additional_page_cost"`
	BlogAddon          int      `yaml:"blog_addon,omitempty" json:"blog_addon,omitempty"`
	TrainingRate       int      `yaml:"training_rate,omitempty" json:"training_rate,omitempty"`
	Timeline           string   `yaml:"timeline" json:"timeline"`
	Features           []string `yaml:"features" json:"features"`
}

type Service struct {
	Name       string `yaml:"name" json:"name"`
	Pricing    string `yaml:"pricing,omitempty" json:"pricing,omitempty"`
	HourlyRate int    `yaml:"hourly_rate,omitempty" json:"hourly_rate,omitempty"`
	Timeline   string `yaml:"timeline" json:"timeline"`
}

type NotifyConfig struct {
	Slack    SlackConfig    `yaml:"slack"`
	Email    EmailConfig    `yaml:"email"`
	Telegram TelegramConfig `yaml:"telegram"`
	NATS     NATSConfig     `yaml:"nats"`
}

type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	Channel    string `yaml:"channel"`
	Username   string `yaml:"username"`
	IconEmoji  string `yaml:"icon_emoji"`
}

type EmailConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	From           string `yaml:"from"`
	To             string `yaml:"to"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

type ArtifactConfig struct {
	// Backend selects the artifact store: memory, local, or sqlite.
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
	Path    string `yaml:"path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Enabled: true,
			Port:    8080,
		},
		Model: ModelConfig{
			Provider:           "anthropic",
			Temperature:        0.7,
			MaxTokens:          4096,
			MaxConcurrentCalls: 4,
		},
		Company: CompanyConfig{
			Name:         "Winnicki Digital",
			Website:      "https://www.winnickidigital.com",
			ContactEmail: "shannon@winnickidigital.com",
			Services:     []string{"Website Design", "SEO", "AI Automation", "Voice Agents"},
			Platforms:    []string{"Wix", "Shopify", "HighLevel", "Webflow"},
		},
		Packages: map[string]Package{
			"single_page": {
				Name:               "Single Page Website",
				BasePrice:          700,
				Pages:              1,
				AdditionalPageCost: 300,
				Timeline:           "1-2 weeks",
				Features:           []string{"Mobile Responsive", "Image Gallery", "Lead Capture Form", "Embedded Video", "Social Share", "You Own The Website"},
			},
			"small": {
				Name:               "Small Website",
				BasePrice:          1999,
				Pages:              5,
				AdditionalPageCost: 300,
				BlogAddon:          500,
				TrainingRate:       70,
				Timeline:           "2-3 weeks",
				Features:           []string{"Up to 5 Pages", "Mobile Responsive", "e-Commerce (lite)", "Ticketing System", "Google Search Console", "You Own The Website"},
			},
			"large": {
				Name:               "Large Website",
				BasePrice:          3999,
				Pages:              15,
				AdditionalPageCost: 200,
				BlogAddon:          400,
				TrainingRate:       50,
				Timeline:           "4-6 weeks",
				Features:           []string{"Up to 15 Pages", "Full e-Commerce", "Ticketing System", "Google Search Console", "You Own The Website"},
			},
		},
		Services: map[string]Service{
			"seo":           {Name: "SEO Services", Pricing: "Custom", Timeline: "3-6 months"},
			"voice_agent":   {Name: "AI Voice Agent", Pricing: "$2000-5000 setup", Timeline: "2-3 weeks"},
			"ai_automation": {Name: "AI Automation", HourlyRate: 150, Timeline: "Varies"},
		},
		Notify: NotifyConfig{
			Slack: SlackConfig{
				Channel:   "wd-leads",
				Username:  "Winnicki Digital Bot",
				IconEmoji: ":globe_with_meridians:",
			},
			Email: EmailConfig{
				From: "system@winnickidigital.com",
				To:   "shannon@winnickidigital.com",
			},
			NATS: NATSConfig{
				Subject: "salesmesh.runs",
			},
		},
		Artifacts: ArtifactConfig{
			Backend: "local",
			Dir:     "output",
			Path:    "data/salesmesh.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Default returns the built-in configuration without consulting the
// environment or any file.
func Default() *Config {
	cfg := defaults()
	return &cfg
}

// Load reads configuration from the file named by SALESMESH_CONFIG (default
// config/salesmesh.yaml), layered over defaults. A missing file is not an
// error. Environment variables are expanded inside the YAML and a set of
// well-known variables override the result.
func Load() (*Config, error) {
	cfg := defaults()

	path := os.Getenv("SALESMESH_CONFIG")
	if path == "" {
		path = "config/salesmesh.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found, use defaults + env
	} else {
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Model.AnthropicAPIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Model.OpenAIAPIKey = v
	}
	if v := os.Getenv("SALESMESH_MODEL_PROVIDER"); v != "" {
		cfg.Model.Provider = v
	}
	if v := os.Getenv("SALESMESH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SENDGRID_API_KEY"); v != "" {
		cfg.Notify.Email.SendGridAPIKey = v
	}
	if v := os.Getenv("FROM_EMAIL"); v != "" {
		cfg.Notify.Email.From = v
	}
	if v := os.Getenv("TO_EMAIL"); v != "" {
		cfg.Notify.Email.To = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Notify.Slack.WebhookURL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Notify.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Notify.Telegram.ChatID = id
		}
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.Notify.NATS.URL = v
	}
	if v := os.Getenv("SALESMESH_OUTPUT_DIR"); v != "" {
		cfg.Artifacts.Dir = v
	}
	if v := os.Getenv("SALESMESH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
