package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/sitewatch/internal/domain"
)

// Config is loaded once at startup and never changes afterwards.
type Config struct {
	SitesFile            string        `envconfig:"SITES_FILE" default:"sites.yaml"`
	CheckIntervalSeconds int           `envconfig:"CHECK_INTERVAL_SECONDS" default:"300" validate:"gt=0"`
	ProbeTimeout         time.Duration `envconfig:"PROBE_TIMEOUT" default:"10s" validate:"gt=0"`
	NotifyTimeout        time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"30s" validate:"gt=0"`
	MaxConcurrentChecks  int           `envconfig:"MAX_CONCURRENT_CHECKS" default:"1" validate:"gte=1"`
	PrimeOnStart         bool          `envconfig:"PRIME_ON_START" default:"false"`

	LogDir   string `envconfig:"LOG_DIR" default:"logs"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Email        Email
	SlackWebhook string `envconfig:"SLACK_WEBHOOK_URL" validate:"omitempty,url"`

	Status Status

	Sites []domain.Target `ignored:"true" validate:"min=1,unique=URL,dive"`
}

// Email holds the SMTP credentials. Either all of sender, receiver and
// password are set, or none is.
type Email struct {
	Sender      string `envconfig:"EMAIL_SENDER" validate:"omitempty,email"`
	Receiver    string `envconfig:"EMAIL_RECEIVER" validate:"omitempty,email"`
	AppPassword string `envconfig:"EMAIL_APP_PASSWORD"`
	SMTPHost    string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort    int    `envconfig:"SMTP_PORT" default:"465" validate:"gt=0,lte=65535"`
}

func (e Email) Enabled() bool { return e.Sender != "" }

// Status configures the optional read-only status listener. An empty Addr
// disables it.
type Status struct {
	Addr    string   `envconfig:"STATUS_ADDR"`
	APIKeys []string `envconfig:"STATUS_API_KEYS"`
	RPM     int      `envconfig:"STATUS_RPM" default:"120" validate:"gte=0"`
	Burst   int      `envconfig:"STATUS_BURST" default:"60" validate:"gte=0"`
}

type sitesFile struct {
	Sites []domain.Target `yaml:"sites"`
}

// Load reads an optional .env file, the environment and the sites file, then
// validates the result.
func Load(envPath string) (Config, error) {
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}

	sites, err := LoadSites(cfg.SitesFile)
	if err != nil {
		return Config{}, err
	}
	cfg.Sites = sites

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadSites parses the YAML sites list, in file order.
func LoadSites(path string) ([]domain.Target, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sites: %w", err)
	}
	var f sitesFile
	if err := yaml.Unmarshal(content, &f); err != nil {
		return nil, fmt.Errorf("parse sites: %w", err)
	}
	for i := range f.Sites {
		f.Sites[i].Name = strings.TrimSpace(f.Sites[i].Name)
		f.Sites[i].URL = strings.TrimSpace(f.Sites[i].URL)
	}
	return f.Sites, nil
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config: %s", formatFieldError(verrs[0]))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	e := c.Email
	set := 0
	for _, v := range []string{e.Sender, e.Receiver, e.AppPassword} {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 3 {
		return errors.New("invalid config: EMAIL_SENDER, EMAIL_RECEIVER and EMAIL_APP_PASSWORD must be set together")
	}
	return nil
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", fe.Namespace(), fe.Param())
	case "unique":
		return fmt.Sprintf("%s has duplicate %s values", fe.Namespace(), fe.Param())
	case "required":
		return fmt.Sprintf("%s is required", fe.Namespace())
	case "http_url", "url":
		return fmt.Sprintf("%s must be an http(s) URL, got %q", fe.Namespace(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param())
	}
}

func (c Config) Interval() time.Duration {
	return time.Duration(c.CheckIntervalSeconds) * time.Second
}
