package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the process configuration. It is built once at start-up and
// never mutated afterwards.
type Config struct {
	Port        string `yaml:"port"`
	Timezone    string `yaml:"timezone"`
	LogFormat   string `yaml:"log_format"`    // json | text
	MailLogFile string `yaml:"mail_log_file"` // append-only request log
	TrustProxy  bool   `yaml:"trust_proxy"`
	// Proxy networks allowed to set X-Forwarded-For; empty trusts any peer
	TrustedProxies []string `yaml:"trusted_proxies"`
	// Origins allowed to call the endpoint from a browser
	AllowedOrigins []string `yaml:"allowed_origins"`

	Mail MailConfig `yaml:"mail"`
}

// MailConfig holds everything the validation and delivery stages need.
// It is passed by value so every request works on its own copy.
type MailConfig struct {
	SiteName string   `yaml:"site_name"`
	Subject  string   `yaml:"subject"`
	MailFrom string   `yaml:"mail_from"`
	To       []string `yaml:"to"`
	Cc       []string `yaml:"cc"`
	Bcc      []string `yaml:"bcc"`

	// SMTP Configuration (primary transport)
	SMTPEnabled bool          `yaml:"smtp_enabled"`
	SMTPHost    string        `yaml:"smtp_host"`
	SMTPPort    int           `yaml:"smtp_port"`
	SMTPUser    string        `yaml:"smtp_user"`
	SMTPPass    string        `yaml:"smtp_pass"`
	SMTPSecure  string        `yaml:"smtp_secure"` // tls | ssl | anything else = opportunistic
	SMTPTimeout time.Duration `yaml:"smtp_timeout"`

	// Fallback transport
	SendmailPath string `yaml:"sendmail_path"`

	// Customer confirmation
	ConfirmEnabled  bool   `yaml:"confirm_enabled"`
	ConfirmSubject  string `yaml:"confirm_subject"`
	ConfirmFrom     string `yaml:"confirm_from"`      // empty = MailFrom
	ConfirmFromName string `yaml:"confirm_from_name"` // empty = SiteName
}

// Options control where LoadConfig looks for configuration sources.
type Options struct {
	File    string // optional YAML file
	EnvFile string // optional extra .env file
}

// Defaults returns the documented fallback for every setting.
func Defaults() Config {
	return Config{
		Port:        "8080",
		Timezone:    "Europe/Rome",
		LogFormat:   "json",
		MailLogFile: "mail.log",
		Mail: MailConfig{
			SiteName:       "Sito",
			Subject:        "Nuova richiesta dal sito",
			MailFrom:       "no-reply@localhost",
			SMTPPort:       587,
			SMTPSecure:     "tls",
			SMTPTimeout:    15 * time.Second,
			SendmailPath:   "/usr/sbin/sendmail",
			ConfirmSubject: "Abbiamo ricevuto la tua richiesta",
		},
	}
}

func LoadConfig(opts Options) (*Config, error) {
	cfg := Defaults()

	// YAML overlay: only non-zero values replace the defaults
	file := opts.File
	if file == "" {
		file = os.Getenv("CONFIG_FILE")
	}
	if file != "" {
		fileCfg, err := readFile(file)
		if err != nil {
			return nil, err
		}
		if err := mergo.Merge(&cfg, fileCfg, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge config file: %w", err)
		}
	}

	// Load .env file (missing file is fine, real env always wins)
	_ = godotenv.Load()
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", opts.EnvFile, err)
		}
	}

	applyEnv(&cfg)

	if len(cfg.Mail.To) == 0 {
		slog.Warn("MAIL_TO is empty. Every submission will be rejected until a recipient is configured.")
	}
	if cfg.Mail.SMTPEnabled && cfg.Mail.SMTPHost == "" {
		slog.Warn("SMTP_ENABLED is set but SMTP_HOST is missing. Only the sendmail fallback will be used.")
	}

	return &cfg, nil
}

func readFile(path string) (Config, error) {
	var fileCfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return fileCfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fileCfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fileCfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Timezone = getEnv("APP_TZ", cfg.Timezone)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.MailLogFile = getEnv("MAIL_LOG_FILE", cfg.MailLogFile)
	cfg.TrustProxy = getEnvBool("TRUST_PROXY", cfg.TrustProxy)
	cfg.TrustedProxies = getEnvList("TRUSTED_PROXIES", cfg.TrustedProxies)
	cfg.AllowedOrigins = getEnvList("ALLOWED_ORIGINS", cfg.AllowedOrigins)

	m := &cfg.Mail
	m.SiteName = getEnv("SITE_NAME", m.SiteName)
	m.Subject = getEnv("SUBJECT", m.Subject)
	m.MailFrom = getEnv("MAIL_FROM", m.MailFrom)
	m.To = getEnvList("MAIL_TO", m.To)
	m.Cc = getEnvList("MAIL_CC", m.Cc)
	m.Bcc = getEnvList("MAIL_BCC", m.Bcc)

	m.SMTPEnabled = getEnvBool("SMTP_ENABLED", m.SMTPEnabled)
	m.SMTPHost = getEnv("SMTP_HOST", m.SMTPHost)
	m.SMTPPort = getEnvInt("SMTP_PORT", m.SMTPPort)
	m.SMTPUser = getEnv("SMTP_USER", m.SMTPUser)
	m.SMTPPass = getEnv("SMTP_PASS", m.SMTPPass)
	m.SMTPSecure = getEnv("SMTP_SECURE", m.SMTPSecure)
	m.SMTPTimeout = time.Duration(getEnvInt("SMTP_TIMEOUT_SECONDS", int(m.SMTPTimeout/time.Second))) * time.Second
	m.SendmailPath = getEnv("SENDMAIL_PATH", m.SendmailPath)

	m.ConfirmEnabled = getEnvBool("CONFIRM_ENABLED", m.ConfirmEnabled)
	m.ConfirmSubject = getEnv("CONFIRM_SUBJECT", m.ConfirmSubject)
	m.ConfirmFrom = getEnv("CONFIRM_FROM", m.ConfirmFrom)
	m.ConfirmFromName = getEnv("CONFIRM_FROM_NAME", m.ConfirmFromName)
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		slog.Warn("unknown APP_TZ, using UTC", "timezone", c.Timezone, "error", err)
		return time.UTC
	}
	return loc
}

// Redacted returns a copy that is safe to print.
func (c *Config) Redacted() Config {
	out := *c
	if out.Mail.SMTPPass != "" {
		out.Mail.SMTPPass = "********"
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool treats 1/true/yes/on as true and any other present value as false
func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// getEnvList splits a comma-separated variable, dropping empty entries
func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return SplitList(value)
}

// SplitList splits on commas, trims each entry and drops empty ones.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
