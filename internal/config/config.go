package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default provider settings
const (
	DefaultSignItAPIURL = "https://api-sandbox.signit.sa/v1"
	DefaultSignItScopes = "signature-requests:read signature-requests:write"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	SignIt    SignItConfig    `mapstructure:"signit"`
	Document  DocumentConfig  `mapstructure:"document"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Port        int    `mapstructure:"port"`
	Env         string `mapstructure:"env"`
	FrontendURL string `mapstructure:"frontend_url"` // Comma separated list of allowed origins
	BodyLimitMB int    `mapstructure:"body_limit_mb"`
}

type SignItConfig struct {
	APIURL      string      `mapstructure:"api_url"`
	Credentials Credentials `mapstructure:",squash"`
	Scopes      string      `mapstructure:"scopes"`
	TimeoutSec  int         `mapstructure:"timeout"`
	MarginSec   int         `mapstructure:"token_margin"`
	MaxRetries  uint        `mapstructure:"max_retries"`
}

// Timeout is the per-request timeout for provider calls
func (s SignItConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// TokenMargin is how long before expiry a cached token stops being reused
func (s SignItConfig) TokenMargin() time.Duration {
	return time.Duration(s.MarginSec) * time.Second
}

// Credentials stores the client-credentials pair used for the token exchange
type Credentials struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// IsComplete reports whether both halves of the credential pair are set
func (c Credentials) IsComplete() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type DocumentConfig struct {
	TemplateDir string `mapstructure:"template_dir"` // Static contract templates (<type>_template.pdf)
	UploadDir   string `mapstructure:"upload_dir"`   // Scratch folder for uploaded PDFs
	MaxUploadMB int    `mapstructure:"max_upload_mb"`
	KeepUploads bool   `mapstructure:"keep_uploads"`
}

// MaxUploadBytes returns the upload limit in bytes
func (d DocumentConfig) MaxUploadBytes() int64 {
	return int64(d.MaxUploadMB) * 1024 * 1024
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	Password         string `mapstructure:"password"`
	DB               int    `mapstructure:"db"`
	SubmissionTTLHrs int    `mapstructure:"submission_ttl"`
}

// SubmissionTTL is how long submission records are kept in Redis
func (r RedisConfig) SubmissionTTL() time.Duration {
	return time.Duration(r.SubmissionTTLHrs) * time.Hour
}

type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
	RPS     int  `mapstructure:"rps"`
	Burst   int  `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func NewConfig() (*Config, error) {
	return Load(".", "./config")
}

// Load reads config.yaml from the given search paths. A missing file is not an
// error: defaults and environment variables are enough to run.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.SignIt.APIURL = strings.TrimSuffix(cfg.SignIt.APIURL, "/")

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "signit-esign")
	v.SetDefault("app.port", 5000)
	v.SetDefault("app.env", "production")
	v.SetDefault("app.frontend_url", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("app.body_limit_mb", 8)

	v.SetDefault("signit.api_url", DefaultSignItAPIURL)
	v.SetDefault("signit.client_id", "")
	v.SetDefault("signit.client_secret", "")
	v.SetDefault("signit.scopes", DefaultSignItScopes)
	v.SetDefault("signit.timeout", 30)
	v.SetDefault("signit.token_margin", 300)
	v.SetDefault("signit.max_retries", 3)

	v.SetDefault("document.template_dir", "./files")
	v.SetDefault("document.upload_dir", "./files/uploads")
	v.SetDefault("document.max_upload_mb", 5)
	v.SetDefault("document.keep_uploads", false)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "signit_esign")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.submission_ttl", 720)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.rps", 10)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "")
}

// AllowedOrigins returns the configured CORS origins
func (c *Config) AllowedOrigins() string {
	origins := strings.Split(c.App.FrontendURL, ",")
	cleaned := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			cleaned = append(cleaned, o)
		}
	}
	return strings.Join(cleaned, ",")
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
