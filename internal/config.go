package internal

import (
	"fmt"
	"log/slog"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/jera/internal/models"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Content drivers.
const (
	ContentDriverFS    = "fs"
	ContentDriverRedis = "redis"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Content ContentConfig     `yaml:"content"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth"`
	User    UserConfig        `yaml:"user"`
	Tags    []models.Tag      `yaml:"tags"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return validateTags(c.Tags)
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.CORSOrigins, validation.Each(validation.Required, is.URL)),
	)
}

// ContentConfig selects where todo bodies are stored.
//
// Driver "fs" keeps one file per todo under Path and enables the file watcher.
// Driver "redis" keeps them in Redis at RedisURL under Prefix.
type ContentConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	RedisURL string `yaml:"redis_url"`
	Prefix   string `yaml:"prefix"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = ContentDriverFS
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(ContentDriverFS, ContentDriverRedis)),
		validation.Field(&c.Path, validation.When(c.Driver == ContentDriverFS, validation.Required)),
		validation.Field(&c.RedisURL, validation.When(c.Driver == ContentDriverRedis, validation.Required)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// UserConfig identifies the owner stamped on new todos.
type UserConfig struct {
	UID string `yaml:"uid"`
}

var tagIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// validateTags checks the seed catalog. An empty list means the built-in one.
func validateTags(tags []models.Tag) error {
	seen := make(map[string]bool, len(tags))
	for i, t := range tags {
		if err := validation.ValidateStruct(&t,
			validation.Field(&t.ID, validation.Required, validation.Match(tagIDRe)),
			validation.Field(&t.Title, validation.Required),
		); err != nil {
			return fmt.Errorf("tags[%d]: %w", i, err)
		}
		if seen[t.ID] {
			return fmt.Errorf("tags[%d]: duplicate id %q", i, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port:        8080,
				CORSOrigins: []string{"http://localhost:5173"},
			},
		},
		Content: ContentConfig{
			Driver: ContentDriverFS,
			Path:   "./data/todos",
			Prefix: "jera:content",
		},
		SQLite: SQLiteConfig{
			Path: "./data/jera.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		User: UserConfig{
			UID: "guest",
		},
	}
}
