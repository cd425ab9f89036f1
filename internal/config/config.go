package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	configDir  = ".dettato"
	configFile = "config.toml"
	envPrefix  = "DETTATO"
)

// Config holds all dettato configuration.
type Config struct {
	Server    ServerConfig    `toml:"server" mapstructure:"server"`
	Database  DatabaseConfig  `toml:"database" mapstructure:"database"`
	Skill     SkillConfig     `toml:"skill" mapstructure:"skill"`
	SMTP      SMTPConfig      `toml:"smtp" mapstructure:"smtp"`
	Retention RetentionConfig `toml:"retention" mapstructure:"retention"`
	Log       LogConfig       `toml:"log" mapstructure:"log"`
}

// ServerConfig splits the public webhook listener from the operator API,
// which stays on loopback unless admin_bind says otherwise.
type ServerConfig struct {
	Bind       string `toml:"bind" mapstructure:"bind"`
	Port       int    `toml:"port" mapstructure:"port"`
	AdminBind  string `toml:"admin_bind" mapstructure:"admin_bind"`
	AdminPort  int    `toml:"admin_port" mapstructure:"admin_port"` // 0 disables the operator API
	AdminToken string `toml:"admin_token" mapstructure:"admin_token"`
}

type DatabaseConfig struct {
	Path string `toml:"path" mapstructure:"path"` // empty: store.DefaultDBPath()
}

type SkillConfig struct {
	ApplicationID      string `toml:"application_id" mapstructure:"application_id"` // empty accepts any skill
	VerifySignature    bool   `toml:"verify_signature" mapstructure:"verify_signature"`
	TimestampTolerance string `toml:"timestamp_tolerance" mapstructure:"timestamp_tolerance"`
	DateFormat         string `toml:"date_format" mapstructure:"date_format"` // strftime
	RecentLimit        int    `toml:"recent_limit" mapstructure:"recent_limit"`
	ResponsesFile      string `toml:"responses_file" mapstructure:"responses_file"` // YAML; empty uses built-in wording
}

type SMTPConfig struct {
	Server     string `toml:"server" mapstructure:"server"` // empty disables email
	Port       int    `toml:"port" mapstructure:"port"`
	User       string `toml:"user" mapstructure:"user"`
	Password   string `toml:"password" mapstructure:"password"`
	Encryption string `toml:"encryption" mapstructure:"encryption"` // STARTTLS, SSL, NONE
	From       string `toml:"from" mapstructure:"from"`
	Timeout    string `toml:"timeout" mapstructure:"timeout"`
}

type RetentionConfig struct {
	SweepEnabled  bool   `toml:"sweep_enabled" mapstructure:"sweep_enabled"`
	SweepInterval string `toml:"sweep_interval" mapstructure:"sweep_interval"`
}

type LogConfig struct {
	Level string `toml:"level" mapstructure:"level"` // debug, info, warn, error
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind:      "127.0.0.1",
			Port:      5000,
			AdminBind: "127.0.0.1",
			AdminPort: 5001,
		},
		Skill: SkillConfig{
			VerifySignature:    true,
			TimestampTolerance: "150s",
			DateFormat:         "%d/%m/%Y %H:%M",
			RecentLimit:        5,
		},
		SMTP: SMTPConfig{
			Port:       587,
			Encryption: "STARTTLS",
			From:       "alexa@local.test",
			Timeout:    "15s",
		},
		Retention: RetentionConfig{
			SweepEnabled:  true,
			SweepInterval: "24h",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.dettato/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, configDir, configFile), nil
}

// Load reads path (DefaultPath when empty) into v, layering DETTATO_*
// environment variables on top of the file and the file on top of Default.
// A missing file is not an error.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	setDefaults(v, Default())
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.bind", d.Server.Bind)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.admin_bind", d.Server.AdminBind)
	v.SetDefault("server.admin_port", d.Server.AdminPort)
	v.SetDefault("server.admin_token", d.Server.AdminToken)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("skill.application_id", d.Skill.ApplicationID)
	v.SetDefault("skill.verify_signature", d.Skill.VerifySignature)
	v.SetDefault("skill.timestamp_tolerance", d.Skill.TimestampTolerance)
	v.SetDefault("skill.date_format", d.Skill.DateFormat)
	v.SetDefault("skill.recent_limit", d.Skill.RecentLimit)
	v.SetDefault("skill.responses_file", d.Skill.ResponsesFile)
	v.SetDefault("smtp.server", d.SMTP.Server)
	v.SetDefault("smtp.port", d.SMTP.Port)
	v.SetDefault("smtp.user", d.SMTP.User)
	v.SetDefault("smtp.password", d.SMTP.Password)
	v.SetDefault("smtp.encryption", d.SMTP.Encryption)
	v.SetDefault("smtp.from", d.SMTP.From)
	v.SetDefault("smtp.timeout", d.SMTP.Timeout)
	v.SetDefault("retention.sweep_enabled", d.Retention.SweepEnabled)
	v.SetDefault("retention.sweep_interval", d.Retention.SweepInterval)
	v.SetDefault("log.level", d.Log.Level)
}

// Validate checks the values that are parsed later, so a bad file fails at
// startup rather than mid-request.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if c.Server.AdminPort < 0 || c.Server.AdminPort > 65535 {
		return fmt.Errorf("config: server.admin_port %d out of range", c.Server.AdminPort)
	}
	if c.Server.AdminPort != 0 && c.AdminListenAddr() == c.ListenAddr() {
		return fmt.Errorf("config: operator API must not share the webhook address %s", c.ListenAddr())
	}
	for key, val := range map[string]string{
		"skill.timestamp_tolerance": c.Skill.TimestampTolerance,
		"smtp.timeout":              c.SMTP.Timeout,
		"retention.sweep_interval":  c.Retention.SweepInterval,
	} {
		if val == "" {
			continue
		}
		if d, err := time.ParseDuration(val); err != nil || d <= 0 {
			return fmt.Errorf("config: %s %q is not a positive duration", key, val)
		}
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// AdminListenAddr returns the operator API address, or "" when disabled.
func (c *Config) AdminListenAddr() string {
	if c.Server.AdminPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Server.AdminBind, c.Server.AdminPort)
}

// Tolerance is skill.timestamp_tolerance as a duration; zero when unset.
func (s SkillConfig) Tolerance() time.Duration {
	return parseDuration(s.TimestampTolerance)
}

// TimeoutDuration is smtp.timeout as a duration; zero when unset.
func (s SMTPConfig) TimeoutDuration() time.Duration {
	return parseDuration(s.Timeout)
}

// Interval is retention.sweep_interval as a duration; zero when unset.
func (r RetentionConfig) Interval() time.Duration {
	return parseDuration(r.SweepInterval)
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("config: log.level %q: %w", c.Log.Level, err)
	}
	return lvl, nil
}

// Write encodes cfg as TOML at path, creating the directory. The file is
// private since it may hold SMTP credentials.
func Write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func parseDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
