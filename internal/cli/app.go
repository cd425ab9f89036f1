package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/lazypower/dettato/internal/config"
	"github.com/lazypower/dettato/internal/mailer"
	"github.com/lazypower/dettato/internal/responses"
	"github.com/lazypower/dettato/internal/store"
)

// loadConfig reads the --config file, or the default location.
func loadConfig() (config.Config, error) {
	return config.Load(viper.New(), configPath)
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	lvl, err := cfg.LogLevel()
	if err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// openDB opens the configured database, or the default path.
func openDB(cfg config.Config) (*store.DB, string, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, "", fmt.Errorf("resolve db path: %w", err)
		}
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, "", fmt.Errorf("open database: %w", err)
	}
	return db, dbPath, nil
}

// loadResponses returns the configured response wording, falling back to
// the built-in table when no file is set.
func loadResponses(cfg config.Config) (*responses.Table, error) {
	if cfg.Skill.ResponsesFile == "" {
		return responses.Default(), nil
	}
	t, err := responses.Load(cfg.Skill.ResponsesFile)
	if err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}
	return t, nil
}

// newSender builds the SMTP transport. A missing server is not fatal: the
// skill answers send requests with a configuration apology instead.
func newSender(cfg config.Config, logger *slog.Logger) (mailer.Sender, error) {
	s, err := mailer.NewSMTPSender(mailer.Config{
		Server:     cfg.SMTP.Server,
		Port:       cfg.SMTP.Port,
		User:       cfg.SMTP.User,
		Password:   cfg.SMTP.Password,
		Encryption: cfg.SMTP.Encryption,
		From:       cfg.SMTP.From,
		Timeout:    cfg.SMTP.TimeoutDuration(),
	})
	if errors.Is(err, mailer.ErrNotConfigured) {
		logger.Warn("smtp not configured, email disabled")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("smtp: %w", err)
	}
	return s, nil
}

func stderrf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}
