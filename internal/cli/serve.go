package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/dettato/internal/alexa"
	"github.com/lazypower/dettato/internal/responses"
	"github.com/lazypower/dettato/internal/retention"
	"github.com/lazypower/dettato/internal/server"
	"github.com/lazypower/dettato/internal/skill"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the skill webhook and operator API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)

	db, dbPath, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	texts, err := loadResponses(cfg)
	if err != nil {
		return err
	}
	if cfg.Skill.ResponsesFile != "" {
		if err := responses.Watch(ctx, texts, cfg.Skill.ResponsesFile, logger); err != nil {
			logger.Warn("responses hot reload disabled", "err", err)
		}
	}

	sender, err := newSender(cfg, logger)
	if err != nil {
		return err
	}

	if cfg.Retention.SweepEnabled {
		sweeper := retention.New(db, cfg.Retention.Interval(), logger)
		sweeper.Start()
		defer sweeper.Stop()
	}

	var appIDs []string
	if cfg.Skill.ApplicationID != "" {
		appIDs = []string{cfg.Skill.ApplicationID}
	}
	verifier := &alexa.Verifier{
		ApplicationIDs: appIDs,
		CheckSignature: cfg.Skill.VerifySignature,
		CheckTimestamp: cfg.Skill.VerifySignature,
		Tolerance:      cfg.Skill.Tolerance(),
	}

	handler := skill.New(db, texts, sender, skill.Options{
		DatePattern: cfg.Skill.DateFormat,
		RecentLimit: cfg.Skill.RecentLimit,
		Logger:      logger,
	})
	srv := server.New(db, handler, VersionString(), server.Options{
		Verifier:   verifier,
		Profile:    alexa.NewProfileClient(10 * time.Second),
		AdminToken: cfg.Server.AdminToken,
		Logger:     logger,
	})
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	var adminServer *http.Server
	if adminAddr := cfg.AdminListenAddr(); adminAddr != "" {
		adminServer = &http.Server{
			Addr:              adminAddr,
			Handler:           srv.Admin(),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		stderrf("dettato serving on %s\n", addr)
		stderrf("  db: %s\n", dbPath)
		if !cfg.Skill.VerifySignature {
			stderrf("  warning: request signature and timestamp verification disabled\n")
		}
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			stderrf("server error: %v\n", err)
			os.Exit(1)
		}
	}()
	if adminServer != nil {
		go func() {
			stderrf("  operator api on %s\n", adminServer.Addr)
			if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				stderrf("operator api error: %v\n", err)
				os.Exit(1)
			}
		}()
	}

	<-done
	stderrf("\nshutting down...\n")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if adminServer != nil {
		if err := adminServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("operator api shutdown", "err", err)
		}
	}
	return httpServer.Shutdown(shutdownCtx)
}
