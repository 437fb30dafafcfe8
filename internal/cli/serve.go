package cli

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ICGNU3/rhiz-prototype-sub002/internal/config"
	"github.com/ICGNU3/rhiz-prototype-sub002/internal/insight"
	"github.com/ICGNU3/rhiz-prototype-sub002/internal/llm"
	"github.com/ICGNU3/rhiz-prototype-sub002/internal/ratelimit"
	"github.com/ICGNU3/rhiz-prototype-sub002/internal/server"
	"github.com/ICGNU3/rhiz-prototype-sub002/internal/store"
	"github.com/ICGNU3/rhiz-prototype-sub002/internal/trust"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	engine := trust.NewEngine(db)
	ledger := trust.NewLedger(db, engine)

	// The reasoning service is optional: without it the insight pipeline
	// serves its deterministic fallback.
	var client llm.Client
	if c, err := llm.NewClient(cfg.LLM); err != nil {
		fmt.Fprintf(os.Stderr, "warning: reasoning service not configured (%v); insights degrade to fallback\n", err)
	} else {
		client = c
		fmt.Fprintf(os.Stderr, "  llm: %s\n", cfg.LLM.Provider)
	}

	limiter := ratelimit.New(cfg.Insight.RatePerMinute, cfg.Insight.RateBurst)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	insights := insight.NewService(db, client,
		time.Duration(cfg.Insight.TimeoutSeconds)*time.Second, limiter, rng)

	srv := server.New(db, engine, ledger, insights, VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "rhiz serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", db.Path)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}

// openStore resolves the database path from config and opens it.
func openStore(cfg config.Config) (*store.DB, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}
