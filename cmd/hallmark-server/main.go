package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrwolf/hallmark-server/internal/api"
	"github.com/mrwolf/hallmark-server/internal/archive"
	"github.com/mrwolf/hallmark-server/internal/config"
	"github.com/mrwolf/hallmark-server/internal/generator"
	"github.com/mrwolf/hallmark-server/internal/lexicon"
	"github.com/mrwolf/hallmark-server/internal/logger"
	"github.com/mrwolf/hallmark-server/internal/random"
	"github.com/mrwolf/hallmark-server/internal/scheduler"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting hallmark-server", "port", cfg.Port, "db", cfg.DBPath)

	// Open lexicon
	database, err := lexicon.OpenReadOnly(cfg.DBPath)
	if err != nil {
		log.Fatal("failed to open lexicon", "error", err)
	}
	if err := database.Ping(); err != nil {
		log.Warn("lexicon ping failed, movies will fall back to defaults", "error", err)
	}

	rng, err := random.New(cfg.Seed)
	if err != nil {
		log.Fatal("failed to seed random source", "error", err)
	}
	gen := generator.New(database, rng, log)

	var arch *archive.Archive
	if cfg.ArchivePath != "" {
		arch = archive.New(cfg.ArchivePath)
		log.Info("archiving featured batches", "path", arch.Path())
	}

	// Create and start scheduler
	featured := &scheduler.Featured{}
	sched, err := scheduler.New(gen, database, arch, featured, scheduler.Config{
		Timezone:     cfg.Timezone,
		FeaturedHour: cfg.FeaturedHour,
	}, log)
	if err != nil {
		log.Fatal("failed to create scheduler", "error", err)
	}
	if err := sched.Start(); err != nil {
		log.Fatal("failed to start scheduler", "error", err)
	}

	// Create router
	handlers := api.NewHandlers(gen, database, featured, arch, log)
	router := api.NewRouter(cfg, handlers, log)

	// Start server
	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", "error", err)
		}
	}()

	<-done
	log.Info("shutting down gracefully")

	// Give ongoing requests 10 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	if err := sched.Stop(); err != nil {
		log.Error("scheduler shutdown error", "error", err)
	}

	if err := database.Close(); err != nil {
		log.Error("lexicon close error", "error", err)
	}

	log.Info("shutdown complete")
}
