// cmd/newsloom/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const VERSION = "1.0.0"

func main() {
	var (
		configPath = flag.String("config", "config/config.json", "path to config file")
		once       = flag.Bool("once", false, "run a single ingestion pass and exit")
		refetchID  = flag.Int64("refetch", 0, "refetch one article by id and exit")
		analyzeID  = flag.Int64("analyze", 0, "analyze one article by id and exit")
		scopeFlag  = flag.String("scope", "summary", "analysis scope: summary, structure, vocabulary")
		modeFlag   = flag.String("mode", "english_learner", "analysis mode: english_learner, tech_analyst")
		forceFlag  = flag.Bool("force", false, "recompute the analysis even when cached")

		enableSource  = flag.String("enable-source", "", "enable a source by name and exit")
		disableSource = flag.String("disable-source", "", "disable a source by name and exit")
		repairSource  = flag.String("repair-feed", "", "source name for -feed-url repair")
		repairFeedURL = flag.String("feed-url", "", "new feed URL for -repair-feed")
	)
	flag.Parse()

	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	var err error
	cfg, err = LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "newsloom: %v\n", err)
		os.Exit(1)
	}

	if err := InitLogger(cfg.LogPath, ParseLogLevel(cfg.LogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "newsloom: logging unavailable: %v\n", err)
	}
	GetLogger().Info("newsloom v%s starting", VERSION)

	store, err := OpenDatabase(cfg.DatabaseDSN)
	if err != nil {
		GetLogger().Error("Database init failed: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := SeedSourceRegistry(ctx, store, cfg.SourcesPath); err != nil {
		GetLogger().Error("Source registry seed failed: %v", err)
		os.Exit(1)
	}
	ApplyStoredSettings(ctx, store, cfg)

	gen, err := NewGenerator(cfg)
	if err != nil {
		GetLogger().Error("AI backend init failed: %v", err)
		os.Exit(1)
	}

	pages := NewPageFetcher(cfg)
	pipeline := NewExtractionPipeline(gen, cfg)
	ingestor := NewIngestor(store, NewFeedReader(cfg), pages, pipeline, cfg)

	// One-shot modes for operators and cron-driven deployments
	switch {
	case *enableSource != "" || *disableSource != "":
		name, enabled := *enableSource, true
		if *disableSource != "" {
			name, enabled = *disableSource, false
		}
		if err := toggleSource(ctx, store, name, enabled); err != nil {
			GetLogger().Error("%v", err)
			os.Exit(1)
		}
		fmt.Printf("source %q enabled=%v\n", name, enabled)
		return

	case *repairSource != "":
		if *repairFeedURL == "" {
			GetLogger().Error("-repair-feed requires -feed-url")
			os.Exit(1)
		}
		if err := repairFeed(ctx, store, *repairSource, *repairFeedURL); err != nil {
			GetLogger().Error("%v", err)
			os.Exit(1)
		}
		fmt.Printf("source %q feed URL updated\n", *repairSource)
		return

	case *refetchID > 0:
		article, err := RefetchArticle(ctx, store, pages, pipeline, *refetchID)
		if err != nil {
			GetLogger().Error("Refetch failed: %v", err)
			os.Exit(1)
		}
		fmt.Printf("article %d: %d chars of content\n", article.ID, len(article.FullText))
		return

	case *analyzeID > 0:
		scope, err := ParseScope(*scopeFlag)
		if err != nil {
			GetLogger().Error("%v", err)
			os.Exit(1)
		}
		mode, err := ParseMode(*modeFlag)
		if err != nil {
			GetLogger().Error("%v", err)
			os.Exit(1)
		}
		analyzer := NewAnalyzer(store, gen, cfg)
		payload, err := analyzer.Analyze(ctx, *analyzeID, scope, mode, *forceFlag)
		if err != nil {
			GetLogger().Error("Analysis failed: %v", err)
			os.Exit(1)
		}
		out, _ := json.MarshalIndent(payload, "", "  ")
		fmt.Println(string(out))
		return

	case *once:
		ingestor.Run(ctx, gen)
		return
	}

	// Daemon mode: config hot-reload, cron-scheduled ingestion, ops endpoint
	configManager, err := NewConfigManager(*configPath, 1*time.Minute)
	if err != nil {
		GetLogger().Warning("Config auto-reload unavailable: %v", err)
	} else {
		configManager.SetReloadHandler(func(newCfg *Config) {
			GetLogger().SetLevel(ParseLogLevel(newCfg.LogLevel))
		})
		configManager.StartWatching()
		defer configManager.Stop()
	}

	cronManager := cron.New()
	if _, err := cronManager.AddFunc(cfg.FetchCron, func() {
		ingestor.Run(ctx, gen)
	}); err != nil {
		GetLogger().Error("Invalid fetch schedule %q: %v", cfg.FetchCron, err)
		os.Exit(1)
	}
	cronManager.Start()
	GetLogger().Info("Ingestion scheduled: %s", cfg.FetchCron)

	var health *HealthServer
	if cfg.HealthPort > 0 {
		health = NewHealthServer(store, cfg.HealthPort)
		health.Start()
	}

	// First pass immediately rather than waiting for the schedule
	go ingestor.Run(ctx, gen)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	GetLogger().Info("Shutting down")
	cancel()

	stopCtx := cronManager.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		GetLogger().Warning("Cron jobs did not drain in time")
	}

	if health != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := health.Shutdown(shutdownCtx); err != nil {
			GetLogger().Warning("Health server shutdown: %v", err)
		}
	}

	GetLogger().Close()
}
