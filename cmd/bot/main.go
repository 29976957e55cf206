package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"coinbase-dca-bot-go/internal/coinbase"
	"coinbase-dca-bot-go/internal/config"
	"coinbase-dca-bot-go/internal/database"
	"coinbase-dca-bot-go/internal/invest"
	"coinbase-dca-bot-go/internal/ledger"
	"coinbase-dca-bot-go/internal/logger"
	"coinbase-dca-bot-go/internal/models"
	"coinbase-dca-bot-go/internal/risk"
	"coinbase-dca-bot-go/internal/sentiment"
	"coinbase-dca-bot-go/internal/status"
	"coinbase-dca-bot-go/internal/trader"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize ledger database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	led := ledger.New(db, log)
	log.Info("Database connection successful and schema migrated.")

	// Initialize Coinbase client
	auth, err := coinbase.NewAuth(cfg.Coinbase.KeyName, cfg.Coinbase.PrivateKey)
	if err != nil {
		log.Fatal("Failed to initialize Coinbase auth", zap.Error(err))
	}
	client := coinbase.NewClient(&cfg.Coinbase, auth, log)
	sentimentClient := sentiment.NewClient(log)

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	orchestrator := invest.NewOrchestrator(log, &cfg, client, sentimentClient, led)
	collector := status.NewCollector(client, sentimentClient, led, log)
	sink := status.NewLogSink(log)

	// Schedule the investment cycle and the price-drop check
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Schedule.InvestmentCron, func() {
		result := orchestrator.ExecuteCycle(ctx, models.TransactionRegular)
		log.Info("Scheduled cycle finished",
			zap.String("status", result.Status.String()),
			zap.String("reason", result.Reason),
		)
		collector.Publish(ctx, sink)
	}); err != nil {
		log.Fatal("Failed to register investment schedule", zap.Error(err))
	}

	if cfg.Schedule.PriceDropEnabled {
		if _, err := scheduler.AddFunc(cfg.Schedule.PriceDropCron, func() {
			result := orchestrator.CheckPriceDrop(ctx)
			log.Info("Price drop check finished",
				zap.String("status", result.Status.String()),
				zap.String("reason", result.Reason),
			)
		}); err != nil {
			log.Fatal("Failed to register price drop schedule", zap.Error(err))
		}
	}

	scheduler.Start()
	defer scheduler.Stop()
	log.Info("Scheduler started",
		zap.String("investment_cron", cfg.Schedule.InvestmentCron),
		zap.Bool("price_drop_enabled", cfg.Schedule.PriceDropEnabled),
	)

	// Optionally run the signal-driven trading loop alongside the schedule
	if cfg.Trading.Enabled {
		guard := risk.NewGuard(cfg.Risk.StopLossPct, cfg.Risk.TakeProfitPct, cfg.Risk.MaxDrawdownPct)
		bot := trader.NewBot(log, &cfg, client, guard)
		go bot.Run(ctx)
	}

	<-ctx.Done()
	log.Info("Bot has been shut down.")
}
