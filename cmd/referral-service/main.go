package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/app/background"
	"github.com/LavaJover/shvark-referral-service/internal/config"
	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/distribution"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/investment"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/placement"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/processing"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/rules"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const ruleCacheTTL = 5 * time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	setupLogger(cfg)
	// Init database
	db := postgres.MustInitDB(cfg)
	if err := migrate.RunMigrations(db, cfg.ReferralDB.MigrationsPath); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Init repositories
	participantRepo := repository.NewDefaultParticipantRepository(db)
	treeRepo := repository.NewDefaultTreeRepository(db)
	ruleRepo := repository.NewDefaultRuleRepository(db)
	walletRepo := repository.NewDefaultWalletRepository(db)
	incomeRepo := repository.NewDefaultIncomeRepository(db)
	purchaseRepo := repository.NewDefaultPurchaseRepository(db)
	investmentRepo := repository.NewDefaultInvestmentRepository(db)
	poolRepo := repository.NewDefaultPoolRepository(db)
	ledgerRepo := repository.NewDefaultLedgerRepository(db)
	settlementRepo := repository.NewDefaultSettlementRepository(db)

	// Init usecases
	resolver := rules.NewResolver(ruleRepo, ruleCacheTTL)
	placementService := placement.NewService(
		treeRepo,
		participantRepo,
		cfg.Placement.BranchingFactor,
		cfg.Placement.MaxDepth,
		cfg.Placement.AllowRootFallback,
	)
	workers := distribution.NewTable(
		distribution.NewLevelWorker(treeRepo, resolver, cfg.Settlement.MaxLevelDepth),
		distribution.NewFasttrackWorker(resolver),
		distribution.NewClubWorker(placementService, resolver),
		distribution.NewPoolWorker(poolRepo, resolver),
	)

	// Kafka
	brokers := []string{fmt.Sprintf("%s:%s", cfg.Kafka.Host, cfg.Kafka.Port)}
	pub := kafka.NewKafkaPublisher(brokers, cfg.Kafka.SettleTopic)
	sub := kafka.NewDefaultKafkaSubscriber(brokers)

	settlementMetrics := metrics.NewSettlementMetrics()
	clock := processing.SystemClock()

	processor := &processing.Processor{
		Purchases:    purchaseRepo,
		Investments:  investmentRepo,
		Incomes:      incomeRepo,
		Settlements:  settlementRepo,
		Placement:    placementService,
		Workers:      workers,
		Publisher:    pub,
		Metrics:      settlementMetrics,
		Clock:        clock,
		Currency:     cfg.Settlement.Currency,
	}
	investmentUsecase := investment.NewUsecase(investmentRepo, participantRepo, settlementRepo, resolver)

	// Background workers
	ctx := context.Background()
	dispatcher := background.NewDispatcher(processor, cfg.Dispatcher.Workers, cfg.Dispatcher.MaxAttempts)
	dispatcher.Start(ctx)
	tasks := background.NewBackgroundTasks(
		dispatcher,
		investmentRepo,
		sub,
		clock,
		time.Duration(cfg.Dispatcher.ScanSeconds)*time.Second,
	)
	tasks.StartAll(ctx, cfg.Kafka.PurchaseTopic, cfg.Kafka.GroupID)

	// HTTP server
	mux := http.NewServeMux()
	handler := &handlers.ReferralHandler{
		Processor:   processor,
		Placement:   placementService,
		Investments: investmentUsecase,
		Wallets:     walletRepo,
		Ledger:      ledgerRepo,
		Incomes:     incomeRepo,
	}
	handler.Register(mux)
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
	slog.Info("referral service listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func setupLogger(cfg *config.ReferralConfig) {
	level := slog.LevelInfo
	switch cfg.LogConfig.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if cfg.LogConfig.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}
