package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"donor-engage-system/config"
	"donor-engage-system/logger"
	"donor-engage-system/services"
	"donor-engage-system/store"
	"donor-engage-system/utils"
	"donor-engage-system/workers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading environment variables directly")
	}

	conf, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	if err := logger.Init(conf.Environment); err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}
	defer func() { _ = zap.L().Sync() }()

	if conf.DatabaseURL == "" {
		zap.L().Fatal("DATABASE_URL not set")
	}
	repo, err := store.OpenPostgres(conf.DatabaseURL)
	if err != nil {
		zap.L().Fatal("failed to connect to database", zap.Error(err))
	}
	if err := repo.AutoMigrate(); err != nil {
		zap.L().Fatal("failed to migrate database", zap.Error(err))
	}

	if conf.R2AccessKeyID != "" {
		if err := utils.InitR2(conf); err != nil {
			zap.L().Fatal("failed to initialize R2 client", zap.Error(err))
		}
	}

	badgeService := services.NewBadgeService(repo)
	leaderboards := services.NewLeaderboardService(repo, conf.LeaderboardTTL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if conf.SyncServiceURL != "" {
		syncWorker := workers.NewDonationSyncWorker(repo, badgeService,
			conf.SyncServiceURL, conf.SyncServiceToken, conf.SyncInterval)
		syncWorker.Start(ctx)
	} else {
		zap.L().Warn("SYNC_SERVICE_URL not set, donation sync disabled")
	}

	sched, err := leaderboards.StartRefresher(conf.LeaderboardRefresh)
	if err != nil {
		zap.L().Fatal("failed to start leaderboard refresher", zap.Error(err))
	}
	defer func() { _ = sched.Shutdown() }()

	zap.L().Info("donor engagement engine running")
	<-ctx.Done()
	zap.L().Info("shutting down")
}
