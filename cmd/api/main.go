package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	httpadp "coopfin-loan-engine/internal/adapter/http"
	"coopfin-loan-engine/internal/adapter/lock"
	idemp "coopfin-loan-engine/internal/adapter/middleware"
	"coopfin-loan-engine/internal/adapter/notify"
	"coopfin-loan-engine/internal/adapter/repository/gormrepo"
	"coopfin-loan-engine/internal/config"
	"coopfin-loan-engine/internal/domain/event"
	"coopfin-loan-engine/internal/infrastructure/cache"
	"coopfin-loan-engine/internal/infrastructure/db"
	"coopfin-loan-engine/internal/infrastructure/metrics"
	ledgerUC "coopfin-loan-engine/internal/usecase/ledger"
	"coopfin-loan-engine/internal/usecase/loan"
	"coopfin-loan-engine/internal/usecase/repayment"
	"coopfin-loan-engine/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)
	if cfg.AppEnv != "development" {
		logger.UseJSON()
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("config: %v", err)
	}

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), cfg.DBLogSQL)
	if err != nil {
		logger.Fatalf("db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		logger.Fatalf("db migrate: %v", err)
	}

	// Redis backs idempotency and the wallet lock; without it the engine
	// falls back to in-process locking and skips idempotency.
	var (
		locker      ledgerUC.Locker = lock.NewLocalLocker()
		idempotency echo.MiddlewareFunc
	)
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		logger.Warnf("redis unavailable at %s, using local wallet locks: %v", cfg.RedisAddr, err)
	} else {
		defer rdb.Close()
		ttl := time.Duration(cfg.WalletLockTTLMs) * time.Millisecond
		locker = lock.NewRedisLocker(rdb, ttl, ttl)
		idempotency = idemp.Idempotency(idemp.NewStore(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second), idemp.MoneyRoutes...)
	}

	var pub event.Publisher = notify.LogPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := notify.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		pub = kp
	}

	m := metrics.New()
	tx := gormrepo.NewGormUoW(gdb)
	loans := gormrepo.NewLoanRepository(gdb)
	led := ledgerUC.NewService(tx, gormrepo.NewWalletRepository(gdb), gormrepo.NewEntryRepository(gdb), locker, m, cfg.DefaultCurrency)
	rp := repayment.NewUsecase(tx, loans, gormrepo.NewInstallmentRepository(gdb), pub, m)
	uc := loan.NewUsecase(loan.Deps{
		UoW:       tx,
		Loans:     loans,
		Decisions: gormrepo.NewDecisionRepository(gdb),
		Plans:     gormrepo.NewPlanRepository(gdb),
		Ledger:    led,
		Repayment: rp,
		Publisher: pub,
		Metrics:   m,
	})
	if err := uc.SeedDefaultPlans(context.Background()); err != nil {
		logger.Fatalf("seed plans: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())

	httpadp.Register(e, httpadp.Routes{
		Health:       httpadp.NewHandler(m.Handler()),
		Loans:        httpadp.NewLoanHandler(uc, rp),
		Installments: httpadp.NewInstallmentHandler(rp),
		Wallets:      httpadp.NewWalletHandler(led),
		Idempotency:  idempotency,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.AppPort
		logger.Infof("listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}
