package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	httpadp "github.com/lawrencezcl/GeminiLendX/internal/adapter/http"
	"github.com/lawrencezcl/GeminiLendX/internal/adapter/messenger"
	"github.com/lawrencezcl/GeminiLendX/internal/adapter/middleware"
	"github.com/lawrencezcl/GeminiLendX/internal/adapter/oracle"
	"github.com/lawrencezcl/GeminiLendX/internal/adapter/repository/mysql"
	"github.com/lawrencezcl/GeminiLendX/internal/adapter/verifier"
	"github.com/lawrencezcl/GeminiLendX/internal/config"
	"github.com/lawrencezcl/GeminiLendX/internal/infrastructure/cache"
	"github.com/lawrencezcl/GeminiLendX/internal/infrastructure/db"
	"github.com/lawrencezcl/GeminiLendX/internal/logging"
	endorsementuc "github.com/lawrencezcl/GeminiLendX/internal/usecase/endorsement"
	loanuc "github.com/lawrencezcl/GeminiLendX/internal/usecase/loan"
	"github.com/lawrencezcl/GeminiLendX/internal/usecase/risk"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", slog.Any("error", err))
		os.Exit(1)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Error("mysql connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Error("migration failed", slog.Any("error", err))
		os.Exit(1)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Error("redis connect failed", slog.Any("error", err))
		os.Exit(1)
	}

	// adapters
	loanRepo := mysql.NewLoanRepository(gdb)
	endorseRepo := mysql.NewEndorsementRepository(gdb)
	unit := mysql.NewGormUoW(gdb)
	priceOracle := oracle.NewClient(cfg.OracleBaseURL, cfg.OracleAPIKey, cfg.OracleTimeout)
	ccmStore := messenger.NewIdempotencyStore(rdb, cfg.CCMReceiptTTL)
	ccm := messenger.NewClient(cfg.CCMBaseURL, cfg.CCMAPIKey, cfg.CCMTimeout, ccmStore, log)

	// usecases
	lifecycle := loanuc.NewEngine(loanRepo, unit, log)
	endorsements := endorsementuc.NewManager(endorseRepo, verifier.NewEthVerifier(), log)
	engine := risk.NewEngine(lifecycle, endorsements, loanRepo, endorseRepo, priceOracle, ccm, log)
	monitor := risk.NewMonitor(engine, loanRepo, priceOracle,
		cfg.MonitorInterval, cfg.MonitorTimeout, cfg.MonitorThreshold, log)

	// http
	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())
	e.Use(middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, log))

	h := httpadp.NewHandler()
	lending := httpadp.NewLendingHandler(engine)
	loans := httpadp.NewLoanHandler(lifecycle, loanRepo, priceOracle)
	scores := httpadp.NewScoreHandler(engine)
	endorse := httpadp.NewEndorsementHandler(endorsements)

	e.GET("/health", h.Health)
	e.POST("/api/lending/initiate-loan", lending.InitiateLoan)
	e.POST("/api/lending/resume-disbursement", lending.ResumeDisbursement)
	e.POST("/api/lending/repay-loan", lending.RepayLoan)
	e.POST("/api/lending/liquidate-loan", lending.LiquidateLoan)
	e.GET("/api/lending/loan/:loan_id", loans.GetLoan)
	e.GET("/api/credit/score/:borrower_id", scores.GetCreditScore)
	e.POST("/api/endorsements", endorse.CreateEndorsement)
	e.POST("/api/endorsements/validate", endorse.ValidateEndorsement)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go monitor.Run(ctx)

	go func() {
		addr := ":" + cfg.AppPort
		log.Info("listening", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", slog.Any("error", err))
	}
}
