package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"amlgate/internal/audit"
	audithandler "amlgate/internal/audit/handler"
	"amlgate/internal/client"
	clienthandler "amlgate/internal/client/handler"
	"amlgate/internal/document"
	documenthandler "amlgate/internal/document/handler"
	httpapi "amlgate/internal/http"
	"amlgate/internal/platform/config"
	"amlgate/internal/platform/httpserver"
	"amlgate/internal/platform/kafka"
	"amlgate/internal/platform/logger"
	platformredis "amlgate/internal/platform/redis"
	"amlgate/internal/reference"
	"amlgate/internal/screening"
	screeningmetrics "amlgate/internal/screening/metrics"
	"amlgate/internal/screening/sources"
	"amlgate/internal/transaction"
	transactionhandler "amlgate/internal/transaction/handler"
	transactionmetrics "amlgate/internal/transaction/metrics"
	"amlgate/internal/units"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Error("invalid timezone, falling back to UTC", "timezone", cfg.Timezone, "error", err)
		loc = time.UTC
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	converter, err := buildConverter(loc)
	if err != nil {
		log.Error("unit table invalid", "error", err)
		os.Exit(1)
	}

	// Stores: Postgres when configured, in-memory otherwise.
	var (
		screeningStore screening.Store
		clientStore    client.Store
		txStore        transaction.Store
		auditStore     audit.Store
		auditPG        *audit.PostgresStore
	)
	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("postgres pool failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		ledgerDB, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Error("ledger database failed", "error", err)
			os.Exit(1)
		}
		defer ledgerDB.Close()

		screeningStore = screening.NewPostgresStore(pool)
		clientStore = client.NewPostgresStore(pool)
		txStore = transaction.NewPostgresStore(pool)
		auditPG = audit.NewPostgresStore(ledgerDB)
		auditStore = auditPG
	} else {
		log.Warn("no postgres configured, using in-memory stores")
		screeningStore = screening.NewInMemoryStore()
		clientStore = client.NewInMemoryStore()
		txStore = transaction.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
	}
	docStore := document.NewInMemoryStore()

	auditMetrics := audit.NewMetrics()
	auditor := audit.NewPublisher(auditStore,
		audit.WithLogger(log),
		audit.WithMetrics(auditMetrics),
	)

	// Audit distribution: outbox rows drain to Kafka when both sides exist.
	publisher, err := kafka.NewPublisher(cfg.Kafka, log)
	if err != nil {
		log.Error("kafka publisher failed", "error", err)
		os.Exit(1)
	}
	if publisher != nil {
		defer publisher.Close()
		if auditPG != nil {
			worker := audit.NewOutboxWorker(auditPG, publisher, log, auditMetrics, 5*time.Second)
			go worker.Run(ctx)
		}
	}

	// Screening pipeline.
	srcs, err := buildSources(cfg.Screening)
	if err != nil {
		log.Error("screening source config invalid", "error", err)
		os.Exit(1)
	}
	scrMetrics := screeningmetrics.New()
	orch := screening.NewOrchestrator(srcs, screening.Timeouts{
		Overall:      cfg.Screening.OverallTimeout,
		PerSource:    cfg.Screening.SourceTimeout,
		RetryBackoff: cfg.Screening.RetryBackoff,
	}, log, scrMetrics)

	screeningOpts := []screening.Option{screening.WithMetrics(scrMetrics)}
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		screeningOpts = append(screeningOpts,
			screening.WithCache(screening.NewRedisCache(redisClient.Client, 24*time.Hour)))
	}
	screener := screening.NewService(orch, screening.DefaultWeights(), screeningStore, auditor, log, screeningOpts...)

	clients := client.NewService(clientStore, screener, auditor, log, cfg.Screening.MaxAgeDays, loc)

	txOpts := []transaction.Option{transaction.WithMetrics(transactionmetrics.New())}
	if cfg.AnomalyURL != "" {
		txOpts = append(txOpts,
			transaction.WithAnomalyScorer(transaction.NewHTTPAnomalyScorer(cfg.AnomalyURL, 3*time.Second)))
	}
	transactions := transaction.NewService(txStore, clients, reference.DefaultCatalog(), converter, auditor, log, txOpts...)

	documents := document.NewService(docStore, auditor, log)

	router := httpapi.NewRouter(
		httpapi.Options{SigningKey: []byte(cfg.JWTSigningKey), Authenticate: true},
		log,
		clienthandler.New(clients, screener, log),
		transactionhandler.New(transactions, log),
		documenthandler.New(documents, log),
		audithandler.New(auditor, log),
	)

	srv := httpserver.New(cfg.Addr, router)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

// buildConverter seeds the unit table. Values are the monthly unit-of-account
// revaluations; production loads them from the reference feed.
func buildConverter(loc *time.Location) (*units.Converter, error) {
	rows := []units.UnitValue{
		{EffectiveFrom: time.Date(2024, time.January, 1, 0, 0, 0, 0, loc), Value: decimal.NewFromInt(64_000)},
		{EffectiveFrom: time.Date(2024, time.July, 1, 0, 0, 0, 0, loc), Value: decimal.NewFromInt(65_500)},
		{EffectiveFrom: time.Date(2025, time.January, 1, 0, 0, 0, 0, loc), Value: decimal.NewFromInt(67_000)},
		{EffectiveFrom: time.Date(2026, time.January, 1, 0, 0, 0, 0, loc), Value: decimal.NewFromInt(68_500)},
	}
	table, err := units.NewTable(rows)
	if err != nil {
		return nil, err
	}
	rates := map[string]decimal.Decimal{
		"USD": decimal.NewFromInt(950),
		"EUR": decimal.NewFromInt(1_020),
	}
	return units.NewConverter(table, "CLP", rates), nil
}

// buildSources turns source configuration into checkers. With nothing
// configured the engine runs against empty static lists, which suits local
// development only. A kind string that is neither blocking nor advisory is
// a startup error: a misspelled "blocking" must never silently downgrade a
// sanctions list to advisory.
func buildSources(cfg config.ScreeningConfig) ([]screening.Source, error) {
	if len(cfg.Sources) == 0 {
		return []screening.Source{
			sources.NewStatic("un_sanctions", screening.KindBlocking, nil),
			sources.NewStatic("local_pep", screening.KindAdvisory, nil),
		}, nil
	}
	out := make([]screening.Source, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		var kind screening.SourceKind
		switch sc.Kind {
		case string(screening.KindBlocking):
			kind = screening.KindBlocking
		case string(screening.KindAdvisory):
			kind = screening.KindAdvisory
		default:
			return nil, fmt.Errorf("source %q: unknown kind %q (want %q or %q)",
				sc.Name, sc.Kind, screening.KindBlocking, screening.KindAdvisory)
		}
		out = append(out, sources.NewHTTPSource(sc.Name, kind, sc.URL, sc.APIKey, nil))
	}
	return out, nil
}
