package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"golang.org/x/crypto/bcrypt"

	"github.com/opencivic/civicpulse/internal/config"
	"github.com/opencivic/civicpulse/internal/domain"
	"github.com/opencivic/civicpulse/internal/infra/database"
	"github.com/opencivic/civicpulse/internal/infra/gateway"
	"github.com/opencivic/civicpulse/internal/infra/repository"
	"github.com/opencivic/civicpulse/internal/present/rest"
	"github.com/opencivic/civicpulse/internal/present/rest/middleware"
	"github.com/opencivic/civicpulse/internal/service"
	"github.com/opencivic/civicpulse/internal/usecase"
)

func main() {
	configPath := flag.String("config", "/etc/civicpulse/config.yaml", "path to config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if conf.Server.EnableTrace {
		cleanup, err := setupTraceProvider(conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("Failed to setup trace provider", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer cleanup()
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		slog.Error("Failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := database.MigratePostgres(db); err != nil {
		slog.Error("Failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, "", conf.Server.RedisDB)

	var mc *memcache.Client
	if conf.Server.MemcachedAddr != "" {
		mc = database.NewMemcached(conf.Server.MemcachedAddr)
	}

	reportRepo := repository.NewReportRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	adminRepo := repository.NewAdministratorRepository(db)

	if err := seedAdministrator(adminRepo); err != nil {
		slog.Error("Failed to seed administrator", slog.String("error", err.Error()))
		os.Exit(1)
	}

	transcriber := gateway.NewTranscriptionGateway(conf.Server.TranscriptionEndpoint)
	viewCache := service.NewViewCache(mc, 60)
	signal := service.NewSignalService(rdb)
	sessions := service.NewRedisSessionStore(rdb)
	auth := service.NewAuthService(
		[]byte(conf.Site.TokenSecret),
		conf.Site.FQDN,
		time.Duration(conf.Site.TokenTTL)*time.Second,
		adminRepo,
		sessions,
	)

	guard := usecase.NewAdminGuard(adminRepo)
	reportUC := usecase.NewReportUsecase(reportRepo, transcriber, viewCache, guard, conf.Severity)
	voteUC := usecase.NewVoteUsecase(voteRepo, reportRepo, signal, viewCache, conf.Severity)
	overrideUC := usecase.NewOverrideUsecase(reportRepo, guard, viewCache, conf.Severity)

	handler := rest.NewHandler(reportUC, voteUC, overrideUC, auth, signal)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("civicpulse"))
	}
	e.Use(middleware.IdentifyActor(auth))

	handler.Register(e)

	e.Logger.Fatal(e.Start(conf.Server.ListenAddr))
}

// seedAdministrator creates or updates the bootstrap admin account from
// the environment. Skipped when ADMIN_USERNAME is unset.
func seedAdministrator(admins *repository.AdministratorRepository) error {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		return nil
	}
	password := os.Getenv("ADMIN_PASSWORD")

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return admins.Upsert(context.Background(), domain.Administrator{
		ID:           "admin-" + username,
		Username:     username,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	})
}

func setupTraceProvider(endpoint string) (func(), error) {
	ctx := context.Background()

	exporter, err := otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String("civicpulse"),
		),
	)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tracerProvider)

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown tracer provider", slog.String("error", err.Error()))
		}
	}

	return cleanup, nil
}
