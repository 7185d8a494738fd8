package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/tu-usuario/whats-middleware/internal/application/importer"
	"github.com/tu-usuario/whats-middleware/internal/application/messaging"
	"github.com/tu-usuario/whats-middleware/internal/application/webhook"
	"github.com/tu-usuario/whats-middleware/internal/infrastructure/dedup"
	"github.com/tu-usuario/whats-middleware/internal/infrastructure/postgres"
	"github.com/tu-usuario/whats-middleware/internal/infrastructure/whatsapp"
	httpRouter "github.com/tu-usuario/whats-middleware/internal/interfaces/http"
	"github.com/tu-usuario/whats-middleware/pkg/config"
	"github.com/tu-usuario/whats-middleware/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicação")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão ao PostgreSQL")
	}
	defer pool.Close()

	customerRepo := postgres.NewCustomerRepository(pool)
	messageRepo := postgres.NewMessageRepository(pool)
	licenseRepo := postgres.NewLicenseRepository(pool)
	companyRepo := postgres.NewCompanyRepository(pool)

	// Dedup de webhooks: Redis quando configurado, memória como fallback
	// (instância única, sem retenção entre reinícios).
	var dedupStore dedup.Store
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("conexão ao Redis")
		}
		defer rdb.Close()
		dedupStore = dedup.NewRedisStore(rdb, cfg.Dispatch.DedupTTL)
	} else {
		log.Warn().Msg("REDIS_ADDR não definido, dedup de webhooks em memória")
		dedupStore = dedup.NewMemoryStore(cfg.Dispatch.DedupTTL)
	}

	waClient := whatsapp.NewClient(whatsapp.Config{
		APIURL:        cfg.WhatsApp.APIURL,
		PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		AccessToken:   cfg.WhatsApp.AccessToken,
		VerifyToken:   cfg.WhatsApp.VerifyToken,
	}, log)

	tracker := messaging.NewStatusTracker(messageRepo, log)
	dispatcher := messaging.NewDispatcher(messaging.DispatcherConfig{
		Lanes:       cfg.Dispatch.Lanes,
		QueueSize:   cfg.Dispatch.QueueSize,
		MaxAttempts: cfg.Dispatch.MaxAttempts,
		BaseBackoff: cfg.Dispatch.BaseBackoff,
	}, waClient, tracker, log)
	dispatcher.Start()
	defer dispatcher.Stop()

	messageUC := messaging.NewMessageUseCase(customerRepo, messageRepo, dispatcher, log)

	deferredQueue := webhook.NewDeferredQueue(log)
	receiver := webhook.NewReceiver(
		dedupStore, customerRepo, licenseRepo, messageUC, deferredQueue,
		cfg.Import.DefaultCountryCode, log,
	)
	deferredQueue.Start(receiver, cfg.Dispatch.RetryInterval)
	defer deferredQueue.Stop()

	pipeline := importer.NewPipeline(
		customerRepo,
		importer.RowValidator{CountryCode: cfg.Import.DefaultCountryCode},
		messageUC, log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    32 * 1024 * 1024, // lotes de CSV grandes
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI em local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "WhatsApp Middleware API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ImportPipeline: pipeline,
		MessageUC:      messageUC,
		Tracker:        tracker,
		Receiver:       receiver,
		WhatsApp:       waClient,
		Customers:      customerRepo,
		Companies:      companyRepo,
		Log:            log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, fechando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("desligamento do servidor")
	}

	log.Info().Msg("aplicação parada")
}
