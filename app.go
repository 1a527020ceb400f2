package main

import (
	"errors"
	"fmt"
	"strings"

	"stockroom/internal/config"
	"stockroom/internal/database"
	"stockroom/internal/handlers"
	"stockroom/internal/middleware"
	"stockroom/internal/repositories"
	"stockroom/internal/services"
	"stockroom/internal/validation"
	"stockroom/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hashicorp/go-hclog"
	amqp "github.com/streadway/amqp"
	gormlogger "gorm.io/gorm/logger"
)

// App bundles the HTTP server with the resources it owns.
type App struct {
	Fiber   *fiber.App
	Service *services.ProductService

	closers []func() error
}

// NewApp wires the store, event publisher, service and HTTP routes.
func NewApp(cfg config.Config, log hclog.Logger) (*App, error) {
	a := &App{}

	repo, err := a.openRepository(cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log.Named("rabbitmq"))
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		a.closers = append(a.closers, mqClient.Close)
		publisher = mqClient

		if err := mqClient.Consume(auditEvent(log.Named("audit"))); err != nil {
			log.Warn("failed to start product event consumer", "error", err)
		}
	} else {
		log.Info("RABBITMQ_URL not set, product events disabled")
	}

	a.Service = services.NewProductService(repo, publisher, log.Named("products"))

	app := fiber.New(fiber.Config{
		AppName:      "stockroom",
		ErrorHandler: handlers.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(middleware.RequestLogger(log.Named("http")))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept," + middleware.HeaderRequestID,
	}))

	handlers.NewHealthHandler(a.Service).RegisterRoutes(app)

	api := app.Group("/api")
	productHandler := handlers.NewProductHandler(a.Service, validation.New(), log.Named("handlers"))
	productHandler.RegisterRoutes(api)

	a.Fiber = app
	return a, nil
}

func (a *App) openRepository(cfg config.Config, log hclog.Logger) (repositories.ProductRepository, error) {
	if cfg.DBDriver == config.DriverMemory {
		log.Warn("using in-memory product store, data is lost on exit")
		return repositories.NewMemoryProductRepository(), nil
	}

	db, err := database.Open(database.Config{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DatabaseDSN,
		LogLevel:        gormLogLevel(log),
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error { return database.Close(db) })

	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	log.Info("database connected", "driver", cfg.DBDriver)
	return repositories.NewGORMProductRepository(db), nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// auditEvent logs every product event delivered from the broker.
func auditEvent(log hclog.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		log.Info("product event", "routing_key", msg.RoutingKey, "body", string(msg.Body))
		return nil
	}
}

func gormLogLevel(log hclog.Logger) gormlogger.LogLevel {
	switch {
	case log.IsDebug(), log.IsTrace():
		return gormlogger.Info
	case log.IsInfo(), log.IsWarn():
		return gormlogger.Warn
	case log.IsError():
		return gormlogger.Error
	default:
		return gormlogger.Silent
	}
}

func newLogger(cfg config.Config) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       "stockroom",
		Level:      hclog.LevelFromString(cfg.LogLevel),
		JSONFormat: cfg.LogJSON,
	})
}
