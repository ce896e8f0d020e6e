package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
	"gorm.io/gorm"

	"contentapi/internal/config"
	"contentapi/internal/database"
	"contentapi/internal/handlers"
	"contentapi/internal/middleware"
	"contentapi/internal/models"
	"contentapi/internal/repositories"
	"contentapi/internal/services"
	"contentapi/internal/validation"
	"contentapi/pkg/logger"
	"contentapi/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.AppName, cfg.Env, cfg.LogLevel)

	db, err := database.Open(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}

	// Events are optional; without a broker the API still works.
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: cfg.RabbitMQExchange,
			Queue:    cfg.RabbitMQQueue,
		})
		if err != nil {
			log.WithError(err).Fatal("failed to initialize RabbitMQ client")
		}
		if err := mqClient.Consume(handleEvent(log)); err != nil {
			log.WithError(err).Error("failed to start RabbitMQ consumer")
		}
	} else {
		log.Warn("RABBITMQ_URL is empty, domain events are disabled")
	}

	app, err := newApp(cfg, log, db, mqClient)
	if err != nil {
		log.WithError(err).Fatal("failed to build application")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithField("port", cfg.AppPort).Info("starting server")
		if err := app.Listen(cfg.AppPort); err != nil {
			log.WithError(err).Fatal("server failed to start")
		}
	}()

	<-quit
	log.Info("shutting down server")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Error("error during fiber shutdown")
	}
	if mqClient != nil {
		if err := mqClient.Close(); err != nil {
			log.WithError(err).Error("error closing RabbitMQ client")
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server gracefully stopped")
}

// newApp wires repositories, services and handlers into a Fiber app.
// mqClient may be nil, in which case no events are published.
func newApp(cfg *config.Config, log *logrus.Logger, db *gorm.DB, mqClient *rabbitmq.Client) (*fiber.App, error) {
	var events services.Publisher
	if mqClient != nil {
		events = mqClient
	}

	validate := validation.New()
	userRepo := repositories.NewGORMRepository[models.User](db)
	postRepo := repositories.NewGORMRepository[models.Post](db)
	commentRepo := repositories.NewGORMRepository[models.Comment](db)

	authService, err := services.NewAuthService(userRepo, validate, log, events, services.AuthConfig{
		JWTSecret:    cfg.JWTSecret,
		TokenTTL:     cfg.TokenTTL,
		PasswordCost: cfg.PasswordCost,
	})
	if err != nil {
		return nil, err
	}
	postService := services.NewPostService(postRepo, validate, log, events)
	commentService := services.NewCommentService(commentRepo, postRepo, validate, log, events)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ErrorHandler: handlers.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${method} ${path} ${latency}\n",
		Output: log.Out,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "connected",
			"rabbitmq": "disabled",
		}
		if mqClient != nil {
			status["rabbitmq"] = "connected"
		}
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			status["status"] = "unhealthy"
			status["database"] = "unreachable"
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
		return c.JSON(status)
	})

	api := app.Group("/api")
	auth := middleware.AuthRequired(authService, log)
	handlers.NewUserHandler(authService).RegisterRoutes(api, auth)
	handlers.NewPostHandler(postService).RegisterRoutes(api, auth)
	handlers.NewCommentHandler(commentService).RegisterRoutes(api)
	return app, nil
}

// handleEvent logs every domain event received from the broker. Bodies that
// are not events are rejected.
func handleEvent(log *logrus.Logger) func(msg amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var e services.Event
		if err := json.Unmarshal(msg.Body, &e); err != nil {
			log.WithError(err).WithField("routing_key", msg.RoutingKey).Warn("discarding malformed event")
			return err
		}
		log.WithFields(logrus.Fields{
			"event":   e.Event,
			"id":      e.ID,
			"user_id": e.UserID,
			"post_id": e.PostID,
			"at":      e.At,
		}).Info("event received")
		return nil
	}
}
