package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"calbook/internal/config"
	"calbook/internal/database"
	"calbook/internal/middleware"
	"calbook/internal/modules/bookings"
	"calbook/internal/modules/eventtypes"
	"calbook/internal/modules/oauth"
	jwtsvc "calbook/internal/pkg/jwt"
	"calbook/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.AppEnv)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	if cfg.AutoMigrate {
		if err := repository.Migrate(db); err != nil {
			logger.Fatal("schema migration failed", zap.Error(err))
		}
	}

	userRepo := repository.NewUserRepository(db)
	eventTypeRepo := repository.NewEventTypeRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	oauthClientRepo := repository.NewOAuthClientRepository(db)

	tokens := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	flowService := oauth.NewFlowService(oauthClientRepo, userRepo, tokens)

	inputService := bookings.NewInputService(flowService, eventTypeRepo, bookingRepo, logger)
	outputService := bookings.NewOutputService(bookingRepo)
	bookingService := bookings.NewService(inputService, outputService, eventTypeRepo, bookingRepo, logger)
	bookingHandler := bookings.NewHandler(bookingService)

	eventTypeService := eventtypes.NewService(eventTypeRepo)
	eventTypeHandler := eventtypes.NewHandler(eventTypeService)

	if cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.CORS())
	r.Use(middleware.RequestLogger(logger))

	v2 := r.Group("/api/v2")
	{
		bookingHandler.RegisterRoutes(v2)
		eventTypeHandler.RegisterRoutes(v2)
	}

	logger.Info("starting api", zap.String("addr", cfg.HTTPAddr))
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(appEnv string) (*zap.Logger, error) {
	if appEnv == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
