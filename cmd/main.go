package main

import (
	"context"
	"dbchat"
	"dbchat/internal/api/handler/endpoints"
	"dbchat/internal/api/models"
	"dbchat/internal/api/service"
	"dbchat/internal/events"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	dbchat.InitConfig(".env")
	gin.SetMode(gin.ReleaseMode)

	if dbchat.GetConfig().Mode == "dev" {
		if err := dbchat.DB.AutoMigrate(
			&models.User{},
			&models.Database{},
			&models.CustomModel{},
			&models.Chat{},
			&models.ChatMessage{},
		); err != nil {
			dbchat.Logger.Fatal().Err(err).Msg("Failed to migrate database")
		}
		dbchat.Logger.Info().Msg("Database migrated successfully")
		gin.SetMode(gin.DebugMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	router, err := graceful.Default(graceful.WithAddr(dbchat.GetConfig().ApiPort))
	if err != nil {
		panic(err)
	}
	defer stop()
	defer router.Close()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	publisher, err := events.NewPublisher(dbchat.GetConfig().NatsURL, dbchat.Logger)
	if err != nil {
		dbchat.Logger.Fatal().Err(err).Msg("Failed to connect to NATS")
	}
	defer publisher.Close()

	initAPI(router, publisher)

	dbchat.Logger.Debug().Msgf("Starting API on port %s", dbchat.GetConfig().ApiPort)
	if err = router.RunWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		dbchat.Logger.Fatal().Msg(err.Error())
		panic(err)
	}
}

func initAPI(router *graceful.Graceful, publisher *events.Publisher) {
	plotService := service.NewPlotService()
	databaseService := service.NewDatabaseEntityService()
	userService := service.NewUserService()
	customModelService := service.NewCustomModelService()
	chatService := service.NewChatService(plotService)
	queryService := service.NewQueryService(chatService, databaseService, plotService, userService, customModelService, publisher)

	endpoints.AuthHandler(router)
	endpoints.DatabaseHandler(router, databaseService)
	endpoints.CustomModelHandler(router, customModelService)
	endpoints.ChatHandler(router, chatService, queryService)

	// generated plot images
	router.Static("/static/images", dbchat.GetConfig().PlotConfig.StaticRoot)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
