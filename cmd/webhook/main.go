package main

import (
	"context"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/go-autotracker/internal/aws"
	"github.com/imrishuroy/go-autotracker/internal/config"
	"github.com/imrishuroy/go-autotracker/internal/handlers"
	"github.com/imrishuroy/go-autotracker/internal/logging"
)

func setupRouter(cfg handlers.HandlerConfig, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handlers.RequestLogger(log))

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterConfirmRoutes(r, cfg)

	return r
}

func main() {
	boot := logging.Bootstrap("webhook")

	cfg, err := config.Load()
	if err != nil {
		boot.Fatal().Err(err).Msg("load configuration")
	}
	if err := cfg.ValidateWebhook(); err != nil {
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	log, err := logging.New(cfg.LogLevel, "webhook")
	if err != nil {
		boot.Fatal().Err(err).Msg("init logger")
	}

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init aws clients")
	}

	r := setupRouter(handlers.HandlerConfig{
		DynamoDBClient: clients.DynamoDB,
		Table:          cfg.Table,
		SigningSecret:  cfg.Webhook.SigningSecret,
		ReplayWindow:   cfg.Webhook.ReplayWindow,
		Location:       cfg.Location,
		Logger:         log,
	}, log)

	// RUN_LOCAL=true serves plain HTTP for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		log.Info().Str("addr", addr).Msg("running local server")
		if err := r.Run(addr); err != nil {
			log.Fatal().Err(err).Msg("failed to run local server")
		}
		return
	}

	gin.SetMode(gin.ReleaseMode)
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
