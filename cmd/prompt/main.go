package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"github.com/imrishuroy/go-autotracker/internal/aws"
	"github.com/imrishuroy/go-autotracker/internal/config"
	"github.com/imrishuroy/go-autotracker/internal/hours"
	"github.com/imrishuroy/go-autotracker/internal/logging"
	"github.com/imrishuroy/go-autotracker/internal/prompt"
)

func newInitiator(cfg *config.Config, clients *aws.AWSClients, log zerolog.Logger) *prompt.Initiator {
	store := hours.NewStore(clients.DynamoDB, cfg.Table, cfg.Prompt.RecordTTL)
	return prompt.NewInitiator(slack.New(cfg.Slack.Token), store, prompt.Options{
		DisplayName: cfg.Slack.DisplayName,
		Question:    cfg.Prompt.Text,
		Hours:       cfg.Prompt.Hours,
		Location:    cfg.Location,
	}, log)
}

// runLocal fires the initiator on the configured cron schedule until interrupted.
func runLocal(in *prompt.Initiator, cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cron.New(cron.WithLocation(cfg.Location))
	_, err := c.AddFunc(cfg.Prompt.Schedule, func() {
		if _, err := in.Run(ctx); err != nil {
			log.Error().Err(err).Msg("prompt run failed")
		}
	})
	if err != nil {
		return err
	}

	log.Info().Str("schedule", cfg.Prompt.Schedule).Msg("running local scheduler")
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func main() {
	boot := logging.Bootstrap("prompt")

	cfg, err := config.Load()
	if err != nil {
		boot.Fatal().Err(err).Msg("load configuration")
	}
	if err := cfg.ValidatePrompt(); err != nil {
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	log, err := logging.New(cfg.LogLevel, "prompt")
	if err != nil {
		boot.Fatal().Err(err).Msg("init logger")
	}

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init aws clients")
	}

	in := newInitiator(cfg, clients, log)

	if os.Getenv("RUN_LOCAL") == "true" {
		if err := runLocal(in, cfg, log); err != nil {
			log.Fatal().Err(err).Msg("local scheduler")
		}
		return
	}

	lambda.Start(func(ctx context.Context, ev events.CloudWatchEvent) error {
		log.Info().Str("event_id", ev.ID).Str("source", ev.Source).Msg("scheduled prompt")
		_, err := in.Run(ctx)
		return err
	})
}
