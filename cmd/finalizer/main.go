package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/imrishuroy/go-autotracker/internal/aws"
	"github.com/imrishuroy/go-autotracker/internal/config"
	"github.com/imrishuroy/go-autotracker/internal/finalize"
	"github.com/imrishuroy/go-autotracker/internal/harvest"
	"github.com/imrishuroy/go-autotracker/internal/hours"
	"github.com/imrishuroy/go-autotracker/internal/logging"
)

const harvestTimeout = 15 * time.Second

// localEvent builds a single REMOVE record for RUN_LOCAL, dated today unless
// LOCAL_RECORD_DATE is set.
func localEvent(now time.Time) events.DynamoDBEvent {
	pk := hours.Key(now)
	if d := os.Getenv("LOCAL_RECORD_DATE"); d != "" {
		pk = hours.KeyPrefix + d
	}
	h := os.Getenv("LOCAL_RECORD_HOURS")
	if _, err := strconv.ParseFloat(h, 64); err != nil {
		h = "8"
	}

	return events.DynamoDBEvent{
		Records: []events.DynamoDBEventRecord{{
			EventID:   "local-1",
			EventName: string(events.DynamoDBOperationTypeRemove),
			Change: events.DynamoDBStreamRecord{
				OldImage: map[string]events.DynamoDBAttributeValue{
					"pk":    events.NewStringAttribute(pk),
					"sk":    events.NewStringAttribute(hours.SortKeyVoid),
					"hours": events.NewNumberAttribute(h),
				},
			},
		}},
	}
}

func main() {
	boot := logging.Bootstrap("finalizer")

	cfg, err := config.Load()
	if err != nil {
		boot.Fatal().Err(err).Msg("load configuration")
	}
	if err := cfg.ValidateFinalizer(); err != nil {
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	log, err := logging.New(cfg.LogLevel, "finalizer")
	if err != nil {
		boot.Fatal().Err(err).Msg("init logger")
	}

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init aws clients")
	}

	tracker := harvest.NewClient(&http.Client{Timeout: harvestTimeout},
		cfg.Harvest.BaseURL, cfg.Harvest.AccountID, cfg.Harvest.Token)

	f := finalize.NewFinalizer(tracker,
		aws.NewPublisher(clients.SQS, cfg.Finalizer.FailureQueueURL),
		aws.NewMetrics(clients.CloudWatch, cfg.Finalizer.MetricsNS),
		finalize.Options{
			Project:     cfg.Harvest.Project,
			Task:        cfg.Harvest.Task,
			Concurrency: cfg.Finalizer.Concurrency,
		}, log)

	handle := func(ctx context.Context, ev events.DynamoDBEvent) error {
		_, err := f.Handle(ctx, ev)
		return err
	}

	if os.Getenv("RUN_LOCAL") == "true" {
		if err := handle(context.Background(), localEvent(time.Now().In(cfg.Location))); err != nil {
			log.Fatal().Err(err).Msg("local handler error")
		}
		return
	}

	lambda.Start(handle)
}
