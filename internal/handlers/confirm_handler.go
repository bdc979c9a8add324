package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/go-autotracker/internal/aws"
	"github.com/imrishuroy/go-autotracker/internal/callback"
	"github.com/imrishuroy/go-autotracker/internal/hours"
	"github.com/imrishuroy/go-autotracker/internal/signature"
	"github.com/imrishuroy/go-autotracker/internal/validation"
)

const (
	ConfirmPath     = "/auto-tracker/adjust-hours"
	HeaderRequestID = "X-Request-Id"

	loggerKey = "logger"
)

// HandlerConfig groups dependencies for the confirmation handler.
type HandlerConfig struct {
	DynamoDBClient aws.DynamoDBAPI
	Table          string
	SigningSecret  string
	ReplayWindow   time.Duration
	Location       *time.Location
	Logger         zerolog.Logger
	Now            func() time.Time // defaults to time.Now
}

// RequestLogger tags every request with an id, taken from X-Request-Id or
// generated, and stores a child logger carrying it.
func RequestLogger(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)

		log := base.With().Str("request_id", id).Logger()
		c.Set(loggerKey, log)

		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request served")
	}
}

func requestLog(c *gin.Context, fallback zerolog.Logger) zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(zerolog.Logger); ok {
			return l
		}
	}
	return fallback
}

// RegisterConfirmRoutes registers the interactive callback route.
func RegisterConfirmRoutes(r *gin.Engine, cfg HandlerConfig) {
	verifier := signature.NewVerifier(cfg.SigningSecret, cfg.ReplayWindow)
	// only Confirm is used, which never sets a ttl
	store := hours.NewStore(cfg.DynamoDBClient, cfg.Table, 0)

	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	r.POST(ConfirmPath, func(c *gin.Context) {
		ctx := c.Request.Context()
		log := requestLog(c, cfg.Logger)

		// signature covers the exact bytes, so read before decoding
		body, err := c.GetRawData()
		if err != nil {
			log.Warn().Err(err).Msg("read body")
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable_body"})
			return
		}

		if err := verifier.VerifyRequest(c.Request.Header, body); err != nil {
			log.Warn().Err(err).Msg("signature rejected")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_signature"})
			return
		}

		cb, err := callback.Decode(body)
		if err != nil {
			log.Warn().Err(err).Msg("decode callback")
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed_payload"})
			return
		}

		sel, err := callback.Select(cb)
		if err != nil {
			log.Warn().Err(err).Msg("select action")
			code := "malformed_payload"
			switch {
			case errors.Is(err, callback.ErrNoAction):
				code = "no_action"
			case errors.Is(err, callback.ErrInvalidHours):
				code = "invalid_hours"
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": code})
			return
		}

		date := now().In(loc)
		if sel.HasDate {
			date = sel.Date
		}
		log = log.With().
			Str("user", sel.UserID).
			Str("date", date.Format(validation.DateLayout)).
			Float64("hours", sel.Hours).
			Logger()

		rec, err := store.Confirm(ctx, date, sel.Hours)
		switch {
		case err == nil:
			log.Info().Time("expires", recordTTL(rec)).Msg("hours confirmed")
			c.Status(http.StatusOK)
		case errors.Is(err, hours.ErrConditionFailed):
			// late click after expiry, or the day was never prompted
			log.Info().Msg("no pending record, confirmation ignored")
			c.Status(http.StatusOK)
		case hours.IsTransient(err):
			log.Error().Err(err).Msg("confirm hours")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable"})
		default:
			log.Error().Err(err).Msg("confirm hours")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "store_failed"})
		}
	})
}

func recordTTL(rec *hours.Record) time.Time {
	if rec == nil {
		return time.Time{}
	}
	return rec.TTL
}
