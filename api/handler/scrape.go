package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shelfscan/shelfscan/cache"
	"github.com/shelfscan/shelfscan/config"
	"github.com/shelfscan/shelfscan/models"
	"github.com/shelfscan/shelfscan/product"
	"github.com/shelfscan/shelfscan/scrape"
)

// Scrape handles POST /api/v1/scrape.
func Scrape(svc *scrape.Service, cc *cache.Cache, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ScrapeResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "invalid request: " + err.Error(),
				},
			})
			return
		}

		if err := product.ValidateURL(req.URL); err != nil {
			respondError(c, start, err)
			return
		}

		opts := scrape.Options{
			Locale:       req.Locale,
			CurrencyHint: req.CurrencyHint,
			AIEnabled:    req.AIEnabled || cfg.Scraper.AIEnabled,
		}

		key := cache.Key(req.URL, opts.Locale, opts.CurrencyHint, opts.AIEnabled)
		if cached, hit := cc.Get(key, req.MaxAge); hit {
			c.JSON(http.StatusOK, models.ScrapeResponse{
				Success:     true,
				Result:      cached,
				CacheStatus: "hit",
				Timing: models.TimingInfo{
					TotalMs: time.Since(start).Milliseconds(),
				},
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.Server.RequestTimeout)
		defer cancel()

		scrapeStart := time.Now()
		result, err := svc.Scrape(ctx, req.URL, opts)
		scrapeMs := time.Since(scrapeStart).Milliseconds()

		if err != nil {
			respondError(c, start, err)
			return
		}

		cc.Set(key, result)

		cacheStatus := ""
		if req.MaxAge > 0 {
			cacheStatus = "miss"
		}

		slog.Info("scrape complete",
			"requestID", c.GetString("request_id"),
			"url", req.URL,
			"source", result.Source,
			"confidence", result.Confidence,
			"durationMs", scrapeMs,
		)

		c.JSON(http.StatusOK, models.ScrapeResponse{
			Success:     true,
			Result:      result,
			CacheStatus: cacheStatus,
			Timing: models.TimingInfo{
				TotalMs:  time.Since(start).Milliseconds(),
				ScrapeMs: scrapeMs,
			},
		})
	}
}

// respondError maps pipeline errors to HTTP status codes and the response
// envelope.
func respondError(c *gin.Context, start time.Time, err error) {
	status := http.StatusInternalServerError
	detail := &models.ErrorDetail{
		Code:    models.ErrCodeInternal,
		Message: "scrape failed",
	}

	var se *models.ScrapeError
	switch {
	case errors.As(err, &se):
		detail = se.ToDetail()
		switch se.Code {
		case models.ErrCodeInvalidInput:
			status = http.StatusBadRequest
		case models.ErrCodeUnauthorized:
			status = http.StatusUnauthorized
		case models.ErrCodeRateLimited:
			status = http.StatusTooManyRequests
		case models.ErrCodeTimeout:
			status = http.StatusGatewayTimeout
		case models.ErrCodeUpstream:
			status = http.StatusBadGateway
		}
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		detail = &models.ErrorDetail{
			Code:    models.ErrCodeTimeout,
			Message: "scrape timed out",
		}
	default:
		status = http.StatusBadGateway
		detail = &models.ErrorDetail{
			Code:    models.ErrCodeUpstream,
			Message: err.Error(),
		}
		if upstream, ok := models.StatusFromError(err); ok {
			slog.Warn("upstream fetch failed",
				"requestID", c.GetString("request_id"), "upstreamStatus", upstream)
		}
	}

	c.JSON(status, models.ScrapeResponse{
		Success: false,
		Error:   detail,
		Timing: models.TimingInfo{
			TotalMs: time.Since(start).Milliseconds(),
		},
	})
}
