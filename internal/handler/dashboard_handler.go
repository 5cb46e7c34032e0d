package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/agrofount/backoffice/internal/analytics"
	"github.com/agrofount/backoffice/internal/model"
	"github.com/agrofount/backoffice/pkg/cache"
	"github.com/agrofount/backoffice/pkg/database"
	"github.com/agrofount/backoffice/pkg/httpclient"
	"github.com/agrofount/backoffice/pkg/logger"
	"github.com/agrofount/backoffice/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const dashboardCacheKey = "rollup:dashboard-summary"

// rollupTTL bounds how stale the dashboard may get between recomputes
var rollupTTL = time.Minute

// InitRollupTTL overrides the dashboard cache lifetime
func InitRollupTTL(ttl time.Duration) {
	if ttl > 0 {
		rollupTTL = ttl
	}
}

// rollupDebounce coalesces bursts of financial mutations so a batch of
// confirmations drops the cached summary once, not once per payment
var rollupDebounce = httpclient.NewDebouncer(400 * time.Millisecond)

var dropRollupCache = func() {
	if err := cache.Invalidate(context.Background(), dashboardCacheKey); err != nil {
		logger.GetLogger().Warn("Dashboard cache invalidation failed", zap.Error(err))
	}
}

// invalidateRollup schedules a dashboard cache drop once the current
// burst of mutations quiets down
func invalidateRollup() {
	rollupDebounce.Do(dropRollupCache)
}

// DashboardSummary returns every dashboard rollup in one response:
// top customers, products and states, the weekly sales and income
// series, and the visitor series. Recomputed at most once per TTL.
func DashboardSummary(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	var summary analytics.Summary
	if hit, err := cache.GetJSON(ctx, dashboardCacheKey, &summary); err == nil && hit {
		return c.JSON(http.StatusOK, &summary)
	}

	defer prometheus.TrackDBOperation("dashboard_rollup")(time.Now())

	var orders []model.Order
	if result := database.GetDB().Preload("User").Preload("Items").Find(&orders); result.Error != nil {
		log.Error("Failed to load orders for dashboard", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to compute dashboard summary"})
	}

	var users []model.User
	if result := database.GetDB().Find(&users); result.Error != nil {
		log.Error("Failed to load users for dashboard", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to compute dashboard summary"})
	}

	computed := analytics.BuildSummary(orders, users)
	if err := cache.SetJSON(ctx, dashboardCacheKey, computed, rollupTTL); err != nil {
		log.Warn("Dashboard cache write failed", zap.Error(err))
	}

	log.Info("Dashboard summary computed",
		zap.Int("orders", len(orders)),
		zap.Int("users", len(users)))
	return c.JSON(http.StatusOK, computed)
}
