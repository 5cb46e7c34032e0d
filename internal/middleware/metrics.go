package middleware

import (
	"strconv"
	"time"

	"github.com/agrofount/backoffice/prometheus"
	"github.com/labstack/echo/v4"
)

// MetricsMiddleware records request count and duration for every request
func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)

		duration := time.Since(start).Seconds()
		method := c.Request().Method
		endpoint := c.Path()
		status := strconv.Itoa(c.Response().Status)

		prometheus.HTTPRequestCounter.WithLabelValues(endpoint, method, status).Inc()
		prometheus.RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)

		return err
	}
}
