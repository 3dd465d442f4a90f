package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-schedule-api/internal/service"
)

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	healthy := ReadinessCheck{Name: "postgres", Check: func(context.Context) error { return nil }}
	failing := ReadinessCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }}

	router := gin.New()
	router.GET("/ready", NewMetricsHandler(nil, healthy).Ready)
	w := serveJSON(router, http.MethodGet, "/ready", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"postgres":"ok"`)

	router = gin.New()
	router.GET("/ready", NewMetricsHandler(nil, healthy, failing).Ready)
	w = serveJSON(router, http.MethodGet, "/ready", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"connection refused"`)
	assert.Contains(t, w.Body.String(), `"status":"unavailable"`)
}

func TestMetricsHandlerPrometheusAndSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	metrics.ObserveGeneration(service.GenerationModeSection, 20*time.Millisecond, 4, 1, nil, nil)
	h := NewMetricsHandler(metrics)

	router := gin.New()
	router.GET("/metrics", h.Prometheus)
	router.GET("/metrics/summary", h.Summary)

	w := serveJSON(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "schedule_generations_total")

	w = serveJSON(router, http.MethodGet, "/metrics/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"generations_total":1`)

	router = gin.New()
	router.GET("/metrics", NewMetricsHandler(nil).Prometheus)
	w = serveJSON(router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
