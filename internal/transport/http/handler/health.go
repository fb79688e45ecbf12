package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"answerbridge/internal/bootstrap"
)

const readinessTimeout = 2 * time.Second

var errNotConnected = errors.New("not connected")

type HealthHandler struct {
	app *bootstrap.App
}

// backendState is one entry of the readiness report.
type backendState struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

type readinessCheck struct {
	name string
	run  func(ctx context.Context) error
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{app: app}
}

// Live is the fixed liveness acknowledgement.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": h.app.Config.App.Name + " is running"})
}

// Check reports readiness of every enabled backend. Disabled backends are
// left out of the report.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	backends := make(map[string]backendState)
	ready := true
	for _, check := range h.enabledChecks() {
		started := time.Now()
		err := check.run(ctx)
		state := backendState{Status: "up", LatencyMS: time.Since(started).Milliseconds()}
		if err != nil {
			state.Status = "down"
			state.Error = err.Error()
			ready = false
		}
		backends[check.name] = state
	}

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":       status,
		"app":          h.app.Config.App.Name,
		"env":          h.app.Config.App.Env,
		"llm_provider": h.app.Config.LLM.Provider,
		"uptime_sec":   int(time.Since(h.app.StartedAt).Seconds()),
		"dependencies": backends,
	})
}

func (h *HealthHandler) enabledChecks() []readinessCheck {
	cfg := h.app.Config
	var checks []readinessCheck
	if cfg.MySQL.Enabled {
		checks = append(checks, readinessCheck{name: "mysql", run: h.pingAuditDB})
	}
	if cfg.Redis.Enabled {
		checks = append(checks, readinessCheck{name: "redis", run: h.pingCounters})
	}
	if cfg.RabbitMQ.Enabled {
		checks = append(checks, readinessCheck{name: "rabbitmq", run: h.brokerOpen})
	}
	return checks
}

func (h *HealthHandler) pingAuditDB(ctx context.Context) error {
	if h.app.MySQL == nil {
		return errNotConnected
	}
	sqlDB, err := h.app.MySQL.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (h *HealthHandler) pingCounters(ctx context.Context) error {
	if h.app.Redis == nil {
		return errNotConnected
	}
	return h.app.Redis.Ping(ctx).Err()
}

func (h *HealthHandler) brokerOpen(context.Context) error {
	if h.app.MQConn == nil || h.app.MQConn.IsClosed() {
		return errNotConnected
	}
	return nil
}
