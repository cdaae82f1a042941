package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"meetingscheduler/internal/delivery/http/helpers"
)

// Pinger is implemented by *sql.DB and by the redis client wrapper used in cmd/server.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse reports the status of the service and each dependency.
type HealthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// HealthSuccessResponse is the success response envelope for GET /healthz (200).
type HealthSuccessResponse struct {
	Data  HealthResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type HealthController struct {
	Logger       *slog.Logger
	Dependencies map[string]Pinger
}

func NewHealthController(logger *slog.Logger, deps map[string]Pinger) *HealthController {
	return &HealthController{Logger: logger, Dependencies: deps}
}

// Health godoc
// @Summary Liveness and dependency check
// @Tags health
// @Produce json
// @Success 200 {object} controllers.HealthSuccessResponse
// @Failure 503 {object} controllers.HealthSuccessResponse
// @Router /healthz [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok"}
	status := http.StatusOK
	if len(c.Dependencies) > 0 {
		resp.Dependencies = make(map[string]string, len(c.Dependencies))
	}
	for name, p := range c.Dependencies {
		if err := p.PingContext(ctx); err != nil {
			c.Logger.WarnContext(ctx, "health check failed", "dependency", name, "err", err)
			resp.Dependencies[name] = "down"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Dependencies[name] = "up"
	}
	helpers.WriteJSONSuccess(w, status, resp)
}
