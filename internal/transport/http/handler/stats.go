package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"answerbridge/internal/stats"
	"answerbridge/internal/transport/http/response"
)

type StatsReader interface {
	Snapshot(ctx context.Context) (*stats.Snapshot, error)
}

type StatsHandler struct {
	reader StatsReader
}

// NewStatsHandler accepts a nil reader; the endpoint then reports 404.
func NewStatsHandler(reader StatsReader) *StatsHandler {
	return &StatsHandler{reader: reader}
}

func (h *StatsHandler) Get(c *gin.Context) {
	if h.reader == nil {
		response.Error(c, http.StatusNotFound, "stats are disabled")
		return
	}
	snap, err := h.reader.Snapshot(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, "stats unavailable")
		return
	}
	c.JSON(http.StatusOK, snap)
}
