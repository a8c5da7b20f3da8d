package handlers

import (
	"net/http"

	"productivity-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
)

// SnapshotProvider is satisfied by both the plain and the Redis-backed
// analytics services.
type SnapshotProvider interface {
	Snapshot() (services.Snapshot, error)
}

type AnalyticsHandler struct {
	analytics SnapshotProvider
}

func NewAnalyticsHandler(analytics SnapshotProvider) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

func (h *AnalyticsHandler) GetSnapshot(c *gin.Context) {
	snap, err := h.analytics.Snapshot()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
