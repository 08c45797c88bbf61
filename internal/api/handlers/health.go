package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weatherq/weather-query-api/internal/health"
	"github.com/weatherq/weather-query-api/internal/models"
)

type HealthHandler struct {
	checker *health.Checker
}

func NewHealthHandler(checker *health.Checker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// HandleHealth reports storage reachability. A failed probe is reported in
// the body, never as an error status.
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	db := "ok"
	if h.checker.CheckDatabase().Status != "healthy" {
		db = "fail"
	}

	c.JSON(http.StatusOK, models.HealthResponse{DB: db})
}
