package health

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/weatherq/weather-query-api/internal/models"
)

// Checker probes the service's one backing dependency.
type Checker struct {
	repo   models.WeatherQueryRepository
	logger *logrus.Logger
}

func NewChecker(repo models.WeatherQueryRepository, logger *logrus.Logger) *Checker {
	return &Checker{
		repo:   repo,
		logger: logger,
	}
}

// ServiceHealth represents the health status of a service
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
	LastChecked  string `json:"last_checked"`
}

// CheckDatabase runs a trivial count over the query log. A failing probe is
// reported, never fatal.
func (h *Checker) CheckDatabase() ServiceHealth {
	start := time.Now()
	_, err := h.repo.Count()
	responseTime := int(time.Since(start).Milliseconds())

	status := "healthy"
	errorMsg := ""
	if err != nil {
		status = "unhealthy"
		errorMsg = err.Error()
		h.logger.WithError(err).Error("Database health check failed")
	}

	return ServiceHealth{
		Name:         "postgresql",
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}
