package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/weatherq/weather-query-api/internal/middleware"
	"github.com/weatherq/weather-query-api/internal/models"
	"github.com/weatherq/weather-query-api/internal/services"
	"github.com/weatherq/weather-query-api/internal/weather"
	"github.com/weatherq/weather-query-api/pkg/utils"
)

type WeatherHandler struct {
	queryService *services.QueryService
	logger       *logrus.Logger
}

func NewWeatherHandler(queryService *services.QueryService, logger *logrus.Logger) *WeatherHandler {
	return &WeatherHandler{
		queryService: queryService,
		logger:       logger,
	}
}

// HandleWeather processes weather lookup requests
func (h *WeatherHandler) HandleWeather(c *gin.Context) {
	var params models.WeatherParams
	if err := c.ShouldBindQuery(&params); err != nil {
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, "Invalid query parameters", err)
		return
	}
	if params.Units == "" {
		params.Units = models.UnitsMetric
	}

	identity := middleware.IdentityFrom(c)

	record, err := h.queryService.HandleWeatherRequest(c.Request.Context(), identity, params.City, params.Units)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRateLimited):
			utils.ErrorResponse(c, http.StatusTooManyRequests, "Too many requests. Try again later.", nil)
		case errors.Is(err, weather.ErrUpstream):
			utils.ErrorResponse(c, http.StatusBadGateway, "Upstream weather API error", nil)
		default:
			h.logger.WithError(err).Error("Failed to store weather query")
			utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to store weather query", err)
		}
		return
	}

	c.JSON(http.StatusOK, models.WeatherResponse{
		City:        record.City,
		Units:       record.Units,
		Temperature: record.Temperature,
		Description: record.Description,
		FromCache:   record.FromCache,
		CreatedAt:   record.CreatedAt,
	})
}
