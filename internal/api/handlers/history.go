package handlers

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/weatherq/weather-query-api/internal/models"
	"github.com/weatherq/weather-query-api/pkg/utils"
)

// csvHeader is the fixed export column order.
var csvHeader = []string{"id", "city", "units", "temperature", "description", "from_cache", "created_at"}

type HistoryHandler struct {
	repo   models.WeatherQueryRepository
	logger *logrus.Logger
}

func NewHistoryHandler(repo models.WeatherQueryRepository, logger *logrus.Logger) *HistoryHandler {
	return &HistoryHandler{
		repo:   repo,
		logger: logger,
	}
}

// HandleHistory serves the filtered query log, paginated as JSON or unpaged
// as a CSV attachment when export=csv.
func (h *HistoryHandler) HandleHistory(c *gin.Context) {
	var params models.HistoryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, "Invalid query parameters", err)
		return
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 {
		params.PerPage = 10
	}

	filters := models.HistoryFilters{
		City: params.City,
		From: parseDate(params.From),
		To:   parseDate(params.To),
	}

	if params.Export == "csv" {
		h.exportCSV(c, filters)
		return
	}

	records, total, err := h.repo.Search(filters, params.Page, params.PerPage)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load query history")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to load query history", err)
		return
	}

	items := make([]models.HistoryItem, 0, len(records))
	for _, record := range records {
		items = append(items, models.HistoryItem{
			ID: record.ID,
			WeatherResponse: models.WeatherResponse{
				City:        record.City,
				Units:       record.Units,
				Temperature: record.Temperature,
				Description: record.Description,
				FromCache:   record.FromCache,
				CreatedAt:   record.CreatedAt,
			},
		})
	}

	c.JSON(http.StatusOK, models.HistoryPage{
		Page:    params.Page,
		PerPage: params.PerPage,
		Total:   total,
		Items:   items,
	})
}

func (h *HistoryHandler) exportCSV(c *gin.Context, filters models.HistoryFilters) {
	records, err := h.repo.SearchAll(filters)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load query history for export")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to load query history", err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=history.csv")
	c.Status(http.StatusOK)

	writer := csv.NewWriter(c.Writer)
	writer.Write(csvHeader)
	for _, record := range records {
		temperature := ""
		if record.Temperature != nil {
			temperature = strconv.FormatFloat(*record.Temperature, 'f', -1, 64)
		}
		description := ""
		if record.Description != nil {
			description = *record.Description
		}

		writer.Write([]string{
			strconv.FormatUint(uint64(record.ID), 10),
			record.City,
			record.Units,
			temperature,
			description,
			strconv.FormatBool(record.FromCache),
			record.CreatedAt.Format(time.RFC3339),
		})
	}
	writer.Flush()

	h.logger.WithField("rows", len(records)).Info("History exported as CSV")
}

// parseDate is permissive: values that fail to parse count as absent filters,
// not as errors.
func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}
