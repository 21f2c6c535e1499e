package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Details string `json:"details,omitempty"`
}

// PaginatedResponse wraps one page of a list
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// NewPaginatedResponse computes total_pages for a page of data
func NewPaginatedResponse(data interface{}, total int64, page, pageSize int) PaginatedResponse {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// Helper functions for parsing query parameters

// getIntParam safely parses an integer query parameter with a default value
func getIntParam(c *gin.Context, param string, defaultValue int) int {
	value := c.Query(param)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}

// getBoolParam safely parses a boolean query parameter with a default value
func getBoolParam(c *gin.Context, param string, defaultValue bool) bool {
	value := c.Query(param)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}

// getStringArrayParam safely parses a comma-separated string array parameter
func getStringArrayParam(c *gin.Context, param string) []string {
	value := c.Query(param)
	if value == "" {
		return nil
	}

	result := []string{}
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}

	return result
}

// getUUIDParam parses an optional UUID query parameter; ok is false when it is present but malformed
func getUUIDParam(c *gin.Context, param string) (id *uuid.UUID, ok bool) {
	value := c.Query(param)
	if value == "" {
		return nil, true
	}

	parsed, err := uuid.Parse(value)
	if err != nil {
		return nil, false
	}

	return &parsed, true
}

// parseDate parses a date string in ISO format
func parseDate(dateStr string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
		"2006-01-02 15:04:05",
	}

	for _, format := range formats {
		if parsed, err := time.Parse(format, dateStr); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date format: %s", dateStr)
}

// parseDateRange parses date range parameters, ignoring malformed values
func parseDateRange(c *gin.Context, fromParam, toParam string) (from, to *time.Time) {
	if fromStr := c.Query(fromParam); fromStr != "" {
		if parsed, err := parseDate(fromStr); err == nil {
			from = &parsed
		}
	}

	if toStr := c.Query(toParam); toStr != "" {
		if parsed, err := parseDate(toStr); err == nil {
			to = &parsed
		}
	}

	return
}
