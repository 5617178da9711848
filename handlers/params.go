package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"maisonette/models"
	"maisonette/utils"

	"github.com/gin-gonic/gin"
)

// bindJSON decodes the request body, answering 400 on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return false
	}
	return true
}

// queryInt reads an optional positive integer query parameter.
func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		utils.JSONError(c, http.StatusBadRequest, "invalid "+key, "expected a positive integer")
		return 0, false
	}
	return v, true
}

// queryStatuses parses ?status=pending,confirmed.
func queryStatuses(c *gin.Context) ([]models.BookingStatus, bool) {
	raw := c.Query("status")
	if raw == "" {
		return nil, true
	}
	var out []models.BookingStatus
	for _, part := range strings.Split(raw, ",") {
		s := models.BookingStatus(strings.TrimSpace(part))
		if !s.Valid() {
			utils.JSONError(c, http.StatusBadRequest, "invalid status", string(s))
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
