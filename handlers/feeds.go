package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"maisonette/models"
	"maisonette/services/feed"
	"maisonette/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FeedHandler serves calendar feed management, sync and export.
type FeedHandler struct {
	Service feed.FeedService
	Logger  *zap.Logger
}

func NewFeedHandler(service feed.FeedService, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{Service: service, Logger: logger}
}

// Export handles GET /api/ical/:file where file is "<unitID>.ics".
func (h *FeedHandler) Export(c *gin.Context) {
	file := c.Param("file")
	unitID := strings.TrimSuffix(file, ".ics")
	if unitID == file || unitID == "" {
		utils.JSONError(c, http.StatusNotFound, "calendar not found", "")
		return
	}

	content, err := h.Service.ExportCalendar(c.Request.Context(), unitID)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.ics"`, unitID))
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(content))
}

// ExportURL handles GET /api/admin/ical/export-url/:unitID.
func (h *FeedHandler) ExportURL(c *gin.Context) {
	unitID := c.Param("unitID")
	url, err := h.Service.ExportURL(c.Request.Context(), unitID)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unit_id": unitID, "url": url})
}

func (h *FeedHandler) List(c *gin.Context) {
	feeds, err := h.Service.ListFeeds(c.Request.Context(), c.Query("unit_id"))
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, feeds)
}

func (h *FeedHandler) Create(c *gin.Context) {
	var in models.FeedInput
	if !bindJSON(c, &in) {
		return
	}
	f, err := h.Service.CreateFeed(c.Request.Context(), in)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *FeedHandler) Update(c *gin.Context) {
	var upd models.FeedUpdate
	if !bindJSON(c, &upd) {
		return
	}
	f, err := h.Service.UpdateFeed(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *FeedHandler) Delete(c *gin.Context) {
	if err := h.Service.DeleteFeed(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "feed and its imported blocks deleted"})
}

// Sync handles POST /api/admin/ical/sync?unit_id=&feed_id=. Per-feed
// failures are reported in the results, not as an HTTP error.
func (h *FeedHandler) Sync(c *gin.Context) {
	results, err := h.Service.Sync(c.Request.Context(), c.Query("unit_id"), c.Query("feed_id"))
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"synced": len(results), "results": results})
}
