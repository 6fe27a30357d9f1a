package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"callback-registry-api/internal/database"
	"callback-registry-api/internal/models"
	"callback-registry-api/internal/registry"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

/*
*
ListCallbacks handles GET /api/callbacks
Returns a snapshot of every live registry entry with its bookkeeping
(remaining count, idle threshold, last access, current age).
*/
func ListCallbacks(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries := reg.Entries()
		c.JSON(http.StatusOK, gin.H{
			"callbacks": entries,
			"count":     len(entries),
		})
	}
}

// DeleteCallback handles DELETE /api/callbacks/:key
// Removes a registry entry explicitly, making its address dead.
func DeleteCallback(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("key")
		if key == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Callback key is required"})
			return
		}

		if !reg.Drop(key) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Callback not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Callback deleted successfully",
			"key":     key,
		})
	}
}

/*
*
GetJournal handles GET /api/journal
Returns persisted registry events, newest first by default.
Query params: page (default 1), limit (default 20), sort (asc|desc),
key and event as optional filters.
*/
func GetJournal(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	limitStr := c.DefaultQuery("limit", "20")
	sortParam := strings.ToLower(c.DefaultQuery("sort", "desc"))
	filterKey := c.Query("key")
	filterEvent := c.Query("event")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	offset := (page - 1) * limit

	order := "id desc"
	if sortParam == "asc" {
		order = "id asc"
	}

	db := database.GetDB()
	query := db.Model(&models.JournalRecord{})
	if filterKey != "" {
		query = query.Where("key = ?", filterKey)
	}
	if filterEvent != "" {
		query = query.Where("event = ?", filterEvent)
	}

	// Total count (without pagination)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to count journal records",
		})
		return
	}

	var records []models.JournalRecord
	result := query.Session(&gorm.Session{}).Order(order).Limit(limit).Offset(offset).Find(&records)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch journal records",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
		"total":   total,
		"page":    page,
		"limit":   limit,
		"sort":    sortParam,
	})
}

// GetStats handles GET /api/stats
// Returns journal event counts grouped by event type.
func GetStats(c *gin.Context) {
	db := database.GetDB()

	type row struct {
		Event string
		Count int64
	}

	var rows []row
	if err := db.Model(&models.JournalRecord{}).
		Select("event, COUNT(*) as count").
		Group("event").
		Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	// Initialize with zeros so every known event type is present
	counts := map[string]int64{
		string(registry.EventRegistered): 0,
		string(registry.EventInvoked):    0,
		string(registry.EventFailed):     0,
		string(registry.EventExhausted):  0,
		string(registry.EventExpired):    0,
		string(registry.EventDeleted):    0,
	}
	var total int64 = 0
	for _, r := range rows {
		counts[r.Event] = r.Count
		total += r.Count
	}

	c.JSON(http.StatusOK, gin.H{
		"registered": counts[string(registry.EventRegistered)],
		"invoked":    counts[string(registry.EventInvoked)],
		"failed":     counts[string(registry.EventFailed)],
		"exhausted":  counts[string(registry.EventExhausted)],
		"expired":    counts[string(registry.EventExpired)],
		"deleted":    counts[string(registry.EventDeleted)],
		"total":      total,
	})
}
