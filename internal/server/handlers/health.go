package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"thirteen-platform/backend/internal/db"
	"thirteen-platform/backend/internal/redis"
)

// HandleHealth reports liveness of the database and the cache.
func HandleHealth(c *gin.Context, database *db.DB, cache *redis.Client) {
	status := http.StatusOK
	dbStatus := "ok"
	cacheStatus := "ok"

	sqlDB, err := database.DB.DB()
	if err != nil || sqlDB.Ping() != nil {
		dbStatus = "down"
		status = http.StatusServiceUnavailable
	}

	if err := cache.HealthCheck(c.Request.Context()); err != nil {
		cacheStatus = "down"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status": map[string]string{
			"database": dbStatus,
			"cache":    cacheStatus,
		},
	})
}
