package handler

import (
	"context"
	"net/http"
	"time"

	"precomed/internal/infra"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Health reports DB and Redis connectivity. Only the database decides the status code:
// searches keep working without the cache.
func Health(db *gorm.DB, cache *infra.CacheConsulta) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "disabled"
		if cache.Ativo() {
			redisStatus = "connected"
			if cache.Ping(ctx) != nil {
				redisStatus = "error"
			}
		}

		status := http.StatusOK
		if dbStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		})
	}
}
