package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/orhanozan33/epicebuhara-sub000/internal/infra"
	"github.com/orhanozan33/epicebuhara-sub000/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health pings Postgres and Redis. It answers 503 when either is down and
// reports the invoice/email queue depths and the SMTP breaker state.
func Health(db *gorm.DB, rdb *redis.Client, mailCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		body := gin.H{
			"db":    pingPostgres(ctx, db),
			"redis": "connected",
		}
		if stats, err := worker.Stats(ctx, rdb); err != nil {
			body["redis"] = "error"
		} else {
			body["queues"] = stats
		}
		if mailCB != nil {
			body["mail_breaker"] = mailCB.State().String()
		}

		ok := body["db"] == "connected" && body["redis"] == "connected"
		body["ok"] = ok
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, body)
	}
}

func pingPostgres(ctx context.Context, db *gorm.DB) string {
	sqlDB, err := db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		return "error"
	}
	return "connected"
}
