package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats is the connection pool snapshot the health endpoint reports.
type PoolStats struct {
	Total int32 `json:"total"`
	Idle  int32 `json:"idle"`
	InUse int32 `json:"in_use"`
	Max   int32 `json:"max"`
}

// poolStat is the slice of pgxpool.Stat the snapshot reads.
type poolStat interface {
	TotalConns() int32
	IdleConns() int32
	AcquiredConns() int32
	MaxConns() int32
}

func snapshot(s poolStat) PoolStats {
	return PoolStats{
		Total: s.TotalConns(),
		Idle:  s.IdleConns(),
		InUse: s.AcquiredConns(),
		Max:   s.MaxConns(),
	}
}

// HealthHandler reports whether the API can reach its database. Load
// balancer probes hit this; a failed ping answers 503 with the cause.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		stats := snapshot(pool.Stat())
		if err := pool.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status":   "unavailable",
				"error":    err.Error(),
				"database": stats,
			})
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"database": stats,
		})
	}
}
