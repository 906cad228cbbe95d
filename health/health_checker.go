// Package health provides health checking functionality for the medication catalog.
package health

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/giygas/medication-catalog/entities"
	"github.com/giygas/medication-catalog/interfaces"
)

// Store is the part of the catalog store the checker needs.
type Store interface {
	Ping(ctx context.Context) error
	Info(ctx context.Context) (*interfaces.DatabaseInfo, error)
}

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	store     Store
	startedAt time.Time
	now       func() time.Time
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(store Store) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		store:     store,
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// HealthCheck reports whether the database answers and holds the seeded
// reference data. Used by the /health HTTP endpoint.
func (h *HealthCheckerImpl) HealthCheck(ctx context.Context) (status string, data map[string]any, httpStatus int) {
	uptime := h.now().Sub(h.startedAt)
	data = map[string]any{
		"uptime_hours": math.Round(uptime.Hours()*10) / 10,
	}

	if err := h.store.Ping(ctx); err != nil {
		data["error"] = err.Error()
		return "unhealthy", data, http.StatusServiceUnavailable
	}

	info, err := h.store.Info(ctx)
	if err != nil {
		data["error"] = err.Error()
		return "unhealthy", data, http.StatusServiceUnavailable
	}

	counts := make(map[string]int, len(info.RowCounts))
	for kind, n := range info.RowCounts {
		counts[kind.Table()] = n
	}
	data["database"] = info.Path
	data["database_size_bytes"] = info.SizeBytes
	data["rows"] = counts

	// Age-weight rows only come from the seed; without them the estimate
	// page and chart are empty.
	if info.RowCounts[entities.KindAgeWeightEstimate] == 0 {
		return "degraded", data, http.StatusServiceUnavailable
	}

	return "healthy", data, http.StatusOK
}
