package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/opencivic/civicpulse/internal/domain"
)

// ViewCache keeps short-lived public report snapshots in memcache.
// It is strictly a hint: misses and failures fall through to postgres,
// and every mutation path (vote, status, override) invalidates the
// report's key before returning so admin mutations are read-your-writes.
type ViewCache struct {
	mc         *memcache.Client
	ttlSeconds int32
}

// NewViewCache returns a disabled cache when mc is nil, which keeps
// deployments without memcached working unchanged.
func NewViewCache(mc *memcache.Client, ttlSeconds int32) *ViewCache {
	if ttlSeconds <= 0 {
		ttlSeconds = 30
	}
	return &ViewCache{mc: mc, ttlSeconds: ttlSeconds}
}

func reportKey(id string) string {
	return "civicpulse:report:" + id
}

func (c *ViewCache) GetReport(ctx context.Context, id string) (domain.Report, bool) {
	if c.mc == nil {
		return domain.Report{}, false
	}

	item, err := c.mc.Get(reportKey(id))
	if err != nil {
		return domain.Report{}, false
	}

	var report domain.Report
	if err := json.Unmarshal(item.Value, &report); err != nil {
		return domain.Report{}, false
	}

	return report, true
}

func (c *ViewCache) SetReport(ctx context.Context, report domain.Report) {
	if c.mc == nil {
		return
	}

	value, err := json.Marshal(report)
	if err != nil {
		return
	}

	err = c.mc.Set(&memcache.Item{
		Key:        reportKey(report.ID),
		Value:      value,
		Expiration: c.ttlSeconds,
	})
	if err != nil {
		slog.DebugContext(
			ctx, "View cache set failed",
			slog.String("error", err.Error()),
			slog.String("module", "viewcache"),
		)
	}
}

func (c *ViewCache) InvalidateReport(ctx context.Context, id string) {
	if c.mc == nil {
		return
	}

	err := c.mc.Delete(reportKey(id))
	if err != nil && err != memcache.ErrCacheMiss {
		slog.WarnContext(
			ctx, "View cache invalidation failed",
			slog.String("error", err.Error()),
			slog.String("module", "viewcache"),
		)
	}
}
