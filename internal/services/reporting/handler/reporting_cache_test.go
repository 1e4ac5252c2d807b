package handler

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"farmagro-system/internal/database/models"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestDashboardStatsServedFromCache(t *testing.T) {
	db := newTestDB(t)
	mr, client := newTestRedis(t)
	s := NewReportingHandler(db, client)

	stats, err := s.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if stats.TotalProducts != 0 {
		t.Fatalf("TotalProducts = %d, want 0", stats.TotalProducts)
	}
	if !mr.Exists(DASHBOARD_CACHE_KEY) {
		t.Fatal("dashboard stats were not cached")
	}

	// A direct insert bypasses the write paths that drop the cache, so the
	// snapshot should still come back unchanged within the TTL.
	product := models.Product{
		Name:         "Urea",
		Type:         models.ProductTypeFertilizer,
		PricePerUnit: "266.50",
		Unit:         "bag",
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}

	stats, err = s.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("DashboardStats cached: %v", err)
	}
	if stats.TotalProducts != 0 {
		t.Errorf("TotalProducts = %d from cache, want 0", stats.TotalProducts)
	}

	mr.Del(DASHBOARD_CACHE_KEY)

	stats, err = s.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("DashboardStats recomputed: %v", err)
	}
	if stats.TotalProducts != 1 {
		t.Errorf("TotalProducts = %d after recompute, want 1", stats.TotalProducts)
	}
}
