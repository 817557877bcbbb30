package services_test

import (
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"

	"agrimarket/internal/auth"
	"agrimarket/internal/repos"
	"agrimarket/internal/services"
)

func analyticsFixture(t *testing.T) (*services.AnalyticsService, *sqlx.DB) {
	t.Helper()
	db := memdb(t)
	seedUser(t, db, "f1", "Ama", "FARMER")
	seedUser(t, db, "b1", "Kojo", "BUYER")
	seedUser(t, db, "b2", "Esi", "BUYER")
	svc := services.NewAnalyticsService(repos.NewAnalyticsRepo(db))
	return svc, db
}

func TestComputeDispatchesOnRole(t *testing.T) {
	svc, _ := analyticsFixture(t)

	if v, err := svc.Compute(auth.Identity{ID: "x", Email: "x@t", Role: "admin"}); err != nil {
		t.Fatal(err)
	} else if _, ok := v.(*services.AdminAnalytics); !ok {
		t.Fatalf("admin got %T", v)
	}
	if v, err := svc.Compute(auth.Identity{ID: "f1", Email: "f@t", Role: "farmer"}); err != nil {
		t.Fatal(err)
	} else if _, ok := v.(*services.FarmerAnalytics); !ok {
		t.Fatalf("farmer got %T", v)
	}
	if v, err := svc.Compute(auth.Identity{ID: "b1", Email: "b@t", Role: "buyer"}); err != nil {
		t.Fatal(err)
	} else if _, ok := v.(*services.BuyerAnalytics); !ok {
		t.Fatalf("buyer got %T", v)
	}
}

// Only delivered orders count toward revenue; pending and cancelled ones
// still count toward order totals.
func TestAdminAnalyticsTotals(t *testing.T) {
	svc, fx := analyticsFixture(t)
	seedProduct(t, fx, "p1", "f1", "Tomatoes", "vegetables", 4, "AVAILABLE", "2025-05-01 08:00:00")
	seedOrder(t, fx, "o1", "p1", "b1", 10, "DELIVERED", "2025-05-02 08:00:00")
	seedOrder(t, fx, "o2", "p1", "b1", 20, "DELIVERED", "2025-06-02 08:00:00")
	seedOrder(t, fx, "o3", "p1", "b2", 99, "CANCELLED", "2025-06-03 08:00:00")

	out, err := svc.Compute(auth.Identity{ID: "a", Email: "a@t", Role: "admin"})
	if err != nil {
		t.Fatal(err)
	}
	a := out.(*services.AdminAnalytics)
	if a.TotalRevenue != 30 {
		t.Fatalf("want delivered revenue 30, got %v", a.TotalRevenue)
	}
	if a.TotalOrders != 3 || a.TotalUsers != 3 || a.TotalProducts != 1 {
		t.Fatalf("counts wrong: %+v", a)
	}
	if len(a.SalesByMonth) != 2 {
		t.Fatalf("want 2 months, got %+v", a.SalesByMonth)
	}
	if a.SalesByMonth[0].Month != "2025-06" || a.SalesByMonth[0].Revenue != 20 {
		t.Fatalf("months not newest-first: %+v", a.SalesByMonth)
	}
	if a.SalesByMonth[1].Month != "2025-05" || a.SalesByMonth[1].Revenue != 10 {
		t.Fatalf("oldest month wrong: %+v", a.SalesByMonth)
	}
}

// 14 months of delivered sales still produce at most 12 rows, and months
// without revenue are simply absent rather than zero-filled.
func TestSalesByMonthWindow(t *testing.T) {
	svc, fx := analyticsFixture(t)
	seedProduct(t, fx, "p1", "f1", "Maize", "grains", 2, "AVAILABLE", "2024-01-01 08:00:00")
	months := []string{
		"2024-01", "2024-02", "2024-03", "2024-04", "2024-05", "2024-06",
		"2024-07", "2024-09", "2024-10", "2024-11", "2024-12", "2025-01",
		"2025-02", "2025-03", // 2024-08 intentionally missing
	}
	for i, m := range months {
		seedOrder(t, fx, fmt.Sprintf("o%02d", i), "p1", "b1", 5, "DELIVERED", m+"-15 08:00:00")
	}

	out, err := svc.Compute(auth.Identity{ID: "a", Email: "a@t", Role: "admin"})
	if err != nil {
		t.Fatal(err)
	}
	sales := out.(*services.AdminAnalytics).SalesByMonth
	if len(sales) != 12 {
		t.Fatalf("want 12 rows, got %d", len(sales))
	}
	if sales[0].Month != "2025-03" || sales[11].Month != "2024-03" {
		t.Fatalf("window wrong: %s .. %s", sales[0].Month, sales[11].Month)
	}
	for _, row := range sales {
		if row.Month == "2024-08" {
			t.Fatal("month without sales must be absent, not zero-filled")
		}
	}
}

func TestFarmerAnalytics(t *testing.T) {
	svc, fx := analyticsFixture(t)
	seedUser(t, fx, "f2", "Yaw", "FARMER")
	seedProduct(t, fx, "p1", "f1", "Tomatoes", "vegetables", 4, "AVAILABLE", "2025-05-01 08:00:00")
	seedProduct(t, fx, "p2", "f1", "Yams", "tubers", 9, "AVAILABLE", "2025-05-02 08:00:00")
	seedProduct(t, fx, "p3", "f1", "Okra", "vegetables", 3, "AVAILABLE", "2025-05-03 08:00:00")
	seedProduct(t, fx, "px", "f2", "Maize", "grains", 2, "AVAILABLE", "2025-05-04 08:00:00")

	seedOrder(t, fx, "o1", "p1", "b1", 40, "DELIVERED", "2025-05-05 08:00:00")
	seedOrder(t, fx, "o2", "p2", "b1", 90, "DELIVERED", "2025-05-06 08:00:00")
	seedOrder(t, fx, "o3", "p2", "b2", 15, "PENDING", "2025-05-07 08:00:00")
	seedOrder(t, fx, "ox", "px", "b1", 500, "DELIVERED", "2025-05-08 08:00:00")

	out, err := svc.Compute(auth.Identity{ID: "f1", Email: "f@t", Role: "farmer"})
	if err != nil {
		t.Fatal(err)
	}
	f := out.(*services.FarmerAnalytics)
	if f.TotalRevenue != 130 {
		t.Fatalf("other farmers' sales leaked in: revenue %v", f.TotalRevenue)
	}
	if f.TotalOrders != 3 || f.TotalProducts != 3 {
		t.Fatalf("counts wrong: %+v", f)
	}
	if len(f.TopProducts) != 3 {
		t.Fatalf("want all own products ranked, got %d", len(f.TopProducts))
	}
	if f.TopProducts[0].ID != "p2" || f.TopProducts[0].Revenue != 90 {
		t.Fatalf("ranking wrong: %+v", f.TopProducts[0])
	}
	if f.TopProducts[0].OrderCount != 2 {
		t.Fatalf("pending orders must count: %+v", f.TopProducts[0])
	}
	last := f.TopProducts[2]
	if last.ID != "p3" || last.Revenue != 0 {
		t.Fatalf("orderless product should rank last with 0 revenue: %+v", last)
	}
}

func TestBuyerAnalyticsEmpty(t *testing.T) {
	svc, fx := analyticsFixture(t)
	seedProduct(t, fx, "p1", "f1", "Tomatoes", "vegetables", 4, "AVAILABLE", "2025-05-01 08:00:00")
	seedOrder(t, fx, "o1", "p1", "b1", 12, "PENDING", "2025-05-02 08:00:00")

	out, err := svc.Compute(auth.Identity{ID: "b1", Email: "b@t", Role: "buyer"})
	if err != nil {
		t.Fatal(err)
	}
	b := out.(*services.BuyerAnalytics)
	if b.TotalSpent != 0 {
		t.Fatalf("pending order counted as spend: %v", b.TotalSpent)
	}
	if b.AverageOrderValue != 0 {
		t.Fatalf("no delivered orders must mean average exactly 0, got %v", b.AverageOrderValue)
	}
	if b.TotalOrders != 1 {
		t.Fatalf("want 1 order counted, got %d", b.TotalOrders)
	}
	if b.RecentOrders == nil || b.RecommendedProducts == nil {
		t.Fatal("empty lists must be non-nil")
	}
}

func TestBuyerAnalyticsTotals(t *testing.T) {
	svc, fx := analyticsFixture(t)
	seedProduct(t, fx, "p1", "f1", "Tomatoes", "vegetables", 4, "AVAILABLE", "2025-05-01 08:00:00")
	seedOrder(t, fx, "o1", "p1", "b1", 100, "DELIVERED", "2025-05-02 08:00:00")
	seedOrder(t, fx, "o2", "p1", "b1", 200, "DELIVERED", "2025-05-03 08:00:00")
	seedOrder(t, fx, "o3", "p1", "b1", 99, "PENDING", "2025-05-04 08:00:00")

	out, err := svc.Compute(auth.Identity{ID: "b1", Email: "b@t", Role: "buyer"})
	if err != nil {
		t.Fatal(err)
	}
	b := out.(*services.BuyerAnalytics)
	if b.TotalSpent != 300 || b.AverageOrderValue != 150 || b.TotalOrders != 3 {
		t.Fatalf("totals wrong: spent=%v avg=%v orders=%d", b.TotalSpent, b.AverageOrderValue, b.TotalOrders)
	}
	if len(b.RecentOrders) != 3 || b.RecentOrders[0].ID != "o3" {
		t.Fatalf("recent orders wrong: %+v", b.RecentOrders)
	}
	if b.RecentOrders[0].Buyer != nil {
		t.Fatal("buyer view must not nest a buyer summary")
	}
}

// Recommendations are available products the buyer never ordered.
func TestBuyerRecommendations(t *testing.T) {
	svc, fx := analyticsFixture(t)
	seedProduct(t, fx, "p1", "f1", "Tomatoes", "vegetables", 4, "AVAILABLE", "2025-05-01 08:00:00")
	seedProduct(t, fx, "p2", "f1", "Yams", "tubers", 9, "AVAILABLE", "2025-05-02 08:00:00")
	seedProduct(t, fx, "p3", "f1", "Okra", "vegetables", 3, "SOLD", "2025-05-03 08:00:00")
	seedImage(t, fx, "i1", "p2", "/media/f1/yam-cover.jpg")
	seedImage(t, fx, "i2", "p2", "/media/f1/yam-side.jpg")
	seedOrder(t, fx, "o1", "p1", "b1", 10, "DELIVERED", "2025-05-04 08:00:00")

	out, err := svc.Compute(auth.Identity{ID: "b1", Email: "b@t", Role: "buyer"})
	if err != nil {
		t.Fatal(err)
	}
	recs := out.(*services.BuyerAnalytics).RecommendedProducts
	if len(recs) != 1 {
		t.Fatalf("want only p2 recommended, got %+v", recs)
	}
	r := recs[0]
	if r.ID != "p2" || r.Farmer.Name != "Ama" {
		t.Fatalf("recommendation wrong: %+v", r)
	}
	if r.CoverURL == nil || *r.CoverURL != "/media/f1/yam-cover.jpg" {
		t.Fatalf("cover image must be the first uploaded: %+v", r.CoverURL)
	}
}

// One failing sub-query fails the whole dashboard; there is no partial view.
func TestAnalyticsJoinAll(t *testing.T) {
	svc, fx := analyticsFixture(t)
	if _, err := fx.Exec(`DROP TABLE orders`); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Compute(auth.Identity{ID: "a", Email: "a@t", Role: "admin"}); err == nil {
		t.Fatal("expected the dashboard to fail as a whole")
	}
}
