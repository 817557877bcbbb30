package services

import (
	"golang.org/x/sync/errgroup"

	"agrimarket/internal/auth"
	"agrimarket/internal/domain"
	"agrimarket/internal/repos"
)

// AnalyticsService computes the role dashboards. Every branch fans its
// independent sub-queries out through an errgroup and joins on all of them:
// one failing query fails the whole view, never a partial dashboard.
type AnalyticsService struct {
	Stats *repos.AnalyticsRepo
}

func NewAnalyticsService(stats *repos.AnalyticsRepo) *AnalyticsService {
	return &AnalyticsService{Stats: stats}
}

type AdminAnalytics struct {
	TotalRevenue  float64              `json:"totalRevenue"`
	TotalOrders   int                  `json:"totalOrders"`
	TotalUsers    int                  `json:"totalUsers"`
	TotalProducts int                  `json:"totalProducts"`
	SalesByMonth  []repos.MonthRevenue `json:"salesByMonth"`
}

type FarmerAnalytics struct {
	TotalRevenue  float64            `json:"totalRevenue"`
	TotalOrders   int                `json:"totalOrders"`
	TotalProducts int                `json:"totalProducts"`
	TopProducts   []repos.TopProduct `json:"topProducts"`
}

type BuyerAnalytics struct {
	TotalSpent          float64                    `json:"totalSpent"`
	TotalOrders         int                        `json:"totalOrders"`
	AverageOrderValue   float64                    `json:"averageOrderValue"`
	RecentOrders        []repos.OrderView          `json:"recentOrders"`
	RecommendedProducts []repos.RecommendedProduct `json:"recommendedProducts"`
}

// Compute dispatches on the caller's role. Any identity that is neither
// admin nor farmer gets the buyer view, mirroring how accounts are created.
func (s *AnalyticsService) Compute(ident auth.Identity) (any, error) {
	switch {
	case ident.Is(domain.RoleAdmin):
		return s.admin()
	case ident.Is(domain.RoleFarmer):
		return s.farmer(ident.ID)
	default:
		return s.buyer(ident.ID)
	}
}

func (s *AnalyticsService) admin() (*AdminAnalytics, error) {
	var out AdminAnalytics
	var g errgroup.Group
	g.Go(func() (err error) { out.TotalRevenue, err = s.Stats.DeliveredRevenue(); return })
	g.Go(func() (err error) { out.TotalOrders, err = s.Stats.OrderCount(); return })
	g.Go(func() (err error) { out.TotalUsers, err = s.Stats.UserCount(); return })
	g.Go(func() (err error) { out.TotalProducts, err = s.Stats.ProductCount(); return })
	g.Go(func() (err error) { out.SalesByMonth, err = s.Stats.SalesByMonth(); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AnalyticsService) farmer(farmerID string) (*FarmerAnalytics, error) {
	var out FarmerAnalytics
	var g errgroup.Group
	g.Go(func() (err error) { out.TotalRevenue, err = s.Stats.FarmerDeliveredRevenue(farmerID); return })
	g.Go(func() (err error) { out.TotalOrders, err = s.Stats.FarmerOrderCount(farmerID); return })
	g.Go(func() (err error) { out.TotalProducts, err = s.Stats.FarmerProductCount(farmerID); return })
	g.Go(func() (err error) { out.TopProducts, err = s.Stats.FarmerTopProducts(farmerID, 5); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AnalyticsService) buyer(buyerID string) (*BuyerAnalytics, error) {
	var out BuyerAnalytics
	var g errgroup.Group
	g.Go(func() (err error) { out.TotalSpent, err = s.Stats.BuyerDeliveredSpend(buyerID); return })
	g.Go(func() (err error) { out.TotalOrders, err = s.Stats.BuyerOrderCount(buyerID); return })
	g.Go(func() (err error) { out.AverageOrderValue, err = s.Stats.BuyerAverageOrderValue(buyerID); return })
	g.Go(func() (err error) { out.RecentOrders, err = s.Stats.BuyerRecentOrders(buyerID, 5); return })
	g.Go(func() (err error) { out.RecommendedProducts, err = s.Stats.RecommendedProducts(buyerID, 5); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if out.RecentOrders == nil {
		out.RecentOrders = []repos.OrderView{}
	}
	if out.RecommendedProducts == nil {
		out.RecommendedProducts = []repos.RecommendedProduct{}
	}
	return &out, nil
}
