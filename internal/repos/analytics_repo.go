package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"agrimarket/internal/domain"
)

// AnalyticsRepo holds the aggregation queries behind the role dashboards.
// Each method is a single independent query so the service layer can fan
// them out concurrently.
type AnalyticsRepo struct{ db *sqlx.DB }

func NewAnalyticsRepo(db *sqlx.DB) *AnalyticsRepo { return &AnalyticsRepo{db: db} }

type MonthRevenue struct {
	Month   string  `db:"month" json:"month"`
	Revenue float64 `db:"revenue" json:"revenue"`
}

type TopProduct struct {
	ID         string  `db:"id" json:"id"`
	Title      string  `db:"title" json:"title"`
	Unit       string  `db:"unit" json:"unit"`
	Price      float64 `db:"price" json:"price"`
	Status     string  `db:"status" json:"status"`
	Revenue    float64 `db:"revenue" json:"revenue"`
	OrderCount int     `db:"order_count" json:"orderCount"`
}

// RecommendedProduct is a market product a buyer has never ordered, shown
// with its cover image.
type RecommendedProduct struct {
	ID        string        `db:"id" json:"id"`
	Title     string        `db:"title" json:"title"`
	Category  string        `db:"category" json:"category"`
	Price     float64       `db:"price" json:"price"`
	Unit      string        `db:"unit" json:"unit"`
	CreatedAt string        `db:"created_at" json:"createdAt"`
	Farmer    FarmerSummary `json:"farmer"`
	CoverURL  *string       `db:"cover_url" json:"coverImage"`
}

// ---------- marketplace-wide (admin) ----------

func (r *AnalyticsRepo) DeliveredRevenue() (float64, error) {
	var v float64
	err := r.db.Get(&v, `SELECT COALESCE(SUM(total_price),0) FROM orders WHERE status='DELIVERED'`)
	return v, err
}

func (r *AnalyticsRepo) OrderCount() (int, error)   { return r.count(`SELECT COUNT(*) FROM orders`) }
func (r *AnalyticsRepo) UserCount() (int, error)    { return r.count(`SELECT COUNT(*) FROM users`) }
func (r *AnalyticsRepo) ProductCount() (int, error) { return r.count(`SELECT COUNT(*) FROM products`) }

// SalesByMonth returns delivered revenue grouped by calendar month,
// most-recent-first, at most 12 rows. Months without delivered revenue are
// absent; consumers must not assume contiguous months.
func (r *AnalyticsRepo) SalesByMonth() ([]MonthRevenue, error) {
	var out []MonthRevenue
	err := r.db.Select(&out, `
	  SELECT strftime('%Y-%m', created_at) AS month, SUM(total_price) AS revenue
	  FROM orders
	  WHERE status='DELIVERED'
	  GROUP BY month
	  ORDER BY month DESC
	  LIMIT 12`)
	if out == nil {
		out = []MonthRevenue{}
	}
	return out, err
}

// ---------- per-farmer ----------

func (r *AnalyticsRepo) FarmerDeliveredRevenue(farmerID string) (float64, error) {
	var v float64
	err := r.db.Get(&v, `
	  SELECT COALESCE(SUM(o.total_price),0)
	  FROM orders o JOIN products p ON p.id = o.product_id
	  WHERE p.farmer_id = ? AND o.status='DELIVERED'`, farmerID)
	return v, err
}

func (r *AnalyticsRepo) FarmerOrderCount(farmerID string) (int, error) {
	return r.count(`
	  SELECT COUNT(*) FROM orders o
	  JOIN products p ON p.id = o.product_id
	  WHERE p.farmer_id = ?`, farmerID)
}

func (r *AnalyticsRepo) FarmerProductCount(farmerID string) (int, error) {
	return r.count(`SELECT COUNT(*) FROM products WHERE farmer_id = ?`, farmerID)
}

// FarmerTopProducts ranks a farmer's products by delivered revenue.
func (r *AnalyticsRepo) FarmerTopProducts(farmerID string, limit int) ([]TopProduct, error) {
	var out []TopProduct
	err := r.db.Select(&out, `
	  SELECT p.id, p.title, p.unit, p.price, p.status,
	         COALESCE(SUM(CASE WHEN o.status='DELIVERED' THEN o.total_price END),0) AS revenue,
	         COUNT(o.id) AS order_count
	  FROM products p
	  LEFT JOIN orders o ON o.product_id = p.id
	  WHERE p.farmer_id = ?
	  GROUP BY p.id
	  ORDER BY revenue DESC, datetime(p.created_at) DESC
	  LIMIT ?`, farmerID, limit)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Status = domain.WireStatus(out[i].Status)
	}
	if out == nil {
		out = []TopProduct{}
	}
	return out, nil
}

// ---------- per-buyer ----------

func (r *AnalyticsRepo) BuyerDeliveredSpend(buyerID string) (float64, error) {
	var v float64
	err := r.db.Get(&v, `
	  SELECT COALESCE(SUM(total_price),0) FROM orders
	  WHERE buyer_id = ? AND status='DELIVERED'`, buyerID)
	return v, err
}

func (r *AnalyticsRepo) BuyerOrderCount(buyerID string) (int, error) {
	return r.count(`SELECT COUNT(*) FROM orders WHERE buyer_id = ?`, buyerID)
}

// BuyerAverageOrderValue is the mean delivered total, exactly 0 when the
// buyer has no delivered orders.
func (r *AnalyticsRepo) BuyerAverageOrderValue(buyerID string) (float64, error) {
	var v sql.NullFloat64
	err := r.db.Get(&v, `
	  SELECT AVG(total_price) FROM orders
	  WHERE buyer_id = ? AND status='DELIVERED'`, buyerID)
	if err != nil {
		return 0, err
	}
	if !v.Valid {
		return 0, nil
	}
	return v.Float64, nil
}

func (r *AnalyticsRepo) BuyerRecentOrders(buyerID string, limit int) ([]OrderView, error) {
	var rows []orderViewRow
	err := r.db.Select(&rows, orderViewSelect+`
	  WHERE o.buyer_id = ?
	  ORDER BY datetime(o.created_at) DESC, o.rowid DESC
	  LIMIT ?`, buyerID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]OrderView, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].view(false))
	}
	return out, nil
}

// RecommendedProducts picks the newest available products the buyer has
// never ordered (anti-join on buyer_id), with farmer summary and cover image.
func (r *AnalyticsRepo) RecommendedProducts(buyerID string, limit int) ([]RecommendedProduct, error) {
	type recRow struct {
		RecommendedProduct
		FarmerID   string `db:"farmer_id"`
		FarmerName string `db:"farmer_name"`
	}
	var rows []recRow
	err := r.db.Select(&rows, `
	  SELECT p.id, p.title, p.category, p.price, p.unit, p.created_at,
	         p.farmer_id, f.name AS farmer_name,
	         (SELECT i.url FROM product_images i WHERE i.product_id = p.id
	          ORDER BY datetime(i.created_at) ASC, i.rowid ASC LIMIT 1) AS cover_url
	  FROM products p
	  JOIN users f ON f.id = p.farmer_id
	  WHERE p.status='AVAILABLE'
	    AND NOT EXISTS (SELECT 1 FROM orders o WHERE o.product_id = p.id AND o.buyer_id = ?)
	  ORDER BY datetime(p.created_at) DESC, p.rowid DESC
	  LIMIT ?`, buyerID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]RecommendedProduct, 0, len(rows))
	for _, row := range rows {
		rec := row.RecommendedProduct
		rec.Farmer = FarmerSummary{ID: row.FarmerID, Name: row.FarmerName}
		out = append(out, rec)
	}
	return out, nil
}

func (r *AnalyticsRepo) count(query string, args ...any) (int, error) {
	var n int
	err := r.db.Get(&n, query, args...)
	return n, err
}
