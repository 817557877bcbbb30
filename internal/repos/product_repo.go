package repos

import (
	"github.com/jmoiron/sqlx"

	"agrimarket/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// ---------- Shaped views (wire form: lowercase enums, JSON field names) ----------

type FarmerSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type BuyerSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// OrderPeek is the slice of an order exposed inside product payloads.
type OrderPeek struct {
	ID         string       `db:"id" json:"id"`
	Status     string       `db:"status" json:"status"`
	TotalPrice float64      `db:"total_price" json:"totalPrice"`
	Quantity   float64      `db:"quantity" json:"quantity,omitempty"`
	CreatedAt  string       `db:"created_at" json:"createdAt"`
	Buyer      BuyerSummary `json:"buyer"`
}

type ProductView struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Description  *string               `json:"description"`
	Category     string                `json:"category"`
	Price        float64               `json:"price"`
	Quantity     float64               `json:"quantity"`
	Unit         string                `json:"unit"`
	MinimumOrder *float64              `json:"minimumOrder"`
	Status       string                `json:"status"`
	CreatedAt    string                `json:"createdAt"`
	Farmer       FarmerSummary         `json:"farmer"`
	Images       []domain.ProductImage `json:"images"`
	Orders       []OrderPeek           `json:"orders,omitempty"`
}

// Filters shape a listing query. Price bounds are inclusive and applied
// only when present (lenient parsing happens upstream in validate).
type Filters struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
}

type productRow struct {
	domain.Product
	FarmerName  string `db:"farmer_name"`
	FarmerEmail string `db:"farmer_email"`
	FarmerPhone string `db:"farmer_phone"`
}

func (row *productRow) view() ProductView {
	return ProductView{
		ID:           row.ID,
		Title:        row.Title,
		Description:  row.Description,
		Category:     row.Category,
		Price:        row.Price,
		Quantity:     row.Quantity,
		Unit:         row.Unit,
		MinimumOrder: row.MinimumOrder,
		Status:       domain.WireStatus(row.Status),
		CreatedAt:    row.CreatedAt,
		Farmer:       FarmerSummary{ID: row.FarmerID, Name: row.FarmerName, Email: row.FarmerEmail},
		Images:       []domain.ProductImage{},
	}
}

const productSelect = `
  SELECT p.id, p.farmer_id, p.title, p.description, p.category, p.price, p.quantity,
         p.unit, p.minimum_order, p.status, p.created_at, COALESCE(p.updated_at,'') AS updated_at,
         f.name AS farmer_name, f.email AS farmer_email, f.phone AS farmer_phone
  FROM products p
  JOIN users f ON f.id = p.farmer_id`

// ListMarket returns available products, newest first, with farmer summary
// and images. No order enrichment: buyers must not see each other's history.
func (r *ProductRepo) ListMarket(f Filters) ([]ProductView, error) {
	where := `p.status = 'AVAILABLE'`
	args := []any{}
	where, args = applyFilters(where, args, f)

	var rows []productRow
	err := r.db.Select(&rows, productSelect+`
	  WHERE `+where+`
	  ORDER BY datetime(p.created_at) DESC, p.rowid DESC`, args...)
	if err != nil {
		return nil, err
	}
	views := viewsOf(rows)
	if err := r.attachImages(views); err != nil {
		return nil, err
	}
	return views, nil
}

// ListByFarmer returns one farmer's products regardless of status, each
// enriched with its 5 most recent orders.
func (r *ProductRepo) ListByFarmer(farmerID string, f Filters) ([]ProductView, error) {
	where := `p.farmer_id = ?`
	args := []any{farmerID}
	where, args = applyFilters(where, args, f)

	var rows []productRow
	err := r.db.Select(&rows, productSelect+`
	  WHERE `+where+`
	  ORDER BY datetime(p.created_at) DESC, p.rowid DESC`, args...)
	if err != nil {
		return nil, err
	}
	views := viewsOf(rows)
	if err := r.attachImages(views); err != nil {
		return nil, err
	}
	if err := r.attachRecentOrders(views, 5); err != nil {
		return nil, err
	}
	return views, nil
}

// GetDetail returns one product with full farmer contact info and images.
// Order enrichment is a separate call so the handler can degrade gracefully.
func (r *ProductRepo) GetDetail(id string) (*ProductView, error) {
	var row productRow
	if err := r.db.Get(&row, productSelect+` WHERE p.id = ?`, id); err != nil {
		return nil, err
	}
	v := row.view()
	v.Farmer.Phone = row.FarmerPhone
	views := []ProductView{v}
	if err := r.attachImages(views); err != nil {
		return nil, err
	}
	return &views[0], nil
}

// RecentOrders lists the newest orders for a product with buyer contact.
func (r *ProductRepo) RecentOrders(productID string, limit int) ([]OrderPeek, error) {
	type peekRow struct {
		OrderPeek
		BuyerID    string `db:"buyer_id"`
		BuyerName  string `db:"buyer_name"`
		BuyerEmail string `db:"buyer_email"`
	}
	var rows []peekRow
	err := r.db.Select(&rows, `
	  SELECT o.id, o.status, o.total_price, o.quantity, o.created_at,
	         b.id AS buyer_id, b.name AS buyer_name, b.email AS buyer_email
	  FROM orders o
	  JOIN users b ON b.id = o.buyer_id
	  WHERE o.product_id = ?
	  ORDER BY datetime(o.created_at) DESC, o.rowid DESC
	  LIMIT ?`, productID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]OrderPeek, 0, len(rows))
	for _, row := range rows {
		p := row.OrderPeek
		p.Status = domain.WireStatus(p.Status)
		p.Buyer = BuyerSummary{ID: row.BuyerID, Name: row.BuyerName, Email: row.BuyerEmail}
		out = append(out, p)
	}
	return out, nil
}

// Create inserts the product row and its images in one transaction.
func (r *ProductRepo) Create(p domain.Product, imageIDs, imageURLs []string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  INSERT INTO products(id, farmer_id, title, description, category, price, quantity, unit, minimum_order, status)
	  VALUES(?,?,?,?,?,?,?,?,?,?)`,
		p.ID, p.FarmerID, p.Title, p.Description, p.Category, p.Price, p.Quantity, p.Unit, p.MinimumOrder, p.Status); err != nil {
		return err
	}
	for i, url := range imageURLs {
		if _, err := tx.Exec(`INSERT INTO product_images(id, product_id, url) VALUES(?,?,?)`,
			imageIDs[i], p.ID, url); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *ProductRepo) UpdateStatus(id, status string) (*ProductView, error) {
	res, err := r.db.Exec(`UPDATE products SET status=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, status, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, errNotFound(id)
	}
	return r.GetDetail(id)
}

// ListAllAdmin returns every product regardless of owner or status.
func (r *ProductRepo) ListAllAdmin() ([]ProductView, error) {
	var rows []productRow
	err := r.db.Select(&rows, productSelect+`
	  ORDER BY datetime(p.created_at) DESC, p.rowid DESC`)
	if err != nil {
		return nil, err
	}
	views := viewsOf(rows)
	// admin listing carries farmer id/name only
	for i := range views {
		views[i].Farmer.Email = ""
	}
	return views, nil
}

// ---------- helpers ----------

func viewsOf(rows []productRow) []ProductView {
	out := make([]ProductView, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].view())
	}
	return out
}

func applyFilters(where string, args []any, f Filters) (string, []any) {
	if f.Category != "" {
		where += ` AND p.category = ?`
		args = append(args, f.Category)
	}
	if f.MinPrice != nil {
		where += ` AND p.price >= ?`
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		where += ` AND p.price <= ?`
		args = append(args, *f.MaxPrice)
	}
	return where, args
}

func (r *ProductRepo) attachImages(views []ProductView) error {
	if len(views) == 0 {
		return nil
	}
	ids := make([]string, 0, len(views))
	idx := make(map[string]int, len(views))
	for i := range views {
		ids = append(ids, views[i].ID)
		idx[views[i].ID] = i
	}
	query, args, err := sqlx.In(`
	  SELECT id, product_id, url, created_at FROM product_images
	  WHERE product_id IN (?)
	  ORDER BY datetime(created_at) ASC, rowid ASC`, ids)
	if err != nil {
		return err
	}
	var imgs []domain.ProductImage
	if err := r.db.Select(&imgs, query, args...); err != nil {
		return err
	}
	for _, img := range imgs {
		i := idx[img.ProductID]
		views[i].Images = append(views[i].Images, img)
	}
	return nil
}

// attachRecentOrders fills Orders with up to perProduct newest orders each.
func (r *ProductRepo) attachRecentOrders(views []ProductView, perProduct int) error {
	if len(views) == 0 {
		return nil
	}
	ids := make([]string, 0, len(views))
	idx := make(map[string]int, len(views))
	for i := range views {
		ids = append(ids, views[i].ID)
		idx[views[i].ID] = i
		views[i].Orders = []OrderPeek{}
	}
	type peekRow struct {
		ProductID  string  `db:"product_id"`
		ID         string  `db:"id"`
		Status     string  `db:"status"`
		TotalPrice float64 `db:"total_price"`
		CreatedAt  string  `db:"created_at"`
		BuyerID    string  `db:"buyer_id"`
		BuyerName  string  `db:"buyer_name"`
		BuyerEmail string  `db:"buyer_email"`
	}
	query, args, err := sqlx.In(`
	  SELECT o.product_id, o.id, o.status, o.total_price, o.created_at,
	         b.id AS buyer_id, b.name AS buyer_name, b.email AS buyer_email
	  FROM orders o
	  JOIN users b ON b.id = o.buyer_id
	  WHERE o.product_id IN (?)
	  ORDER BY datetime(o.created_at) DESC, o.rowid DESC`, ids)
	if err != nil {
		return err
	}
	var rows []peekRow
	if err := r.db.Select(&rows, query, args...); err != nil {
		return err
	}
	for _, row := range rows {
		i := idx[row.ProductID]
		if len(views[i].Orders) >= perProduct {
			continue
		}
		views[i].Orders = append(views[i].Orders, OrderPeek{
			ID:         row.ID,
			Status:     domain.WireStatus(row.Status),
			TotalPrice: row.TotalPrice,
			CreatedAt:  row.CreatedAt,
			Buyer:      BuyerSummary{ID: row.BuyerID, Name: row.BuyerName, Email: row.BuyerEmail},
		})
	}
	return nil
}
