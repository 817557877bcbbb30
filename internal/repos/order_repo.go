package repos

import (
	"github.com/jmoiron/sqlx"

	"agrimarket/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

type ProductSummary struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Unit   string        `json:"unit"`
	Price  float64       `json:"price"`
	Farmer FarmerSummary `json:"farmer"`
}

type OrderView struct {
	ID         string         `json:"id"`
	Quantity   float64        `json:"quantity"`
	TotalPrice float64        `json:"totalPrice"`
	Status     string         `json:"status"`
	CreatedAt  string         `json:"createdAt"`
	Product    ProductSummary `json:"product"`
	Buyer      *BuyerSummary  `json:"buyer,omitempty"`
}

type orderViewRow struct {
	ID         string  `db:"id"`
	Quantity   float64 `db:"quantity"`
	TotalPrice float64 `db:"total_price"`
	Status     string  `db:"status"`
	CreatedAt  string  `db:"created_at"`
	ProductID  string  `db:"p_id"`
	Title      string  `db:"p_title"`
	Unit       string  `db:"p_unit"`
	Price      float64 `db:"p_price"`
	FarmerID   string  `db:"f_id"`
	FarmerName string  `db:"f_name"`
	BuyerID    string  `db:"b_id"`
	BuyerName  string  `db:"b_name"`
}

const orderViewSelect = `
  SELECT o.id, o.quantity, o.total_price, o.status, o.created_at,
         p.id AS p_id, p.title AS p_title, p.unit AS p_unit, p.price AS p_price,
         f.id AS f_id, f.name AS f_name,
         b.id AS b_id, b.name AS b_name
  FROM orders o
  JOIN products p ON p.id = o.product_id
  JOIN users f ON f.id = p.farmer_id
  JOIN users b ON b.id = o.buyer_id`

func (row *orderViewRow) view(withBuyer bool) OrderView {
	v := OrderView{
		ID:         row.ID,
		Quantity:   row.Quantity,
		TotalPrice: row.TotalPrice,
		Status:     domain.WireStatus(row.Status),
		CreatedAt:  row.CreatedAt,
		Product: ProductSummary{
			ID:     row.ProductID,
			Title:  row.Title,
			Unit:   row.Unit,
			Price:  row.Price,
			Farmer: FarmerSummary{ID: row.FarmerID, Name: row.FarmerName},
		},
	}
	if withBuyer {
		v.Buyer = &BuyerSummary{ID: row.BuyerID, Name: row.BuyerName}
	}
	return v
}

// ListByBuyer returns one buyer's own orders, newest first, each with a
// product and farmer summary.
func (r *OrderRepo) ListByBuyer(buyerID string) ([]OrderView, error) {
	var rows []orderViewRow
	err := r.db.Select(&rows, orderViewSelect+`
	  WHERE o.buyer_id = ?
	  ORDER BY datetime(o.created_at) DESC, o.rowid DESC`, buyerID)
	if err != nil {
		return nil, err
	}
	out := make([]OrderView, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].view(false))
	}
	return out, nil
}

// ListAllAdmin returns every order with nested product→farmer and buyer
// summaries, newest first.
func (r *OrderRepo) ListAllAdmin() ([]OrderView, error) {
	var rows []orderViewRow
	err := r.db.Select(&rows, orderViewSelect+`
	  ORDER BY datetime(o.created_at) DESC, o.rowid DESC`)
	if err != nil {
		return nil, err
	}
	out := make([]OrderView, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].view(true))
	}
	return out, nil
}
