package domain

type Product struct {
	ID           string   `db:"id"`
	FarmerID     string   `db:"farmer_id"`
	Title        string   `db:"title"`
	Description  *string  `db:"description"`
	Category     string   `db:"category"`
	Price        float64  `db:"price"`
	Quantity     float64  `db:"quantity"`
	Unit         string   `db:"unit"`
	MinimumOrder *float64 `db:"minimum_order"`
	Status       string   `db:"status"` // AVAILABLE | SOLD | RESERVED
	CreatedAt    string   `db:"created_at"`
	UpdatedAt    string   `db:"updated_at"`
}

type ProductImage struct {
	ID        string `db:"id" json:"id"`
	ProductID string `db:"product_id" json:"-"`
	URL       string `db:"url" json:"url"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

type Order struct {
	ID         string  `db:"id"`
	ProductID  string  `db:"product_id"`
	BuyerID    string  `db:"buyer_id"`
	Quantity   float64 `db:"quantity"`
	TotalPrice float64 `db:"total_price"`
	Status     string  `db:"status"` // PENDING | CONFIRMED | SHIPPED | DELIVERED | CANCELLED
	CreatedAt  string  `db:"created_at"`
}

// ActivityEntry is an append-only audit record. The gateway only ever
// writes these; nothing in the API reads them back.
type ActivityEntry struct {
	UserID      string `json:"userId"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Metadata    string `json:"metadata,omitempty"`
	ProductID   string `json:"productId,omitempty"`
	OrderID     string `json:"orderId,omitempty"`
}
