package repos

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"agrimarket/internal/domain"
)

type ActivityRepo struct{ db *sqlx.DB }

func NewActivityRepo(db *sqlx.DB) *ActivityRepo { return &ActivityRepo{db: db} }

// Append writes one audit entry. Optional references are stored as NULL
// when empty so the row never carries dangling empty-string keys.
func (r *ActivityRepo) Append(e domain.ActivityEntry) error {
	_, err := r.db.Exec(`
	  INSERT INTO activity_log(id, user_id, type, description, metadata, product_id, order_id)
	  VALUES(?,?,?,?,NULLIF(?,''),NULLIF(?,''),NULLIF(?,''))`,
		uuid.NewString(), e.UserID, e.Type, e.Description, e.Metadata, e.ProductID, e.OrderID)
	return err
}
