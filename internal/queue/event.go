package queue

// ActivityLoggedEvent mirrors an activity_log row so downstream consumers
// (notification workers, audit sinks) can react without polling the table.
type ActivityLoggedEvent struct {
	UserID      string `json:"user_id"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Metadata    string `json:"metadata,omitempty"`
	ProductID   string `json:"product_id,omitempty"`
	OrderID     string `json:"order_id,omitempty"`
	OccurredAt  string `json:"occurred_at"`
}

const ActivityQueue = "activity.logged"
