package services

import (
	"log"
	"time"

	"agrimarket/internal/domain"
	"agrimarket/internal/queue"
	"agrimarket/internal/repos"
)

const (
	ActivityUserLogin      = "USER_LOGIN"
	ActivityUserRegistered = "USER_REGISTERED"
	ActivityProductCreated = "PRODUCT_CREATED"
	ActivityRoleChanged    = "USER_ROLE_CHANGED"
	ActivityStatusChanged  = "PRODUCT_STATUS_CHANGED"
)

// ActivityRecorder appends audit entries and optionally mirrors them onto
// the event queue. Recording is best-effort on both legs: an audit failure
// is logged and swallowed so it can never fail the request it describes.
type ActivityRecorder struct {
	Repo      *repos.ActivityRepo
	Publisher *queue.Publisher // nil when AMQP is not configured
}

func (a *ActivityRecorder) Record(e domain.ActivityEntry) {
	if a == nil || a.Repo == nil {
		return
	}
	if err := a.Repo.Append(e); err != nil {
		log.Printf("activity: append failed: %v", err)
	}
	if a.Publisher != nil {
		_ = a.Publisher.PublishActivity(queue.ActivityLoggedEvent{
			UserID:      e.UserID,
			Type:        e.Type,
			Description: e.Description,
			Metadata:    e.Metadata,
			ProductID:   e.ProductID,
			OrderID:     e.OrderID,
			OccurredAt:  time.Now().UTC().Format(time.RFC3339),
		})
	}
}
