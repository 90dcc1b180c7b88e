package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType enumerates the events a user can be notified about.
type NotificationType string

const (
	NotificationNewFollower             NotificationType = "new_follower"
	NotificationNewLike                 NotificationType = "new_like"
	NotificationNewComment              NotificationType = "new_comment"
	NotificationNewAppointmentRequest   NotificationType = "new_appointment_request"
	NotificationAppointmentStatusUpdate NotificationType = "appointment_status_update"
	NotificationVetLinkRequest          NotificationType = "vet_link_request"
)

// Notification is an actor→recipient event record. Rows are only ever
// created by the notification emitter, after the primary mutation has
// committed; a failed insert never rolls anything back.
type Notification struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	RecipientID string `gorm:"not null;index:idx_notifications_recipient_created,priority:1" json:"recipient_id"`
	ActorID     string `gorm:"not null" json:"actor_id"`

	Type       NotificationType `gorm:"not null" json:"type"`
	EntityID   string           `json:"entity_id"`
	EntityType string           `json:"entity_type"`

	Read bool `gorm:"default:false;index" json:"read"`

	CreatedAt time.Time `gorm:"index:idx_notifications_recipient_created,priority:2" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}
