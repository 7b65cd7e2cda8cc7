package models

import "time"

// NotificationType classifies the severity of a notification.
type NotificationType string

const (
	NotificationInfo    NotificationType = "INFO"
	NotificationSuccess NotificationType = "SUCCESS"
	NotificationWarning NotificationType = "WARNING"
	NotificationError   NotificationType = "ERROR"
)

// Notification is a persisted message addressed to a single user.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	OwnerID   string           `db:"owner_id" json:"owner_id"`
	Title     string           `db:"title" json:"title"`
	Content   string           `db:"content" json:"content"`
	Type      NotificationType `db:"type" json:"type"`
	Important bool             `db:"important" json:"important"`
	Archived  bool             `db:"archived" json:"archived"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// NotificationFilter narrows notification listings.
type NotificationFilter struct {
	OwnerID         string
	IncludeArchived bool
	Limit           int
}
