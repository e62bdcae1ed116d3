package domain

import "time"

// Notification is an in-app message for the current user.
type Notification struct {
	ID        int64     `json:"id"             yaml:"id"      validate:"required"`
	Message   string    `json:"message"        yaml:"message"`
	Link      string    `json:"link,omitempty" yaml:"link,omitempty"`
	Read      bool      `json:"read"           yaml:"read"`
	CreatedAt time.Time `json:"created_at"     yaml:"created_at"`
}

// Inbox is the latest polled view of a user's notifications.
type Inbox struct {
	Items     []Notification `json:"items"      yaml:"items"`
	Unread    int            `json:"unread"     yaml:"unread"`
	FetchedAt time.Time      `json:"fetched_at" yaml:"fetched_at"`
}

// NewInbox builds an Inbox and counts unread items.
func NewInbox(items []Notification, at time.Time) Inbox {
	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
	}
	return Inbox{Items: items, Unread: unread, FetchedAt: at}
}
