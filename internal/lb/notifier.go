package lb

import "context"

// Notification is a push message payload.
type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

// Delivery is the provider's acknowledgement of a dispatched notification.
type Delivery struct {
	ID         string
	Recipients int
}

// Notifier delivers push notifications to registered device ids.
type Notifier interface {
	Send(ctx context.Context, recipients []string, n Notification) (*Delivery, error)
}
