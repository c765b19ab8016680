package push

import "context"

//go:generate mockgen -source=gateway.go -destination=mock.go -package=push

// Notification is one device push: title/body plus arbitrary string-keyed
// data for the client app.
type Notification struct {
	DeviceToken string
	Title       string
	Body        string
	Data        map[string]string
}

// Gateway delivers notifications to devices.
type Gateway interface {
	Send(ctx context.Context, n *Notification) error
}
