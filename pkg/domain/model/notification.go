package model

import "time"

const (
	// DefaultNotificationColor is the embed color used when none is configured
	DefaultNotificationColor = 5814783
)

// Notification is a provider independent message announcing a new release
type Notification struct {
	Project    string // Display name of the monitored project
	Repository Repository
	Version    string
	ReleaseURL string
	Color      int
	Footer     string
	Timestamp  time.Time
}

// Title returns the headline shown by chat clients
func (n *Notification) Title() string {
	return "New " + n.Project + " release: " + n.Version
}

// Description returns the message body with a link to the release page
func (n *Notification) Description() string {
	return "Version **" + n.Version + "** of " + n.Repository.String() +
		" has been released.\n" + n.ReleaseURL
}
