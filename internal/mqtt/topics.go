package mqtt

import "strings"

const (
	defaultTopicPrefix = "motionsec"

	statusOnline  = "online"
	statusOffline = "offline"
)

// Topics builds the topic names used by the service.
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	p := strings.Trim(t.Prefix, "/")
	if p == "" {
		return defaultTopicPrefix
	}
	return p
}

// BulbCommand is where power/colour commands for one bulb are published.
func (t Topics) BulbCommand(deviceID string) string {
	return t.prefix() + "/command/bulb/" + deviceID
}

// DashboardState carries the retained dashboard snapshot.
func (t Topics) DashboardState() string {
	return t.prefix() + "/dashboard/state"
}

// DashboardModeSet receives auto/manual switch commands.
func (t Topics) DashboardModeSet() string {
	return t.prefix() + "/dashboard/mode/set"
}

func (t Topics) SystemStatus() string {
	return t.prefix() + "/system/status"
}
