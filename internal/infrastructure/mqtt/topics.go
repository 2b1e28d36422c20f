package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is used when the configured prefix is empty.
const DefaultTopicPrefix = "datacollector"

// Topics builds topic names under a common prefix.
//
//	topics := mqtt.Topics{Prefix: "datacollector"}
//	topics.PeopleEvent("created") // "datacollector/people/created"
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	p := strings.Trim(t.Prefix, "/")
	if p == "" {
		return DefaultTopicPrefix
	}
	return p
}

// PeopleEvent returns the topic for a people change.
//
// Example: datacollector/people/deleted
func (t Topics) PeopleEvent(action string) string {
	return fmt.Sprintf("%s/people/%s", t.prefix(), action)
}

// AllPeopleEvents returns a wildcard matching every people change.
func (t Topics) AllPeopleEvents() string {
	return t.prefix() + "/people/+"
}

// SystemStatus returns the retained online/offline status topic.
//
// Example: datacollector/system/status
func (t Topics) SystemStatus() string {
	return t.prefix() + "/system/status"
}
