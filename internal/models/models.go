// Package models defines the domain types for slack2md.
package models

import "time"

// Channel represents one channel from the workspace export.
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User represents one workspace member from the export.
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"` // preferred over Name when set
	AvatarURL   string `json:"avatar_url,omitempty"`   // empty string = no image
}

// Message represents one message from a per-channel log file.
// Values are immutable after parsing.
type Message struct {
	UserID  string `json:"user,omitempty"` // may reference a deleted or external user
	TS      string `json:"ts"`             // raw export timestamp, seconds.fraction since epoch
	Text    string `json:"text"`
	Subtype string `json:"subtype,omitempty"`

	// Time is TS truncated to whole seconds, always UTC.
	Time time.Time `json:"-"`
}

// SubtypeChannelJoin marks system messages generated when a user joins a
// channel. The ignore policy filters on it.
const SubtypeChannelJoin = "channel_join"

// IsChannelJoin reports whether the message is a join notice.
func (m Message) IsChannelJoin() bool {
	return m.Subtype == SubtypeChannelJoin
}

// Day returns the message's UTC calendar date as YYYY-MM-DD.
func (m Message) Day() string {
	return m.Time.UTC().Format("2006-01-02")
}

// Workspace holds the read-only channel and user directories for one run.
// Built once from channels.json/users.json, never mutated afterwards.
type Workspace struct {
	Channels map[string]Channel
	Users    map[string]User
}
