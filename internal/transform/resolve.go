package transform

import (
	"github.com/arlberg/slack2md/internal/models"
)

// Meta holds the per-message display attributes derived at render time.
type Meta struct {
	Time     string // zero-padded 24-hour UTC HH:MM
	Username string // display name > account name > raw user id
	ImageURL string // avatar URL, empty when the user has none
}

// Resolve derives display metadata for a message against the user directory.
// It is best-effort and always succeeds: exports routinely reference deleted
// or external users, so an unknown id falls back to the id itself and a
// missing id yields an empty username.
func Resolve(m models.Message, users map[string]models.User) Meta {
	meta := Meta{Time: m.Time.UTC().Format("15:04")}
	if m.UserID == "" {
		return meta
	}
	u, ok := users[m.UserID]
	if !ok {
		meta.Username = m.UserID
		return meta
	}
	meta.Username = u.DisplayName
	if meta.Username == "" {
		meta.Username = u.Name
	}
	meta.ImageURL = u.AvatarURL
	return meta
}
