// Package export parses raw Slack-style workspace export records into typed
// domain values. Records arrive as loosely-typed JSON objects; parsing takes
// required fields verbatim, ignores unknown fields, and never mutates its
// input.
package export

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/arlberg/slack2md/internal/apperr"
	"github.com/arlberg/slack2md/internal/models"
)

// stringField extracts a non-empty string field from a raw record.
func stringField(raw map[string]any, key string) (string, bool) {
	v, ok := raw[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// optionalString extracts a string field, returning "" when absent or not a string.
func optionalString(raw map[string]any, key string) string {
	if s, ok := raw[key].(string); ok {
		return s
	}
	return ""
}

// ParseChannel converts one raw channel record.
func ParseChannel(raw map[string]any) (models.Channel, error) {
	id, ok := stringField(raw, "id")
	if !ok {
		return models.Channel{}, &apperr.MalformedRecordError{Entity: "channel", Field: "id"}
	}
	name, ok := stringField(raw, "name")
	if !ok {
		return models.Channel{}, &apperr.MalformedRecordError{Entity: "channel", Field: "name"}
	}
	return models.Channel{ID: id, Name: name}, nil
}

// ParseUser converts one raw user record. Display name and avatar live under
// the export's nested "profile" object and are optional.
func ParseUser(raw map[string]any) (models.User, error) {
	id, ok := stringField(raw, "id")
	if !ok {
		return models.User{}, &apperr.MalformedRecordError{Entity: "user", Field: "id"}
	}
	name, ok := stringField(raw, "name")
	if !ok {
		return models.User{}, &apperr.MalformedRecordError{Entity: "user", Field: "name"}
	}
	u := models.User{ID: id, Name: name}
	if profile, ok := raw["profile"].(map[string]any); ok {
		u.DisplayName = optionalString(profile, "display_name")
		u.AvatarURL = optionalString(profile, "image_72")
	}
	return u, nil
}

// ParseMessage converts one raw message record. The export writes ts as a
// decimal string ("1572486180.000100"); a JSON number is tolerated too.
// User id and subtype are optional.
func ParseMessage(raw map[string]any) (models.Message, error) {
	ts, t, err := parseTS(raw["ts"])
	if err != nil {
		return models.Message{}, &apperr.MalformedRecordError{Entity: "message", Field: "ts"}
	}
	text, ok := raw["text"].(string)
	if !ok {
		return models.Message{}, &apperr.MalformedRecordError{Entity: "message", Field: "text"}
	}
	return models.Message{
		UserID:  optionalString(raw, "user"),
		TS:      ts,
		Text:    text,
		Subtype: optionalString(raw, "subtype"),
		Time:    t,
	}, nil
}

// parseTS interprets the export timestamp. The fractional part only
// disambiguates ordering on the Slack side; rendering truncates to whole
// seconds, so it is dropped here.
func parseTS(v any) (string, time.Time, error) {
	switch ts := v.(type) {
	case string:
		secs, _, _ := strings.Cut(ts, ".")
		n, err := strconv.ParseInt(secs, 10, 64)
		if err != nil {
			return "", time.Time{}, err
		}
		return ts, time.Unix(n, 0).UTC(), nil
	case float64:
		n := int64(ts)
		return strconv.FormatFloat(ts, 'f', -1, 64), time.Unix(n, 0).UTC(), nil
	default:
		return "", time.Time{}, fmt.Errorf("export: ts is %T", v)
	}
}

// Messages decodes one message file (a JSON array of raw records) in input
// order. The first malformed record aborts with its parse error.
func Messages(data []byte) ([]models.Message, error) {
	var raws []map[string]any
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("export: decode message file: %w", err)
	}
	out := make([]models.Message, 0, len(raws))
	for _, raw := range raws {
		m, err := ParseMessage(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Channels decodes channels.json into an id-keyed map.
func Channels(data []byte) (map[string]models.Channel, error) {
	var raws []map[string]any
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("export: decode channels: %w", err)
	}
	out := make(map[string]models.Channel, len(raws))
	for _, raw := range raws {
		c, err := ParseChannel(raw)
		if err != nil {
			return nil, err
		}
		out[c.ID] = c
	}
	return out, nil
}

// Users decodes users.json into an id-keyed map.
func Users(data []byte) (map[string]models.User, error) {
	var raws []map[string]any
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("export: decode users: %w", err)
	}
	out := make(map[string]models.User, len(raws))
	for _, raw := range raws {
		u, err := ParseUser(raw)
		if err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, nil
}
