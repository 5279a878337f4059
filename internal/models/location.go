package models

import "strings"

// Location is the {city, state} pair handed over by reverse geocoding. It is
// used only as a cache key and a display label.
type Location struct {
	City  string `json:"city"`
	State string `json:"state"`
}

func (l Location) IsZero() bool {
	return strings.TrimSpace(l.City) == "" && strings.TrimSpace(l.State) == ""
}

// Key is the cache identifier for the location.
func (l Location) Key() string {
	if l.IsZero() {
		return "anywhere"
	}
	return strings.ToLower(strings.TrimSpace(l.City)) + "|" + strings.ToLower(strings.TrimSpace(l.State))
}

// Label renders the location for prompts and logs.
func (l Location) Label() string {
	city, state := strings.TrimSpace(l.City), strings.TrimSpace(l.State)
	switch {
	case city != "" && state != "":
		return city + ", " + state
	case city != "":
		return city
	case state != "":
		return state
	default:
		return "India"
	}
}

// Matches reports whether any of the labels names this location.
func (l Location) Matches(labels ...string) bool {
	city, state := strings.ToLower(strings.TrimSpace(l.City)), strings.ToLower(strings.TrimSpace(l.State))
	for _, label := range labels {
		label = strings.ToLower(strings.TrimSpace(label))
		if label == "" {
			continue
		}
		if city != "" && strings.Contains(label, city) {
			return true
		}
		if state != "" && label == state {
			return true
		}
	}
	return false
}
