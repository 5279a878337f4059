package service

import (
	"strings"
	"time"
)

// Season is one of the Indian cropping seasons.
type Season struct {
	Name   string   `json:"name"`
	Months string   `json:"months"`
	Crops  []string `json:"crops"`
}

var (
	Kharif = Season{Name: "Kharif", Months: "June-October", Crops: []string{"rice", "cotton", "soybean", "maize", "groundnut", "tur"}}
	Rabi   = Season{Name: "Rabi", Months: "November-March", Crops: []string{"wheat", "mustard", "chana", "barley", "onion", "potato"}}
	Zaid   = Season{Name: "Zaid", Months: "April-May", Crops: []string{"watermelon", "cucumber", "moong", "tomato", "okra"}}
)

// SeasonFor maps a calendar month to its cropping season.
func SeasonFor(day time.Time) Season {
	switch m := day.Month(); {
	case m >= time.June && m <= time.October:
		return Kharif
	case m == time.April || m == time.May:
		return Zaid
	default:
		return Rabi
	}
}

func (s Season) String() string {
	return s.Name + " (" + s.Months + "); typical crops: " + strings.Join(s.Crops, ", ")
}
