package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Camp struct {
	gorm.Model
	Name             string    `json:"name"`
	Location         string    `json:"location"`
	Type             string    `json:"type"`
	Price            int       `json:"price"`
	Capacity         int       `json:"capacity"`
	AvailableSpots   int       `json:"available_spots"`
	AgeGroup         string    `json:"age_group"`
	ShortDescription string    `json:"short_description"`
	Description      string    `json:"description"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	Images           string    `json:"-"` // semicolon-joined URLs
	Activities       string    `json:"-"` // semicolon-joined names
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	// Camp-level access code lets staff open the gallery without a
	// personal registration code. Optional.
	AccessCode *string `json:"-" gorm:"uniqueIndex"`
}

func (c *Camp) ImageList() []string {
	return splitJoined(c.Images)
}

func (c *Camp) ActivityList() []string {
	return splitJoined(c.Activities)
}

func splitJoined(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ";") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func JoinList(items []string) string {
	return strings.Join(items, ";")
}
