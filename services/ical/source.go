package ical

import (
	"strings"

	"maisonette/models"
)

// DetectSource tags a feed by the platform named in its name or URL.
func DetectSource(name, url string) models.BlockSource {
	haystack := strings.ToLower(name + " " + url)
	switch {
	case strings.Contains(haystack, "booking"):
		return models.BlockSourceBooking
	case strings.Contains(haystack, "airbnb"):
		return models.BlockSourceAirbnb
	}
	return models.BlockSourceICal
}
