package weather

import "strings"

const (
	// MaxHistory bounds the search history.
	MaxHistory = 5
	// MaxFavorites bounds the favorites list.
	MaxFavorites = 10
)

// PushHistory puts city at the front of history, removing any entry that
// matches it case-insensitively, and truncates to MaxHistory.
// Empty input returns history unchanged.
func PushHistory(history []string, city string) []string {
	if city == "" {
		return history
	}

	out := make([]string, 0, MaxHistory)
	out = append(out, city)
	for _, c := range history {
		if strings.EqualFold(c, city) {
			continue
		}
		out = append(out, c)
	}

	if len(out) > MaxHistory {
		out = out[:MaxHistory]
	}
	return out
}

// ToggleFavorite removes city from favorites if present (exact match),
// otherwise appends it and drops the oldest entries beyond MaxFavorites.
// It reports whether city is a favorite afterwards.
func ToggleFavorite(favorites []string, city string) ([]string, bool) {
	if Contains(favorites, city) {
		out := make([]string, 0, len(favorites))
		for _, c := range favorites {
			if c != city {
				out = append(out, c)
			}
		}
		return out, false
	}

	out := append(append(make([]string, 0, len(favorites)+1), favorites...), city)
	if len(out) > MaxFavorites {
		out = out[len(out)-MaxFavorites:]
	}
	return out, true
}

// Contains reports whether list holds city (exact match).
func Contains(list []string, city string) bool {
	for _, c := range list {
		if c == city {
			return true
		}
	}
	return false
}
