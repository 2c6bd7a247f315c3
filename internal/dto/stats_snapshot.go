package dto

import (
	"fmt"
	"strconv"
)

// UserRecord is one row of the backend's per-user score list.
type UserRecord struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// StatsSnapshot mirrors the GET /stats payload. It is display data only and
// is replaced wholesale on each successful poll.
type StatsSnapshot struct {
	Violations int          `json:"violations"`
	Users      []UserRecord `json:"users"`
}

// Dashboard is the rendered form of a StatsSnapshot: the violation counter
// text and one "<name> : <score>" line per user, in backend order.
type Dashboard struct {
	Loaded bool     `json:"loaded"`
	Count  string   `json:"count"`
	Lines  []string `json:"lines"`
}

// Render converts the snapshot into dashboard text.
func (s StatsSnapshot) Render() Dashboard {
	lines := make([]string, 0, len(s.Users))
	for _, u := range s.Users {
		lines = append(lines, fmt.Sprintf("%s : %s", u.Name, strconv.FormatFloat(u.Score, 'f', -1, 64)))
	}

	return Dashboard{
		Loaded: true,
		Count:  strconv.Itoa(s.Violations),
		Lines:  lines,
	}
}
