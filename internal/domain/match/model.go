package match

import (
	"strconv"
	"strings"
	"time"
)

// UnknownIdentity is used for records that carry no usable id.
const UnknownIdentity Identity = "unknown"

const (
	DefaultHomeTeam = "Home Team"
	DefaultAwayTeam = "Away Team"
	DefaultLeague   = "Other Competition"
	DefaultSport    = "Other Sport"
	DefaultStatus   = "Unknown"
)

// Identity is the upstream match id rendered as a string.
type Identity string

func (i Identity) String() string {
	return string(i)
}

// Record is one raw match object exactly as decoded from the upstream payload.
type Record map[string]any

// Score is the canonical home/away pair. Both sides are never negative.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

func (s Score) Total() int {
	return s.Home + s.Away
}

func (s Score) String() string {
	return strconv.Itoa(s.Home) + "-" + strconv.Itoa(s.Away)
}

// Info is the display metadata derived from a record.
type Info struct {
	Home   string `json:"home"`
	Away   string `json:"away"`
	League string `json:"league"`
	Sport  string `json:"sport"`
}

// Placeholder returns the info shown for a match that was never cached.
func Placeholder(id Identity) Info {
	return Info{
		Home:   "Team " + id.String() + " (H)",
		Away:   "Team " + id.String() + " (A)",
		League: DefaultLeague,
		Sport:  DefaultSport,
	}
}

// ScoreEvent is emitted when a match scores at least the notification threshold
// between two consecutive observations.
type ScoreEvent struct {
	Identity Identity
	Record   Record
	Info     Info
	Previous Score
	Current  Score
	Diff     int
	Status   string
	Minute   string
	At       time.Time
}

var finishedStatuses = map[string]struct{}{
	"FINISHED": {},
	"FT":       {},
	"AET":      {},
	"PEN":      {},
	"ENDED":    {},
}

// IsFinished reports whether an upstream status marks the end of a match.
func IsFinished(status string) bool {
	_, ok := finishedStatuses[strings.ToUpper(strings.TrimSpace(status))]
	return ok
}
