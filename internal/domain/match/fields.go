package match

import (
	"math"
	"strconv"
	"strings"
)

// FieldRule resolves one logical field from a record. It reports false when the
// record does not carry a usable value for that rule.
type FieldRule func(Record) (string, bool)

type keywordGroup struct {
	sport    string
	keywords []string
}

var (
	homeTeamRules = []FieldRule{stringRule("home_name"), namedRule("home")}
	awayTeamRules = []FieldRule{stringRule("away_name"), namedRule("away")}
	leagueRules   = []FieldRule{
		stringRule("league_name"),
		stringRule("competition_name"),
		namedRule("league"),
		descriptionLeagueRule,
	}
	sportRules = []FieldRule{
		stringRule("sport_name"),
		stringRule("sport"),
		stringRule("category_name"),
		stringRule("category"),
		leagueKeywordRule,
		teamKeywordRule,
	}
	statusRules = []FieldRule{stringRule("status")}
	timeRules   = []FieldRule{stringRule("time"), stringRule("match_time")}
	minuteRules = []FieldRule{stringRule("minute")}
	dateRules   = []FieldRule{stringRule("date"), stringRule("scheduled")}

	// American Football goes first so "american football" is not read as soccer.
	leagueKeywords = []keywordGroup{
		{sport: "American Football", keywords: []string{"nfl", "american football"}},
		{sport: "Soccer", keywords: []string{"soccer", "football", "premier", "la liga", "bundesliga", "serie a"}},
		{sport: "Basketball", keywords: []string{"nba", "basketball", "ncaa"}},
		{sport: "Hockey", keywords: []string{"nhl", "hockey", "ice"}},
		{sport: "Tennis", keywords: []string{"tennis", "atp", "wta"}},
		{sport: "Baseball", keywords: []string{"baseball", "mlb"}},
	}
	teamKeywords = []keywordGroup{
		{sport: "Soccer", keywords: []string{"fc", "united", "city", "football"}},
		{sport: "Basketball", keywords: []string{"basketball", "bball"}},
	}
)

// Resolve returns the first non-empty value produced by rules.
func Resolve(r Record, rules []FieldRule) (string, bool) {
	for _, rule := range rules {
		if value, ok := rule(r); ok {
			return value, true
		}
	}
	return "", false
}

func IdentityOf(r Record) Identity {
	value, ok := stringRule("id")(r)
	if !ok {
		return UnknownIdentity
	}
	return Identity(value)
}

// HasIdentity reports whether the record carries its own id.
func HasIdentity(r Record) bool {
	_, ok := stringRule("id")(r)
	return ok
}

func HomeTeam(r Record) (string, bool) {
	return Resolve(r, homeTeamRules)
}

func AwayTeam(r Record) (string, bool) {
	return Resolve(r, awayTeamRules)
}

func League(r Record) (string, bool) {
	return Resolve(r, leagueRules)
}

func Sport(r Record) (string, bool) {
	return Resolve(r, sportRules)
}

func Status(r Record) (string, bool) {
	return Resolve(r, statusRules)
}

func MatchTime(r Record) (string, bool) {
	return Resolve(r, timeRules)
}

func Minute(r Record) (string, bool) {
	return Resolve(r, minuteRules)
}

func Date(r Record) (string, bool) {
	return Resolve(r, dateRules)
}

// InfoOf derives display metadata, falling back to the display defaults.
func InfoOf(r Record) Info {
	return Info{
		Home:   resolveOr(r, homeTeamRules, DefaultHomeTeam),
		Away:   resolveOr(r, awayTeamRules, DefaultAwayTeam),
		League: resolveOr(r, leagueRules, DefaultLeague),
		Sport:  resolveOr(r, sportRules, DefaultSport),
	}
}

func StatusOf(r Record) string {
	return resolveOr(r, statusRules, DefaultStatus)
}

// NormalizeSport folds case and separators so "american_football" and
// "American Football" compare equal.
func NormalizeSport(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.NewReplacer("_", " ", "-", " ").Replace(value)
	return strings.Join(strings.Fields(value), " ")
}

func resolveOr(r Record, rules []FieldRule, fallback string) string {
	if value, ok := Resolve(r, rules); ok {
		return value
	}
	return fallback
}

func stringRule(key string) FieldRule {
	return func(r Record) (string, bool) {
		return scalarString(r[key])
	}
}

// namedRule accepts either a plain string or a nested object carrying "name".
func namedRule(key string) FieldRule {
	return func(r Record) (string, bool) {
		switch typed := r[key].(type) {
		case map[string]any:
			return scalarString(typed["name"])
		case Record:
			return scalarString(typed["name"])
		default:
			return scalarString(typed)
		}
	}
}

func descriptionLeagueRule(r Record) (string, bool) {
	text, ok := Resolve(r, []FieldRule{stringRule("event_name"), stringRule("description")})
	if !ok {
		return "", false
	}
	if head, _, found := strings.Cut(text, ":"); found {
		return nonEmpty(head)
	}
	if _, tail, found := strings.Cut(text, " - "); found {
		return nonEmpty(tail)
	}
	return "", false
}

func leagueKeywordRule(r Record) (string, bool) {
	league, ok := League(r)
	if !ok {
		return "", false
	}
	return inferSport(league, leagueKeywords)
}

func teamKeywordRule(r Record) (string, bool) {
	home, _ := HomeTeam(r)
	away, _ := AwayTeam(r)
	if home == "" && away == "" {
		return "", false
	}
	return inferSport(home+" "+away, teamKeywords)
}

func inferSport(text string, groups []keywordGroup) (string, bool) {
	text = strings.ToLower(text)
	for _, group := range groups {
		for _, keyword := range group.keywords {
			if strings.Contains(text, keyword) {
				return group.sport, true
			}
		}
	}
	return "", false
}

func scalarString(raw any) (string, bool) {
	switch typed := raw.(type) {
	case nil:
		return "", false
	case string:
		return nonEmpty(typed)
	case float64:
		if math.IsNaN(typed) || math.IsInf(typed, 0) {
			return "", false
		}
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32), true
	case int:
		return strconv.Itoa(typed), true
	case int64:
		return strconv.FormatInt(typed, 10), true
	case bool:
		return strconv.FormatBool(typed), true
	case interface{ String() string }:
		return nonEmpty(typed.String())
	default:
		return "", false
	}
}

func nonEmpty(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}
