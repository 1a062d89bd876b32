package match

import (
	"math"
	"strconv"
	"strings"
)

// ScoreSource names the record shape a score was read from.
type ScoreSource string

const (
	SourceScoreString  ScoreSource = "score"
	SourceFinalScore   ScoreSource = "fs_home/fs_away"
	SourceTeamScore    ScoreSource = "home_score/away_score"
	SourceNestedScores ScoreSource = "scores"
	SourceNone         ScoreSource = "none"
)

// ParsedInt is a score component together with whether parsing fell back to 0.
type ParsedInt struct {
	Value     int
	Defaulted bool
}

// Extraction is the full result of reading a score out of a record.
type Extraction struct {
	Score     Score
	Source    ScoreSource
	Defaulted bool
}

type scoreRule func(Record) (ParsedInt, ParsedInt, bool)

var scoreRules = []struct {
	source ScoreSource
	rule   scoreRule
}{
	{source: SourceScoreString, rule: scoreStringRule},
	{source: SourceFinalScore, rule: keyPairRule("fs_home", "fs_away")},
	{source: SourceTeamScore, rule: keyPairRule("home_score", "away_score")},
	{source: SourceNestedScores, rule: nestedScoresRule},
}

// ExtractScore returns the canonical score of a record. It never fails: values
// that cannot be read count as 0.
func ExtractScore(r Record) Score {
	return Extract(r).Score
}

func Extract(r Record) Extraction {
	for _, candidate := range scoreRules {
		home, away, ok := candidate.rule(r)
		if !ok {
			continue
		}
		return Extraction{
			Score:     Score{Home: home.Value, Away: away.Value},
			Source:    candidate.source,
			Defaulted: home.Defaulted || away.Defaulted,
		}
	}
	return Extraction{Source: SourceNone, Defaulted: true}
}

// ParseScoreValue converts one upstream score component. Empty, non-numeric,
// fractional and negative values all become a defaulted 0.
func ParseScoreValue(raw any) ParsedInt {
	switch typed := raw.(type) {
	case nil:
		return ParsedInt{Defaulted: true}
	case string:
		return parseScoreText(typed)
	case float64:
		return parseScoreFloat(typed)
	case float32:
		return parseScoreFloat(float64(typed))
	case int:
		return nonNegative(typed)
	case int64:
		return nonNegative(int(typed))
	case interface{ String() string }:
		return parseScoreText(typed.String())
	default:
		return ParsedInt{Defaulted: true}
	}
}

func scoreStringRule(r Record) (ParsedInt, ParsedInt, bool) {
	text, ok := r["score"].(string)
	if !ok || !strings.Contains(text, "-") {
		return ParsedInt{}, ParsedInt{}, false
	}
	home, away, _ := strings.Cut(text, "-")
	return parseScoreText(home), parseScoreText(away), true
}

func keyPairRule(homeKey, awayKey string) scoreRule {
	return func(r Record) (ParsedInt, ParsedInt, bool) {
		return pairFrom(r, homeKey, awayKey)
	}
}

func nestedScoresRule(r Record) (ParsedInt, ParsedInt, bool) {
	switch nested := r["scores"].(type) {
	case map[string]any:
		return pairFrom(nested, "home_score", "away_score")
	case Record:
		return pairFrom(nested, "home_score", "away_score")
	default:
		return ParsedInt{}, ParsedInt{}, false
	}
}

func pairFrom(src map[string]any, homeKey, awayKey string) (ParsedInt, ParsedInt, bool) {
	home, homeOK := src[homeKey]
	away, awayOK := src[awayKey]
	if !homeOK || !awayOK {
		return ParsedInt{}, ParsedInt{}, false
	}
	return ParseScoreValue(home), ParseScoreValue(away), true
}

func parseScoreText(text string) ParsedInt {
	text = strings.TrimSpace(text)
	if text == "" {
		return ParsedInt{Defaulted: true}
	}
	value, err := strconv.Atoi(text)
	if err != nil {
		return ParsedInt{Defaulted: true}
	}
	return nonNegative(value)
}

func parseScoreFloat(value float64) ParsedInt {
	if math.IsNaN(value) || math.IsInf(value, 0) || value != math.Trunc(value) || value > math.MaxInt32 {
		return ParsedInt{Defaulted: true}
	}
	return nonNegative(int(value))
}

func nonNegative(value int) ParsedInt {
	if value < 0 {
		return ParsedInt{Defaulted: true}
	}
	return ParsedInt{Value: value}
}
