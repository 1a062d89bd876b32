package match

import "testing"

func TestIdentityOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		record Record
		want   Identity
	}{
		{record: Record{"id": "123"}, want: "123"},
		{record: Record{"id": float64(456)}, want: "456"},
		{record: Record{"id": 789}, want: "789"},
		{record: Record{"id": ""}, want: UnknownIdentity},
		{record: Record{}, want: UnknownIdentity},
	}

	for _, tc := range tests {
		if got := IdentityOf(tc.record); got != tc.want {
			t.Fatalf("IdentityOf(%v): got=%q want=%q", tc.record, got, tc.want)
		}
	}
}

func TestLeague_FallbackChain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		record Record
		want   string
		ok     bool
	}{
		{name: "league_name", record: Record{"league_name": "Premier League", "competition_name": "Other"}, want: "Premier League", ok: true},
		{name: "competition_name", record: Record{"competition_name": "Serie A"}, want: "Serie A", ok: true},
		{name: "nested league", record: Record{"league": map[string]any{"name": "LaLiga"}}, want: "LaLiga", ok: true},
		{name: "event name colon", record: Record{"event_name": "NBA: Lakers vs Celtics"}, want: "NBA", ok: true},
		{name: "description dash", record: Record{"description": "Lakers vs Celtics - NBA Finals"}, want: "NBA Finals", ok: true},
		{name: "unsplittable description", record: Record{"description": "Lakers vs Celtics"}, ok: false},
		{name: "missing", record: Record{}, ok: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := League(tc.record)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("League: got=(%q,%v) want=(%q,%v)", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestSport_FallbackChain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		record Record
		want   string
	}{
		{name: "sport_name", record: Record{"sport_name": "Tennis", "sport": "soccer"}, want: "Tennis"},
		{name: "category", record: Record{"category": "Hockey"}, want: "Hockey"},
		{name: "premier league keyword", record: Record{"league_name": "Premier League"}, want: "Soccer"},
		{name: "nba keyword", record: Record{"competition_name": "NBA"}, want: "Basketball"},
		{name: "american football before soccer", record: Record{"league_name": "American Football Conference"}, want: "American Football"},
		{name: "team keyword", record: Record{"home_name": "Arsenal FC", "away_name": "Chelsea"}, want: "Soccer"},
		{name: "nothing", record: Record{"home_name": "Alpha", "away_name": "Beta"}, want: DefaultSport},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := InfoOf(tc.record).Sport; got != tc.want {
				t.Fatalf("sport: got=%q want=%q", got, tc.want)
			}
		})
	}
}

func TestInfoOf_Defaults(t *testing.T) {
	t.Parallel()

	info := InfoOf(Record{"home": map[string]any{"name": "Persija"}})
	if info.Home != "Persija" {
		t.Fatalf("unexpected home %q", info.Home)
	}
	if info.Away != DefaultAwayTeam || info.League != DefaultLeague {
		t.Fatalf("expected defaults, got %+v", info)
	}
}

func TestNormalizeSport(t *testing.T) {
	t.Parallel()

	if NormalizeSport("american_football") != NormalizeSport("American Football") {
		t.Fatalf("expected separators to be folded")
	}
	if NormalizeSport("  SOCCER ") != "soccer" {
		t.Fatalf("unexpected normalised sport %q", NormalizeSport("  SOCCER "))
	}
}

func TestIsFinished(t *testing.T) {
	t.Parallel()

	for _, status := range []string{"FINISHED", "ft", " Ended "} {
		if !IsFinished(status) {
			t.Fatalf("expected %q to be finished", status)
		}
	}
	for _, status := range []string{"IN PLAY", "HT", ""} {
		if IsFinished(status) {
			t.Fatalf("did not expect %q to be finished", status)
		}
	}
}
