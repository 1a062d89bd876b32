package config

import (
	"strconv"
	"strings"
)

// SummaryItem is one row of the human-readable tracking summary.
type SummaryItem struct {
	Setting string `json:"setting"`
	Value   string `json:"value"`
}

// TrackingSummary describes what the tracker will watch, without secrets.
func (c Config) TrackingSummary() []SummaryItem {
	sports := "All sports"
	if len(c.Sports) > 0 {
		sports = strings.Join(c.Sports, ", ")
	}
	mode := "All matches"
	if !c.TrackAllMatches {
		mode = "Specific matches only"
	}

	items := []SummaryItem{
		{Setting: "Sports", Value: sports},
		{Setting: "Tracking Mode", Value: mode},
	}
	if !c.TrackAllMatches {
		items = appendList(items, "Teams to Track", c.TrackedTeams)
		items = appendList(items, "Leagues to Track", c.TrackedLeagues)
	}
	items = appendList(items, "Match IDs to Track", c.TrackedMatchIDs)
	items = appendList(items, "Teams to Exclude", c.ExcludeTeams)
	items = appendList(items, "Leagues to Exclude", c.ExcludeLeagues)

	items = append(items,
		SummaryItem{Setting: "Notification Threshold", Value: strconv.Itoa(c.NotificationThreshold)},
		SummaryItem{Setting: "Polling Interval", Value: c.PollingInterval.String()},
		SummaryItem{Setting: "Max Concurrent Requests", Value: strconv.Itoa(c.MaxConcurrentRequests)},
		SummaryItem{Setting: "Webhook Notifications", Value: strconv.FormatBool(c.WebhookURL != "")},
	)
	return items
}

func appendList(items []SummaryItem, setting string, values []string) []SummaryItem {
	if len(values) == 0 {
		return items
	}
	return append(items, SummaryItem{Setting: setting, Value: strings.Join(values, ", ")})
}
