package livescore

import (
	"sort"

	"github.com/riskibarqy/livescore-tracker/internal/domain/match"
)

// recordKeys are the data keys the API uses for match lists, in lookup order.
var recordKeys = []string{"match", "matches", "fixtures"}

type apiEnvelope struct {
	Success *bool          `json:"success"`
	Error   any            `json:"error"`
	Data    map[string]any `json:"data"`
}

// records extracts the match list. A single object under a list key is
// treated as a one-element list. It reports false for an unknown shape.
func (e apiEnvelope) records() ([]match.Record, bool) {
	if e.Data == nil {
		return nil, false
	}
	for _, key := range recordKeys {
		raw, ok := e.Data[key]
		if !ok {
			continue
		}
		switch typed := raw.(type) {
		case []any:
			out := make([]match.Record, 0, len(typed))
			for _, item := range typed {
				if obj, ok := item.(map[string]any); ok {
					out = append(out, match.Record(obj))
				}
			}
			return out, true
		case map[string]any:
			return []match.Record{match.Record(typed)}, true
		case nil:
			return []match.Record{}, true
		}
	}
	return nil, false
}

func (e apiEnvelope) dataKeys() []string {
	keys := make([]string, 0, len(e.Data))
	for key := range e.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
