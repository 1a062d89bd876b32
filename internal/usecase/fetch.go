package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/livescore-tracker/internal/domain/match"
)

type detailResult struct {
	id     match.Identity
	record match.Record
	err    error
	cached bool
}

func detailCacheKey(id match.Identity) string {
	return "detail:" + id.String()
}

// fetchDetails loads per-match records through a bounded pool. Results keep
// the order of ids.
func (s *ScoreTrackerService) fetchDetails(ctx context.Context, ids []match.Identity) []detailResult {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreTrackerService.fetchDetails")
	defer span.End()

	results := make([]detailResult, len(ids))
	if len(ids) == 0 {
		return results
	}

	pool, err := ants.NewPool(min(s.cfg.MaxConcurrentRequests, len(ids)))
	if err != nil {
		s.logger.WarnContext(ctx, "create detail worker pool failed, fetching sequentially", "error", err)
		for i, id := range ids {
			results[i] = s.fetchDetail(ctx, id)
		}
		return results
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for i, id := range ids {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			results[i] = s.fetchDetail(ctx, id)
		}); err != nil {
			workers.Done()
			results[i] = detailResult{id: id, err: fmt.Errorf("submit detail fetch to worker pool: %w", err)}
		}
	}
	workers.Wait()
	return results
}

// fetchDetail always asks upstream first. The last good record is kept for
// CacheExpiry and served only when the fetch fails.
func (s *ScoreTrackerService) fetchDetail(ctx context.Context, id match.Identity) detailResult {
	key := detailCacheKey(id)

	record, err := s.provider.FetchMatchScore(ctx, id)
	if err == nil {
		if len(record) > 0 {
			s.cache.Set(ctx, key, record)
		}
		return detailResult{id: id, record: record}
	}

	if value, ok := s.cache.Get(ctx, key); ok {
		if cached, ok := value.(match.Record); ok {
			s.logger.WarnContext(ctx, "fetch match detail failed, using cached record", "match_id", id, "error", err)
			return detailResult{id: id, record: cached, cached: true}
		}
	}
	return detailResult{id: id, err: err}
}
