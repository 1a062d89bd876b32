package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/livescore-tracker/internal/domain/match"
)

// ScoreRepository keeps the last observed score per match for the life of the
// process.
type ScoreRepository struct {
	mu     sync.RWMutex
	scores map[match.Identity]match.Score
}

func NewScoreRepository() *ScoreRepository {
	return &ScoreRepository{scores: make(map[match.Identity]match.Score)}
}

func (r *ScoreRepository) GetByIdentity(_ context.Context, id match.Identity) (match.Score, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	score, ok := r.scores[id]
	return score, ok, nil
}

func (r *ScoreRepository) Upsert(_ context.Context, id match.Identity, score match.Score) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scores[id] = score
	return nil
}

func (r *ScoreRepository) Delete(_ context.Context, id match.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.scores, id)
	return nil
}

func (r *ScoreRepository) List(_ context.Context) (map[match.Identity]match.Score, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[match.Identity]match.Score, len(r.scores))
	for id, score := range r.scores {
		out[id] = score
	}
	return out, nil
}
