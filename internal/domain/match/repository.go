package match

import "context"

// ScoreRepository stores the last observed score per match.
type ScoreRepository interface {
	GetByIdentity(ctx context.Context, id Identity) (Score, bool, error)
	Upsert(ctx context.Context, id Identity, score Score) error
	Delete(ctx context.Context, id Identity) error
	List(ctx context.Context) (map[Identity]Score, error)
}
