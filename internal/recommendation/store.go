package recommendation

import (
	"context"

	"github.com/MrSnakeDoc/singme/internal/domain"
)

// Store is the relational backing for recommendations.
//
// Implementations must apply vote deltas on the store side and run the
// threshold deletion in the same transaction as the delta, so concurrent
// votes on one recommendation serialize on the row.
type Store interface {
	// Insert creates a recommendation. Returns domain.ErrConflict on a duplicate name.
	Insert(ctx context.Context, in domain.NewRecommendation) (domain.Recommendation, error)

	// InsertMany creates every recommendation in one transaction: either all
	// rows are stored or none are.
	InsertMany(ctx context.Context, ins []domain.NewRecommendation) ([]domain.Recommendation, error)

	// Get returns the recommendation or domain.ErrNotFound.
	Get(ctx context.Context, id int64) (domain.Recommendation, error)

	// ApplyVote adds delta to the score. When deleteWhen is non-nil and reports
	// true for the new score, the row is deleted in the same transaction.
	// Returns domain.ErrNotFound when the id does not exist.
	ApplyVote(ctx context.Context, id int64, delta int, deleteWhen func(score int) bool) (domain.VoteResult, error)

	// Delete removes the recommendation. Returns domain.ErrNotFound when absent.
	Delete(ctx context.Context, id int64) error

	// List returns recommendations in the requested order.
	List(ctx context.Context, opts domain.ListOptions) ([]domain.Recommendation, error)

	// SampleRandom returns one recommendation chosen uniformly among those
	// matching filter (nil = all), or domain.ErrNotFound if none match.
	SampleRandom(ctx context.Context, filter *domain.ScoreFilter) (domain.Recommendation, error)

	// CountByTier counts recommendations strictly above and at-or-below threshold.
	CountByTier(ctx context.Context, threshold int) (above, atOrBelow int, err error)

	// Truncate removes every recommendation without resetting the id sequence.
	Truncate(ctx context.Context) error

	Ping(ctx context.Context) error
	Close() error
}
