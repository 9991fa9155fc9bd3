package fixtures

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/singme/internal/domain"
)

const nameWords = 4

// MaxSeedScore is the highest score a seeded recommendation may get. The
// score column is a 32-bit integer.
const MaxSeedScore = math.MaxInt32

// ScoreRange is an inclusive range of seeded scores.
type ScoreRange struct {
	Min int
	Max int
}

// Validate rejects inverted ranges, ranges reaching the deletion threshold
// and ranges above MaxSeedScore.
func (r ScoreRange) Validate() error {
	if r.Min > r.Max {
		return domain.NewValidationError("randomScores", "min must not be greater than max")
	}
	if r.Min <= domain.DeleteThreshold {
		return domain.NewValidationError("randomScores",
			fmt.Sprintf("min must be greater than %d", domain.DeleteThreshold))
	}
	if r.Max > MaxSeedScore {
		return domain.NewValidationError("randomScores",
			fmt.Sprintf("max must not be greater than %d", MaxSeedScore))
	}
	return nil
}

// Inserter is the part of the store a Factory writes to.
type Inserter interface {
	InsertMany(ctx context.Context, ins []domain.NewRecommendation) ([]domain.Recommendation, error)
}

// Factory builds recommendations from a catalogue. Safe for concurrent use.
type Factory struct {
	cat Catalogue

	mu  sync.Mutex
	rng *rand.Rand
}

// NewFactory returns a Factory drawing from cat. A nil rng gets a randomly seeded one.
func NewFactory(cat Catalogue, rng *rand.Rand) *Factory {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Factory{cat: cat, rng: rng}
}

// Build returns one recommendation. The score is drawn uniformly from
// scores when given, otherwise it is 0.
func (f *Factory) Build(scores *ScoreRange) domain.NewRecommendation {
	f.mu.Lock()
	defer f.mu.Unlock()

	words := make([]string, nameWords)
	for i := range words {
		words[i] = f.cat.Words[f.rng.IntN(len(f.cat.Words))]
	}

	in := domain.NewRecommendation{
		Name:        strings.Join(words, " ") + " " + uuid.NewString()[:8],
		YoutubeLink: f.cat.Videos[f.rng.IntN(len(f.cat.Videos))],
	}
	if scores != nil {
		in.Score = scores.Min + f.rng.IntN(scores.Max-scores.Min+1)
	}
	return in
}

// Seed inserts amount recommendations through store in one batch. A failed
// insert leaves no seeded rows behind.
func (f *Factory) Seed(ctx context.Context, store Inserter, amount int, scores *ScoreRange) ([]domain.Recommendation, error) {
	if scores != nil {
		if err := scores.Validate(); err != nil {
			return nil, err
		}
	}

	ins := make([]domain.NewRecommendation, amount)
	for i := range ins {
		ins[i] = f.Build(scores)
	}

	out, err := store.InsertMany(ctx, ins)
	if err != nil {
		return nil, fmt.Errorf("seed recommendations: %w", err)
	}
	return out, nil
}
