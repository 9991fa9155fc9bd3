package recommendation

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/singme/internal/domain"
	"github.com/MrSnakeDoc/singme/internal/logger"
	"github.com/MrSnakeDoc/singme/internal/metrics"
	"github.com/MrSnakeDoc/singme/internal/validation"
)

// Service holds the vote engine, the weighted random pick and the plain
// create/read operations. It keeps no state besides its collaborators.
type Service struct {
	store    Store
	rand     domain.Rand
	validate *validation.Validator
	logger   logger.Logger
	metrics  *metrics.Metrics
}

// Option customizes a Service.
type Option func(*Service)

// WithRand overrides the randomness source used to pick a tier.
func WithRand(r domain.Rand) Option {
	return func(s *Service) { s.rand = r }
}

// WithMetrics records votes and deletions on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a Service backed by store.
func NewService(store Store, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		rand:     domain.DefaultRand(),
		validate: validation.New(),
		logger:   log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and stores a new recommendation with a zero score.
func (s *Service) Create(ctx context.Context, name, youtubeLink string) (domain.Recommendation, error) {
	in := domain.NewRecommendation{Name: name, YoutubeLink: youtubeLink}
	if err := s.validate.Struct(in); err != nil {
		return domain.Recommendation{}, err
	}

	rec, err := s.store.Insert(ctx, in)
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("create recommendation: %w", err)
	}

	s.logger.Info("recommendation created",
		logger.Int64("id", rec.ID),
		logger.String("name", rec.Name))
	return rec, nil
}

// Upvote adds one point to the recommendation's score.
func (s *Service) Upvote(ctx context.Context, id int64) (domain.VoteResult, error) {
	res, err := s.store.ApplyVote(ctx, id, 1, nil)
	if err != nil {
		return domain.VoteResult{}, fmt.Errorf("upvote %d: %w", id, err)
	}
	s.metrics.VoteApplied("up")
	return res, nil
}

// Downvote removes one point from the recommendation's score and deletes it
// when the score reaches domain.DeleteThreshold.
func (s *Service) Downvote(ctx context.Context, id int64) (domain.VoteResult, error) {
	res, err := s.store.ApplyVote(ctx, id, -1, domain.ShouldDelete)
	if err != nil {
		return domain.VoteResult{}, fmt.Errorf("downvote %d: %w", id, err)
	}
	s.metrics.VoteApplied("down")

	if res.Deleted {
		s.metrics.RecommendationDeleted()
		s.logger.Info("recommendation deleted after downvote",
			logger.Int64("id", res.ID),
			logger.Int("score", res.Score))
	}
	return res, nil
}

// Get returns one recommendation by id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Recommendation, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("get %d: %w", id, err)
	}
	return rec, nil
}

// Recent returns the newest recommendations, newest first.
func (s *Service) Recent(ctx context.Context) ([]domain.Recommendation, error) {
	recs, err := s.store.List(ctx, domain.RecentOptions())
	if err != nil {
		return nil, fmt.Errorf("list recent: %w", err)
	}
	return recs, nil
}

// Top returns at most amount recommendations ordered by descending score.
func (s *Service) Top(ctx context.Context, amount int) ([]domain.Recommendation, error) {
	if amount <= 0 {
		return nil, domain.NewValidationError("amount", "amount must be a positive integer")
	}
	recs, err := s.store.List(ctx, domain.TopOptions(amount))
	if err != nil {
		return nil, fmt.Errorf("list top %d: %w", amount, err)
	}
	return recs, nil
}

// Random picks a recommendation: from the top tier with probability
// domain.TopTierWeight, otherwise from the rest. An empty tier falls back to
// a uniform pick over everything.
func (s *Service) Random(ctx context.Context) (domain.Recommendation, error) {
	tier := domain.PickTier(s.rand)

	rec, err := s.store.SampleRandom(ctx, tier.Filter())
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Recommendation{}, fmt.Errorf("sample %s tier: %w", tier, err)
	}

	s.logger.Debug("tier empty, falling back to uniform pick",
		logger.String("tier", tier.String()))

	rec, err = s.store.SampleRandom(ctx, nil)
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("sample any: %w", err)
	}
	return rec, nil
}
