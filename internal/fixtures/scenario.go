package fixtures

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/singme/internal/domain"
	"github.com/MrSnakeDoc/singme/internal/logger"
)

// MaxPopulate caps a single populate call.
const MaxPopulate = 5000

// Store is what the e2e scenarios need from the recommendation store.
type Store interface {
	Inserter
	Truncate(ctx context.Context) error
}

// PopulateRequest is the body accepted by the populate scenario.
type PopulateRequest struct {
	Amount       int   `json:"amount"`
	RandomScores []int `json:"randomScores,omitempty"`
}

// Validate checks the request and returns the score range it asks for.
func (r PopulateRequest) Validate() (*ScoreRange, error) {
	if r.Amount < 1 || r.Amount > MaxPopulate {
		return nil, domain.NewValidationError("amount",
			fmt.Sprintf("amount must be between 1 and %d", MaxPopulate))
	}

	switch len(r.RandomScores) {
	case 0:
		return nil, nil
	case 2:
		sr := &ScoreRange{Min: r.RandomScores[0], Max: r.RandomScores[1]}
		if err := sr.Validate(); err != nil {
			return nil, err
		}
		return sr, nil
	default:
		return nil, domain.NewValidationError("randomScores", "randomScores must be [min, max]")
	}
}

// Scenario drives the database into known states for end-to-end runs.
type Scenario struct {
	store   Store
	factory *Factory
	log     logger.Logger
}

func NewScenario(store Store, factory *Factory, log logger.Logger) *Scenario {
	return &Scenario{store: store, factory: factory, log: log}
}

// Reset removes every recommendation.
func (s *Scenario) Reset(ctx context.Context) error {
	if err := s.store.Truncate(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	s.log.Info("e2e reset")
	return nil
}

// Populate inserts req.Amount generated recommendations.
func (s *Scenario) Populate(ctx context.Context, req PopulateRequest) ([]domain.Recommendation, error) {
	scores, err := req.Validate()
	if err != nil {
		return nil, err
	}

	recs, err := s.factory.Seed(ctx, s.store, req.Amount, scores)
	if err != nil {
		return nil, fmt.Errorf("populate: %w", err)
	}

	s.log.Info("e2e populate", logger.Int("amount", len(recs)))
	return recs, nil
}
