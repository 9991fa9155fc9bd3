package recommendation

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/MrSnakeDoc/singme/internal/domain"
	"github.com/MrSnakeDoc/singme/internal/fixtures"
	"github.com/MrSnakeDoc/singme/internal/logger"
	"github.com/MrSnakeDoc/singme/internal/metrics"
	"github.com/MrSnakeDoc/singme/internal/store/sqlite"
)

const link = "https://www.youtube.com/watch?v=54fea7wuV6s"

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func newTestService(t *testing.T, opts ...Option) (*Service, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.New(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("sqlite.New() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return NewService(store, logger.NewNop(), opts...), store
}

func seed(t *testing.T, store *sqlite.Store, amount, min, max int) []domain.Recommendation {
	t.Helper()
	cat, err := fixtures.DefaultCatalogue()
	if err != nil {
		t.Fatalf("DefaultCatalogue() error = %v", err)
	}
	f := fixtures.NewFactory(cat, rand.New(rand.NewPCG(uint64(amount), uint64(max))))
	recs, err := f.Seed(context.Background(), store, amount, &fixtures.ScoreRange{Min: min, Max: max})
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	return recs
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, "Falamansa - Xote dos Milagres", link)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if rec.Score != 0 {
		t.Errorf("Create() score = %d, want 0", rec.Score)
	}

	got, err := svc.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != rec {
		t.Errorf("Get() = %+v, want %+v", got, rec)
	}

	if _, err := svc.Create(ctx, "Falamansa - Xote dos Milagres", link); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate Create() error = %v, want ErrConflict", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name string
		in   string
		link string
	}{
		{name: "empty name", in: "", link: link},
		{name: "empty link", in: "song", link: ""},
		{name: "not youtube", in: "song", link: "https://vimeo.com/123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.in, tt.link)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Create() error = %v, want *domain.ValidationError", err)
			}
		})
	}
}

func TestVotes(t *testing.T) {
	tests := []struct {
		name        string
		start       int
		up          bool
		wantScore   int
		wantDeleted bool
	}{
		{name: "upvote", start: 0, up: true, wantScore: 1},
		{name: "upvote from negative", start: -5, up: true, wantScore: -4},
		{name: "downvote", start: 0, wantScore: -1},
		{name: "downvote to -5", start: -4, wantScore: -5},
		{name: "downvote to -6 deletes", start: -5, wantScore: -6, wantDeleted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New()
			svc, store := newTestService(t, WithMetrics(m))
			ctx := context.Background()

			rec, err := store.Insert(ctx, domain.NewRecommendation{Name: tt.name, YoutubeLink: link, Score: tt.start})
			if err != nil {
				t.Fatalf("Insert() error = %v", err)
			}

			var res domain.VoteResult
			if tt.up {
				res, err = svc.Upvote(ctx, rec.ID)
			} else {
				res, err = svc.Downvote(ctx, rec.ID)
			}
			if err != nil {
				t.Fatalf("vote error = %v", err)
			}
			if res.Score != tt.wantScore || res.Deleted != tt.wantDeleted {
				t.Fatalf("vote = %+v, want score=%d deleted=%v", res, tt.wantScore, tt.wantDeleted)
			}

			_, err = svc.Get(ctx, rec.ID)
			if tt.wantDeleted != errors.Is(err, domain.ErrNotFound) {
				t.Errorf("Get() after vote error = %v, deleted=%v", err, tt.wantDeleted)
			}
		})
	}
}

func TestVoteMissing(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	rec, err := store.Insert(ctx, domain.NewRecommendation{Name: "kept", YoutubeLink: link, Score: 2})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if _, err := svc.Upvote(ctx, rec.ID+1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Upvote() error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Downvote(ctx, rec.ID+1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Downvote() error = %v, want ErrNotFound", err)
	}

	got, err := svc.Get(ctx, rec.ID)
	if err != nil || got.Score != 2 {
		t.Errorf("Get() = %+v, %v; want score 2", got, err)
	}
}

func TestDeletedStaysDeleted(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	rec, err := store.Insert(ctx, domain.NewRecommendation{Name: "doomed", YoutubeLink: link, Score: -5})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if _, err := svc.Downvote(ctx, rec.ID); err != nil {
		t.Fatalf("Downvote() error = %v", err)
	}

	if _, err := svc.Upvote(ctx, rec.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Upvote() on deleted error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Downvote(ctx, rec.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Downvote() on deleted error = %v, want ErrNotFound", err)
	}
}

func TestRecent(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, 30, 0, 0)

	recs, err := svc.Recent(context.Background())
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recs) != domain.RecentLimit {
		t.Fatalf("Recent() returned %d, want %d", len(recs), domain.RecentLimit)
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].ID >= recs[i-1].ID {
			t.Fatalf("Recent() not newest first at %d", i)
		}
	}
}

func TestTop(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, 20, -5, 50)

	for _, amount := range []int{1, 5, 20, 100} {
		recs, err := svc.Top(context.Background(), amount)
		if err != nil {
			t.Fatalf("Top(%d) error = %v", amount, err)
		}
		if want := min(amount, 20); len(recs) != want {
			t.Fatalf("Top(%d) returned %d, want %d", amount, len(recs), want)
		}
		for i := 1; i < len(recs); i++ {
			prev, cur := recs[i-1], recs[i]
			if cur.Score > prev.Score || (cur.Score == prev.Score && cur.ID < prev.ID) {
				t.Fatalf("Top(%d) out of order at %d: %+v after %+v", amount, i, cur, prev)
			}
		}
	}

	for _, amount := range []int{0, -3} {
		var ve *domain.ValidationError
		if _, err := svc.Top(context.Background(), amount); !errors.As(err, &ve) {
			t.Errorf("Top(%d) error = %v, want *domain.ValidationError", amount, err)
		}
	}
}

func TestRandomEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Random(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Random() error = %v, want ErrNotFound", err)
	}
}

func TestRandomTierFallback(t *testing.T) {
	tests := []struct {
		name      string
		roll      float64
		min, max  int
		wantAbove bool
	}{
		{name: "top roll, only low scores", roll: 0.1, min: -5, max: 10},
		{name: "rest roll, only low scores", roll: 0.9, min: -5, max: 10},
		{name: "top roll, only high scores", roll: 0.1, min: 11, max: 100, wantAbove: true},
		{name: "rest roll, only high scores", roll: 0.9, min: 11, max: 100, wantAbove: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(t, WithRand(fixedRand(tt.roll)))
			seed(t, store, 10, tt.min, tt.max)

			rec, err := svc.Random(context.Background())
			if err != nil {
				t.Fatalf("Random() error = %v", err)
			}
			if above := rec.Score > domain.TopTierThreshold; above != tt.wantAbove {
				t.Errorf("Random() score = %d, want above threshold = %v", rec.Score, tt.wantAbove)
			}
		})
	}
}

func TestRandomWeighting(t *testing.T) {
	svc, store := newTestService(t, WithRand(rand.New(rand.NewPCG(42, 1024))))
	seed(t, store, 500, -5, 10)
	seed(t, store, 500, 11, 100)

	const draws = 900
	var high int
	for range draws {
		rec, err := svc.Random(context.Background())
		if err != nil {
			t.Fatalf("Random() error = %v", err)
		}
		if rec.Score > domain.TopTierThreshold {
			high++
		}
	}

	frac := float64(high) / draws
	if frac < 0.6 || frac > 0.8 {
		t.Errorf("top tier fraction = %.3f, want 0.7 ± 0.1", frac)
	}
}

func TestRandomReachesEveryTierMember(t *testing.T) {
	svc, store := newTestService(t, WithRand(rand.New(rand.NewPCG(5, 9))))
	recs := append(seed(t, store, 5, 11, 40), seed(t, store, 5, -5, 10)...)

	seen := make(map[int64]int, len(recs))
	for range 400 {
		rec, err := svc.Random(context.Background())
		if err != nil {
			t.Fatalf("Random() error = %v", err)
		}
		seen[rec.ID]++
	}

	for _, rec := range recs {
		if seen[rec.ID] == 0 {
			t.Errorf("Random() never returned %d (score %d) in 400 draws", rec.ID, rec.Score)
		}
	}
	if len(seen) != len(recs) {
		t.Errorf("Random() returned %d distinct ids, want %d", len(seen), len(recs))
	}
}

func TestRandomOnlyLowScores(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, 50, -5, 10)

	for range 100 {
		rec, err := svc.Random(context.Background())
		if err != nil {
			t.Fatalf("Random() error = %v", err)
		}
		if rec.Score > domain.TopTierThreshold {
			t.Fatalf("Random() returned score %d from a low-only store", rec.Score)
		}
	}
}

// failingStore reports every call as a store outage.
type failingStore struct {
	Store
	err error
}

func (f failingStore) Insert(context.Context, domain.NewRecommendation) (domain.Recommendation, error) {
	return domain.Recommendation{}, f.err
}

func (f failingStore) ApplyVote(context.Context, int64, int, func(int) bool) (domain.VoteResult, error) {
	return domain.VoteResult{}, f.err
}

func (f failingStore) SampleRandom(context.Context, *domain.ScoreFilter) (domain.Recommendation, error) {
	return domain.Recommendation{}, f.err
}

func (f failingStore) List(context.Context, domain.ListOptions) ([]domain.Recommendation, error) {
	return nil, f.err
}

func TestStoreErrorsPropagate(t *testing.T) {
	outage := errors.New("connection refused")
	svc := NewService(failingStore{err: outage}, logger.NewNop())
	ctx := context.Background()

	calls := map[string]func() error{
		"create":   func() error { _, err := svc.Create(ctx, "x", link); return err },
		"upvote":   func() error { _, err := svc.Upvote(ctx, 1); return err },
		"downvote": func() error { _, err := svc.Downvote(ctx, 1); return err },
		"random":   func() error { _, err := svc.Random(ctx); return err },
		"recent":   func() error { _, err := svc.Recent(ctx); return err },
		"top":      func() error { _, err := svc.Top(ctx, 3); return err },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			err := call()
			if !errors.Is(err, outage) {
				t.Fatalf("error = %v, want wrapped %v", err, outage)
			}
			if errors.Is(err, domain.ErrNotFound) {
				t.Errorf("outage reported as not found: %v", err)
			}
		})
	}
}
