package fixtures

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/MrSnakeDoc/singme/internal/domain"
	"github.com/MrSnakeDoc/singme/internal/logger"
	"github.com/MrSnakeDoc/singme/internal/store/sqlite"
)

func newFactory(t *testing.T) *Factory {
	t.Helper()
	cat, err := DefaultCatalogue()
	if err != nil {
		t.Fatalf("DefaultCatalogue() error = %v", err)
	}
	return NewFactory(cat, rand.New(rand.NewPCG(1, 2)))
}

func TestDefaultCatalogue(t *testing.T) {
	cat, err := DefaultCatalogue()
	if err != nil {
		t.Fatalf("DefaultCatalogue() error = %v", err)
	}
	if len(cat.Videos) == 0 || len(cat.Words) == 0 {
		t.Fatalf("DefaultCatalogue() = %+v, want videos and words", cat)
	}
}

func TestParseCatalogue(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{name: "valid", yaml: "videos: [https://youtu.be/abc]\nwords: [a]\n"},
		{name: "no videos", yaml: "words: [a]\n", wantErr: true},
		{name: "no words", yaml: "videos: [https://youtu.be/abc]\n", wantErr: true},
		{name: "bad link", yaml: "videos: [https://vimeo.com/1]\nwords: [a]\n", wantErr: true},
		{name: "malformed", yaml: "videos: [unterminated\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalogue([]byte(tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseCatalogue() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFactoryBuild(t *testing.T) {
	f := newFactory(t)

	seen := make(map[string]bool)
	for range 200 {
		in := f.Build(&ScoreRange{Min: -5, Max: 10})
		if !domain.IsYouTubeLink(in.YoutubeLink) {
			t.Fatalf("Build() link %q is not a youtube link", in.YoutubeLink)
		}
		if len(strings.Fields(in.Name)) != nameWords+1 {
			t.Fatalf("Build() name %q, want %d words plus suffix", in.Name, nameWords)
		}
		if in.Score < -5 || in.Score > 10 {
			t.Fatalf("Build() score %d outside [-5,10]", in.Score)
		}
		if seen[in.Name] {
			t.Fatalf("Build() repeated name %q", in.Name)
		}
		seen[in.Name] = true
	}

	if got := f.Build(nil).Score; got != 0 {
		t.Errorf("Build(nil) score = %d, want 0", got)
	}
}

func TestScoreRangeValidate(t *testing.T) {
	tests := []struct {
		name    string
		r       ScoreRange
		wantErr bool
	}{
		{name: "valid", r: ScoreRange{Min: -5, Max: 100}},
		{name: "single value", r: ScoreRange{Min: 3, Max: 3}},
		{name: "inverted", r: ScoreRange{Min: 10, Max: 1}, wantErr: true},
		{name: "at threshold", r: ScoreRange{Min: -6, Max: 0}, wantErr: true},
		{name: "max score", r: ScoreRange{Min: 0, Max: MaxSeedScore}},
		{name: "above max score", r: ScoreRange{Min: 0, Max: MaxSeedScore + 1}, wantErr: true},
		{name: "max int", r: ScoreRange{Min: 0, Max: math.MaxInt}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			var ve *domain.ValidationError
			if tt.wantErr && !errors.As(err, &ve) {
				t.Errorf("Validate() error = %T, want *domain.ValidationError", err)
			}
		})
	}
}

func TestPopulateRequestValidate(t *testing.T) {
	tests := []struct {
		name      string
		req       PopulateRequest
		wantRange *ScoreRange
		wantErr   bool
	}{
		{name: "amount only", req: PopulateRequest{Amount: 5}},
		{name: "with scores", req: PopulateRequest{Amount: 5, RandomScores: []int{-5, 20}}, wantRange: &ScoreRange{Min: -5, Max: 20}},
		{name: "zero amount", req: PopulateRequest{Amount: 0}, wantErr: true},
		{name: "too many", req: PopulateRequest{Amount: MaxPopulate + 1}, wantErr: true},
		{name: "one score", req: PopulateRequest{Amount: 1, RandomScores: []int{1}}, wantErr: true},
		{name: "deletable scores", req: PopulateRequest{Amount: 1, RandomScores: []int{-10, 0}}, wantErr: true},
		{name: "scores beyond int32", req: PopulateRequest{Amount: 1, RandomScores: []int{0, math.MaxInt}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if (got == nil) != (tt.wantRange == nil) || (got != nil && *got != *tt.wantRange) {
				t.Errorf("Validate() = %+v, want %+v", got, tt.wantRange)
			}
		})
	}
}

type brokenInserter struct{ err error }

func (b brokenInserter) InsertMany(context.Context, []domain.NewRecommendation) ([]domain.Recommendation, error) {
	return nil, b.err
}

func TestSeedReturnsNothingOnFailure(t *testing.T) {
	boom := errors.New("disk full")
	recs, err := newFactory(t).Seed(context.Background(), brokenInserter{err: boom}, 10, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Seed() error = %v, want %v", err, boom)
	}
	if recs != nil {
		t.Errorf("Seed() = %d recommendations on failure, want none", len(recs))
	}
}

func TestScenario(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("sqlite.New() error = %v", err)
	}
	defer store.Close()

	sc := NewScenario(store, newFactory(t), logger.NewNop())

	recs, err := sc.Populate(ctx, PopulateRequest{Amount: 25, RandomScores: []int{0, 50}})
	if err != nil {
		t.Fatalf("Populate() error = %v", err)
	}
	if len(recs) != 25 {
		t.Fatalf("Populate() inserted %d, want 25", len(recs))
	}

	above, rest, err := store.CountByTier(ctx, domain.TopTierThreshold)
	if err != nil || above+rest != 25 {
		t.Fatalf("CountByTier() = %d, %d, %v; want 25 total", above, rest, err)
	}

	if _, err := sc.Populate(ctx, PopulateRequest{Amount: 0}); err == nil {
		t.Error("Populate() with zero amount should fail")
	}

	var ve *domain.ValidationError
	if _, err := sc.Populate(ctx, PopulateRequest{Amount: 1, RandomScores: []int{0, math.MaxInt}}); !errors.As(err, &ve) {
		t.Errorf("Populate() with an unbounded score range error = %v, want *domain.ValidationError", err)
	}

	if err := sc.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if _, err := store.SampleRandom(ctx, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("SampleRandom() after reset error = %v, want ErrNotFound", err)
	}
}
