package domain

import "regexp"

const (
	// DeleteThreshold is the score at or below which a recommendation is removed.
	DeleteThreshold = -6

	// RecentLimit is the number of recommendations returned by the recent listing.
	RecentLimit = 10
)

// YouTubeLinkPattern matches watch and share URLs on youtube.com and youtu.be,
// with optional scheme and www. prefix.
var YouTubeLinkPattern = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.?be)/.+$`)

// Recommendation is a named YouTube link with an integer score.
//
// It is the only persisted entity. The store assigns the ID and is the sole
// arbiter of the score: nothing keeps a copy of it in memory.
type Recommendation struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is assigned by the store on creation and never reused.
	ID int64 `json:"id"`

	// Name is unique across all recommendations.
	Name string `json:"name"`

	// YoutubeLink must match YouTubeLinkPattern.
	YoutubeLink string `json:"youtubeLink"`

	// ─────────────────────────────
	// Voting
	// ─────────────────────────────

	// Score starts at 0 and moves by exactly one per vote.
	Score int `json:"score"`
}

// NewRecommendation carries the fields accepted at creation time.
// Score is only set by test scenarios that seed the store directly.
type NewRecommendation struct {
	Name        string `json:"name" validate:"required"`
	YoutubeLink string `json:"youtubeLink" validate:"required,youtube"`
	Score       int    `json:"-"`
}

// VoteResult is the outcome of a single vote.
// When Deleted is true the recommendation no longer exists and Score holds
// the value that triggered the deletion.
type VoteResult struct {
	Recommendation
	Deleted bool `json:"deleted"`
}

// IsYouTubeLink reports whether link points at youtube.com or youtu.be.
func IsYouTubeLink(link string) bool {
	return YouTubeLinkPattern.MatchString(link)
}

// ShouldDelete reports whether a recommendation with the given score must be removed.
func ShouldDelete(score int) bool {
	return score <= DeleteThreshold
}
