package domain

// Column names a sortable recommendation column.
type Column string

const (
	OrderByID    Column = "id"
	OrderByScore Column = "score"
)

// ListOptions controls an ordered listing.
// When ordering by score, ties are broken by ascending ID (insertion order).
type ListOptions struct {
	OrderBy Column
	Desc    bool
	Limit   int // 0 = no limit
}

// RecentOptions lists the newest recommendations first.
func RecentOptions() ListOptions {
	return ListOptions{OrderBy: OrderByID, Desc: true, Limit: RecentLimit}
}

// TopOptions lists the best scored recommendations first.
func TopOptions(amount int) ListOptions {
	return ListOptions{OrderBy: OrderByScore, Desc: true, Limit: amount}
}

// Valid reports whether the column is one the stores know how to sort by.
func (c Column) Valid() bool {
	return c == OrderByID || c == OrderByScore
}
