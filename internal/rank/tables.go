// internal/rank/tables.go
package rank

// Durations ranks the estimated-duration labels offered by the posting form.
// Ranks are calendar days, so "at least N days" comparisons work directly.
var Durations = MustNewCodec([]Entry{
	{Label: "1 day", Rank: 1},
	{Label: "2-3 days", Rank: 3},
	{Label: "3-4 days", Rank: 4},
	{Label: "less than 1 week", Rank: 6},
	{Label: "1-2 weeks", Rank: 14},
	{Label: "2-3 weeks", Rank: 21},
	{Label: "less than 1 month", Rank: 29},
	{Label: "1-2 months", Rank: 45},
	{Label: "2+ months", Rank: 60},
})

// Budgets ranks the budget buckets by their upper bound in whole currency
// units. The currency itself is an opaque tag on the posting and is never
// part of the ordering.
var Budgets = MustNewCodec([]Entry{
	{Label: "under $250", Rank: 250},
	{Label: "$250 - $500", Rank: 500},
	{Label: "$500 - $1,000", Rank: 1000},
	{Label: "$1,000 - $2,500", Rank: 2500},
	{Label: "$2,500 - $5,000", Rank: 5000},
	{Label: "$5,000 - $10,000", Rank: 10000},
	{Label: "$10,000+", Rank: 20000},
})
