// internal/models/job.go
package models

import "time"

// JobSubmission is the raw posting form payload as received from the client.
// Every field is optional at the transport level; absent fields are coerced
// to their zero value during normalization, not rejected.
type JobSubmission struct {
	FirstName     string   `json:"firstName"`
	LastName      string   `json:"lastName"`
	Email         string   `json:"email"`
	PhoneNumber   string   `json:"phoneNumber"`
	Address       string   `json:"address"`
	PostalCode    string   `json:"postalCode"`
	City          string   `json:"city"`
	ProvinceState string   `json:"provinceState"`
	Country       string   `json:"country"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Skills        []string `json:"skills"`
	Duration      string   `json:"duration"` // categorical label, e.g. "2-3 days"
	Budget        string   `json:"budget"`   // categorical label, e.g. "$500 - $1,000"
	Currency      string   `json:"currency"`
}

// JobPosting is the persisted record. Duration and budget are stored as
// codec ranks, never as labels. CityLower is the server-computed lowercase
// copy of City used for case-insensitive equality indexing.
type JobPosting struct {
	ID                string    `json:"id"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	Email             string    `json:"email"`
	PhoneNumber       string    `json:"phoneNumber"`
	Address           string    `json:"address"`
	PostalCode        string    `json:"postalCode"`
	City              string    `json:"city"`
	CityLower         string    `json:"cityLower"`
	ProvinceState     string    `json:"provinceState"`
	Country           string    `json:"country"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Skills            []string  `json:"skills"`
	DurationRank      int       `json:"durationRank"`
	BudgetRank        int       `json:"budgetRank"`
	Currency          string    `json:"currency"`
	Timestamp         time.Time `json:"timestamp"`
	NumLeadsTotal     int       `json:"numLeadsTotal"`
	NumLeadsPurchased int       `json:"numLeadsPurchased"`
}

// JobSummary is the public listing view of a posting. It strips the contact
// fields (email, phone, address, postal code, last name) and has no lifecycle
// of its own; it is recomputed per request.
type JobSummary struct {
	ID                string    `json:"id"`
	FirstName         string    `json:"firstName"`
	City              string    `json:"city"`
	ProvinceState     string    `json:"provinceState"`
	Country           string    `json:"country"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Skills            []string  `json:"skills"`
	DurationRank      int       `json:"durationRank"`
	BudgetRank        int       `json:"budgetRank"`
	Currency          string    `json:"currency"`
	Timestamp         time.Time `json:"timestamp"`
	NumLeadsTotal     int       `json:"numLeadsTotal"`
	NumLeadsPurchased int       `json:"numLeadsPurchased"`
}

// SearchRequest is one search query as issued by a client. Rank bounds use
// zero as "unset"; zero is never a valid codec rank.
type SearchRequest struct {
	Keywords        string   `json:"keywords"`
	City            string   `json:"city"`
	Skills          []string `json:"skills"`
	DaysSincePosted int      `json:"daysSincePosted"`
	MinDurationRank int      `json:"minDurationRank"`
	MaxDurationRank int      `json:"maxDurationRank"`
	PageSize        int      `json:"pageSize"`
	Cursor          string   `json:"cursor"`
}

// SameFilters reports whether two requests describe the same logical search,
// ignoring pagination state. The accumulator uses it to decide between
// resetting and appending.
func (r SearchRequest) SameFilters(o SearchRequest) bool {
	if r.Keywords != o.Keywords || r.City != o.City ||
		r.DaysSincePosted != o.DaysSincePosted ||
		r.MinDurationRank != o.MinDurationRank ||
		r.MaxDurationRank != o.MaxDurationRank {
		return false
	}
	if len(r.Skills) != len(o.Skills) {
		return false
	}
	for i := range r.Skills {
		if r.Skills[i] != o.Skills[i] {
			return false
		}
	}
	return true
}
