// internal/search/planner.go

// Package search plans job queries against the native store, pages through
// results, and accumulates them across "load more" rounds.
package search

import (
	"strings"
	"time"

	"tradeboard/internal/models"
	"tradeboard/internal/store"
)

// ResidualFilter holds the predicates the store cannot evaluate. Duration
// rank bounds and keywords are always residual: the one native range slot is
// reserved for the timestamp bound that shares an index with the mandatory
// timestamp-descending sort. Zero-valued bounds are absent (zero is never a
// valid rank).
type ResidualFilter struct {
	MinDurationRank int
	MaxDurationRank int
	Keywords        []string // lowercased, whitespace-split
}

// Empty reports whether no residual predicate is set, meaning every fetched
// row is visible as-is.
func (f ResidualFilter) Empty() bool {
	return f.MinDurationRank == 0 && f.MaxDurationRank == 0 && len(f.Keywords) == 0
}

// Matches evaluates the residual predicates against a fetched posting. It
// never re-checks predicates that were pushed to the store.
func (f ResidualFilter) Matches(p models.JobPosting) bool {
	if f.MinDurationRank != 0 && p.DurationRank < f.MinDurationRank {
		return false
	}
	if f.MaxDurationRank != 0 && p.DurationRank > f.MaxDurationRank {
		return false
	}
	if len(f.Keywords) > 0 && !matchesKeywords(f.Keywords, p) {
		return false
	}
	return true
}

// matchesKeywords is an OR-match: any keyword found in the title or the
// description (case-insensitive) is enough.
func matchesKeywords(keywords []string, p models.JobPosting) bool {
	title := strings.ToLower(p.Title)
	desc := strings.ToLower(p.Description)
	for _, kw := range keywords {
		if strings.Contains(title, kw) || strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}

// Plan splits a request into the store-side query and the residual filter.
// Pushed, in fixed priority order: city equality (on the lowercase copy),
// skills array-contains-any, and the posting-age range bound. Everything else
// stays residual regardless of what a particular backend could do, so both
// backends behave identically.
func Plan(req models.SearchRequest, now time.Time) (store.NativeQuery, ResidualFilter) {
	q := store.NativeQuery{
		CityLower:   strings.ToLower(req.City),
		SkillsAnyOf: req.Skills,
	}
	if req.DaysSincePosted > 0 {
		q.PostedAfter = now.Add(-time.Duration(req.DaysSincePosted) * 24 * time.Hour)
	}

	f := ResidualFilter{
		MinDurationRank: req.MinDurationRank,
		MaxDurationRank: req.MaxDurationRank,
		Keywords:        strings.Fields(strings.ToLower(req.Keywords)),
	}
	return q, f
}

// MatchesAll evaluates every predicate of the request directly against a
// posting, bypassing the native/residual split. Reference semantics for
// tests: for any posting, MatchesAll must agree with native-match plus
// ResidualFilter.Matches.
func MatchesAll(req models.SearchRequest, now time.Time, p models.JobPosting) bool {
	if req.City != "" && p.CityLower != strings.ToLower(req.City) {
		return false
	}
	if len(req.Skills) > 0 && !anyOverlap(req.Skills, p.Skills) {
		return false
	}
	if req.DaysSincePosted > 0 {
		cutoff := now.Add(-time.Duration(req.DaysSincePosted) * 24 * time.Hour)
		if p.Timestamp.Before(cutoff) {
			return false
		}
	}
	_, f := Plan(req, now)
	return f.Matches(p)
}

func anyOverlap(want, have []string) bool {
	for _, w := range want {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}
