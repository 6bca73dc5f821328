// internal/rank/codec.go

// Package rank maps categorical labels (durations, budget buckets) to totally
// ordered integer ranks so that range comparisons can be applied to
// non-numeric fields. Ranks are sparse; only enumerated values are valid.
package rank

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownLabel = errors.New("UNKNOWN_LABEL")
	ErrUnknownRank  = errors.New("UNKNOWN_RANK")
)

// Entry is one label with its assigned rank.
type Entry struct {
	Label string
	Rank  int
}

// Codec is an immutable bidirectional label/rank mapping. Construct with
// NewCodec; the zero value is unusable.
type Codec struct {
	entries []Entry
	byLabel map[string]int
	byRank  map[int]string
}

// NewCodec builds a codec from an ordered enumeration. Ranks must be strictly
// increasing so that rank comparisons mirror real-world magnitude.
func NewCodec(entries []Entry) (*Codec, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("rank: empty enumeration")
	}

	c := &Codec{
		entries: entries,
		byLabel: make(map[string]int, len(entries)),
		byRank:  make(map[int]string, len(entries)),
	}

	// Zero is reserved as the "unset" bound in filters, so the first rank
	// must already be positive.
	prev := 0
	for _, e := range entries {
		if e.Rank <= prev {
			return nil, fmt.Errorf("rank: non-monotonic rank %d for label %q", e.Rank, e.Label)
		}
		if _, dup := c.byLabel[e.Label]; dup {
			return nil, fmt.Errorf("rank: duplicate label %q", e.Label)
		}
		c.byLabel[e.Label] = e.Rank
		c.byRank[e.Rank] = e.Label
		prev = e.Rank
	}

	return c, nil
}

// MustNewCodec is NewCodec for the package-level enumerations, which are
// validated at init time.
func MustNewCodec(entries []Entry) *Codec {
	c, err := NewCodec(entries)
	if err != nil {
		panic(err)
	}
	return c
}

// RankOf returns the rank assigned to label.
func (c *Codec) RankOf(label string) (int, error) {
	r, ok := c.byLabel[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	return r, nil
}

// LabelOf returns the label assigned to exactly rank. Ranks between
// enumerated values are invalid.
func (c *Codec) LabelOf(r int) (string, error) {
	label, ok := c.byRank[r]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownRank, r)
	}
	return label, nil
}

// Labels returns the enumeration in rank order.
func (c *Codec) Labels() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Label
	}
	return out
}

// MinRank returns the smallest valid rank.
func (c *Codec) MinRank() int { return c.entries[0].Rank }

// MaxRank returns the largest valid rank.
func (c *Codec) MaxRank() int { return c.entries[len(c.entries)-1].Rank }
