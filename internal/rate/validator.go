package rate

import (
	"errors"
	"fmt"
	"time"

	"metalrates/internal/domain"
)

var ErrNoValidRates = errors.New("no metal figure within safety bounds")

// BoundsTable holds per-gram safety bounds for every metal.
type BoundsTable map[domain.Metal]domain.Bounds

// NewBoundsTable expands gold and silver bounds to every metal: MCX series share
// their base metal's bounds and 22k gold is scaled by its purity ratio.
func NewBoundsTable(gold, silver domain.Bounds, gold22PurityRatio float64) BoundsTable {
	return BoundsTable{
		domain.MetalGold:      gold,
		domain.MetalGold22K:   gold.Scale(gold22PurityRatio),
		domain.MetalGoldMCX:   gold,
		domain.MetalSilver:    silver,
		domain.MetalSilverMCX: silver,
	}
}

func (t BoundsTable) For(m domain.Metal) domain.Bounds {
	return t[m]
}

// Validator rejects per-gram figures outside the safety bounds. Out-of-range
// figures are dropped, never clamped.
type Validator struct {
	bounds BoundsTable
}

type Rejection struct {
	Metal domain.Metal
	Value float64
	Bound domain.Bounds
}

func (r Rejection) String() string {
	return fmt.Sprintf("%s=%.2f outside [%.2f, %.2f]", r.Metal, r.Value, r.Bound.Min, r.Bound.Max)
}

// Validate keeps the metals that passed and reports the ones that did not.
// It fails only when nothing survives.
func (v *Validator) Validate(q domain.RawQuote) (domain.ValidatedQuote, []Rejection, error) {
	ts := q.FetchedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	out := domain.ValidatedQuote{
		Rates:     make(map[domain.Metal]domain.ValidatedRate, 5),
		Source:    q.Source,
		FetchedAt: ts,
	}

	var rejected []Rejection
	for m, val := range q.Figures() {
		if val <= 0 {
			continue
		}
		b, ok := v.bounds[m]
		if !ok || !b.Contains(val) {
			rejected = append(rejected, Rejection{Metal: m, Value: val, Bound: b})
			continue
		}
		out.Rates[m] = domain.ValidatedRate{Metal: m, BuyRate: val, Timestamp: ts}
	}

	if len(out.Rates) == 0 {
		return domain.ValidatedQuote{}, rejected, ErrNoValidRates
	}
	return out, rejected, nil
}

func NewValidator(bounds BoundsTable) *Validator {
	return &Validator{bounds: bounds}
}
