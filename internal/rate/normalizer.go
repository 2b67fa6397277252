package rate

import (
	"sort"

	"metalrates/internal/domain"
)

// ScaleRule rescales a figure above a magnitude threshold: a value greater than
// Above is divided by Divisor.
type ScaleRule struct {
	Above   float64
	Divisor float64
}

// Normalizer turns raw source figures into per-gram figures. Sources publish
// per gram, per 10 g, per 100 g or per kg; the scale is inferred from magnitude
// thresholds configured per metal family.
type Normalizer struct {
	rules             map[domain.Metal][]ScaleRule
	gold22PurityRatio float64
}

// DefaultGoldScaleRules treat figures above 1,000,000 as per kg and figures
// above 20,000 as per 10 g. Gold above 20,000 per gram is not a realistic quote.
func DefaultGoldScaleRules() []ScaleRule {
	return []ScaleRule{
		{Above: 1_000_000, Divisor: 1000},
		{Above: 20_000, Divisor: 10},
	}
}

// DefaultSilverScaleRules treat figures above 50,000 as per kg, above 5,000 as
// per 100 g and above 500 as per 10 g.
func DefaultSilverScaleRules() []ScaleRule {
	return []ScaleRule{
		{Above: 50_000, Divisor: 1000},
		{Above: 5_000, Divisor: 100},
		{Above: 500, Divisor: 10},
	}
}

func (n *Normalizer) PerGram(m domain.Metal, v float64) float64 {
	if v <= 0 {
		return 0
	}
	for _, r := range n.rules[m] {
		if r.Divisor > 0 && v > r.Above {
			return v / r.Divisor
		}
	}
	return v
}

// Normalize rescales every figure of q and derives 22k from 24k when the
// source did not supply it.
func (n *Normalizer) Normalize(q domain.RawQuote) domain.RawQuote {
	out := q
	out.Gold24 = n.PerGram(domain.MetalGold, q.Gold24)
	out.Gold22 = n.PerGram(domain.MetalGold22K, q.Gold22)
	out.Silver = n.PerGram(domain.MetalSilver, q.Silver)
	out.GoldMCX = n.PerGram(domain.MetalGoldMCX, q.GoldMCX)
	out.SilverMCX = n.PerGram(domain.MetalSilverMCX, q.SilverMCX)
	if out.Gold22 == 0 && out.Gold24 > 0 {
		out.Gold22 = out.Gold24 * n.gold22PurityRatio
	}
	return out
}

func (n *Normalizer) Gold22PurityRatio() float64 { return n.gold22PurityRatio }

// NewNormalizer sorts each metal's rules by descending threshold so the
// largest scale is tested first.
func NewNormalizer(rules map[domain.Metal][]ScaleRule, gold22PurityRatio float64) *Normalizer {
	sorted := make(map[domain.Metal][]ScaleRule, len(rules))
	for m, rs := range rules {
		cp := append([]ScaleRule(nil), rs...)
		sort.Slice(cp, func(i, j int) bool { return cp[i].Above > cp[j].Above })
		sorted[m] = cp
	}
	if gold22PurityRatio <= 0 || gold22PurityRatio > 1 {
		gold22PurityRatio = 0.916
	}
	return &Normalizer{rules: sorted, gold22PurityRatio: gold22PurityRatio}
}

// NewFamilyNormalizer applies gold rules to every gold metal and silver rules
// to every silver metal. An empty rule set selects the defaults.
func NewFamilyNormalizer(gold, silver []ScaleRule, gold22PurityRatio float64) *Normalizer {
	if len(gold) == 0 {
		gold = DefaultGoldScaleRules()
	}
	if len(silver) == 0 {
		silver = DefaultSilverScaleRules()
	}
	rules := make(map[domain.Metal][]ScaleRule, len(domain.KnownMetals)+len(domain.OptionalMetals))
	for _, m := range append(append([]domain.Metal(nil), domain.KnownMetals...), domain.OptionalMetals...) {
		if m.Base() == domain.MetalSilver {
			rules[m] = silver
		} else {
			rules[m] = gold
		}
	}
	return NewNormalizer(rules, gold22PurityRatio)
}
