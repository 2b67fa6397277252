package rate

import (
	"time"

	"metalrates/internal/domain"
)

// PayloadBuilder overlays admin margins on validated buy rates. The display
// rate is clamped after the margin is added so no margin can push a
// customer-facing price outside the safety bounds.
type PayloadBuilder struct {
	bounds BoundsTable
	static StaticRates
}

// Complete fills known metals missing from q, first from prev and then from
// the static table, so a partial quote still yields a full payload.
func (b *PayloadBuilder) Complete(q, prev domain.ValidatedQuote, gold22Ratio float64) domain.ValidatedQuote {
	out := domain.ValidatedQuote{
		Rates:     make(map[domain.Metal]domain.ValidatedRate, len(q.Rates)+3),
		Source:    q.Source,
		FetchedAt: q.FetchedAt,
	}
	for m, r := range q.Rates {
		out.Rates[m] = r
	}

	static := b.static.Quote(q.FetchedAt)
	for _, m := range domain.KnownMetals {
		if _, ok := out.BuyRate(m); ok {
			continue
		}
		if m == domain.MetalGold22K {
			if g, ok := out.BuyRate(domain.MetalGold); ok {
				out.Rates[m] = domain.ValidatedRate{Metal: m, BuyRate: g * gold22Ratio, Timestamp: q.FetchedAt}
				continue
			}
		}
		if r, ok := prev.Rates[m]; ok && r.BuyRate > 0 {
			out.Rates[m] = r
			continue
		}
		if r, ok := static.Rates[m]; ok {
			out.Rates[m] = r
		}
	}
	return out
}

// Build assembles one entry per known metal plus MCX entries the quote carries.
func (b *PayloadBuilder) Build(q domain.ValidatedQuote, margins map[domain.Metal]float64, now time.Time) domain.RatePayload {
	p := domain.RatePayload{
		Timestamp: now,
		Source:    q.Source,
		Rates:     make([]domain.RateEntry, 0, len(domain.KnownMetals)+len(domain.OptionalMetals)),
	}
	for _, m := range domain.KnownMetals {
		buy, _ := q.BuyRate(m)
		p.Rates = append(p.Rates, b.entry(m, buy, margins[m.Base()]))
	}
	for _, m := range domain.OptionalMetals {
		if buy, ok := q.BuyRate(m); ok {
			p.Rates = append(p.Rates, b.entry(m, buy, margins[m.Base()]))
		}
	}
	return p
}

func (b *PayloadBuilder) entry(m domain.Metal, buy, margin float64) domain.RateEntry {
	bounds := b.bounds.For(m)
	buy = bounds.Clamp(buy)
	return domain.RateEntry{
		Metal:       m,
		BuyRate:     buy,
		Margin:      margin,
		DisplayRate: bounds.Clamp(buy + margin),
	}
}

func NewPayloadBuilder(bounds BoundsTable, static StaticRates) *PayloadBuilder {
	return &PayloadBuilder{bounds: bounds, static: static}
}
