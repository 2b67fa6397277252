package domain

import (
	"time"
)

const (
	SourceLiveMarket = "live_market"
	SourceEstimated  = "estimated"
)

// RawQuote is what one source attempt produced. Figures are in whatever
// scale the source publishes; zero means "not supplied".
type RawQuote struct {
	Gold24    float64
	Gold22    float64
	Silver    float64
	GoldMCX   float64
	SilverMCX float64
	Source    string
	FetchedAt time.Time
}

func (q RawQuote) HasData() bool {
	return q.Gold24 > 0 || q.Gold22 > 0 || q.Silver > 0 || q.GoldMCX > 0 || q.SilverMCX > 0
}

func (q RawQuote) Figures() map[Metal]float64 {
	return map[Metal]float64{
		MetalGold:      q.Gold24,
		MetalGold22K:   q.Gold22,
		MetalSilver:    q.Silver,
		MetalGoldMCX:   q.GoldMCX,
		MetalSilverMCX: q.SilverMCX,
	}
}

type ValidatedRate struct {
	Metal     Metal
	BuyRate   float64
	Timestamp time.Time
}

// ValidatedQuote holds per-gram buy rates that passed the safety bounds.
type ValidatedQuote struct {
	Rates     map[Metal]ValidatedRate
	Source    string
	FetchedAt time.Time
}

func (q ValidatedQuote) BuyRate(m Metal) (float64, bool) {
	r, ok := q.Rates[m]
	if !ok || r.BuyRate <= 0 {
		return 0, false
	}
	return r.BuyRate, true
}

type Margin struct {
	Metal     Metal     `json:"metal_type"`
	Amount    float64   `json:"admin_margin"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RateEntry struct {
	Metal       Metal   `json:"metal_type"`
	BuyRate     float64 `json:"buy_rate"`
	Margin      float64 `json:"admin_margin"`
	DisplayRate float64 `json:"display_rate"`
}

// RatePayload is the unit of broadcast and of the pull response.
type RatePayload struct {
	Timestamp time.Time   `json:"ts"`
	Source    string      `json:"source"`
	Rates     []RateEntry `json:"rates"`
}

func (p RatePayload) Entry(m Metal) (RateEntry, bool) {
	for _, e := range p.Rates {
		if e.Metal == m {
			return e, true
		}
	}
	return RateEntry{}, false
}

func (p RatePayload) Estimated() bool {
	return p.Source == SourceEstimated
}

// StoredRate is one row of the persisted rates table.
type StoredRate struct {
	Metal       Metal
	BuyRate     float64
	DisplayRate float64
	Margin      float64
	Source      string
	UpdatedAt   time.Time
}
