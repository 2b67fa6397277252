package pricing

import (
	"encoding/json"
	"math"
	"strings"

	"metalrates/internal/domain"
)

type MakingChargeMode string

const (
	MakingChargePerGram MakingChargeMode = "per_gram"
	MakingChargeFixed   MakingChargeMode = "fixed"
)

func ParseMakingChargeMode(s string) MakingChargeMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed", "flat":
		return MakingChargeFixed
	}
	return MakingChargePerGram
}

// UnmarshalJSON reads any value that is not "fixed" or "flat" as per gram.
func (m *MakingChargeMode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*m = MakingChargePerGram
		return nil
	}
	*m = ParseMakingChargeMode(s)
	return nil
}

// Item is the catalog view of one priced piece.
type Item struct {
	MetalType         string           `json:"metal_type"`
	NetWeight         Num              `json:"net_weight"`
	Purity            Num              `json:"purity"`
	MakingChargeMode  MakingChargeMode `json:"mc_mode"`
	MakingChargeValue Num              `json:"mc_value"`
	StoneCharge       Num              `json:"stone_charge"`
	TaxRate           Num              `json:"tax_rate"`

	hasMakingCharge bool
}

// Catalog entries use several spellings for the same attribute; the first
// non-null key in each list wins.
var (
	metalKeys  = []string{"metal_type", "metalType"}
	weightKeys = []string{"net_weight", "net_wt", "weight", "netWt", "wt"}
	purityKeys = []string{"purity", "karat", "k"}
	modeKeys   = []string{"mc_mode", "mc_type", "mcType"}
	mcKeys     = []string{"mc_value", "mc_rate", "mc"}
	stoneKeys  = []string{"stone_charge", "stone_charges", "stoneCharges"}
	taxKeys    = []string{"tax_rate", "gst_rate"}
)

// UnmarshalJSON never fails: unknown attributes are ignored and anything that
// is not an object decodes to an empty item, which prices at zero.
func (it *Item) UnmarshalJSON(b []byte) error {
	*it = Item{MakingChargeMode: MakingChargePerGram}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil
	}

	if raw, ok := firstField(fields, metalKeys); ok {
		_ = json.Unmarshal(raw, &it.MetalType)
	}
	it.NetWeight = numField(fields, weightKeys)
	it.Purity = numField(fields, purityKeys)
	if raw, ok := firstField(fields, modeKeys); ok {
		_ = it.MakingChargeMode.UnmarshalJSON(raw)
	}
	if raw, ok := firstField(fields, mcKeys); ok {
		_ = it.MakingChargeValue.UnmarshalJSON(raw)
		it.hasMakingCharge = true
	}
	it.StoneCharge = numField(fields, stoneKeys)
	it.TaxRate = numField(fields, taxKeys)
	return nil
}

// WithDefaultMakingCharge returns the item with a per-gram making charge of
// perGram when the entry did not state one.
func (it Item) WithDefaultMakingCharge(perGram float64) Item {
	if it.hasMakingCharge || it.MakingChargeValue != 0 || perGram <= 0 {
		return it
	}
	it.MakingChargeMode = MakingChargePerGram
	it.MakingChargeValue = Num(perGram)
	return it
}

// Metal is the metal the item is priced as; an empty type means gold.
func (it Item) Metal() domain.Metal { return metalOf(it) }

func firstField(fields map[string]json.RawMessage, keys []string) (json.RawMessage, bool) {
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok || string(raw) == "null" {
			continue
		}
		return raw, true
	}
	return nil, false
}

func numField(fields map[string]json.RawMessage, keys []string) Num {
	var n Num
	if raw, ok := firstField(fields, keys); ok {
		_ = n.UnmarshalJSON(raw)
	}
	return n
}

type Breakdown struct {
	Rate         float64 `json:"rate"`
	PurityPct    float64 `json:"purity_pct"`
	MetalCost    float64 `json:"metal_cost"`
	MakingCharge float64 `json:"making_charge"`
	StoneCost    float64 `json:"stone_cost"`
	Taxable      float64 `json:"taxable"`
	CGST         float64 `json:"cgst"`
	SGST         float64 `json:"sgst"`
	TotalTax     float64 `json:"total_tax"`
	Total        float64 `json:"total"`
}

type BillTotals struct {
	ItemCount int     `json:"item_count"`
	Taxable   float64 `json:"taxable"`
	CGST      float64 `json:"cgst"`
	SGST      float64 `json:"sgst"`
	TotalTax  float64 `json:"total_tax"`
	Total     float64 `json:"total"`
}

// NormalizePurity returns purity as a percentage: (1,100] is taken as is,
// (0,1] as a fraction, (100,1000] as fineness in parts per thousand. Anything else is 0.
func NormalizePurity(p float64) float64 {
	switch {
	case p > 1 && p <= 100:
		return p
	case p > 0 && p <= 1:
		return p * 100
	case p > 100 && p <= 1000:
		return p / 10
	}
	return 0
}

func metalOf(item Item) domain.Metal {
	if item.MetalType == "" {
		return domain.MetalGold
	}
	m, ok := domain.ParseMetal(item.MetalType)
	if !ok {
		return domain.Metal(strings.ToLower(item.MetalType))
	}
	return m
}

func nonNeg(v Num) float64 {
	if v < 0 {
		return 0
	}
	return v.Float()
}

func makingCharge(item Item) float64 {
	if item.MakingChargeMode == MakingChargeFixed {
		return item.MakingChargeValue.Float()
	}
	return nonNeg(item.NetWeight) * item.MakingChargeValue.Float()
}

// Calculate prices one item against table. taxOverride, when set, replaces the
// item's own tax rate. The function has no side effects.
func Calculate(item Item, table RateTable, taxOverride *float64) Breakdown {
	var b Breakdown
	if table != nil {
		b.Rate = table.SellRate(metalOf(item))
	}
	b.PurityPct = NormalizePurity(item.Purity.Float())

	weight := nonNeg(item.NetWeight)
	b.MetalCost = weight * b.Rate * (b.PurityPct / 100)
	b.MakingCharge = makingCharge(item)
	b.StoneCost = item.StoneCharge.Float()
	b.Taxable = b.MetalCost + b.MakingCharge + b.StoneCost

	tax := item.TaxRate.Float()
	if taxOverride != nil {
		tax = *taxOverride
	}
	if tax > 0 {
		b.CGST = b.Taxable * (tax / 200)
		b.SGST = b.Taxable * (tax / 200)
	}
	b.TotalTax = b.CGST + b.SGST
	b.Total = b.Taxable + b.TotalTax
	return b
}

// MetalCost is the booking lookup: weight times the per-gram sell rate at full
// purity, with no making charge, stone or tax.
func MetalCost(metal domain.Metal, weight float64, table RateTable) (rate, cost float64) {
	if table == nil || weight <= 0 {
		return 0, 0
	}
	rate = table.SellRate(metal)
	return rate, weight * rate
}

// Totals sums the breakdowns of items and rounds each figure to 2 decimals.
func Totals(items []Item, table RateTable, taxOverride *float64) BillTotals {
	var t BillTotals
	for _, it := range items {
		b := Calculate(it, table, taxOverride)
		t.ItemCount++
		t.Taxable += b.Taxable
		t.CGST += b.CGST
		t.SGST += b.SGST
		t.TotalTax += b.TotalTax
		t.Total += b.Total
	}
	t.Taxable = Round2(t.Taxable)
	t.CGST = Round2(t.CGST)
	t.SGST = Round2(t.SGST)
	t.TotalTax = Round2(t.TotalTax)
	t.Total = Round2(t.Total)
	return t
}

// PurchaseCost is the buy-side cost of an item: metal at the raw buy rate plus making charge.
func PurchaseCost(item Item, table RateTable) float64 {
	if table == nil {
		return 0
	}
	rate := table.BuyRate(metalOf(item))
	metal := nonNeg(item.NetWeight) * rate * (NormalizePurity(item.Purity.Float()) / 100)
	return metal + makingCharge(item)
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
