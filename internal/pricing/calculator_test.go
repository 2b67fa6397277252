package pricing

import (
	"encoding/json"
	"testing"
	"time"

	"metalrates/internal/domain"

	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func ringItem() Item {
	return Item{
		MetalType:         "gold",
		NetWeight:         10,
		Purity:            91.6,
		MakingChargeMode:  MakingChargePerGram,
		MakingChargeValue: 500,
		StoneCharge:       0,
		TaxRate:           3,
	}
}

func TestCalculate_ItemisedBreakdown(t *testing.T) {
	b := Calculate(ringItem(), Flat{domain.MetalGold: 7000}, nil)

	require.InDelta(t, 64120, b.MetalCost, 1e-6)
	require.InDelta(t, 5000, b.MakingCharge, 1e-9)
	require.InDelta(t, 0, b.StoneCost, 1e-9)
	require.InDelta(t, 69120, b.Taxable, 1e-6)
	require.InDelta(t, 1036.8, b.CGST, 1e-6)
	require.InDelta(t, 1036.8, b.SGST, 1e-6)
	require.InDelta(t, 2073.6, b.TotalTax, 1e-6)
	require.InDelta(t, 71193.6, b.Total, 1e-6)
}

func TestCalculate_SplitTaxInvariant(t *testing.T) {
	items := []Item{
		ringItem(),
		{MetalType: "silver", NetWeight: 125.5, Purity: 0.925, MakingChargeMode: MakingChargeFixed, MakingChargeValue: 800, StoneCharge: 150, TaxRate: 3},
		{MetalType: "gold_22k", NetWeight: 4.2, Purity: 916, MakingChargeValue: 350, TaxRate: 5},
	}
	table := Flat{domain.MetalGold: 7000, domain.MetalGold22K: 6412, domain.MetalSilver: 92}

	for _, it := range items {
		b := Calculate(it, table, nil)
		require.Equal(t, b.CGST, b.SGST)
		require.InDelta(t, b.Taxable*(it.TaxRate.Float()/200), b.CGST, 1e-9)
		require.InDelta(t, b.Taxable+b.CGST+b.SGST, b.Total, 1e-9)
	}
}

func TestCalculate_IsDeterministic(t *testing.T) {
	table := Rows{{Metal: "gold", BuyRate: 6900, Margin: 100}}
	first := Calculate(ringItem(), table, nil)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, Calculate(ringItem(), table, nil))
	}
}

func TestCalculate_TaxOverride(t *testing.T) {
	b := Calculate(ringItem(), Flat{domain.MetalGold: 7000}, ptr(0))
	require.Zero(t, b.CGST)
	require.InDelta(t, 69120, b.Total, 1e-6)

	b = Calculate(ringItem(), Flat{domain.MetalGold: 7000}, ptr(5))
	require.InDelta(t, 69120*0.025, b.SGST, 1e-6)
}

func TestCalculate_FixedMakingChargeIsVerbatim(t *testing.T) {
	it := ringItem()
	it.MakingChargeMode = MakingChargeFixed
	it.MakingChargeValue = 1200

	b := Calculate(it, Flat{domain.MetalGold: 7000}, nil)
	require.Equal(t, 1200.0, b.MakingCharge)
}

func TestCalculate_UnknownMetalPricesMetalAtZero(t *testing.T) {
	it := ringItem()
	it.MetalType = "platinum"

	b := Calculate(it, Flat{domain.MetalGold: 7000}, nil)
	require.Zero(t, b.MetalCost)
	require.Equal(t, 5000.0, b.MakingCharge)
}

func TestNormalizePurity(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{91.6, 91.6},
		{100, 100},
		{0.916, 91.6},
		{1, 100},
		{916, 91.6},
		{999, 99.9},
		{0, 0},
		{-5, 0},
		{1001, 0},
	}
	for _, tt := range tests {
		require.InDelta(t, tt.want, NormalizePurity(tt.in), 1e-9, "purity %v", tt.in)
	}
}

func TestMetalCost_BookingPath(t *testing.T) {
	rate, cost := MetalCost(domain.MetalSilver, 10, Flat{domain.MetalSilver: 90})
	require.Equal(t, 90.0, rate)
	require.Equal(t, 900.0, cost)

	_, cost = MetalCost(domain.MetalSilver, 0, Flat{domain.MetalSilver: 90})
	require.Zero(t, cost)
}

func TestMetalCost_UsesDisplayRateOfPayload(t *testing.T) {
	p := domain.RatePayload{
		Timestamp: time.Now(),
		Source:    "emerald",
		Rates:     []domain.RateEntry{{Metal: domain.MetalGold, BuyRate: 7000, Margin: 200, DisplayRate: 7200}},
	}
	rate, cost := MetalCost(domain.MetalGold, 5, PayloadTable{Payload: p})
	require.Equal(t, 7200.0, rate)
	require.Equal(t, 36000.0, cost)
}

func TestTotals_RoundsToTwoDecimals(t *testing.T) {
	items := []Item{
		{MetalType: "silver", NetWeight: 3.333, Purity: 92.5, TaxRate: 3},
		{MetalType: "silver", NetWeight: 1.111, Purity: 92.5, TaxRate: 3},
	}
	table := Flat{domain.MetalSilver: 91.17}

	tot := Totals(items, table, nil)

	require.Equal(t, 2, tot.ItemCount)
	var raw float64
	for _, it := range items {
		raw += Calculate(it, table, nil).Total
	}
	require.Equal(t, Round2(raw), tot.Total)
	require.Equal(t, 386.02, tot.Total)
	require.Equal(t, tot.CGST, tot.SGST)
}

func TestPurchaseCost_UsesBuyRate(t *testing.T) {
	table := Rows{{Metal: "GOLD", BuyRate: 6800, DisplayRate: 7000}}
	cost := PurchaseCost(ringItem(), table)
	require.InDelta(t, 10*6800*0.916+5000, cost, 1e-6)
}

func TestItem_LenientJSON(t *testing.T) {
	var it Item
	raw := `{"metal_type":"Gold22k","net_weight":"10.5","purity":"91.6","mc_mode":"FIXED","mc_value":"1,200","stone_charge":null,"tax_rate":true}`
	require.NoError(t, json.Unmarshal([]byte(raw), &it))

	require.Equal(t, Num(10.5), it.NetWeight)
	require.Equal(t, Num(91.6), it.Purity)
	require.Equal(t, MakingChargeFixed, it.MakingChargeMode)
	require.Equal(t, Num(1200), it.MakingChargeValue)
	require.Zero(t, it.StoneCharge)
	require.Zero(t, it.TaxRate)
	require.Equal(t, domain.MetalGold22K, metalOf(it))
}

func TestItem_AcceptsCatalogAliasesAndExtraFields(t *testing.T) {
	var it Item
	raw := `{"name":"ring","sku":"R-1","metalType":"gold","net_wt":10,"karat":91.6,"mc_type":"PER_GRAM","mc_rate":500,"stone_charges":0,"gst_rate":3}`
	require.NoError(t, json.Unmarshal([]byte(raw), &it))

	b := Calculate(it, Flat{domain.MetalGold: 7000}, nil)
	require.InDelta(t, 71193.6, b.Total, 1e-6)
}

func TestItem_PrimaryKeyWinsOverAlias(t *testing.T) {
	var it Item
	require.NoError(t, json.Unmarshal([]byte(`{"net_weight":null,"net_wt":4,"weight":9}`), &it))
	require.Equal(t, Num(4), it.NetWeight)
}

func TestItem_NonStringModeReadsAsPerGram(t *testing.T) {
	var it Item
	require.NoError(t, json.Unmarshal([]byte(`{"metal_type":"gold","net_weight":2,"purity":100,"mc_mode":1,"mc_value":300}`), &it))

	require.Equal(t, MakingChargePerGram, it.MakingChargeMode)
	require.Equal(t, 600.0, Calculate(it, Flat{domain.MetalGold: 7000}, nil).MakingCharge)
}

func TestItem_MalformedEntriesPriceAtZero(t *testing.T) {
	var items []Item
	raw := `[{"metal_type":"gold","net_weight":10,"purity":91.6,"mc_value":500,"tax_rate":3}, "garbage", 42, null, {"metal_type":{"x":1},"net_weight":[1]}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	require.Len(t, items, 5)

	table := Flat{domain.MetalGold: 7000}
	for _, it := range items[1:] {
		require.Zero(t, Calculate(it, table, nil).Total)
	}
	require.InDelta(t, 71193.6, Totals(items, table, nil).Total, 1e-6)
}

func TestMakingChargeMode_UnmarshalJSON(t *testing.T) {
	tests := map[string]MakingChargeMode{
		`"FIXED"`:    MakingChargeFixed,
		`"flat"`:     MakingChargeFixed,
		`"per_gram"`: MakingChargePerGram,
		`"weird"`:    MakingChargePerGram,
		`1`:          MakingChargePerGram,
		`true`:       MakingChargePerGram,
	}
	for raw, want := range tests {
		var m MakingChargeMode
		require.NoError(t, json.Unmarshal([]byte(raw), &m), raw)
		require.Equal(t, want, m, raw)
	}
}

func TestItem_WithDefaultMakingCharge(t *testing.T) {
	var bare, stated Item
	require.NoError(t, json.Unmarshal([]byte(`{"metal_type":"silver","net_weight":10,"purity":92.5}`), &bare))
	require.NoError(t, json.Unmarshal([]byte(`{"metal_type":"silver","net_weight":10,"purity":92.5,"mc_value":0}`), &stated))

	got := bare.WithDefaultMakingCharge(12)
	require.Equal(t, MakingChargePerGram, got.MakingChargeMode)
	require.Equal(t, 120.0, Calculate(got, Flat{domain.MetalSilver: 90}, nil).MakingCharge)

	require.Zero(t, Calculate(stated.WithDefaultMakingCharge(12), Flat{domain.MetalSilver: 90}, nil).MakingCharge)
	require.Equal(t, domain.MetalSilver, bare.Metal())
}
