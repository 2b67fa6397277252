package rate

import (
	"testing"

	"metalrates/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestNormalizer_PerGram(t *testing.T) {
	n := NewFamilyNormalizer(nil, nil, 0.916)

	tests := []struct {
		name  string
		metal domain.Metal
		in    float64
		want  float64
	}{
		{"gold per gram", domain.MetalGold, 7015, 7015},
		{"gold per gram at fallback level", domain.MetalGold, 16288, 16288},
		{"gold per 10g", domain.MetalGold, 70000, 7000},
		{"gold per 10g high", domain.MetalGold, 162880, 16288},
		{"gold per kg", domain.MetalGold, 7015000, 7015},
		{"gold 22k per 10g", domain.MetalGold22K, 64120, 6412},
		{"gold mcx per 10g", domain.MetalGoldMCX, 71050, 7105},
		{"silver per gram", domain.MetalSilver, 92.5, 92.5},
		{"silver per 10g", domain.MetalSilver, 925, 92.5},
		{"silver per 100g", domain.MetalSilver, 9250, 92.5},
		{"silver per kg", domain.MetalSilver, 92500, 92.5},
		{"silver mcx per kg", domain.MetalSilverMCX, 91000, 91},
		{"zero", domain.MetalSilver, 0, 0},
		{"negative", domain.MetalGold, -5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, n.PerGram(tt.metal, tt.in), 1e-9)
		})
	}
}

func TestNormalizer_PerTenGramGoldPassesBoundsAsPerGram(t *testing.T) {
	n := NewFamilyNormalizer(nil, nil, 0.916)
	v := NewValidator(testBounds())

	q, _, err := v.Validate(n.Normalize(domain.RawQuote{Gold24: 70000, Silver: 90}))
	require.NoError(t, err)

	gold, ok := q.BuyRate(domain.MetalGold)
	require.True(t, ok)
	require.Equal(t, 7000.0, gold)
}

func TestNewFamilyNormalizer_CustomRules(t *testing.T) {
	n := NewFamilyNormalizer([]ScaleRule{{Above: 9000, Divisor: 10}}, nil, 0.916)

	require.Equal(t, 950.0, n.PerGram(domain.MetalGold, 9500))
	require.Equal(t, 950.0, n.PerGram(domain.MetalGold22K, 9500))
	require.Equal(t, 95.0, n.PerGram(domain.MetalSilver, 950))
}

func TestNormalizer_Normalize_Derives22kFrom24k(t *testing.T) {
	n := NewFamilyNormalizer(nil, nil, 0.916)

	out := n.Normalize(domain.RawQuote{Gold24: 160000, Silver: 92000, Source: "goodreturns"})

	require.Equal(t, 16000.0, out.Gold24)
	require.InDelta(t, 16000*0.916, out.Gold22, 1e-9)
	require.Equal(t, 92.0, out.Silver)
	require.Equal(t, "goodreturns", out.Source)
}

func TestNormalizer_Normalize_KeepsSupplied22k(t *testing.T) {
	n := NewFamilyNormalizer(nil, nil, 0.916)

	out := n.Normalize(domain.RawQuote{Gold24: 7000, Gold22: 6450})
	require.Equal(t, 6450.0, out.Gold22)
}

func TestNewNormalizer_InvalidRatioFallsBack(t *testing.T) {
	n := NewNormalizer(nil, 1.5)
	require.Equal(t, 0.916, n.Gold22PurityRatio())
}

func TestNewNormalizer_SortsRulesLargestFirst(t *testing.T) {
	n := NewNormalizer(map[domain.Metal][]ScaleRule{
		domain.MetalSilver: {{Above: 500, Divisor: 10}, {Above: 50000, Divisor: 1000}},
	}, 0.916)
	require.Equal(t, 95.0, n.PerGram(domain.MetalSilver, 95000))
}
