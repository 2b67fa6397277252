package rate

import (
	"testing"
	"time"

	"metalrates/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestNewBoundsTable(t *testing.T) {
	b := testBounds()
	require.Equal(t, testGoldBounds, b.For(domain.MetalGold))
	require.Equal(t, testGoldBounds, b.For(domain.MetalGoldMCX))
	require.Equal(t, testSilverBounds, b.For(domain.MetalSilverMCX))
	require.InDelta(t, 6000*0.916, b.For(domain.MetalGold22K).Min, 1e-9)
	require.InDelta(t, 90000*0.916, b.For(domain.MetalGold22K).Max, 1e-9)
}

func TestValidator_Validate_DropsOutOfBoundsFigures(t *testing.T) {
	v := NewValidator(testBounds())
	ts := time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)

	q, rejected, err := v.Validate(domain.RawQuote{Gold24: 7000, Gold22: 6412, Silver: 1200, Source: "emerald", FetchedAt: ts})

	require.NoError(t, err)
	require.Len(t, rejected, 1)
	require.Equal(t, domain.MetalSilver, rejected[0].Metal)
	require.Contains(t, rejected[0].String(), "silver=1200.00")

	gold, ok := q.BuyRate(domain.MetalGold)
	require.True(t, ok)
	require.Equal(t, 7000.0, gold)
	_, ok = q.BuyRate(domain.MetalSilver)
	require.False(t, ok)
	require.Equal(t, "emerald", q.Source)
	require.Equal(t, ts, q.FetchedAt)
}

func TestValidator_Validate_BoundsAreInclusive(t *testing.T) {
	v := NewValidator(testBounds())

	q, rejected, err := v.Validate(domain.RawQuote{Gold24: 90000, Silver: 80})
	require.NoError(t, err)
	require.Empty(t, rejected)
	require.Len(t, q.Rates, 2)
}

func TestValidator_Validate_NothingSurvives(t *testing.T) {
	v := NewValidator(testBounds())

	_, rejected, err := v.Validate(domain.RawQuote{Gold24: 10, Silver: 10000})
	require.ErrorIs(t, err, ErrNoValidRates)
	require.Len(t, rejected, 2)
}

func TestValidator_Validate_EmptyQuote(t *testing.T) {
	v := NewValidator(testBounds())

	_, rejected, err := v.Validate(domain.RawQuote{})
	require.ErrorIs(t, err, ErrNoValidRates)
	require.Empty(t, rejected)
}
