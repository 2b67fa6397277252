package domain

import "math"

type MakingCharges struct {
	Gold   float64 `json:"gold"`
	Silver float64 `json:"silver"`
}

type BookingWeights struct {
	Gold   []float64 `json:"gold"`
	Silver []float64 `json:"silver"`
}

// Settings are the admin-managed globals consumed by the booking and quotation flows.
type Settings struct {
	ImportDutyPct     float64        `json:"import_duty_pct"`
	PremiumPct        float64        `json:"premium_pct"`
	MakingCharges     MakingCharges  `json:"making_charges"`
	BookingWeights    BookingWeights `json:"booking_weights"`
	AdvanceAmount     float64        `json:"advance_amount"`
	AllowCustomWeight bool           `json:"allow_custom_weight"`
}

func DefaultSettings() Settings {
	return Settings{
		MakingCharges:     MakingCharges{},
		BookingWeights:    BookingWeights{Gold: []float64{1, 5, 10, 50}, Silver: []float64{10, 100, 1000}},
		AdvanceAmount:     5000,
		AllowCustomWeight: true,
	}
}

func (s Settings) WeightsFor(m Metal) []float64 {
	if m.Base() == MetalSilver {
		return s.BookingWeights.Silver
	}
	return s.BookingWeights.Gold
}

func (s Settings) MakingChargeFor(m Metal) float64 {
	if m.Base() == MetalSilver {
		return s.MakingCharges.Silver
	}
	return s.MakingCharges.Gold
}

// SurchargeFactor is the multiplier import duty and premium apply to a booked rate.
func (s Settings) SurchargeFactor() float64 {
	return 1 + (s.ImportDutyPct+s.PremiumPct)/100
}

func (s Settings) Validate() error {
	pcts := []float64{s.ImportDutyPct, s.PremiumPct}
	for _, p := range pcts {
		if math.IsNaN(p) || p < 0 || p > 100 {
			return ErrInvalidSettings
		}
	}
	nonNeg := []float64{s.MakingCharges.Gold, s.MakingCharges.Silver, s.AdvanceAmount}
	for _, v := range nonNeg {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return ErrInvalidSettings
		}
	}
	for _, ws := range [][]float64{s.BookingWeights.Gold, s.BookingWeights.Silver} {
		for _, w := range ws {
			if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
				return ErrInvalidSettings
			}
		}
	}
	return nil
}
