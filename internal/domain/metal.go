package domain

import "strings"

type Metal string

const (
	MetalGold      Metal = "gold"
	MetalGold22K   Metal = "gold_22k"
	MetalSilver    Metal = "silver"
	MetalGoldMCX   Metal = "gold_mcx"
	MetalSilverMCX Metal = "silver_mcx"
)

// KnownMetals are present in every payload, in this order.
var KnownMetals = []Metal{MetalGold, MetalGold22K, MetalSilver}

// OptionalMetals appear in a payload only when the winning quote supplied them.
var OptionalMetals = []Metal{MetalGoldMCX, MetalSilverMCX}

func ParseMetal(s string) (Metal, bool) {
	m := Metal(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MetalGold, MetalGold22K, MetalSilver, MetalGoldMCX, MetalSilverMCX:
		return m, true
	case "gold_24k", "gold24k", "gold24":
		return MetalGold, true
	case "gold22k", "gold22":
		return MetalGold22K, true
	}
	return "", false
}

// Base returns the metal whose margin and bounds family applies.
func (m Metal) Base() Metal {
	switch m {
	case MetalGold, MetalGold22K, MetalGoldMCX:
		return MetalGold
	case MetalSilver, MetalSilverMCX:
		return MetalSilver
	}
	return m
}

func (m Metal) IsMarginBearing() bool {
	return m == MetalGold || m == MetalSilver
}

type Bounds struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

func (b Bounds) Clamp(v float64) float64 {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

func (b Bounds) Scale(f float64) Bounds {
	return Bounds{Min: b.Min * f, Max: b.Max * f}
}
