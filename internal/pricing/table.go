package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"metalrates/internal/domain"
)

// RateTable answers per-gram rates for a metal. SellRate is what a customer
// pays per gram before purity; BuyRate is the raw market rate. Unknown metals yield 0.
type RateTable interface {
	SellRate(metal domain.Metal) float64
	BuyRate(metal domain.Metal) float64
}

// RateRow is one metal of a list or keyed rate table. A row that carries a
// display rate is already margin-adjusted; otherwise its margin is added to the buy rate.
type RateRow struct {
	Metal       string `json:"metal_type"`
	BuyRate     Num    `json:"buy_rate"`
	DisplayRate Num    `json:"display_rate"`
	Margin      Num    `json:"admin_margin"`
}

func (r RateRow) sell() float64 {
	if r.DisplayRate > 0 {
		return r.DisplayRate.Float()
	}
	if v := r.BuyRate.Float() + r.Margin.Float(); v > 0 {
		return v
	}
	return 0
}

func (r RateRow) buy() float64 {
	if r.BuyRate > 0 {
		return r.BuyRate.Float()
	}
	return 0
}

type Rows []RateRow

func (t Rows) find(m domain.Metal) (RateRow, bool) {
	for _, r := range t {
		if rm, ok := domain.ParseMetal(r.Metal); ok && rm == m {
			return r, true
		}
	}
	return RateRow{}, false
}

func (t Rows) SellRate(m domain.Metal) float64 {
	r, _ := t.find(m)
	return r.sell()
}

func (t Rows) BuyRate(m domain.Metal) float64 {
	r, _ := t.find(m)
	return r.buy()
}

// RowMap is a table keyed by metal name, keys in any case or alias.
type RowMap map[string]RateRow

func (t RowMap) find(m domain.Metal) (RateRow, bool) {
	if r, ok := t[string(m)]; ok {
		return r, true
	}
	for k, r := range t {
		if km, ok := domain.ParseMetal(k); ok && km == m {
			return r, true
		}
	}
	return RateRow{}, false
}

func (t RowMap) SellRate(m domain.Metal) float64 {
	r, _ := t.find(m)
	return r.sell()
}

func (t RowMap) BuyRate(m domain.Metal) float64 {
	r, _ := t.find(m)
	return r.buy()
}

// Flat maps a metal straight to its per-gram rate; buy and sell coincide.
type Flat map[domain.Metal]float64

func (t Flat) SellRate(m domain.Metal) float64 {
	if v := t[m]; v > 0 {
		return v
	}
	return 0
}

func (t Flat) BuyRate(m domain.Metal) float64 { return t.SellRate(m) }

// PayloadTable reads rates from a published payload.
type PayloadTable struct {
	Payload domain.RatePayload
}

func (t PayloadTable) SellRate(m domain.Metal) float64 {
	e, ok := t.Payload.Entry(m)
	if !ok {
		return 0
	}
	return e.DisplayRate
}

func (t PayloadTable) BuyRate(m domain.Metal) float64 {
	e, ok := t.Payload.Entry(m)
	if !ok {
		return 0
	}
	return e.BuyRate
}

// ParseTable decodes a caller-supplied rate table in any of the accepted
// shapes: a list of rows, an object of rows, or an object of plain numbers.
func ParseTable(raw json.RawMessage) (RateTable, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("empty rate table")
	}

	switch raw[0] {
	case '[':
		var rows Rows
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("decode rate rows: %w", err)
		}
		return rows, nil
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("decode rate table: %w", err)
		}
		if isFlat(fields) {
			flat := make(Flat, len(fields))
			for k, v := range fields {
				m, ok := domain.ParseMetal(k)
				if !ok {
					continue
				}
				var n Num
				_ = n.UnmarshalJSON(v)
				flat[m] = n.Float()
			}
			return flat, nil
		}
		rows := make(RowMap, len(fields))
		for k, v := range fields {
			var row RateRow
			if err := json.Unmarshal(v, &row); err != nil {
				return nil, fmt.Errorf("decode rate row %q: %w", k, err)
			}
			rows[strings.ToLower(k)] = row
		}
		return rows, nil
	}
	return nil, fmt.Errorf("unsupported rate table shape")
}

func isFlat(fields map[string]json.RawMessage) bool {
	for _, v := range fields {
		v = bytes.TrimSpace(v)
		if len(v) > 0 && v[0] == '{' {
			return false
		}
	}
	return true
}
