package handler

import (
	"encoding/json"
	"net/http"

	"metalrates/internal/domain"
	"metalrates/internal/pricing"

	"github.com/sirupsen/logrus"
)

type BreakdownRequest struct {
	Items   []pricing.Item  `json:"items"`
	TaxRate *float64        `json:"tax_rate,omitempty"`
	Rates   json.RawMessage `json:"rates,omitempty"`
}

type BreakdownLine struct {
	pricing.Breakdown
	PurchaseCost *float64 `json:"purchase_cost,omitempty"`
}

type BreakdownResponse struct {
	Source string             `json:"source"`
	Items  []BreakdownLine    `json:"items"`
	Totals pricing.BillTotals `json:"totals"`
}

// GetBreakdown prices items against the caller's rate table when one is sent,
// otherwise against the current rates. Items without a making charge get the
// per-gram default from the settings.
//
// @Summary  Itemised quotation breakdown
// @Tags     pricing
// @Accept   json
// @Produce  json
// @Param    body body BreakdownRequest true "items"
// @Success  200 {object} BreakdownResponse
// @Failure  400 {object} errorResponse
// @Router   /api/v1/pricing/breakdown [post]
func (h *Handler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	h.breakdown(w, r, false)
}

// GetAdminBreakdown is GetBreakdown plus the buy-side purchase cost of every line.
//
// @Summary  Quotation breakdown with purchase cost
// @Tags     admin
// @Accept   json
// @Produce  json
// @Param    body body BreakdownRequest true "items"
// @Success  200 {object} BreakdownResponse
// @Failure  400 {object} errorResponse
// @Security BearerAuth
// @Router   /api/v1/admin/pricing/breakdown [post]
func (h *Handler) GetAdminBreakdown(w http.ResponseWriter, r *http.Request) {
	h.breakdown(w, r, true)
}

func (h *Handler) breakdown(w http.ResponseWriter, r *http.Request, withCost bool) {
	var req BreakdownRequest
	if err := decodeLenientBody(w, r, 64<<10, &req); err != nil || len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var table pricing.RateTable
	source := "client"
	if len(req.Rates) > 0 {
		t, err := pricing.ParseTable(req.Rates)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		table = t
	} else {
		p := h.rates.Current(r.Context())
		table = pricing.PayloadTable{Payload: p}
		source = p.Source
	}

	settings, err := h.settings.Get(r.Context())
	if err != nil {
		logrus.WithError(err).WithField("handler", "GetBreakdown").Warn("Settings unavailable; pricing without default making charges")
		settings = domain.Settings{}
	}
	items := make([]pricing.Item, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, it.WithDefaultMakingCharge(settings.MakingChargeFor(it.Metal())))
	}

	res := BreakdownResponse{Source: source, Items: make([]BreakdownLine, 0, len(items))}
	for _, it := range items {
		line := BreakdownLine{Breakdown: pricing.Calculate(it, table, req.TaxRate)}
		if withCost {
			cost := pricing.PurchaseCost(it, table)
			line.PurchaseCost = &cost
		}
		res.Items = append(res.Items, line)
	}
	res.Totals = pricing.Totals(items, table, req.TaxRate)
	writeJSON(w, http.StatusOK, res)
}
