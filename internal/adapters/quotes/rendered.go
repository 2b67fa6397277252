package quotes

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"metalrates/internal/domain"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	gold24Products = []string{"gold 9999", "gold 999", "gold 995"}
	gold22Products = []string{"gold 916", "916", "22k", "22 karat", "gold 22"}
	silverProducts = []string{"silver 999", "silver 1000", "silver"}
)

type productRow struct {
	label string
	value float64
}

// tableFigures is what the layout heuristics found on a rendered page.
type tableFigures struct {
	spotGold, spotSilver float64
	mcxGold, mcxSilver   float64
	products             []productRow
}

func (t tableFigures) product(names []string) float64 {
	for _, n := range names {
		for _, p := range t.products {
			if strings.Contains(p.label, n) {
				return p.value
			}
		}
	}
	return 0
}

// RenderedSource reads the rate board markup from a Renderer and applies table
// heuristics: named product rows beat spot rows, which beat MCX rows, unless MCX is preferred.
type RenderedSource struct {
	name     string
	url      string
	renderer Renderer
	pref     MCXPreference
	now      func() time.Time
}

func (s *RenderedSource) Name() string { return s.name }

func (s *RenderedSource) Fetch(ctx context.Context) (domain.RawQuote, error) {
	body, err := s.renderer.Render(ctx, s.url)
	if err != nil {
		return domain.RawQuote{}, fmt.Errorf("%s: %w", s.name, err)
	}
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return domain.RawQuote{}, fmt.Errorf("%s: failed to parse markup: %w", s.name, err)
	}

	now := s.now()
	q := pickFigures(scanTables(doc), s.pref, now)
	q.Source, q.FetchedAt = s.name, now
	if q.HasData() {
		return q, nil
	}

	// no usable table; fall back to keyword patterns over the visible text
	e := extractFigures(nodeText(doc))
	if e.empty() {
		return domain.RawQuote{}, fmt.Errorf("%s: %w", s.name, ErrNoFigures)
	}
	return domain.RawQuote{Gold24: e.Gold24, Gold22: e.Gold22, Silver: e.Silver, Source: s.name, FetchedAt: now}, nil
}

func pickFigures(t tableFigures, pref MCXPreference, now time.Time) domain.RawQuote {
	var q domain.RawQuote
	if pref.PreferGold(now) && t.mcxGold > 0 {
		q.Gold24 = t.mcxGold
	}
	if q.Gold24 == 0 {
		q.Gold24 = t.product(gold24Products)
	}
	if q.Gold24 == 0 {
		q.Gold24 = t.spotGold
	}
	q.Gold22 = t.product(gold22Products)

	if pref.PreferSilver(now) && t.mcxSilver > 0 {
		q.Silver = t.mcxSilver
	}
	if q.Silver == 0 {
		q.Silver = t.product(silverProducts)
	}
	if q.Silver == 0 {
		q.Silver = t.spotSilver
	}

	if q.HasData() {
		q.GoldMCX, q.SilverMCX = t.mcxGold, t.mcxSilver
	}
	return q
}

func scanTables(doc *html.Node) tableFigures {
	var out tableFigures
	for _, table := range findAll(doc, atom.Table) {
		var headers []string
		for _, th := range findAll(table, atom.Th) {
			headers = append(headers, strings.ToLower(nodeText(th)))
		}
		askIdx := indexContaining(headers, "ask")
		if askIdx == -1 {
			continue
		}
		isProduct := indexContaining(headers, "product") != -1

		for _, tr := range findAll(table, atom.Tr) {
			tds := children(tr, atom.Td)
			if len(tds) == 0 {
				continue
			}
			label := strings.ToLower(strings.TrimSpace(nodeText(tds[0])))
			cell := tds[len(tds)-1]
			switch {
			case askIdx < len(tds):
				cell = tds[askIdx]
			case len(tds) > 1:
				cell = tds[1]
			}
			v := firstNumber(nodeText(cell))
			if v == 0 {
				continue
			}

			if isProduct {
				out.products = append(out.products, productRow{label: label, value: v})
				continue
			}
			mcx := strings.Contains(label, "mcx")
			if strings.Contains(label, "gold") {
				if mcx {
					out.mcxGold = max(out.mcxGold, v)
				} else {
					out.spotGold = max(out.spotGold, v)
				}
			}
			if strings.Contains(label, "silver") {
				if mcx {
					out.mcxSilver = max(out.mcxSilver, v)
				} else {
					out.spotSilver = max(out.spotSilver, v)
				}
			}
		}
	}
	return out
}

func indexContaining(list []string, sub string) int {
	for i, s := range list {
		if strings.Contains(s, sub) {
			return i
		}
	}
	return -1
}

func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode && c.DataAtom == a {
			out = append(out, c)
		}
		for ch := c.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)
	return out
}

func children(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			out = append(out, c)
		}
	}
	return out
}

// nodeText concatenates visible text, separating elements with spaces.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Script || c.DataAtom == atom.Style) {
			return
		}
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
			sb.WriteByte(' ')
		}
		for ch := c.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func NewRenderedSource(name, url string, renderer Renderer, pref MCXPreference) *RenderedSource {
	return &RenderedSource{name: name, url: url, renderer: renderer, pref: pref, now: time.Now}
}
