package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"metalrates/internal/domain"

	"golang.org/x/sync/errgroup"
)

var ErrNoFigures = errors.New("no rate figures found")

// Page is one document a TextSource reads. Metals limits which figures the
// page contributes; empty means all of them.
type Page struct {
	URL    string
	Metals []domain.Metal
}

func (p Page) contributes(m domain.Metal) bool {
	if len(p.Metals) == 0 {
		return true
	}
	for _, pm := range p.Metals {
		if pm == m {
			return true
		}
	}
	return false
}

// TextSource fetches plain pages and pulls figures out with keyword patterns.
type TextSource struct {
	name    string
	pages   []Page
	fetcher *Fetcher
	now     func() time.Time
}

func (s *TextSource) Name() string { return s.name }

func (s *TextSource) Fetch(ctx context.Context) (domain.RawQuote, error) {
	if len(s.pages) == 0 {
		return domain.RawQuote{}, fmt.Errorf("%s: no pages configured", s.name)
	}

	results := make([]extracted, len(s.pages))
	g, gctx := errgroup.WithContext(ctx)
	for i, page := range s.pages {
		g.Go(func() error {
			body, err := s.fetcher.Get(gctx, page.URL)
			if err != nil {
				return err
			}
			results[i] = extractFigures(string(body))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.RawQuote{}, fmt.Errorf("%s: %w", s.name, err)
	}

	q := domain.RawQuote{Source: s.name, FetchedAt: s.now()}
	for i, page := range s.pages {
		r := results[i]
		if q.Gold24 == 0 && page.contributes(domain.MetalGold) {
			q.Gold24 = r.Gold24
		}
		if q.Gold22 == 0 && page.contributes(domain.MetalGold22K) {
			q.Gold22 = r.Gold22
		}
		if q.Silver == 0 && page.contributes(domain.MetalSilver) {
			q.Silver = r.Silver
		}
	}
	if !q.HasData() {
		return domain.RawQuote{}, fmt.Errorf("%s: %w", s.name, ErrNoFigures)
	}
	return q, nil
}

func NewTextSource(name string, fetcher *Fetcher, pages ...Page) *TextSource {
	return &TextSource{name: name, pages: pages, fetcher: fetcher, now: time.Now}
}
