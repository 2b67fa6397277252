package quotes

import (
	"fmt"
	"time"

	"metalrates/internal/adapters"
	"metalrates/internal/config"
	"metalrates/internal/domain"
)

const (
	KindText      = "text"
	KindRendered  = "rendered"
	KindSecondary = "secondary"
	KindFinance   = "finance"
)

// NewFromConfig builds the sources in the configured priority order.
func NewFromConfig(cfg config.Quotes, fetcher *Fetcher) ([]adapters.QuoteSource, error) {
	if len(cfg.Order) == 0 {
		return nil, fmt.Errorf("no quote sources configured")
	}

	sources := make([]adapters.QuoteSource, 0, len(cfg.Order))
	for _, kind := range cfg.Order {
		switch kind {
		case KindText:
			sources = append(sources, NewTextSource("emerald", fetcher, Page{URL: cfg.PrimaryURL}))
		case KindRendered:
			pref := ParseMCXPreference(cfg.PreferMCX, cfg.MCXWindow)
			var renderer Renderer = fetcher
			if r := cfg.Render; r.Browser {
				renderer = NewBrowserRenderer(r.ChromePath, fetcher.userAgent,
					time.Duration(r.TimeoutMs)*time.Millisecond, time.Duration(r.SettleMs)*time.Millisecond, fetcher)
			}
			sources = append(sources, NewRenderedSource("emerald_rendered", cfg.PrimaryURL, renderer, pref))
		case KindSecondary:
			sources = append(sources, NewTextSource("goodreturns", fetcher,
				Page{URL: cfg.SecondaryGold, Metals: []domain.Metal{domain.MetalGold, domain.MetalGold22K}},
				Page{URL: cfg.SecondarySilvr, Metals: []domain.Metal{domain.MetalSilver}},
			))
		case KindFinance:
			f := cfg.Finance
			financeFetcher := fetcher
			if f.RequestTimeoutMs > 0 {
				financeFetcher = NewFetcher(fetcher.http, fetcher.userAgent, time.Duration(f.RequestTimeoutMs)*time.Millisecond)
			}
			sources = append(sources, NewFinanceSource(
				f.BaseURL,
				FinanceSymbols{Gold: f.GoldSymbol, Silver: f.SilverSymbol, FX: f.FXSymbol},
				Premiums{Gold: f.GoldPremium, Silver: f.SilverPremium},
				financeFetcher,
			))
		default:
			return nil, fmt.Errorf("unknown quote source %q", kind)
		}
	}
	return sources, nil
}
