package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"metalrates/internal/domain"

	"golang.org/x/sync/errgroup"
)

// TroyOunceGrams is the number of grams in one troy ounce.
const TroyOunceGrams = 31.1034768

type FinanceSymbols struct {
	Gold   string
	Silver string
	FX     string
}

type Premiums struct {
	Gold   float64
	Silver float64
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
				PreviousClose      float64 `json:"previousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FinanceSource converts foreign-currency futures per troy ounce into local
// per-gram figures using the quoted FX rate and a premium multiplier that
// approximates import duty and local retail markup.
type FinanceSource struct {
	baseURL  string
	symbols  FinanceSymbols
	premiums Premiums
	fetcher  *Fetcher
	now      func() time.Time
}

func (s *FinanceSource) Name() string { return domain.SourceLiveMarket }

func (s *FinanceSource) Fetch(ctx context.Context) (domain.RawQuote, error) {
	var goldUSD, silverUSD, fx float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { goldUSD, err = s.price(gctx, s.symbols.Gold); return err })
	g.Go(func() (err error) { silverUSD, err = s.price(gctx, s.symbols.Silver); return err })
	g.Go(func() (err error) { fx, err = s.price(gctx, s.symbols.FX); return err })
	if err := g.Wait(); err != nil {
		return domain.RawQuote{}, fmt.Errorf("finance: %w", err)
	}
	if goldUSD <= 0 || silverUSD <= 0 || fx <= 0 {
		return domain.RawQuote{}, fmt.Errorf("finance: missing price data (gold=%v silver=%v fx=%v)", goldUSD, silverUSD, fx)
	}

	return domain.RawQuote{
		Gold24:    PerGram(goldUSD, fx, s.premiums.Gold),
		Silver:    PerGram(silverUSD, fx, s.premiums.Silver),
		Source:    s.Name(),
		FetchedAt: s.now(),
	}, nil
}

// PerGram converts a per-troy-ounce price into local currency per gram.
func PerGram(perOunce, fx, premium float64) float64 {
	if premium <= 0 {
		premium = 1
	}
	return perOunce / TroyOunceGrams * fx * premium
}

func (s *FinanceSource) price(ctx context.Context, symbol string) (float64, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d",
		strings.TrimSuffix(s.baseURL, "/"), url.PathEscape(symbol))
	body, err := s.fetcher.Get(ctx, u)
	if err != nil {
		return 0, err
	}

	var resp chartResponse
	if err = json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("failed to decode response for symbol %q: %w", symbol, err)
	}
	if resp.Chart.Error != nil {
		return 0, fmt.Errorf("api returned error for symbol %q: %s", symbol, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return 0, fmt.Errorf("no result for symbol %q", symbol)
	}
	meta := resp.Chart.Result[0].Meta
	for _, v := range []float64{meta.RegularMarketPrice, meta.ChartPreviousClose, meta.PreviousClose} {
		if v > 0 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("no price for symbol %q", symbol)
}

func NewFinanceSource(baseURL string, symbols FinanceSymbols, premiums Premiums, fetcher *Fetcher) *FinanceSource {
	return &FinanceSource{baseURL: baseURL, symbols: symbols, premiums: premiums, fetcher: fetcher, now: time.Now}
}
