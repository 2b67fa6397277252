package quotes

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	gold24Re = regexp.MustCompile(`(24\s*carat|24\s*k|24k|gold[^a-z0-9]{0,6}24k)[^0-9]{0,20}([\d,]+(\.\d+)?)`)
	gold22Re = regexp.MustCompile(`(22\s*carat|22\s*k|22k|gold[^a-z0-9]{0,6}22k)[^0-9]{0,20}([\d,]+(\.\d+)?)`)
	silverRe = regexp.MustCompile(`(silver|xag)[^0-9]{0,20}([\d,]+(\.\d+)?)`)

	numberRe     = regexp.MustCompile(`\d+(\.\d+)?`)
	wholeNumRe   = regexp.MustCompile(`^\d+(\.\d+)?$`)
	numberListRe = regexp.MustCompile(`[\d,]+(\.\d+)?`)
	nonNumericRe = regexp.MustCompile(`[^\d.]`)
)

type extracted struct {
	Gold24 float64
	Gold22 float64
	Silver float64
}

func (e extracted) empty() bool {
	return e.Gold24 == 0 && e.Gold22 == 0 && e.Silver == 0
}

// extractFigures applies the keyword patterns to lower-cased page text.
func extractFigures(text string) extracted {
	lower := strings.ToLower(text)
	return extracted{
		Gold24: firstGroup(gold24Re, lower),
		Gold22: firstGroup(gold22Re, lower),
		Silver: firstGroup(silverRe, lower),
	}
}

func firstGroup(re *regexp.Regexp, s string) float64 {
	m := re.FindStringSubmatch(s)
	if len(m) < 3 {
		return 0
	}
	return parseNumber(m[2])
}

// parseNumber tolerates thousands separators, currency symbols and stray dots.
// Anything unparseable is 0.
func parseNumber(s string) float64 {
	t := nonNumericRe.ReplaceAllString(strings.ToLower(s), "")
	if i := strings.IndexByte(t, '.'); i >= 0 {
		t = t[:i+1] + strings.ReplaceAll(t[i+1:], ".", "")
	}
	m := t
	if !wholeNumRe.MatchString(t) {
		m = numberRe.FindString(t)
	}
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}

// firstNumber returns the value of the first number-looking token in s.
func firstNumber(s string) float64 {
	tok := numberListRe.FindString(s)
	if tok == "" {
		return 0
	}
	return parseNumber(tok)
}
