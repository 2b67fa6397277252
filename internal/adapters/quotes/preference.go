package quotes

import (
	"strconv"
	"strings"
	"time"
)

// MCXPreference decides when derivative (MCX) rows beat product and spot rows.
// Either metal can be forced through the flag list, or both during a local
// time window such as "09:00-23:30" (windows may wrap past midnight).
type MCXPreference struct {
	gold   bool
	silver bool

	hasWindow   bool
	startMinute int
	endMinute   int
}

func (p MCXPreference) inWindow(now time.Time) bool {
	if !p.hasWindow {
		return false
	}
	cur := now.Hour()*60 + now.Minute()
	if p.endMinute >= p.startMinute {
		return cur >= p.startMinute && cur <= p.endMinute
	}
	return cur >= p.startMinute || cur <= p.endMinute
}

func (p MCXPreference) PreferGold(now time.Time) bool {
	return p.gold || p.inWindow(now)
}

func (p MCXPreference) PreferSilver(now time.Time) bool {
	return p.silver || p.inWindow(now)
}

// ParseMCXPreference reads the comma separated flag list (gold, silver, all, true)
// and the optional HH:MM-HH:MM window. Malformed windows are ignored.
func ParseMCXPreference(flags, window string) MCXPreference {
	var p MCXPreference
	for _, f := range strings.Split(strings.ToLower(flags), ",") {
		switch strings.TrimSpace(f) {
		case "gold":
			p.gold = true
		case "silver":
			p.silver = true
		case "all", "true":
			p.gold, p.silver = true, true
		}
	}

	from, to, ok := strings.Cut(window, "-")
	if !ok {
		return p
	}
	start, okStart := parseClock(from)
	end, okEnd := parseClock(to)
	if okStart && okEnd {
		p.hasWindow, p.startMinute, p.endMinute = true, start, end
	}
	return p
}

func parseClock(s string) (int, bool) {
	hh, mm, _ := strings.Cut(strings.TrimSpace(s), ":")
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m := 0
	if mm != "" {
		if m, err = strconv.Atoi(mm); err != nil || m < 0 || m > 59 {
			return 0, false
		}
	}
	return h*60 + m, true
}
