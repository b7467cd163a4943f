package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatAmount renders the whole-rupee part with thousands separators.
func FormatAmount(d decimal.Decimal) string {
	return printer.Sprintf("%d", d.IntPart())
}

func FormatPKR(d decimal.Decimal) string {
	return "PKR " + FormatAmount(d)
}

// FormatBudget renders "PKR 2,500/hr" for hourly jobs and
// "PKR 50,000 - 80,000" for fixed ones.
func FormatBudget(min, max decimal.Decimal, hourly bool) string {
	if hourly {
		return FormatPKR(min) + "/hr"
	}
	if min.Equal(max) {
		return FormatPKR(min)
	}
	return FormatPKR(min) + " - " + FormatAmount(max)
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// PostedAgo is the coarse age shown on job cards.
func PostedAgo(t, now time.Time) string {
	d := now.Sub(t)
	hours := int(d.Hours())
	switch {
	case hours < 1:
		return "Just now"
	case hours < 24:
		return plural(hours, "hour")
	default:
		return plural(hours/24, "day")
	}
}

// ReviewAgo is the age shown next to a review.
func ReviewAgo(t, now time.Time) string {
	days := int(now.Sub(t).Hours() / 24)
	switch {
	case days < 1:
		return "Today"
	case days < 7:
		return plural(days, "day")
	case days < 30:
		return plural(days/7, "week")
	case days < 365:
		return plural(days/30, "month")
	default:
		return plural(days/365, "year")
	}
}

// FirstSentence returns the bio up to its first period, or def.
func FirstSentence(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if i := strings.Index(s, "."); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if s == "" {
		return def
	}
	return s
}

// Slugify lowercases s and replaces each whitespace run with "-".
// Punctuation is kept so "C++" and "C#" stay distinct.
func Slugify(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}

// MaxAmount is the first value a numeric(12,2) column cannot hold.
var MaxAmount = decimal.New(1, 10)

var ErrInvalidBudget = errors.New("budget must be a positive amount or a min-max range")

// ParseBudget accepts "50000", "50000-80000" or "50,000 - 80,000".
// Amounts are rounded to paisa and must stay below MaxAmount.
func ParseBudget(s string) (min, max decimal.Decimal, err error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return min, max, ErrInvalidBudget
	}

	lo, hi, ranged := strings.Cut(s, "-")
	if min, err = decimal.NewFromString(strings.TrimSpace(lo)); err != nil {
		return min, max, ErrInvalidBudget
	}
	max = min
	if ranged {
		if max, err = decimal.NewFromString(strings.TrimSpace(hi)); err != nil {
			return min, max, ErrInvalidBudget
		}
	}
	min, max = min.Round(2), max.Round(2)
	if !min.IsPositive() || !max.IsPositive() || min.GreaterThan(max) || !max.LessThan(MaxAmount) {
		return min, max, ErrInvalidBudget
	}
	return min, max, nil
}
