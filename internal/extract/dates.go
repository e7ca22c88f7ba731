package extract

import "regexp"

const monthNames = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)[a-z]*\.?`

// DatePattern is a named fallback for reading a sold date out of free text
type DatePattern struct {
	Name string
	Re   *regexp.Regexp
}

// Match returns the first capture group, or "" when the pattern does not match
func (p DatePattern) Match(text string) string {
	m := p.Re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

var (
	SoldAbsoluteDate = DatePattern{
		Name: "sold-absolute",
		Re:   regexp.MustCompile(`(?i)Sold\s*(` + monthNames + `\s+\d{1,2},?\s+\d{4})`),
	}
	MonthDayYearDate = DatePattern{
		Name: "month-day-year",
		Re:   regexp.MustCompile(`(?i)(` + monthNames + `\s+\d{1,2},?\s+\d{4})`),
	}
	DayMonthYearDate = DatePattern{
		Name: "day-month-year",
		Re:   regexp.MustCompile(`(?i)\b(\d{1,2}\s+` + monthNames + `,?\s+\d{4})`),
	}
	NumericDate = DatePattern{
		Name: "numeric",
		Re:   regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{2,4})\b`),
	}
	ISODate = DatePattern{
		Name: "iso",
		Re:   regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`),
	}
	RelativeDate = DatePattern{
		Name: "relative",
		Re:   regexp.MustCompile(`(?i)\b(\d+\s+(?:second|minute|hour|day|week|month|year)s?\s+ago)\b`),
	}
)

// DatePatterns is the fallback order used when no date locator matches
var DatePatterns = []DatePattern{
	SoldAbsoluteDate,
	MonthDayYearDate,
	DayMonthYearDate,
	NumericDate,
	ISODate,
	RelativeDate,
}

// MatchDate returns the first pattern hit over text
func MatchDate(text string) string {
	for _, p := range DatePatterns {
		if v := p.Match(text); v != "" {
			return v
		}
	}
	return ""
}
