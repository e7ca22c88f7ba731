package extract

import (
	"regexp"
	"strings"

	urlutil "github.com/law-makers/soldscrape/internal/utils/url"
)

var (
	reNewListing   = regexp.MustCompile(`(?i)^(?:new listing\s*)+`)
	reOpensWindow  = regexp.MustCompile(`(?i)\s*Opens in a new window or tab.*$`)
	rePreOwned     = regexp.MustCompile(`(?i)Pre-Owned.*$`)
	reViewSimilar  = regexp.MustCompile(`(?i)\s*View similar active items.*$`)
	reSellOne      = regexp.MustCompile(`(?i)\s*Sell one like this.*$`)
	rePriceRange   = regexp.MustCompile(`(?i)\s*to\s*[$£€].*$`)
	reSoldPrefix   = regexp.MustCompile(`(?i)^sold\b:?\s*`)
	reDateParen    = regexp.MustCompile(`\s*\(.*\)\s*$`)
	reDateSuffix   = regexp.MustCompile(`\s*[·|•].*$`)
	reImageSize    = regexp.MustCompile(`s-l\d+`)
	reImageVariant = regexp.MustCompile(`\$_\d+`)
)

// collapseSpace trims and folds internal whitespace runs to a single space
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CleanName strips marketplace decorations from a listing title and
// truncates it to maxLen runes plus "...". Applying it twice is a no-op.
func CleanName(s string, maxLen int) string {
	s = collapseSpace(s)
	s = reNewListing.ReplaceAllString(s, "")
	s = reOpensWindow.ReplaceAllString(s, "")
	s = rePreOwned.ReplaceAllString(s, "Pre-Owned")
	s = reViewSimilar.ReplaceAllString(s, "")
	s = reSellOne.ReplaceAllString(s, "")
	return truncateRunes(strings.TrimSpace(s), maxLen)
}

// truncateRunes cuts s to maxLen runes and appends "..."; maxLen <= 0 disables it
func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	if r := []rune(s); len(r) > maxLen {
		return string(r[:maxLen]) + "..."
	}
	return s
}

// CleanPrice drops the upper bound of a price range ("$5.00 to $9.00" -> "$5.00")
func CleanPrice(s string) string {
	s = collapseSpace(s)
	s = rePriceRange.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// CleanDate removes the "Sold" marker and any trailing annotation
func CleanDate(s string) string {
	s = collapseSpace(s)
	s = reSoldPrefix.ReplaceAllString(s, "")
	s = reDateSuffix.ReplaceAllString(s, "")
	s = reDateParen.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// CleanImageURL rewrites thumbnail size tokens to the 300px rendition
func CleanImageURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = reImageSize.ReplaceAllString(s, "s-l300")
	return reImageVariant.ReplaceAllLiteralString(s, "$_57")
}

// CleanURL resolves href against base and drops the query string
func CleanURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if base != "" {
		href = urlutil.ResolveURL(base, href)
	}
	if i := strings.IndexByte(href, '?'); i >= 0 {
		href = href[:i]
	}
	return href
}
