package extract

import (
	"golang.org/x/text/language"
	"golang.org/x/text/search"
)

// PromotionalKeywords mark result-list entries that are ads or navigation tiles
var PromotionalKeywords = []string{
	"shop on ebay",
	"click to view",
	"see more like this",
	"browse similar",
	"view more",
	"find similar",
	"shop now",
	"ebay store",
}

// promoFilter is not shared between goroutines; each Extract call builds its own.
type promoFilter struct {
	patterns []*search.Pattern
}

func newPromoFilter(keywords []string) *promoFilter {
	m := search.New(language.English, search.IgnoreCase)
	pf := &promoFilter{patterns: make([]*search.Pattern, 0, len(keywords))}
	for _, kw := range keywords {
		pf.patterns = append(pf.patterns, m.CompileString(kw))
	}
	return pf
}

func (pf *promoFilter) match(name string) bool {
	for _, p := range pf.patterns {
		if start, _ := p.IndexString(name); start >= 0 {
			return true
		}
	}
	return false
}

// IsPromotional reports whether name contains any promotional keyword, ignoring case
func IsPromotional(name string) bool {
	return newPromoFilter(PromotionalKeywords).match(name)
}
