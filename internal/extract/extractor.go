// Package extract turns eBay sold-search result documents into listing records.
package extract

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/soldscrape/pkg/models"
	"github.com/rs/zerolog/log"
)

const (
	DefaultMinNameLength = 5
	DefaultMaxNameLength = 80
)

// Policy holds the record acceptance thresholds
type Policy struct {
	// MinNameLength is exclusive: names must be strictly longer
	MinNameLength int
	// MaxNameLength is the truncation point before "..." is appended
	MaxNameLength int
}

// DefaultPolicy returns the stock thresholds
func DefaultPolicy() Policy {
	return Policy{MinNameLength: DefaultMinNameLength, MaxNameLength: DefaultMaxNameLength}
}

// Valid reports whether a cleaned record is worth emitting
func (p Policy) Valid(r models.ListingRecord) bool {
	return r.ItemName != "" && r.SoldPrice != "" && utf8.RuneCountInString(r.ItemName) > p.MinNameLength
}

// Stats counts what happened to the candidate nodes of one document
type Stats struct {
	Container   string
	Candidates  int
	Promotional int
	Invalid     int
	Recovered   int
	Emitted     int
}

// Extractor applies a locator table to search result documents.
// It holds no mutable state and may be shared across goroutines.
type Extractor struct {
	locators Locators
	policy   Policy
	baseURL  string
	keywords []string
}

// New creates an Extractor. A zero Locators value uses DefaultLocators. A
// negative MinNameLength or a non-positive MaxNameLength falls back to the
// default; MinNameLength 0 accepts any non-empty name. baseURL resolves relative links.
func New(locs Locators, policy Policy, baseURL string) *Extractor {
	if len(locs.Containers) == 0 {
		locs = DefaultLocators()
	}
	if policy.MinNameLength < 0 {
		policy.MinNameLength = DefaultMinNameLength
	}
	if policy.MaxNameLength <= 0 {
		policy.MaxNameLength = DefaultMaxNameLength
	}
	return &Extractor{
		locators: locs,
		policy:   policy,
		baseURL:  baseURL,
		keywords: PromotionalKeywords,
	}
}

// Policy returns the thresholds in effect
func (e *Extractor) Policy() Policy {
	return e.policy
}

// ExtractHTML parses r and extracts its listings
func (e *Extractor) ExtractHTML(r io.Reader) ([]models.ListingRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return e.Extract(doc), nil
}

// Extract returns the valid listings of doc in document order
func (e *Extractor) Extract(doc *goquery.Document) []models.ListingRecord {
	records, _ := e.ExtractWithStats(doc)
	return records
}

// ExtractWithStats is Extract plus per-document counters
func (e *Extractor) ExtractWithStats(doc *goquery.Document) ([]models.ListingRecord, Stats) {
	var stats Stats
	records := []models.ListingRecord{}
	if doc == nil {
		return records, stats
	}

	nodes, container := e.findContainers(doc.Selection)
	stats.Container = container
	if nodes == nil {
		log.Debug().Msg("No listing containers matched")
		return records, stats
	}

	promo := newPromoFilter(e.keywords)

	nodes.Each(func(i int, s *goquery.Selection) {
		// The first node is a template/placeholder tile, never a listing.
		if i == 0 {
			return
		}
		stats.Candidates++

		rec, verdict := e.extractNode(i, s, promo)
		switch verdict {
		case verdictOK:
			records = append(records, rec)
			stats.Emitted++
		case verdictPromotional:
			stats.Promotional++
		case verdictInvalid:
			stats.Invalid++
		case verdictRecovered:
			stats.Recovered++
		}
	})

	log.Debug().
		Str("container", stats.Container).
		Int("candidates", stats.Candidates).
		Int("emitted", stats.Emitted).
		Int("promotional", stats.Promotional).
		Int("invalid", stats.Invalid).
		Int("recovered", stats.Recovered).
		Msg("Extraction completed")

	return records, stats
}

func (e *Extractor) findContainers(root *goquery.Selection) (*goquery.Selection, string) {
	for _, sel := range e.locators.Containers {
		if found := root.Find(sel); found.Length() > 0 {
			return found, sel
		}
	}
	return nil, ""
}

type verdict int

const (
	verdictOK verdict = iota
	verdictPromotional
	verdictInvalid
	verdictRecovered
)

func (e *Extractor) extractNode(i int, s *goquery.Selection, promo *promoFilter) (rec models.ListingRecord, v verdict) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Int("node", i).Interface("panic", r).Msg("Skipping listing node")
			rec, v = models.ListingRecord{}, verdictRecovered
		}
	}()

	full := CleanName(resolve(s, e.locators.Name), 0)
	if full != "" && promo.match(full) {
		return models.ListingRecord{}, verdictPromotional
	}
	name := truncateRunes(full, e.policy.MaxNameLength)

	date := resolve(s, e.locators.Date)
	if date == "" {
		date = MatchDate(s.Text())
	}

	rec = models.ListingRecord{
		ItemName:  name,
		SoldPrice: CleanPrice(resolve(s, e.locators.Price)),
		SoldDate:  CleanDate(date),
		ImageURL:  CleanImageURL(resolve(s, e.locators.Image)),
		URL:       CleanURL(e.baseURL, resolve(s, e.locators.URL)),
	}
	if !e.policy.Valid(rec) {
		return models.ListingRecord{}, verdictInvalid
	}
	return rec, verdictOK
}

// resolve walks a locator chain and returns the first non-empty value
func resolve(s *goquery.Selection, chain []Locator) string {
	for _, loc := range chain {
		if v := readLocator(s, loc); v != "" {
			return v
		}
	}
	return ""
}

func readLocator(s *goquery.Selection, loc Locator) string {
	el := s.Find(loc.Selector).First()
	if el.Length() == 0 {
		return ""
	}
	if loc.Attr == "" {
		return strings.TrimSpace(el.Text())
	}
	v, ok := el.Attr(loc.Attr)
	if !ok {
		return ""
	}
	v = strings.TrimSpace(v)
	// inline placeholders are lazy-load stand-ins, not real URLs
	if strings.HasPrefix(strings.ToLower(v), "data:") {
		return ""
	}
	return v
}
