// Package query builds sold-listing search URLs for the eBay results endpoint.
package query

import (
	"math/rand/v2"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the eBay search results endpoint
const DefaultBaseURL = "https://www.ebay.com/sch/i.html"

// ResultsPerPage is the page size requested from the endpoint
const ResultsPerPage = 60

// Builder produces search URLs. The zero value targets DefaultBaseURL.
type Builder struct {
	BaseURL string

	// Now and Nonce are overridable for tests
	Now   func() time.Time
	Nonce func() int64
}

// NewBuilder returns a Builder for the given endpoint (empty means DefaultBaseURL)
func NewBuilder(baseURL string) *Builder {
	return &Builder{BaseURL: baseURL}
}

// Build returns the search URL for one results page. Cache-evasion parameters
// are regenerated on every call so no two requests share a URL.
func (b *Builder) Build(searchTerm string, page int) string {
	base := b.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	q := url.Values{}
	q.Set("_nkw", searchTerm)
	q.Set("_in_kw", "1")
	q.Set("_ex_kw", "")
	q.Set("_sacat", "0")
	q.Set("LH_Sold", "1")
	q.Set("LH_Complete", "1")
	q.Set("_udlo", "")
	q.Set("_udhi", "")
	q.Set("_samilow", "")
	q.Set("_samihi", "")
	q.Set("_sadis", "15")
	q.Set("_stpos", "")
	q.Set("_sargn", "-1")
	q.Set("_salic", "1")
	q.Set("_sop", "13") // recently ended first
	q.Set("_dmd", "1")
	q.Set("_ipg", strconv.Itoa(ResultsPerPage))
	q.Set("_pgn", strconv.Itoa(page))

	q.Set("_ts", strconv.FormatInt(b.now().UnixMilli(), 10))
	q.Set("_rnd", strconv.FormatInt(b.nonce(), 10))
	q.Set("_nocache", "1")

	return base + "?" + q.Encode()
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b *Builder) nonce() int64 {
	if b.Nonce != nil {
		return b.Nonce()
	}
	return rand.Int64N(1_000_000_000_000)
}

// BuildSearchURL builds a URL against DefaultBaseURL
func BuildSearchURL(searchTerm string, page int) string {
	var b Builder
	return b.Build(searchTerm, page)
}
