package models

import "time"

// ListingRecord is one sold listing extracted from a search results page
type ListingRecord struct {
	ItemName  string `json:"itemName"`
	SoldPrice string `json:"soldPrice"`
	SoldDate  string `json:"soldDate"`
	ImageURL  string `json:"imageUrl"`
	URL       string `json:"url"`
}

// ScrapeRequest is the inbound request for a multi-page sold search
type ScrapeRequest struct {
	SearchTerm string `json:"searchTerm"`
	Pages      int    `json:"pages,omitempty"`
	StartPage  int    `json:"startPage,omitempty"`
}

// ScrapeResponse is the aggregated result of one scrape invocation
type ScrapeResponse struct {
	Success         bool            `json:"success"`
	SearchTerm      string          `json:"searchTerm"`
	TotalItems      int             `json:"totalItems"`
	Pages           int             `json:"pages"`
	StartPage       int             `json:"startPage"`
	DurationSeconds float64         `json:"durationSeconds"`
	Data            []ListingRecord `json:"data"`
	ProgressiveMode bool            `json:"progressiveMode"`
}

// ErrorResponse is written by the HTTP host for rejected or failed requests
type ErrorResponse struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error"`
}

// PageOutcome is the result of fetching and extracting one results page.
// Records is empty when the page failed; Err is kept for logging only.
type PageOutcome struct {
	Page       int
	URL        string
	StatusCode int
	Records    []ListingRecord
	Err        error
	Elapsed    time.Duration
}

// Failed reports whether the page produced no usable document
func (o PageOutcome) Failed() bool {
	return o.Err != nil
}
