package scrape

import (
	"math"
	"time"

	"github.com/law-makers/soldscrape/pkg/models"
)

// Aggregate concatenates per-page records in request order and computes the
// summary fields. req must already be normalized.
func Aggregate(req models.ScrapeRequest, outcomes []models.PageOutcome, elapsed time.Duration) *models.ScrapeResponse {
	total := 0
	for _, out := range outcomes {
		total += len(out.Records)
	}

	data := make([]models.ListingRecord, 0, total)
	for _, out := range outcomes {
		data = append(data, out.Records...)
	}

	return &models.ScrapeResponse{
		Success:         true,
		SearchTerm:      req.SearchTerm,
		TotalItems:      len(data),
		Pages:           req.Pages,
		StartPage:       req.StartPage,
		DurationSeconds: roundTenth(elapsed.Seconds()),
		Data:            data,
		ProgressiveMode: req.Pages == 1 && req.StartPage > 1,
	}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// PageNumbers lists the pages covered by a normalized request
func PageNumbers(req models.ScrapeRequest) []int {
	pages := make([]int, req.Pages)
	for i := range pages {
		pages[i] = req.StartPage + i
	}
	return pages
}
