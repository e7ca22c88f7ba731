package engine

import (
	"context"

	"github.com/law-makers/soldscrape/internal/engine/static"
)

// Fetcher is the transport seam used by the orchestrator. static.Client is the
// production implementation; tests substitute fakes.
type Fetcher interface {
	// Fetch performs one GET of url. A non-2xx response must be reported as an error.
	Fetch(ctx context.Context, url string) (*static.Response, error)

	// Name returns the name of the fetcher implementation
	Name() string
}
