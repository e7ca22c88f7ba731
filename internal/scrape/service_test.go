package scrape

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/law-makers/soldscrape/internal/engine"
	"github.com/law-makers/soldscrape/internal/reqctx"
	"github.com/law-makers/soldscrape/pkg/models"
)

type stubPages struct {
	mu     sync.Mutex
	called [][]int
	byPage map[int][]models.ListingRecord
	panics bool
}

func (s *stubPages) FetchPages(ctx context.Context, term string, pages []int) []models.PageOutcome {
	if s.panics {
		panic("orchestrator exploded")
	}
	s.mu.Lock()
	s.called = append(s.called, pages)
	s.mu.Unlock()

	out := make([]models.PageOutcome, len(pages))
	for i, p := range pages {
		recs, ok := s.byPage[p]
		out[i] = models.PageOutcome{Page: p, Records: recs}
		if !ok {
			out[i].Records = []models.ListingRecord{}
			out[i].Err = errors.New("page failed")
		}
	}
	return out
}

func rec(name string) models.ListingRecord {
	return models.ListingRecord{ItemName: name, SoldPrice: "$1.00"}
}

func TestScrape_ConcatenatesInPageOrder(t *testing.T) {
	stub := &stubPages{byPage: map[int][]models.ListingRecord{
		1: {rec("first page item A"), rec("first page item B")},
		3: {rec("third page item A")},
	}}
	svc := NewService(stub, Limits{})

	resp, err := svc.Scrape(context.Background(), models.ScrapeRequest{SearchTerm: "  lego  "})
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}

	if !reflect.DeepEqual(stub.called, [][]int{{1, 2, 3}}) {
		t.Errorf("Expected pages [1 2 3], got %v", stub.called)
	}
	if resp.SearchTerm != "lego" {
		t.Errorf("Expected trimmed term, got %q", resp.SearchTerm)
	}
	want := []models.ListingRecord{rec("first page item A"), rec("first page item B"), rec("third page item A")}
	if !reflect.DeepEqual(resp.Data, want) {
		t.Errorf("unexpected data %#v", resp.Data)
	}
	if resp.TotalItems != 3 || !resp.Success || resp.Pages != 3 || resp.StartPage != 1 {
		t.Errorf("unexpected summary %#v", resp)
	}
	if resp.ProgressiveMode {
		t.Error("multi-page request is not progressive")
	}
}

func TestScrape_AllPagesFail(t *testing.T) {
	svc := NewService(&stubPages{}, Limits{})
	resp, err := svc.Scrape(context.Background(), models.ScrapeRequest{SearchTerm: "lego", Pages: 2})
	if err != nil {
		t.Fatalf("page failures must not surface as errors: %v", err)
	}
	if !resp.Success || resp.TotalItems != 0 {
		t.Errorf("Expected success with zero items, got %#v", resp)
	}
	if resp.Data == nil {
		t.Error("data must be an empty array, not null")
	}
}

func TestScrape_ProgressiveMode(t *testing.T) {
	stub := &stubPages{byPage: map[int][]models.ListingRecord{4: {rec("fourth page item")}}}
	svc := NewService(stub, Limits{})

	resp, err := svc.Scrape(context.Background(), models.ScrapeRequest{SearchTerm: "lego", Pages: 1, StartPage: 4})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.ProgressiveMode {
		t.Error("single page past the first should be progressive")
	}
	if !reflect.DeepEqual(stub.called, [][]int{{4}}) {
		t.Errorf("Expected page [4], got %v", stub.called)
	}

	resp, _ = svc.Scrape(context.Background(), models.ScrapeRequest{SearchTerm: "lego", Pages: 1, StartPage: 1})
	if resp.ProgressiveMode {
		t.Error("first page alone is not progressive")
	}
}

func TestScrape_Validation(t *testing.T) {
	svc := NewService(&stubPages{}, Limits{MaxPages: 5})

	tests := []struct {
		name string
		req  models.ScrapeRequest
	}{
		{"missing term", models.ScrapeRequest{}},
		{"blank term", models.ScrapeRequest{SearchTerm: "   "}},
		{"negative pages", models.ScrapeRequest{SearchTerm: "x", Pages: -1}},
		{"too many pages", models.ScrapeRequest{SearchTerm: "x", Pages: 6}},
		{"negative start", models.ScrapeRequest{SearchTerm: "x", StartPage: -2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Scrape(context.Background(), tt.req)
			if !engine.IsValidation(err) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}

	if _, err := svc.Scrape(context.Background(), models.ScrapeRequest{}); err == nil || !errors.Is(err, engine.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest in chain, got %v", err)
	}
}

func TestScrape_RecoversPanic(t *testing.T) {
	svc := NewService(&stubPages{panics: true}, Limits{})
	ctx := reqctx.WithRequestID(context.Background(), "req-9")

	resp, err := svc.Scrape(ctx, models.ScrapeRequest{SearchTerm: "lego"})
	if resp != nil {
		t.Error("expected no response after a panic")
	}
	var re *reqctx.RequestError
	if !errors.As(err, &re) || re.RequestID != "req-9" {
		t.Fatalf("expected RequestError carrying the request ID, got %v", err)
	}
	if engine.CodeOf(err) != engine.ErrCodeInternal {
		t.Errorf("Expected INTERNAL, got %v", err)
	}
}

func TestAggregate_Duration(t *testing.T) {
	req := models.ScrapeRequest{SearchTerm: "x", Pages: 1, StartPage: 1}
	tests := []struct {
		elapsed time.Duration
		want    float64
	}{
		{1234 * time.Millisecond, 1.2},
		{1250 * time.Millisecond, 1.3},
		{40 * time.Millisecond, 0},
		{9960 * time.Millisecond, 10},
	}
	for _, tt := range tests {
		if got := Aggregate(req, nil, tt.elapsed).DurationSeconds; got != tt.want {
			t.Errorf("elapsed %v: expected %v, got %v", tt.elapsed, tt.want, got)
		}
	}
}

func TestPageNumbers(t *testing.T) {
	got := PageNumbers(models.ScrapeRequest{Pages: 3, StartPage: 5})
	if !reflect.DeepEqual(got, []int{5, 6, 7}) {
		t.Errorf("Expected [5 6 7], got %v", got)
	}
}
