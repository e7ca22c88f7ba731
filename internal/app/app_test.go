package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/law-makers/soldscrape/internal/config"
	"github.com/law-makers/soldscrape/internal/proxy"
	"github.com/law-makers/soldscrape/pkg/models"
	"github.com/rs/zerolog"
)

const resultsPage = `<html><body><ul>
<li class="s-item"><div class="s-item__title">Shop on eBay</div></li>
<li class="s-item">
  <a class="s-item__link" href="https://www.ebay.com/itm/1?hash=x"><div class="s-item__title">Vintage Nintendo Game Boy DMG-01</div></a>
  <span class="s-item__price">$45.00</span>
  <div class="s-item__title--tag"><span class="POSITIVE">Sold  Mar 3, 2024</span></div>
</li>
</ul></body></html>`

func testConfig(t *testing.T, searchURL string) *config.Config {
	cfg := config.Defaults()
	cfg.LogLevel = "error"
	cfg.SearchBaseURL = searchURL
	cfg.JitterMin, cfg.JitterMax = 0, 0
	cfg.RateLimitRPS = 0
	cfg.LogFile = filepath.Join(t.TempDir(), "soldscrape.log")
	return cfg
}

func TestNewWiresEndToEnd(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("LH_Sold") != "1" {
			t.Errorf("sold filter missing from %s", r.URL)
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	a, err := New(context.Background(), testConfig(t, srv.URL+"/sch/i.html"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close(context.Background())

	var settled atomic.Int32
	svc := a.ServiceWithProgress(func(models.PageOutcome) { settled.Add(1) })
	resp, err := svc.Scrape(context.Background(), models.ScrapeRequest{SearchTerm: "game boy", Pages: 2})
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}

	if hits.Load() != 2 || settled.Load() != 2 {
		t.Fatalf("expected 2 fetches and 2 callbacks, got %d and %d", hits.Load(), settled.Load())
	}
	if resp.TotalItems != 2 {
		t.Fatalf("expected one record per page, got %d", resp.TotalItems)
	}
	rec := resp.Data[0]
	if rec.SoldDate != "Mar 3, 2024" || rec.URL != "https://www.ebay.com/itm/1" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if a.Uptime() <= 0 || a.Uptime() > time.Minute {
		t.Fatalf("unexpected uptime %v", a.Uptime())
	}
}

func TestNewRejectsMissingLocators(t *testing.T) {
	cfg := testConfig(t, "https://www.ebay.com/sch/i.html")
	cfg.LocatorsFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := New(context.Background(), cfg)
	if err == nil || !strings.Contains(err.Error(), "locators") {
		t.Fatalf("expected locator error, got %v", err)
	}
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestWarnIfUnproxied(t *testing.T) {
	cases := []struct {
		name    string
		proxies []string
		warned  bool
	}{
		{"no proxies", nil, true},
		{"blank entries only", []string{" ", ""}, true},
		{"one proxy", []string{"http://proxy.example.net:8080"}, false},
	}
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	defer zerolog.SetGlobalLevel(prev)

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
			got := warnIfUnproxied(logger, proxy.NewProxyPool(tc.proxies))
			if got != tc.warned {
				t.Fatalf("warnIfUnproxied = %v, want %v", got, tc.warned)
			}
			logged := strings.Contains(buf.String(), `"level":"warn"`)
			if logged != tc.warned {
				t.Fatalf("warn logged = %v, want %v: %s", logged, tc.warned, buf.String())
			}
		})
	}
}
