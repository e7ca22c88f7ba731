package extract

import (
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/soldscrape/pkg/models"
)

const searchBase = "https://www.ebay.com/sch/i.html"

const resultsPage = `<!DOCTYPE html>
<html><body>
<ul class="srp-results">
  <li class="s-item">
    <div class="s-item__title">Shop on eBay</div>
    <span class="s-item__price">$20.00</span>
  </li>
  <li class="s-item">
    <div class="s-item__image"><img src="https://i.ebayimg.com/thumbs/images/g/abc/s-l140.jpg"></div>
    <a class="s-item__link" href="https://www.ebay.com/itm/123456?hash=item1&amp;var=2">
      <div class="s-item__title"><span>New Listing</span>Vintage Nintendo Game Boy DMG-01 Console Opens in a new window or tab</div>
    </a>
    <div class="s-item__title--tag"><span class="POSITIVE">Sold  Oct 3, 2025</span></div>
    <span class="s-item__price"><span class="notranslate">$45.99</span></span>
  </li>
  <li class="s-item">
    <a class="s-item__link" href="https://www.ebay.com/itm/1"><div class="s-item__title">Browse Similar items from this seller</div></a>
    <span class="s-item__price">$1.00</span>
  </li>
  <li class="s-item">
    <a class="s-item__link" href="https://www.ebay.com/itm/2"><div class="s-item__title">Lot</div></a>
    <span class="s-item__price">$3.00</span>
  </li>
  <li class="s-item">
    <a class="s-item__link" href="https://www.ebay.com/itm/3"><div class="s-item__title">Canon AE-1 Program 35mm Film Camera</div></a>
  </li>
  <li class="s-item">
    <div class="s-item__image"><img src="data:image/gif;base64,R0lGODlhAQABAAAAACw=" data-src="https://i.ebayimg.com/images/g/x/$_12.JPG"></div>
    <a href="/itm/999?foo=1"><div class="s-item__title">Sony Walkman WM-F2 Cassette Player</div></a>
    <div class="s-item__caption">Sold Sep 12, 2025</div>
    <span class="s-item__price">$10.00 to $15.00</span>
  </li>
</ul>
</body></html>`

func newDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return doc
}

func TestExtract_ResultsPage(t *testing.T) {
	ex := New(Locators{}, DefaultPolicy(), searchBase)

	records, stats := ex.ExtractWithStats(newDoc(t, resultsPage))

	expected := []models.ListingRecord{
		{
			ItemName:  "Vintage Nintendo Game Boy DMG-01 Console",
			SoldPrice: "$45.99",
			SoldDate:  "Oct 3, 2025",
			ImageURL:  "https://i.ebayimg.com/thumbs/images/g/abc/s-l300.jpg",
			URL:       "https://www.ebay.com/itm/123456",
		},
		{
			ItemName:  "Sony Walkman WM-F2 Cassette Player",
			SoldPrice: "$10.00",
			SoldDate:  "Sep 12, 2025",
			ImageURL:  "https://i.ebayimg.com/images/g/x/$_57.JPG",
			URL:       "https://www.ebay.com/itm/999",
		},
	}
	if !reflect.DeepEqual(records, expected) {
		t.Fatalf("unexpected records:\n got: %#v\nwant: %#v", records, expected)
	}

	if stats.Container != ".s-item" {
		t.Errorf("Expected container .s-item, got %s", stats.Container)
	}
	if stats.Candidates != 5 {
		t.Errorf("Expected 5 candidates (first node skipped), got %d", stats.Candidates)
	}
	if stats.Promotional != 1 {
		t.Errorf("Expected 1 promotional, got %d", stats.Promotional)
	}
	if stats.Invalid != 2 {
		t.Errorf("Expected 2 invalid, got %d", stats.Invalid)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	ex := New(Locators{}, DefaultPolicy(), searchBase)
	first := ex.Extract(newDoc(t, resultsPage))
	second := ex.Extract(newDoc(t, resultsPage))
	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected identical output for identical documents")
	}
}

func TestExtract_EmittedRecordsSatisfyPolicy(t *testing.T) {
	ex := New(Locators{}, DefaultPolicy(), searchBase)
	for _, r := range ex.Extract(newDoc(t, resultsPage)) {
		if !ex.Policy().Valid(r) {
			t.Errorf("emitted invalid record %#v", r)
		}
		if IsPromotional(r.ItemName) {
			t.Errorf("emitted promotional record %#v", r)
		}
	}
}

func TestExtract_ContainerFallback(t *testing.T) {
	html := `<div>
  <div data-testid="item-cell"><h3><a href="/x">placeholder</a></h3></div>
  <div data-testid="item-cell">
    <h3><a href="https://www.ebay.com/itm/42?x=1">Apple iPod Classic 160GB Silver</a></h3>
    <span data-testid="item-price">$120.00</span>
    <span class="s-item__ended-date">Sold Aug 1, 2025</span>
  </div>
</div>`
	ex := New(Locators{}, DefaultPolicy(), searchBase)
	records, stats := ex.ExtractWithStats(newDoc(t, html))

	if stats.Container != `[data-testid="item-cell"]` {
		t.Errorf("Expected data-testid container, got %s", stats.Container)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.ItemName != "Apple iPod Classic 160GB Silver" || r.SoldPrice != "$120.00" || r.SoldDate != "Aug 1, 2025" {
		t.Errorf("unexpected record %#v", r)
	}
	if r.URL != "https://www.ebay.com/itm/42" {
		t.Errorf("Expected cleaned URL, got %s", r.URL)
	}
	if r.ImageURL != "" {
		t.Errorf("Expected empty image, got %s", r.ImageURL)
	}
}

func TestExtract_CardMarkup(t *testing.T) {
	html := `<ul>
  <li class="s-card"><span class="s-card__title">ignored</span></li>
  <li class="s-card">
    <a href="https://www.ebay.com/itm/77?_skw=x"><span class="s-card__title">Polaroid SX-70 Land Camera Alpha</span></a>
    <span class="s-card__price">$210.50</span>
    <div class="s-card__caption"><span class="positive">Sold Jul 20, 2025</span></div>
    <img class="s-card__image" src="https://i.ebayimg.com/images/g/q/s-l500.webp">
  </li>
</ul>`
	ex := New(Locators{}, DefaultPolicy(), searchBase)
	records := ex.Extract(newDoc(t, html))
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	want := models.ListingRecord{
		ItemName:  "Polaroid SX-70 Land Camera Alpha",
		SoldPrice: "$210.50",
		SoldDate:  "Jul 20, 2025",
		ImageURL:  "https://i.ebayimg.com/images/g/q/s-l300.webp",
		URL:       "https://www.ebay.com/itm/77",
	}
	if records[0] != want {
		t.Errorf("got %#v, want %#v", records[0], want)
	}
}

func TestExtract_EmptyDocuments(t *testing.T) {
	ex := New(Locators{}, DefaultPolicy(), searchBase)

	tests := []struct {
		name string
		html string
	}{
		{"no containers", `<html><body><p>Nothing here</p></body></html>`},
		{"single container", `<ul><li class="s-item"><div class="s-item__title">Real Looking Item Name</div><span class="s-item__price">$5</span></li></ul>`},
		{"blank", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := ex.Extract(newDoc(t, tt.html))
			if records == nil {
				t.Fatal("expected an empty slice, got nil")
			}
			if len(records) != 0 {
				t.Errorf("Expected 0 records, got %d", len(records))
			}
		})
	}
}

func TestExtract_NilDocument(t *testing.T) {
	ex := New(Locators{}, DefaultPolicy(), searchBase)
	if got := ex.Extract(nil); len(got) != 0 {
		t.Errorf("Expected no records, got %d", len(got))
	}
}

func TestExtractHTML(t *testing.T) {
	ex := New(Locators{}, DefaultPolicy(), searchBase)
	records, err := ex.ExtractHTML(strings.NewReader(resultsPage))
	if err != nil {
		t.Fatalf("ExtractHTML failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(records))
	}
}

func TestExtract_CustomPolicy(t *testing.T) {
	ex := New(Locators{}, Policy{MinNameLength: 35, MaxNameLength: 10}, searchBase)
	records := ex.Extract(newDoc(t, resultsPage))
	// names are truncated to 10 runes + "..." before the length check, so nothing passes 35
	if len(records) != 0 {
		t.Errorf("Expected 0 records, got %d: %#v", len(records), records)
	}

	ex = New(Locators{}, Policy{MinNameLength: 2, MaxNameLength: 10}, searchBase)
	records = ex.Extract(newDoc(t, resultsPage))
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	if records[0].ItemName != "Vintage Ni..." {
		t.Errorf("Expected truncated name, got %q", records[0].ItemName)
	}
}

func TestPolicyValid(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		name   string
		rec    models.ListingRecord
		expect bool
	}{
		{"ok", models.ListingRecord{ItemName: "Record Player", SoldPrice: "$1"}, true},
		{"exactly min", models.ListingRecord{ItemName: "Lamps", SoldPrice: "$1"}, false},
		{"one over min", models.ListingRecord{ItemName: "Lamps!", SoldPrice: "$1"}, true},
		{"multibyte counted as runes", models.ListingRecord{ItemName: "äöüäöü", SoldPrice: "$1"}, true},
		{"no price", models.ListingRecord{ItemName: "Record Player"}, false},
		{"no name", models.ListingRecord{SoldPrice: "$1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Valid(tt.rec); got != tt.expect {
				t.Errorf("Valid(%#v) = %v, want %v", tt.rec, got, tt.expect)
			}
		})
	}
}

func TestExtract_ZeroMinimumAcceptsShortNames(t *testing.T) {
	ex := New(Locators{}, Policy{MinNameLength: 0, MaxNameLength: 80}, searchBase)
	if got := ex.Policy().MinNameLength; got != 0 {
		t.Fatalf("Expected minimum 0 to be kept, got %d", got)
	}

	page := `<ul>
  <li class="s-item"><div class="s-item__title">header</div></li>
  <li class="s-item"><div class="s-item__title">Lot12</div><span class="s-item__price">$3.00</span></li>
  <li class="s-item"><div class="s-item__title">Lamp</div><span class="s-item__price">$4.00</span></li>
</ul>`
	records := ex.Extract(newDoc(t, page))
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d: %#v", len(records), records)
	}
	if records[0].ItemName != "Lot12" || records[1].ItemName != "Lamp" {
		t.Errorf("unexpected names: %q, %q", records[0].ItemName, records[1].ItemName)
	}

	if got := New(Locators{}, Policy{MinNameLength: -1}, searchBase).Policy().MinNameLength; got != DefaultMinNameLength {
		t.Errorf("negative minimum should fall back to %d, got %d", DefaultMinNameLength, got)
	}
}
