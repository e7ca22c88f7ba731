package extract

import (
	"fmt"
	"os"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"
)

// Field identifies one of the extracted listing attributes
type Field string

const (
	FieldName  Field = "name"
	FieldPrice Field = "price"
	FieldDate  Field = "date"
	FieldImage Field = "image"
	FieldURL   Field = "url"
)

// Fields lists every field in resolution order
var Fields = []Field{FieldName, FieldPrice, FieldDate, FieldImage, FieldURL}

// Locator is one candidate way of reading a field from a listing node.
// An empty Attr reads the element text.
type Locator struct {
	Selector string `yaml:"selector"`
	Attr     string `yaml:"attr,omitempty"`
}

// Locators is the declarative table driving extraction. Each chain is tried
// in order and the first locator yielding non-empty text wins.
type Locators struct {
	Containers []string  `yaml:"containers"`
	Name       []Locator `yaml:"name"`
	Price      []Locator `yaml:"price"`
	Date       []Locator `yaml:"date"`
	Image      []Locator `yaml:"image"`
	URL        []Locator `yaml:"url"`
}

// Chain returns the locator chain for a field
func (l *Locators) Chain(f Field) []Locator {
	switch f {
	case FieldName:
		return l.Name
	case FieldPrice:
		return l.Price
	case FieldDate:
		return l.Date
	case FieldImage:
		return l.Image
	case FieldURL:
		return l.URL
	}
	return nil
}

// DefaultLocators covers the classic .s-item markup, the newer .s-card
// markup and the data-testid variants served to some clients.
func DefaultLocators() Locators {
	return Locators{
		Containers: []string{
			".s-item",
			"li.s-card",
			`[data-testid="item-cell"]`,
			".srp-item",
		},
		Name: []Locator{
			{Selector: ".s-item__title"},
			{Selector: ".s-card__title"},
			{Selector: `[data-testid="item-title"]`},
			{Selector: ".it-ttl a"},
			{Selector: "h3 a"},
		},
		Price: []Locator{
			{Selector: ".s-item__price .notranslate"},
			{Selector: ".s-item__price"},
			{Selector: ".s-card__price"},
			{Selector: `[data-testid="item-price"]`},
		},
		Date: []Locator{
			{Selector: ".s-item__title--tag .POSITIVE"},
			{Selector: ".s-item__ended-date"},
			{Selector: ".s-card__caption .positive"},
		},
		Image: []Locator{
			{Selector: ".s-item__image img", Attr: "src"},
			{Selector: ".s-item__image img", Attr: "data-src"},
			{Selector: ".s-item__wrapper img", Attr: "src"},
			{Selector: "img.s-card__image", Attr: "src"},
			{Selector: "img.s-card__image", Attr: "data-defer-load"},
		},
		URL: []Locator{
			{Selector: "a.s-item__link", Attr: "href"},
			{Selector: "a[href]", Attr: "href"},
		},
	}
}

// Validate compiles every selector in the table
func (l *Locators) Validate() error {
	if len(l.Containers) == 0 {
		return fmt.Errorf("locators: no container selectors")
	}
	for _, sel := range l.Containers {
		if _, err := cascadia.Compile(sel); err != nil {
			return fmt.Errorf("locators: container %q: %w", sel, err)
		}
	}
	for _, f := range Fields {
		chain := l.Chain(f)
		if len(chain) == 0 && (f == FieldName || f == FieldPrice) {
			return fmt.Errorf("locators: %s chain is empty", f)
		}
		for _, loc := range chain {
			if loc.Selector == "" {
				return fmt.Errorf("locators: %s has an empty selector", f)
			}
			if _, err := cascadia.Compile(loc.Selector); err != nil {
				return fmt.Errorf("locators: %s selector %q: %w", f, loc.Selector, err)
			}
		}
	}
	return nil
}

// LoadLocators reads a YAML locator table. Sections missing from the file
// keep their defaults.
func LoadLocators(path string) (Locators, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Locators{}, fmt.Errorf("failed to read locators file: %w", err)
	}
	return ParseLocators(data)
}

// ParseLocators decodes a YAML locator table over the defaults
func ParseLocators(data []byte) (Locators, error) {
	var fromFile Locators
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return Locators{}, fmt.Errorf("failed to parse locators: %w", err)
	}

	locs := DefaultLocators()
	if len(fromFile.Containers) > 0 {
		locs.Containers = fromFile.Containers
	}
	if len(fromFile.Name) > 0 {
		locs.Name = fromFile.Name
	}
	if len(fromFile.Price) > 0 {
		locs.Price = fromFile.Price
	}
	if len(fromFile.Date) > 0 {
		locs.Date = fromFile.Date
	}
	if len(fromFile.Image) > 0 {
		locs.Image = fromFile.Image
	}
	if len(fromFile.URL) > 0 {
		locs.URL = fromFile.URL
	}

	if err := locs.Validate(); err != nil {
		return Locators{}, err
	}
	return locs, nil
}
