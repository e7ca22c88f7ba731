// Package output exports scrape results to files.
package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/law-makers/soldscrape/pkg/models"
)

// Save picks an exporter from the file extension: .json, .csv or .md
func Save(resp *models.ScrapeResponse, path string) error {
	if resp == nil {
		return fmt.Errorf("nothing to save")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return SaveJSON(resp, path)
	case ".csv":
		return SaveCSV(resp, path)
	case ".md", ".markdown":
		return SaveMarkdown(resp, path)
	default:
		return fmt.Errorf("unsupported output format %q (use .json, .csv or .md)", filepath.Ext(path))
	}
}
