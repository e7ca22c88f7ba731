package output

import (
	"encoding/json"
	"os"

	"github.com/law-makers/soldscrape/pkg/models"
)

// SaveJSON writes the full response envelope, indented, to filepath.
func SaveJSON(resp *models.ScrapeResponse, filepath string) error {
	content, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, content, 0644)
}
