package output

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/law-makers/soldscrape/pkg/models"
)

// CSVHeader is the first row of every CSV export
var CSVHeader = []string{"Item Name", "Sold Price", "Sold Date", "Image URL", "URL"}

// SaveCSV writes one row per listing to a CSV file. Returns an error on failure.
func SaveCSV(resp *models.ScrapeResponse, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	if err := WriteCSV(file, resp.Data); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteCSV writes the header and one row per record to w
func WriteCSV(w io.Writer, records []models.ListingRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := writer.Write([]string{r.ItemName, r.SoldPrice, r.SoldDate, r.ImageURL, r.URL}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
