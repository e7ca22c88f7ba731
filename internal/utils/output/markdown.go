package output

import (
	"fmt"
	"os"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/law-makers/soldscrape/pkg/models"
	"golang.org/x/net/html"
)

// RenderMarkdown converts a response into a Markdown report with a summary
// line and a GitHub-flavored table of listings.
func RenderMarkdown(resp *models.ScrapeResponse) (string, error) {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	var doc strings.Builder
	doc.WriteString("<h1>Sold listings: " + html.EscapeString(resp.SearchTerm) + "</h1>\n")
	doc.WriteString(fmt.Sprintf("<p>%d items from %d page(s) starting at page %d, in %.1fs.</p>\n",
		resp.TotalItems, resp.Pages, resp.StartPage, resp.DurationSeconds))
	if len(resp.Data) > 0 {
		doc.WriteString(RenderHTMLTable(resp.Data))
	} else {
		doc.WriteString("<p><em>No listings found.</em></p>")
	}

	out, err := converter.ConvertString(doc.String())
	if err != nil {
		return "", err
	}
	return out + "\n", nil
}

// SaveMarkdown renders resp as Markdown and writes it to filepath
func SaveMarkdown(resp *models.ScrapeResponse, filepath string) error {
	mdStr, err := RenderMarkdown(resp)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, []byte(mdStr), 0644)
}
