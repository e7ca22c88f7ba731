package output

import (
	"fmt"
	"strings"

	"github.com/law-makers/soldscrape/pkg/models"
	"golang.org/x/net/html"
)

// RenderHTMLTable renders records as an HTML table. Every cell is escaped,
// listing titles come straight from the scraped page.
func RenderHTMLTable(records []models.ListingRecord) string {
	var sb strings.Builder
	sb.WriteString("<table>\n<thead><tr>")
	for _, h := range CSVHeader[:3] {
		sb.WriteString("<th>" + html.EscapeString(h) + "</th>")
	}
	sb.WriteString("<th>Link</th></tr></thead>\n<tbody>\n")

	for _, r := range records {
		sb.WriteString("<tr>")
		sb.WriteString(cell(r.ItemName))
		sb.WriteString(cell(r.SoldPrice))
		sb.WriteString(cell(r.SoldDate))
		if r.URL != "" {
			sb.WriteString(fmt.Sprintf(`<td><a href="%s">view</a></td>`, html.EscapeString(r.URL)))
		} else {
			sb.WriteString("<td></td>")
		}
		sb.WriteString("</tr>\n")
	}

	sb.WriteString("</tbody>\n</table>")
	return sb.String()
}

func cell(s string) string {
	return "<td>" + html.EscapeString(s) + "</td>"
}
