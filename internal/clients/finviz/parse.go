package finviz

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bobmcallan/valuescout/internal/models"
)

// parseScreenerTable locates the results table by its "Ticker" header cell
// and maps each data row into a Candidate by column name, so column order
// and unknown extra columns do not matter. A page without a results table
// (finviz shows a "no results" panel instead) yields no rows.
func parseScreenerTable(doc *goquery.Document) []*models.Candidate {
	var header *goquery.Selection
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		row.ChildrenFiltered("th, td").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
			if cleanText(cell.Text()) == "Ticker" {
				header = row
				return false
			}
			return true
		})
		return header == nil
	})
	if header == nil {
		return nil
	}

	columns := make(map[string]int)
	header.ChildrenFiltered("th, td").Each(func(i int, cell *goquery.Selection) {
		columns[cleanText(cell.Text())] = i
	})

	var rows *goquery.Selection
	if goquery.NodeName(header.Parent()) == "thead" {
		rows = header.Parent().Parent().ChildrenFiltered("tbody").ChildrenFiltered("tr")
	} else {
		rows = header.NextAllFiltered("tr")
	}

	var candidates []*models.Candidate
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		get := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= cells.Length() {
				return ""
			}
			return cleanText(cells.Eq(idx).Text())
		}

		ticker := models.NormalizeTicker(get("Ticker"))
		if ticker == "" {
			return
		}

		candidates = append(candidates, &models.Candidate{
			Ticker:    ticker,
			Company:   get("Company"),
			Sector:    get("Sector"),
			Industry:  get("Industry"),
			Country:   get("Country"),
			Price:     models.ParseFloat(get("Price")),
			PE:        models.ParseFloat(get("P/E")),
			PB:        models.ParseFloat(get("P/B")),
			MarketCap: models.ParseFloat(get("Market Cap")),
		})
	})

	return candidates
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
