// Package extract parses the portal's business detail pages. The selectors
// here are specific to the portal's card layout; everything else in the
// crawler is layout-agnostic.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alpharomercoma/viableview-scraper/models"
)

// Detail parses a rendered detail page into a BusinessDetail.
//
// The page is a card layout: an h2 with the business name, then .card divs
// each labelled by a .small.muted element. The Registered Agent card holds
// the agent name (non-muted), address (muted) and email ("Email:" prefixed,
// value in a <code> child).
func Detail(rawHTML string) (*models.BusinessDetail, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, models.NewCrawlError(models.KindDetailFetch, "failed to parse detail page HTML", err)
	}

	d := &models.BusinessDetail{
		BusinessName: strings.TrimSpace(doc.Find("h2").First().Text()),
	}

	doc.Find(".card").Each(func(_ int, card *goquery.Selection) {
		label := card.Find(".small.muted").First()
		switch strings.TrimSpace(label.Text()) {
		case "Status":
			d.Status = strings.TrimSpace(card.Find(".status").First().Text())
		case "Filing Date":
			d.FilingDate = strings.TrimSpace(label.Next().Text())
		case "Address":
			d.Address = strings.TrimSpace(label.Next().Text())
		case "Registered Agent":
			extractAgent(card, d)
		}
	})

	return d, nil
}

// extractAgent walks the agent card's divs. The first non-muted div after
// the label is the name; muted divs without the "Email:" prefix are the
// address; the email value lives in a <code> child when present.
func extractAgent(card *goquery.Selection, d *models.BusinessDetail) {
	card.Find("div").Each(func(_ int, div *goquery.Selection) {
		text := strings.TrimSpace(div.Text())
		if text == "" || text == "Registered Agent" {
			return
		}
		switch {
		case strings.HasPrefix(text, "Email:"):
			if code := div.Find("code").First(); code.Length() > 0 {
				d.AgentEmail = strings.TrimSpace(code.Text())
			} else {
				d.AgentEmail = strings.TrimSpace(strings.TrimPrefix(text, "Email:"))
			}
		case div.HasClass("muted"):
			d.AgentAddress = text
		case d.AgentName == "" && !strings.Contains(text, "Email:"):
			d.AgentName = text
		}
	})
}
