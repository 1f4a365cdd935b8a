package simplycodes

import (
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"CouponScraper/internal/models"
	"CouponScraper/internal/scraper"
)

// parseCoupons extracts the coupon records from a category listing page.
// The zero-based position of each block inside the grid becomes
// ButtonIndex; it is the only disambiguator when brand and code repeat
// across offer variants. A page without a grid or without blocks yields an
// empty list, not an error.
func parseCoupons(htmlContent string) ([]models.Coupon, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, scraper.FatalError{Err: fmt.Errorf("parse category page: %w", err)}
	}

	grid := doc.Find("div.grid.grid-cols-1").First()
	if grid.Length() == 0 {
		log.Println("Coupon grid not found on page; returning no coupons")
		return nil, nil
	}

	var coupons []models.Coupon
	grid.Find("div[role='button']").Each(func(idx int, block *goquery.Selection) {
		brand := strings.TrimSpace(block.Find("h3").First().Text())
		description := strings.TrimSpace(block.Find("h4").First().Text())
		// Deal-type offers render no code button; the record keeps an
		// explicit empty code rather than being dropped.
		code := strings.TrimSpace(block.Find("button span.uppercase.truncate").First().Text())

		if brand == "" || description == "" {
			return
		}

		coupons = append(coupons, models.Coupon{
			Brand:       brand,
			Code:        code,
			Description: description,
			ButtonIndex: idx,
		})
	})

	log.Printf("Extracted %d coupons from grid", len(coupons))
	return coupons, nil
}
