package scraper

import "CouponScraper/internal/models"

// Scraper defines the behavior shared by all coupon-site scrapers, so a
// second site can be added without touching the orchestration layer.
type Scraper interface {
	// DiscoverCategories walks the site's category index and returns the
	// flat list of category descriptors with parent linkage.
	DiscoverCategories() ([]models.Category, error)

	// ExtractCoupons navigates to one category's listing page and returns
	// its coupon records, fully decorated with hierarchy context.
	ExtractCoupons(category models.Category) ([]models.Coupon, error)
}

// Fetcher is the browser-backed page loader the scrapers run on. Fetch
// returns the rendered HTML or one of the typed errors in this package;
// RotateIdentity switches the client identity after an anti-bot block.
type Fetcher interface {
	Fetch(url string) (string, error)
	RotateIdentity()
	Close()
}
