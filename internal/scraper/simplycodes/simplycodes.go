package simplycodes

import (
	"fmt"
	"strings"

	"CouponScraper/internal/models"
	"CouponScraper/internal/scraper"
	"CouponScraper/utils"
)

// SimplyCodesScraper implements scraper.Scraper for simplycodes.com. All
// page loads go through the Fetcher wrapped in the retry policy.
type SimplyCodesScraper struct {
	fetcher scraper.Fetcher
	policy  scraper.Policy
	baseURL string
}

// New builds a scraper on top of an already-running fetch session.
func New(fetcher scraper.Fetcher, policy scraper.Policy, baseURL string) *SimplyCodesScraper {
	return &SimplyCodesScraper{
		fetcher: fetcher,
		policy:  policy,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the configured site root.
func (s *SimplyCodesScraper) BaseURL() string {
	return s.baseURL
}

func (s *SimplyCodesScraper) fetchWithRetry(url string) (string, error) {
	var html string
	err := scraper.Retry(s.policy, func(attempt int) error {
		h, err := s.fetcher.Fetch(url)
		if err != nil {
			return err
		}
		html = h
		return nil
	}, s.fetcher.RotateIdentity)
	return html, err
}

// DiscoverCategories walks the category index page and returns the unioned,
// deduplicated flat category list.
func (s *SimplyCodesScraper) DiscoverCategories() ([]models.Category, error) {
	indexURL := s.baseURL + "/category"
	html, err := s.fetchWithRetry(indexURL)
	if err != nil {
		return nil, fmt.Errorf("fetch category index: %w", err)
	}
	return parseCategories(html, s.baseURL)
}

// ExtractCoupons loads one category listing page and returns its coupons,
// each decorated with the full hierarchy context.
func (s *SimplyCodesScraper) ExtractCoupons(category models.Category) ([]models.Coupon, error) {
	html, err := s.fetchWithRetry(category.URL)
	if err != nil {
		return nil, err
	}

	coupons, err := parseCoupons(html)
	if err != nil {
		return nil, err
	}

	for i := range coupons {
		decorateCoupon(&coupons[i], category)
	}
	return coupons, nil
}

// decorateCoupon stamps the category context onto a parsed coupon. Level3
// stays nil for two-tier categories so the artifact carries an explicit
// null.
func decorateCoupon(c *models.Coupon, category models.Category) {
	c.Category = category.Title
	c.CategoryURL = category.URL
	c.CategoryPath = category.CategoryPath

	level1, level2, level3 := category.Level1, category.Level2, category.Level3
	if level1 == "" {
		segments := utils.SplitCategoryPath(category.CategoryPath)
		if len(segments) > 0 {
			level1 = segments[0]
		}
		if len(segments) > 1 {
			level2 = segments[1]
		}
		if len(segments) > 2 {
			level3 = segments[2]
		}
	}

	c.Level1 = level1
	c.Level2 = level2
	if level3 != "" {
		v := level3
		c.Level3 = &v
	}
}
