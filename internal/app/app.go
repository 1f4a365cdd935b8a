package app

import (
	"errors"
	"log"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"CouponScraper/internal/database"
	"CouponScraper/internal/metrics"
	"CouponScraper/internal/models"
	"CouponScraper/internal/scraper"
	"CouponScraper/internal/scraper/simplycodes"
	"CouponScraper/internal/storage"
	"CouponScraper/internal/tree"
	"CouponScraper/pkg/config"
	"CouponScraper/utils"
)

// App is the main application structure holding all dependencies.
type App struct {
	Config  *config.Config
	Repo    *database.DBRepository
	Metrics *metrics.Metrics
}

// New creates a new application instance with all initial settings.
func New(configPath string) *App {
	cfg := config.LoadConfig(configPath)
	repo := database.InitDB(cfg.Storage.DatabasePath)
	m := metrics.New()
	m.Serve(cfg.Metrics.ListenAddr)
	return &App{
		Config:  cfg,
		Repo:    repo,
		Metrics: m,
	}
}

// Close releases the application's resources.
func (a *App) Close() {
	a.Repo.Close()
}

func (a *App) retryPolicy() scraper.Policy {
	return scraper.Policy{
		MaxAttempts:  a.Config.Retry.MaxAttempts,
		BaseDelay:    a.Config.Retry.BaseDelay(),
		JitterRatio:  a.Config.Retry.JitterRatio,
		BlockedDelay: a.Config.Retry.BlockedDelay(),
		OnRetry:      func(int) { a.Metrics.RetriesTotal.Inc() },
	}
}

// newScraper launches a browser session and builds the site scraper on it.
// The caller owns the session and must Close it.
func (a *App) newScraper() (*simplycodes.SimplyCodesScraper, *simplycodes.Session) {
	session := simplycodes.NewSession(a.Config.Scraper, a.Metrics)
	sc := simplycodes.New(session, a.retryPolicy(), a.Config.SimplyCodes.BaseURL)
	return sc, session
}

func (a *App) artifactPath(name string) string {
	return filepath.Join(a.Config.Storage.DataDir, name)
}

// RunSingleScrape extracts the coupons of one category page and writes
// extracted_coupons.json. An empty target falls back to beauty/makeup.
func (a *App) RunSingleScrape(target string) {
	log.Println("--- Starting Single Category Scraping Task ---")

	if target == "" {
		target = a.Config.SimplyCodes.BaseURL + "/category/beauty/makeup"
	}
	category, err := categoryFromURL(target)
	if err != nil {
		log.Fatalf("Invalid category URL %q: %v", target, err)
	}

	sc, session := a.newScraper()
	defer session.Close()

	log.Printf("Scraping: %s", target)
	coupons, err := sc.ExtractCoupons(category)
	if err != nil {
		log.Fatalf("Failed to scrape %s: %v", target, err)
	}

	if err := storage.WriteJSON(a.artifactPath("extracted_coupons.json"), coupons); err != nil {
		log.Fatalf("Failed to save extracted coupons: %v", err)
	}
	for _, c := range coupons {
		if err := a.Repo.SaveCoupon(c); err == nil {
			a.Metrics.CouponsTotal.Inc()
		}
	}

	log.Printf("Task finished. Extracted %d coupons from %s.", len(coupons), category.CategoryPath)
}

// RunDiscoverTree discovers the full category list and writes both the flat
// descriptor list and the coupon-free navigation tree. Failure to reach the
// category index is run-fatal: nothing can be derived without it.
func (a *App) RunDiscoverTree() {
	log.Println("--- Starting Category Discovery Task ---")

	sc, session := a.newScraper()
	defer session.Close()

	categories, err := sc.DiscoverCategories()
	if err != nil {
		log.Fatalf("Failed to discover categories: %v", err)
	}
	if len(categories) == 0 {
		log.Fatalf("No categories discovered at %s/category", a.Config.SimplyCodes.BaseURL)
	}

	if err := storage.WriteJSON(a.artifactPath("discovered_categories.json"), categories); err != nil {
		log.Fatalf("Failed to save discovered categories: %v", err)
	}

	var savedCount int
	for _, c := range categories {
		if err := a.Repo.SaveCategory(c); err == nil {
			savedCount++
		}
	}

	navigationTree := tree.Build(a.Config.SimplyCodes.BaseURL, categories, nil)
	if err := storage.WriteJSON(a.artifactPath("category_tree.json"), navigationTree); err != nil {
		log.Fatalf("Failed to save category tree: %v", err)
	}

	log.Printf("Task finished. Discovered %d categories (%d saved to database), tree has %d top-level nodes.", len(categories), savedCount, len(navigationTree))
}

// RunComprehensive scrapes coupons across all discovered categories,
// sequentially and paced, then writes comprehensive_coupons.json and a
// fresh category_tree.json. maxCategories caps how many categories get
// fetched; whatever was collected is still assembled into a valid result.
func (a *App) RunComprehensive(maxCategories int) {
	log.Println("--- Starting Comprehensive Scraping Task ---")

	sc, session := a.newScraper()
	defer session.Close()

	categories := a.loadOrDiscoverCategories(sc)
	if len(categories) == 0 {
		log.Fatalf("No categories available; run the discover-tree task first")
	}

	navigationTree := tree.Build(a.Config.SimplyCodes.BaseURL, categories, nil)
	hierarchy := tree.HierarchyIndex(navigationTree)

	if maxCategories <= 0 {
		maxCategories = a.Config.Scraper.MaxCategories
	}
	if maxCategories > 0 && len(categories) > maxCategories {
		log.Printf("Limiting to first %d of %d categories", maxCategories, len(categories))
		categories = categories[:maxCategories]
	}

	var allCoupons []models.Coupon
	var successful, skipped int
	pacing := a.Config.Scraper.Delay()

	for idx, category := range categories {
		log.Printf("Processing category %d/%d: %s (level %d)", idx+1, len(categories), category.Title, category.Level)

		coupons, err := sc.ExtractCoupons(category)
		if err != nil {
			skipped++
			a.Metrics.CategoriesSkipped.Inc()
			var exhausted *scraper.ExhaustedError
			if errors.As(err, &exhausted) && exhausted.BlockedPersistently {
				log.Printf("Category %s blocked persistently after %d attempts; skipping", category.CategoryPath, exhausted.Attempts)
			} else {
				log.Printf("Failed to scrape category %s: %v; skipping", category.CategoryPath, err)
			}
		} else {
			for i := range coupons {
				backfillHierarchy(&coupons[i], hierarchy)
				if err := a.Repo.SaveCoupon(coupons[i]); err == nil {
					a.Metrics.CouponsTotal.Inc()
				}
			}
			allCoupons = append(allCoupons, coupons...)
			successful++
			a.Metrics.CategoriesScraped.Inc()
			log.Printf("Found %d coupons in %s", len(coupons), category.Title)
		}

		// The pacing delay is a hard floor between category fetches, part
		// of the operating contract with the site, not an optimization.
		if idx < len(categories)-1 {
			log.Printf("Waiting %s before next category...", pacing)
			time.Sleep(pacing)
		}
	}

	if err := storage.WriteJSON(a.artifactPath("comprehensive_coupons.json"), allCoupons); err != nil {
		log.Fatalf("Failed to save comprehensive coupons: %v", err)
	}
	if err := storage.WriteJSON(a.artifactPath("category_tree.json"), navigationTree); err != nil {
		log.Fatalf("Failed to save category tree: %v", err)
	}

	log.Println("--- Comprehensive Scraping Task Finished ---")
	log.Printf("Summary: %d/%d categories successful, %d skipped, %d coupons collected.", successful, len(categories), skipped, len(allCoupons))
}

// loadOrDiscoverCategories prefers the checkpoint from a previous
// discover-tree run and falls back to a fresh discovery.
func (a *App) loadOrDiscoverCategories(sc *simplycodes.SimplyCodesScraper) []models.Category {
	path := a.artifactPath("discovered_categories.json")
	if storage.Exists(path) {
		var categories []models.Category
		if err := storage.ReadJSON(path, &categories); err != nil {
			log.Fatalf("Failed to load %s: %v", path, err)
		}
		log.Printf("Loaded %d categories from %s", len(categories), path)
		return categories
	}

	log.Printf("%s not found, discovering categories first...", path)
	categories, err := sc.DiscoverCategories()
	if err != nil {
		log.Fatalf("Failed to discover categories: %v", err)
	}
	if err := storage.WriteJSON(path, categories); err != nil {
		log.Fatalf("Failed to save discovered categories: %v", err)
	}
	return categories
}

// backfillHierarchy fills level slugs on coupons scraped from descriptors
// that predate the level fields, using the assembled tree's index.
func backfillHierarchy(c *models.Coupon, hierarchy map[string]tree.Hierarchy) {
	if c.Level1 != "" {
		return
	}
	h, ok := hierarchy[c.CategoryPath]
	if !ok {
		return
	}
	c.Level1 = h.Level1
	c.Level2 = h.Level2
	if h.Level3 != "" {
		v := h.Level3
		c.Level3 = &v
	}
}

// categoryFromURL derives a descriptor for a directly-targeted category
// page, the single-scrape entry path.
func categoryFromURL(target string) (models.Category, error) {
	parsed, err := url.ParseRequestURI(target)
	if err != nil {
		return models.Category{}, err
	}

	segments := utils.SplitCategoryPath(parsed.Path)
	if segments == nil {
		return models.Category{}, errors.New("url is not a category page")
	}

	c := models.Category{
		Title:        utils.HumanizeSlug(segments[len(segments)-1]),
		URL:          target,
		CategoryPath: "/category/" + strings.Join(segments, "/"),
		Level:        len(segments),
	}
	c.Level1 = segments[0]
	if len(segments) > 1 {
		c.Level2 = segments[1]
		c.ParentCategory = segments[len(segments)-2]
		c.ParentPath = "/category/" + strings.Join(segments[:len(segments)-1], "/")
	}
	if len(segments) > 2 {
		c.Level3 = segments[2]
	}
	return c, nil
}
