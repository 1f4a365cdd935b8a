package main

import (
	"flag"
	"log"

	"CouponScraper/internal/app"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	task := flag.String("task", "discover-tree", "Task to run: scrape-single, discover-tree, or comprehensive")
	configPath := flag.String("config", "config.yml", "Path to the YAML config file")
	target := flag.String("url", "", "Category URL for scrape-single (default: beauty/makeup)")
	maxCategories := flag.Int("max", 0, "Cap on categories for the comprehensive task (0 = use config)")
	flag.Parse()

	application := app.New(*configPath)
	defer application.Close()

	log.Printf("Running task: %s", *task)

	switch *task {
	case "scrape-single":
		// Scrapes one category listing and writes extracted_coupons.json.
		application.RunSingleScrape(*target)

	case "discover-tree":
		// Walks the category index and writes discovered_categories.json
		// plus the coupon-free category_tree.json.
		application.RunDiscoverTree()

	case "comprehensive":
		// Scrapes every discovered category, paced, and writes
		// comprehensive_coupons.json.
		application.RunComprehensive(*maxCategories)

	default:
		log.Fatalf("Unknown task: %s.", *task)
	}
}
