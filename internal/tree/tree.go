// Package tree folds the flat category and coupon lists into the canonical
// three-level structure handed to the search layer. The tree is a derived,
// read-only view: every run rebuilds it in full from current flat data.
package tree

import "CouponScraper/internal/models"

// Level1Node is a top-level category keyed by its URL slug.
type Level1Node struct {
	CategoryName  string                 `json:"category_name"`
	CategoryPath  string                 `json:"category_path"`
	Subcategories map[string]*Level2Node `json:"subcategories"`
}

// Level2Node is a second-tier category. Subcategories is present only when
// the site exposes a third tier under it.
type Level2Node struct {
	SubcategoriesName string                 `json:"subcategories_name"`
	SubcategoriesPath string                 `json:"subcategories_path"`
	URL               string                 `json:"url"`
	Level             int                    `json:"level"`
	ParentCategory    string                 `json:"parent_category,omitempty"`
	Coupons           []models.Coupon        `json:"coupons,omitempty"`
	Subcategories     map[string]*Level3Node `json:"subcategories,omitempty"`
}

// Level3Node is a third-tier leaf.
type Level3Node struct {
	SubcategoriesName string          `json:"subcategories_name"`
	SubcategoriesPath string          `json:"subcategories_path"`
	URL               string          `json:"url"`
	Level             int             `json:"level"`
	ParentCategory    string          `json:"parent_category,omitempty"`
	Coupons           []models.Coupon `json:"coupons,omitempty"`
}

// Hierarchy is the (level1, level2, level3) slug triple for one category
// path. Level3 is empty for two-tier categories.
type Hierarchy struct {
	Level1 string
	Level2 string
	Level3 string
}
