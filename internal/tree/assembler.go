package tree

import (
	"log"
	"strings"

	"CouponScraper/internal/models"
	"CouponScraper/utils"
)

// Build assembles the nested tree from flat categories and coupons in one
// deterministic pass. Every discovered category appears, with or without
// coupons; each coupon attaches to the deepest node matching its hierarchy.
// Duplicate category paths resolve to the most recently discovered
// descriptor with a logged warning. Missing intermediate nodes are
// synthesized from their slugs so a level-3 entry whose level-2 parent was
// never linked directly still has a home.
func Build(baseURL string, categories []models.Category, coupons []models.Coupon) map[string]*Level1Node {
	baseURL = strings.TrimRight(baseURL, "/")
	root := make(map[string]*Level1Node)

	for _, category := range dedupeCategories(categories) {
		segments := utils.SplitCategoryPath(category.CategoryPath)
		switch len(segments) {
		case 1:
			node := ensureLevel1(root, baseURL, segments[0])
			node.CategoryName = category.Title
		case 2:
			node := ensureLevel2(root, baseURL, segments[0], segments[1])
			node.SubcategoriesName = category.Title
			node.URL = category.URL
			if category.ParentCategory != "" {
				node.ParentCategory = category.ParentCategory
			}
		case 3:
			node := ensureLevel3(root, baseURL, segments[0], segments[1], segments[2])
			node.SubcategoriesName = category.Title
			node.URL = category.URL
			node.ParentCategory = segments[0] + " > " + segments[1]
		default:
			log.Printf("WARN: skipping category with unsupported path %q", category.CategoryPath)
		}
	}

	for _, coupon := range coupons {
		level1, level2, level3 := couponHierarchy(coupon)
		if level1 == "" || level2 == "" {
			log.Printf("WARN: coupon %q (%s) has no resolvable hierarchy; skipped from tree", coupon.Brand, coupon.CategoryPath)
			continue
		}
		if level3 != "" {
			node := ensureLevel3(root, baseURL, level1, level2, level3)
			node.Coupons = append(node.Coupons, coupon)
			continue
		}
		node := ensureLevel2(root, baseURL, level1, level2)
		node.Coupons = append(node.Coupons, coupon)
	}

	return root
}

// HierarchyIndex maps every node's category path to its slug triple, the
// lookup used to decorate coupons against an already-built tree.
func HierarchyIndex(root map[string]*Level1Node) map[string]Hierarchy {
	index := make(map[string]Hierarchy)
	for l1Slug, l1 := range root {
		index[l1.CategoryPath] = Hierarchy{Level1: l1Slug}
		for l2Slug, l2 := range l1.Subcategories {
			index[l2.SubcategoriesPath] = Hierarchy{Level1: l1Slug, Level2: l2Slug}
			for l3Slug, l3 := range l2.Subcategories {
				index[l3.SubcategoriesPath] = Hierarchy{Level1: l1Slug, Level2: l2Slug, Level3: l3Slug}
			}
		}
	}
	return index
}

// dedupeCategories keeps one descriptor per category path, preferring the
// most recently discovered one and logging conflicting titles.
func dedupeCategories(categories []models.Category) []models.Category {
	byPath := make(map[string]int)
	var out []models.Category
	for _, c := range categories {
		if i, dup := byPath[c.CategoryPath]; dup {
			if out[i].Title != c.Title {
				log.Printf("WARN: duplicate category path %q discovered with titles %q and %q; keeping the latest", c.CategoryPath, out[i].Title, c.Title)
			}
			out[i] = c
			continue
		}
		byPath[c.CategoryPath] = len(out)
		out = append(out, c)
	}
	return out
}

func couponHierarchy(c models.Coupon) (string, string, string) {
	level3 := ""
	if c.Level3 != nil {
		level3 = *c.Level3
	}
	if c.Level1 != "" {
		return c.Level1, c.Level2, level3
	}
	segments := utils.SplitCategoryPath(c.CategoryPath)
	switch len(segments) {
	case 2:
		return segments[0], segments[1], ""
	case 3:
		return segments[0], segments[1], segments[2]
	}
	return "", "", ""
}

func ensureLevel1(root map[string]*Level1Node, baseURL, level1 string) *Level1Node {
	node, ok := root[level1]
	if !ok {
		node = &Level1Node{
			CategoryName:  utils.HumanizeSlug(level1),
			CategoryPath:  "/category/" + level1,
			Subcategories: make(map[string]*Level2Node),
		}
		root[level1] = node
	}
	return node
}

func ensureLevel2(root map[string]*Level1Node, baseURL, level1, level2 string) *Level2Node {
	parent := ensureLevel1(root, baseURL, level1)
	node, ok := parent.Subcategories[level2]
	if !ok {
		path := "/category/" + level1 + "/" + level2
		node = &Level2Node{
			SubcategoriesName: utils.HumanizeSlug(level2),
			SubcategoriesPath: path,
			URL:               baseURL + path,
			Level:             2,
			ParentCategory:    level1,
		}
		parent.Subcategories[level2] = node
	}
	return node
}

func ensureLevel3(root map[string]*Level1Node, baseURL, level1, level2, level3 string) *Level3Node {
	parent := ensureLevel2(root, baseURL, level1, level2)
	if parent.Subcategories == nil {
		parent.Subcategories = make(map[string]*Level3Node)
	}
	node, ok := parent.Subcategories[level3]
	if !ok {
		path := "/category/" + level1 + "/" + level2 + "/" + level3
		node = &Level3Node{
			SubcategoriesName: utils.HumanizeSlug(level3),
			SubcategoriesPath: path,
			URL:               baseURL + path,
			Level:             3,
			ParentCategory:    level1 + " > " + level2,
		}
		parent.Subcategories[level3] = node
	}
	return node
}
