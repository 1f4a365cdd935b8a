package tree

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CouponScraper/internal/models"
)

const baseURL = "https://simplycodes.com"

func strPtr(s string) *string { return &s }

func fixtureCategories() []models.Category {
	return []models.Category{
		{Title: "Makeup", URL: baseURL + "/category/beauty/makeup", CategoryPath: "/category/beauty/makeup", Level: 2, ParentCategory: "beauty"},
		{Title: "AI Content Creation", URL: baseURL + "/category/artificial-intelligence/ai-content-creation", CategoryPath: "/category/artificial-intelligence/ai-content-creation", Level: 2, ParentCategory: "artificial-intelligence"},
		{Title: "AI Writing", URL: baseURL + "/category/artificial-intelligence/ai-content-creation/ai-writing", CategoryPath: "/category/artificial-intelligence/ai-content-creation/ai-writing", Level: 3},
		{Title: "Skincare", URL: baseURL + "/category/beauty/skincare", CategoryPath: "/category/beauty/skincare", Level: 2, ParentCategory: "beauty"},
	}
}

func fixtureCoupons() []models.Coupon {
	return []models.Coupon{
		{Brand: "Sephora", Code: "SAVE20", Description: "20% off", ButtonIndex: 0, CategoryPath: "/category/beauty/makeup", Level1: "beauty", Level2: "makeup"},
		{Brand: "Ulta", Code: "", Description: "Free shipping", ButtonIndex: 1, CategoryPath: "/category/beauty/makeup", Level1: "beauty", Level2: "makeup"},
		{Brand: "Jasper", Code: "WRITE10", Description: "10% off annual plan", ButtonIndex: 0, CategoryPath: "/category/artificial-intelligence/ai-content-creation/ai-writing", Level1: "artificial-intelligence", Level2: "ai-content-creation", Level3: strPtr("ai-writing")},
	}
}

func TestBuildTwoTierAndThreeTierScenario(t *testing.T) {
	root := Build(baseURL, fixtureCategories(), fixtureCoupons())

	beauty := root["beauty"]
	require.NotNil(t, beauty, "level-1 node synthesized from slug")
	assert.Equal(t, "Beauty", beauty.CategoryName)
	assert.Equal(t, "/category/beauty", beauty.CategoryPath)

	makeup := beauty.Subcategories["makeup"]
	require.NotNil(t, makeup)
	assert.Equal(t, "Makeup", makeup.SubcategoriesName)
	// Two-tier category: coupons sit flat on the level-2 node, no nested
	// subcategories map required.
	assert.Len(t, makeup.Coupons, 2)
	assert.Nil(t, makeup.Subcategories)

	ai := root["artificial-intelligence"]
	require.NotNil(t, ai)
	creation := ai.Subcategories["ai-content-creation"]
	require.NotNil(t, creation)
	assert.Empty(t, creation.Coupons, "coupon belongs to the deeper leaf")

	writing := creation.Subcategories["ai-writing"]
	require.NotNil(t, writing)
	require.Len(t, writing.Coupons, 1)
	require.NotNil(t, writing.Coupons[0].Level3)
	assert.Equal(t, "ai-writing", *writing.Coupons[0].Level3)
}

func TestBuildTreeCompleteness(t *testing.T) {
	categories := fixtureCategories()
	root := Build(baseURL, categories, nil)
	index := HierarchyIndex(root)

	// Every descriptor has a node even with zero coupons.
	for _, c := range categories {
		_, ok := index[c.CategoryPath]
		assert.True(t, ok, "no node for %s", c.CategoryPath)
	}

	skincare := root["beauty"].Subcategories["skincare"]
	require.NotNil(t, skincare)
	assert.Empty(t, skincare.Coupons)
}

func TestBuildPathPrefixInvariant(t *testing.T) {
	root := Build(baseURL, fixtureCategories(), fixtureCoupons())

	for _, l1 := range root {
		for _, l2 := range l1.Subcategories {
			assert.Contains(t, l2.SubcategoriesPath, l1.CategoryPath+"/")
			for _, l3 := range l2.Subcategories {
				assert.Contains(t, l3.SubcategoriesPath, l2.SubcategoriesPath+"/")
			}
		}
	}
}

func TestBuildCouponAppearsInExactlyOneLeaf(t *testing.T) {
	root := Build(baseURL, fixtureCategories(), fixtureCoupons())

	type identity struct {
		path  string
		index int
	}
	counts := make(map[identity]int)
	for _, l1 := range root {
		for _, l2 := range l1.Subcategories {
			for _, c := range l2.Coupons {
				counts[identity{c.CategoryPath, c.ButtonIndex}]++
			}
			for _, l3 := range l2.Subcategories {
				for _, c := range l3.Coupons {
					counts[identity{c.CategoryPath, c.ButtonIndex}]++
				}
			}
		}
	}

	assert.Len(t, counts, len(fixtureCoupons()))
	for id, n := range counts {
		assert.Equal(t, 1, n, "coupon %v placed %d times", id, n)
	}
}

func TestBuildDuplicatePathPrefersLatest(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	categories := []models.Category{
		{Title: "Make-up", URL: baseURL + "/category/beauty/makeup", CategoryPath: "/category/beauty/makeup", Level: 2},
		{Title: "Makeup", URL: baseURL + "/category/beauty/makeup", CategoryPath: "/category/beauty/makeup", Level: 2},
	}

	root := Build(baseURL, categories, nil)
	assert.Equal(t, "Makeup", root["beauty"].Subcategories["makeup"].SubcategoriesName)
	assert.Contains(t, buf.String(), "duplicate category path")
}

func TestBuildCappedSubsetStillValid(t *testing.T) {
	// A capped comprehensive run assembles over whatever was collected; a
	// truncated category list must still produce a coherent tree.
	categories := fixtureCategories()[:2]
	root := Build(baseURL, categories, nil)

	assert.Len(t, root, 2)
	assert.NotNil(t, root["beauty"].Subcategories["makeup"])
	assert.NotNil(t, root["artificial-intelligence"].Subcategories["ai-content-creation"])
	assert.Nil(t, root["beauty"].Subcategories["skincare"])
}

func TestHierarchyIndex(t *testing.T) {
	root := Build(baseURL, fixtureCategories(), nil)
	index := HierarchyIndex(root)

	h := index["/category/artificial-intelligence/ai-content-creation/ai-writing"]
	assert.Equal(t, Hierarchy{Level1: "artificial-intelligence", Level2: "ai-content-creation", Level3: "ai-writing"}, h)

	h = index["/category/beauty/makeup"]
	assert.Equal(t, Hierarchy{Level1: "beauty", Level2: "makeup"}, h)

	// Every coupon's category_path resolves to exactly one tree node.
	for _, c := range fixtureCoupons() {
		_, ok := index[c.CategoryPath]
		assert.True(t, ok, "coupon path %s not reachable in tree", c.CategoryPath)
	}
}

func TestBuildSynthesizesMissingIntermediateNodes(t *testing.T) {
	categories := []models.Category{
		{Title: "AI Writing", URL: baseURL + "/category/artificial-intelligence/ai-content-creation/ai-writing", CategoryPath: "/category/artificial-intelligence/ai-content-creation/ai-writing", Level: 3},
	}

	root := Build(baseURL, categories, nil)
	ai := root["artificial-intelligence"]
	require.NotNil(t, ai)
	assert.Equal(t, "Artificial Intelligence", ai.CategoryName)

	creation := ai.Subcategories["ai-content-creation"]
	require.NotNil(t, creation)
	assert.Equal(t, "Ai Content Creation", creation.SubcategoriesName)
	assert.Equal(t, baseURL+"/category/artificial-intelligence/ai-content-creation", creation.URL)
	require.NotNil(t, creation.Subcategories["ai-writing"])
	assert.Equal(t, "AI Writing", creation.Subcategories["ai-writing"].SubcategoriesName)
}
