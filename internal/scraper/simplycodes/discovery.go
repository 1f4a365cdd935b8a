package simplycodes

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"CouponScraper/internal/models"
	"CouponScraper/internal/scraper"
	"CouponScraper/utils"
)

// parseCategories extracts every category link from the index page HTML.
// The page renders two shapes: grouped containers where level-3 entries sit
// in a nested list under their level-2 heading, and flat sibling lists where
// level-2 (and sometimes level-3) links hang directly in the flow. Both
// strategies run and the union is deduplicated by category path.
func parseCategories(htmlContent, baseURL string) ([]models.Category, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, scraper.FatalError{Err: fmt.Errorf("parse category index: %w", err)}
	}

	seen := make(map[string]models.Category)
	add := func(c models.Category, ok bool) {
		if !ok {
			return
		}
		if _, dup := seen[c.CategoryPath]; dup {
			return
		}
		seen[c.CategoryPath] = c
	}

	// Strategy one: grouped containers. The title link names the level-2
	// category and the nested ul carries its level-3 children.
	doc.Find("div.flex.flex-row.items-center.justify-between.rounded-16 div.title a").Each(func(_ int, a *goquery.Selection) {
		add(categoryFromLink(attrHref(a), linkText(a), baseURL, ""))
	})
	doc.Find("div.overflow-hidden").Each(func(_ int, div *goquery.Selection) {
		declaredParent := ""
		if title := div.Find(`div.title a[href^="/category/"]`).First(); title.Length() > 0 {
			declaredParent = attrHref(title)
		}
		div.Find("ul.ml-6.gap-4.flex.flex-col.pb-12 li a").Each(func(_ int, a *goquery.Selection) {
			add(categoryFromLink(attrHref(a), linkText(a), baseURL, declaredParent))
		})
	})

	// Strategy two: flat anchor walk over the whole document, catching
	// level-2 entries rendered as siblings with no grouping at all.
	for _, link := range walkCategoryAnchors(htmlContent) {
		add(categoryFromLink(link.href, link.title, baseURL, ""))
	}

	categories := make([]models.Category, 0, len(seen))
	for _, c := range seen {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].CategoryPath < categories[j].CategoryPath
	})

	log.Printf("Discovered %d unique categories", len(categories))
	return categories, nil
}

// categoryFromLink builds a descriptor from an anchor's href and text. The
// level and parent linkage derive from the URL path segments; a declared
// parent that disagrees with the derived one is a data-integrity warning
// and the derived parent wins.
func categoryFromLink(href, title, baseURL, declaredParent string) (models.Category, bool) {
	href = strings.TrimSpace(href)
	title = strings.TrimSpace(title)
	if href == "" || title == "" {
		return models.Category{}, false
	}
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	href = strings.TrimSuffix(href, "/")

	segments := utils.SplitCategoryPath(href)
	if segments == nil || len(segments) > 3 {
		return models.Category{}, false
	}

	c := models.Category{
		Title:        title,
		URL:          baseURL + href,
		CategoryPath: href,
		Level:        len(segments),
	}
	c.Level1 = segments[0]
	if len(segments) > 1 {
		c.Level2 = segments[1]
	}
	if len(segments) > 2 {
		c.Level3 = segments[2]
	}

	if len(segments) > 1 {
		// The path's second-to-last segment is the immediate parent slug.
		c.ParentPath = "/category/" + strings.Join(segments[:len(segments)-1], "/")
		c.ParentCategory = segments[len(segments)-2]
	}

	if declaredParent != "" && c.ParentPath != "" && declaredParent != c.ParentPath {
		log.Printf("WARN: data integrity: declared parent %q differs from path-derived parent %q for %q", declaredParent, c.ParentPath, href)
	}

	return c, true
}

type anchorLink struct {
	href  string
	title string
}

// walkCategoryAnchors traverses the raw HTML tree and collects every anchor
// pointing under /category/, regardless of surrounding structure.
func walkCategoryAnchors(htmlContent string) []anchorLink {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		log.Printf("Error parsing HTML for anchor walk: %v", err)
		return nil
	}

	var links []anchorLink
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, a := range n.Attr {
				if a.Key == "href" && strings.HasPrefix(a.Val, "/category/") {
					links = append(links, anchorLink{href: a.Val, title: nodeText(n)})
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

func attrHref(s *goquery.Selection) string {
	href, _ := s.Attr("href")
	return href
}

func linkText(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}
