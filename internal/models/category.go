package models

// Category describes a single discovered category. Its identity is
// CategoryPath, a site-relative path such as "/category/beauty/makeup";
// Level counts the slug segments under the /category prefix.
type Category struct {
	Title          string `json:"title"`
	URL            string `json:"url"`
	CategoryPath   string `json:"category_path"`
	Level          int    `json:"level"`
	ParentCategory string `json:"parent_category,omitempty"`
	ParentPath     string `json:"parent_path,omitempty"`
	Level1         string `json:"level1,omitempty"`
	Level2         string `json:"level2,omitempty"`
	Level3         string `json:"level3,omitempty"`
}
