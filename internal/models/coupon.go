package models

// Coupon is one extracted offer. ButtonIndex is the zero-based position of
// the offer block on its category page and, together with CategoryPath,
// uniquely identifies the record even when the same brand and code repeat.
//
// Code is the empty string for deal-type offers that carry no coupon code.
// Level3 is nil when the category has no third tier, so the JSON artifact
// carries an explicit null the way the search layer expects.
type Coupon struct {
	Brand        string  `json:"brand"`
	Code         string  `json:"code"`
	Description  string  `json:"description"`
	ButtonIndex  int     `json:"button_index"`
	Category     string  `json:"category,omitempty"`
	CategoryURL  string  `json:"category_url,omitempty"`
	CategoryPath string  `json:"category_path,omitempty"`
	Level1       string  `json:"level1,omitempty"`
	Level2       string  `json:"level2,omitempty"`
	Level3       *string `json:"level3"`
}
