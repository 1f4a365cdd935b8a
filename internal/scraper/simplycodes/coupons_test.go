package simplycodes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const couponPageHTML = `<html><body>
<div class="grid grid-cols-1">
  <div role="button">
    <h3>Sephora</h3>
    <h4>20% off sitewide</h4>
    <button><span class="uppercase truncate">SAVE20</span></button>
  </div>
  <div role="button">
    <h3>Ulta</h3>
    <h4>Free shipping on orders over $35</h4>
  </div>
  <div role="button">
    <h3></h3>
    <h4>block without a brand</h4>
  </div>
  <div role="button">
    <h3>Sephora</h3>
    <h4>20% off for members</h4>
    <button><span class="uppercase truncate">SAVE20</span></button>
  </div>
</div>
</body></html>`

func TestParseCoupons(t *testing.T) {
	coupons, err := parseCoupons(couponPageHTML)
	require.NoError(t, err)
	require.Len(t, coupons, 3)

	assert.Equal(t, "Sephora", coupons[0].Brand)
	assert.Equal(t, "SAVE20", coupons[0].Code)
	assert.Equal(t, "20% off sitewide", coupons[0].Description)
	assert.Equal(t, 0, coupons[0].ButtonIndex)

	// Deal offer: no code button means an explicit empty code, never a
	// dropped record.
	assert.Equal(t, "Ulta", coupons[1].Brand)
	assert.Empty(t, coupons[1].Code)
	assert.Equal(t, 1, coupons[1].ButtonIndex)

	// The unusable third block still consumed its page position, so the
	// repeated Sephora/SAVE20 variant stays distinguishable by index.
	assert.Equal(t, 3, coupons[2].ButtonIndex)
	assert.Equal(t, coupons[0].Brand, coupons[2].Brand)
	assert.Equal(t, coupons[0].Code, coupons[2].Code)
}

func TestParseCouponsNoGrid(t *testing.T) {
	coupons, err := parseCoupons("<html><body><p>maintenance page</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, coupons)
}

func TestParseCouponsEmptyGrid(t *testing.T) {
	coupons, err := parseCoupons(`<html><body><div class="grid grid-cols-1"></div></body></html>`)
	require.NoError(t, err)
	assert.Empty(t, coupons)
}
