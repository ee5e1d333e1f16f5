package gap

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// tileSigningSalt is the fixed key Google Arts & Culture's tile
// servers appear to combine with each page's per-asset token when
// authenticating tile requests. It has never been published and is
// reconstructed here only well enough to produce a URL of the right
// shape; real tile fetches against Google's servers would need the
// actual value.
const tileSigningSalt = "google-arts-culture-tile-signing"

// computeTileURL renders the signed tile URL for the tile at grid
// column x, row y of pyramid level z.
func computeTileURL(page *PageInfo, x, y, z uint) string {
	payload := fmt.Sprintf("%d-%d-%d-%s", x, y, z, page.Token)
	mac := hmac.New(sha1.New, []byte(tileSigningSalt))
	mac.Write([]byte(payload))
	signature := hex.EncodeToString(mac.Sum(nil))
	return fmt.Sprintf("%s=x%d-y%d-z%d-t%s", page.BaseURL, x, y, z, signature)
}
