package scholar

import "strings"

// DefaultBlockMarkers are the substrings Google Scholar puts on its
// anti-automation interstitial.
var DefaultBlockMarkers = []string{
	"gs_captcha",
	"Please show you're not a robot",
}

// BlockDetector recognises challenge pages by literal, case-sensitive markers.
type BlockDetector struct {
	markers []string
}

// NewBlockDetector drops empty markers; with none left it uses DefaultBlockMarkers.
func NewBlockDetector(markers []string) *BlockDetector {
	kept := make([]string, 0, len(markers))
	for _, m := range markers {
		if strings.TrimSpace(m) == "" {
			continue
		}
		kept = append(kept, m)
	}
	if len(kept) == 0 {
		kept = append(kept, DefaultBlockMarkers...)
	}
	return &BlockDetector{markers: kept}
}

// Blocked reports the first marker found in body, if any.
func (d *BlockDetector) Blocked(body string) (string, bool) {
	for _, m := range d.markers {
		if strings.Contains(body, m) {
			return m, true
		}
	}
	return "", false
}
